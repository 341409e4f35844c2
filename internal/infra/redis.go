// README: Redis client for stored trips and itineraries.
package infra

import (
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		ReadTimeout: 3 * time.Second,
	})
}
