// README: Smoke cases for the trip API plus DB, Redis and throughput checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// Filled in by earlier cases and read by later ones.
	tripID      string
	itineraryID string
}

type Result struct {
	Name    string
	Status  string
	Code    int
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func sampleTrip() map[string]any {
	start := time.Now().AddDate(0, 1, 0)
	return map[string]any{
		"startLocation":  "Seattle, WA",
		"destination":    "Vancouver, BC",
		"budget":         1500,
		"tripStyle":      "balanced",
		"startDate":      start.Format(time.DateOnly),
		"endDate":        start.AddDate(0, 0, 2).Format(time.DateOnly),
		"travelers":      2,
		"preferences":    []string{"food", "outdoors"},
		"transportation": []string{"car"},
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "usage quota database",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "trip and itinerary store",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from the migration file",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "API: health",
			Focus: "server reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				res, _ := r.do(ctx, http.MethodGet, base+"/health", nil)
				return expect(res, 200)
			},
		},
		{
			Name:  "Trips: create (invalid -> 400)",
			Focus: "request validation",
			Run: func(ctx context.Context, r *Runner) Result {
				body := sampleTrip()
				body["budget"] = 10
				res, _ := r.do(ctx, http.MethodPost, base+"/api/trips", body)
				return expect(res, 400)
			},
		},
		{
			Name:  "Trips: create",
			Focus: "trip stored",
			Run: func(ctx context.Context, r *Runner) Result {
				res, body := r.do(ctx, http.MethodPost, base+"/api/trips", sampleTrip())
				if res.Status != "PASS" {
					return res
				}
				var out struct {
					TripID string `json:"trip_id"`
				}
				_ = json.Unmarshal(body, &out)
				r.tripID = out.TripID
				return expect(res, 201)
			},
		},
		{
			Name:  "Trips: stored in Redis",
			Focus: "trips:request:<id> key present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil || r.tripID == "" {
					return Result{Status: "SKIP", Note: "needs redis and a created trip"}
				}
				n, err := r.redis.Exists(ctx, "trips:request:"+r.tripID).Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n != 1 {
					return Result{Status: "FAIL", Note: "key missing"}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Trips: unknown id -> 404",
			Focus: "not found mapping",
			Run: func(ctx context.Context, r *Runner) Result {
				res, _ := r.do(ctx, http.MethodGet, base+"/api/trips/00000000-0000-4000-8000-000000000000", nil)
				return expect(res, 404)
			},
		},
		{
			Name:  "Itinerary: generate for trip",
			Focus: "full pipeline against the model",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.tripID == "" {
					return Result{Status: "SKIP", Note: "no trip created"}
				}
				res, body := r.do(ctx, http.MethodPost, base+"/api/trips/"+r.tripID+"/itinerary", nil)
				var out struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				}
				_ = json.Unmarshal(body, &out)
				r.itineraryID = out.ID
				switch res.Code {
				case 200:
					res.Status = "PASS"
					res.Note = fmt.Sprintf("status=%d itinerary=%s", res.Code, out.Status)
				case 429, 502, 503, 504:
					res.Status = "PENDING"
				default:
					res.Status = "FAIL"
				}
				return res
			},
		},
		{
			Name:  "Itinerary: latest for trip",
			Focus: "latest pointer",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.itineraryID == "" {
					return Result{Status: "SKIP", Note: "no itinerary generated"}
				}
				res, _ := r.do(ctx, http.MethodGet, base+"/api/trips/"+r.tripID+"/itinerary", nil)
				return expect(res, 200)
			},
		},
		{
			Name:  "Itinerary: pdf export",
			Focus: "gofpdf rendering",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.itineraryID == "" {
					return Result{Status: "SKIP", Note: "no itinerary generated"}
				}
				res, body := r.do(ctx, http.MethodGet, base+"/api/itineraries/"+r.itineraryID+"/pdf", nil)
				if res.Code == 200 && !bytes.HasPrefix(body, []byte("%PDF")) {
					return Result{Status: "FAIL", Latency: res.Latency, Note: "not a pdf"}
				}
				return expect(res, 200)
			},
		},
		{
			Name:  "Itinerary: share QR",
			Focus: "qr png",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.itineraryID == "" {
					return Result{Status: "SKIP", Note: "no itinerary generated"}
				}
				res, _ := r.do(ctx, http.MethodGet, base+"/api/itineraries/"+r.itineraryID+"/qr?size=200", nil)
				return expect(res, 200)
			},
		},
		{
			Name:  "Usage: remaining quota",
			Focus: "usage endpoint",
			Run: func(ctx context.Context, r *Runner) Result {
				res, body := r.do(ctx, http.MethodGet, base+"/api/usage", nil)
				res = expect(res, 200)
				if res.Status == "PASS" {
					res.Note = strings.TrimSpace(string(body))
				}
				return res
			},
		},
		{
			Name:  "Usage: row recorded",
			Focus: "generation_usage updated",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				var n int
				if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM generation_usage").Scan(&n); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: "PENDING", Note: "no caller rows yet"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("callers=%d", n)}
			},
		},
		{
			Name:  "RateLimit: burst of generations",
			Focus: "per-caller limiter returns 429",
			Run: func(ctx context.Context, r *Runner) Result {
				return burstGenerate(ctx, r, base+"/api/itineraries")
			},
		},
		{
			Name:  "Perf: create trip throughput",
			Focus: "validation + Redis writes",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/trips", sampleTrip())
			},
		},
	}
}

// do sends body as JSON and reports the status code and latency. Status is
// FAIL only when the request itself failed.
func (r *Runner) do(ctx context.Context, method, url string, body any) (Result, []byte) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}, nil
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return Result{
		Status:  "PASS",
		Code:    resp.StatusCode,
		Latency: time.Since(start),
		Note:    fmt.Sprintf("status=%d", resp.StatusCode),
	}, data
}

func expect(res Result, code int) Result {
	if res.Status != "PASS" {
		return res
	}
	if res.Code != code {
		res.Status = "FAIL"
		res.Note = fmt.Sprintf("status=%d want=%d", res.Code, code)
	}
	return res
}

func burstGenerate(ctx context.Context, r *Runner, url string) Result {
	b, _ := json.Marshal(sampleTrip())
	wg := sync.WaitGroup{}
	limited := 0
	mu := sync.Mutex{}

	n := r.cfg.Concurrency
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			if r.cfg.Token != "" {
				req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
			}
			resp, err := r.httpc.Do(req)
			if err != nil {
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				mu.Lock()
				limited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if limited == 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("no 429 in %d requests", n)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("limited=%d/%d", limited, n)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				if r.cfg.Token != "" {
					req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
				}
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					if ctx.Err() != nil {
						return
					}
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
