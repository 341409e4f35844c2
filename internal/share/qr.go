package share

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	MinQRSize = 64
	MaxQRSize = 1024
)

// QRCode encodes url as a square PNG of size pixels, clamped to [MinQRSize, MaxQRSize].
func QRCode(url string, size int) ([]byte, error) {
	switch {
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
