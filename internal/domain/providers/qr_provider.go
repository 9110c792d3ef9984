package providers

import "context"

// QRProvider renders a payload string as a PNG image
type QRProvider interface {
	Encode(ctx context.Context, payload string, size int) ([]byte, error)
}
