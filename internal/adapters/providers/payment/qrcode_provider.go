package payment

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
)

const (
	minQRSize = 64
	maxQRSize = 1024
)

// QRCodeProvider renders PNG QR codes with skip2/go-qrcode
type QRCodeProvider struct{}

var _ providers.QRProvider = QRCodeProvider{}

// NewQRCodeProvider creates a QR provider
func NewQRCodeProvider() QRCodeProvider {
	return QRCodeProvider{}
}

// Encode returns a PNG of payload, size pixels square
func (QRCodeProvider) Encode(ctx context.Context, payload string, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, fmt.Errorf("qr payload is empty")
	}
	if size < minQRSize {
		size = minQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
