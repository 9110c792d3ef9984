package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/pkg/config"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/money"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// PaymentService builds UPI payment links and their QR codes. No money is
// moved; the patient pays from their UPI app.
type PaymentService struct {
	qr  providers.QRProvider
	cfg config.PaymentConfig
}

// NewPaymentService creates a new payment service
func NewPaymentService(qr providers.QRProvider, cfg config.PaymentConfig) *PaymentService {
	return &PaymentService{qr: qr, cfg: cfg}
}

// UPILink builds the upi://pay deep link for amount
func (s *PaymentService) UPILink(amount money.Paise) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR",
		url.PathEscape(s.cfg.UPIPayeeID), url.PathEscape(s.cfg.UPIPayeeName), amount.Decimal())
}

// GenerateUPIQR renders the payment link for amount as a PNG data URL
func (s *PaymentService) GenerateUPIQR(ctx context.Context, amount money.Paise) (*entities.PaymentQR, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be greater than zero")
	}

	link := s.UPILink(amount)
	png, err := s.qr.Encode(ctx, link, s.cfg.QRSize)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to generate payment QR code", err)
	}

	return &entities.PaymentQR{
		UPILink: link,
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Amount:  amount.Decimal(),
	}, nil
}

// ValidateUPIID checks a user-entered UPI id such as name@bank
func (s *PaymentService) ValidateUPIID(id string) error {
	if !utils.IsValidUPIID(id) {
		return apperrors.NewValidationError("enter a valid UPI ID, for example name@bank")
	}
	return nil
}
