package services_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/adapters/providers/payment"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/pkg/config"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

type mockQR struct {
	mock.Mock
}

func (m *mockQR) Encode(ctx context.Context, payload string, size int) ([]byte, error) {
	args := m.Called(ctx, payload, size)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

var paymentConfig = config.PaymentConfig{UPIPayeeID: "healthmarket@upi", UPIPayeeName: "Health Market", QRSize: 256}

func TestPaymentService_GenerateUPIQR(t *testing.T) {
	svc := services.NewPaymentService(payment.NewQRCodeProvider(), paymentConfig)

	qr, err := svc.GenerateUPIQR(context.Background(), paise("95.14"))
	require.NoError(t, err)

	assert.Equal(t, "upi://pay?pa=healthmarket@upi&pn=Health%20Market&am=95.14&cu=INR", qr.UPILink)
	assert.Equal(t, "95.14", qr.Amount)
	require.True(t, strings.HasPrefix(qr.DataURL, "data:image/png;base64,"))

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(qr.DataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestPaymentService_GenerateUPIQR_RejectsBeforeEncoding(t *testing.T) {
	qr := new(mockQR)
	svc := services.NewPaymentService(qr, paymentConfig)

	for _, amount := range []string{"0", "-10"} {
		_, err := svc.GenerateUPIQR(context.Background(), paise(amount))
		assert.True(t, apperrors.IsValidation(err), amount)
	}
	qr.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_GenerateUPIQR_ProviderFailure(t *testing.T) {
	qr := new(mockQR)
	qr.On("Encode", mock.Anything, mock.Anything, 256).Return(nil, errors.New("encoder crashed"))
	svc := services.NewPaymentService(qr, paymentConfig)

	_, err := svc.GenerateUPIQR(context.Background(), paise("10"))
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestPaymentService_ValidateUPIID(t *testing.T) {
	svc := services.NewPaymentService(payment.NewQRCodeProvider(), paymentConfig)
	assert.NoError(t, svc.ValidateUPIID("asha.rao@okhdfcbank"))
	assert.True(t, apperrors.IsValidation(svc.ValidateUPIID("asha.rao")))
}
