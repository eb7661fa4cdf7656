package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stubNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func stubPayment(t entity.PaymentMethodType) *entity.Payment {
	return &entity.Payment{
		Id:                uuid.New(),
		AmountInCents:     9990,
		Currency:          "BRL",
		Status:            entity.PaymentStatusPending,
		PaymentMethodType: t,
	}
}

func TestStubGateway_Charge(t *testing.T) {
	g := NewStubGateway(clock.Fixed{At: stubNow})
	ctx := context.Background()

	t.Run("pix settles pending with a qr code valid for one hour", func(t *testing.T) {
		out, err := g.Charge(ctx, stubPayment(entity.PaymentMethodTypePix), nil)
		require.NoError(t, err)

		assert.Equal(t, entity.PaymentStatusPending, out.Status)
		assert.True(t, strings.HasPrefix(out.PixQrCode, "00020126"))
		assert.Len(t, out.PixQrCode, 48)
		require.NotNil(t, out.PixExpiresAt)
		assert.Equal(t, stubNow.Add(time.Hour), *out.PixExpiresAt)
		assert.Nil(t, out.PaidAt)
		assert.Empty(t, out.BoletoUrl)
	})

	t.Run("boleto settles pending with url and barcode valid for three days", func(t *testing.T) {
		out, err := g.Charge(ctx, stubPayment(entity.PaymentMethodTypeBoleto), nil)
		require.NoError(t, err)

		assert.Equal(t, entity.PaymentStatusPending, out.Status)
		assert.Equal(t, "https://boleto.stub/"+out.GatewayPaymentId, out.BoletoUrl)
		assert.Len(t, out.BoletoBarcode, 47)
		assert.Regexp(t, `^[0-9]+$`, out.BoletoBarcode)
		require.NotNil(t, out.BoletoExpiresAt)
		assert.Equal(t, stubNow.Add(72*time.Hour), *out.BoletoExpiresAt)
		assert.Empty(t, out.PixQrCode)
	})

	for _, methodType := range []entity.PaymentMethodType{
		entity.PaymentMethodTypeCreditCard,
		entity.PaymentMethodTypeDebitCard,
		entity.PaymentMethodTypeBankDebit,
	} {
		t.Run(string(methodType)+" succeeds immediately", func(t *testing.T) {
			out, err := g.Charge(ctx, stubPayment(methodType), &entity.PaymentMethod{Type: methodType})
			require.NoError(t, err)

			assert.Equal(t, entity.PaymentStatusSucceeded, out.Status)
			require.NotNil(t, out.PaidAt)
			assert.Equal(t, stubNow, *out.PaidAt)
			assert.True(t, strings.HasPrefix(out.GatewayPaymentId, "stub_"))
			assert.Equal(t, "succeeded", out.Raw["status"])
		})
	}
}

func TestStubGateway_TokenizeAndDispute(t *testing.T) {
	g := NewStubGateway(clock.Fixed{At: stubNow})
	ctx := context.Background()

	token, err := g.Tokenize(ctx, entity.PaymentMethodAttributes{Type: entity.PaymentMethodTypeCreditCard})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "stub_token_"))
	assert.Len(t, token, len("stub_token_")+20)

	payment := stubPayment(entity.PaymentMethodTypeCreditCard)
	_, err = g.OpenDispute(ctx, payment, entity.DisputeReasonFraudulent)
	assert.Error(t, err, "payment without gateway id cannot be disputed")

	payment.GatewayPaymentId = "stub_abc"
	ref, err := g.OpenDispute(ctx, payment, entity.DisputeReasonFraudulent)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "stub_dispute_"))
}
