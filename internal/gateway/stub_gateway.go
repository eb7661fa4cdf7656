package gateway

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/clock"

	"github.com/google/uuid"
)

const (
	StubName = "stub"

	pixTTL    = time.Hour
	boletoTTL = 3 * 24 * time.Hour

	pixPayloadPrefix = "00020126"
	boletoBaseURL    = "https://boleto.stub/"
	boletoDigits     = 47
)

// StubGateway settles PIX and boleto as pending with issuance data and
// everything else as succeeded on the spot.
type StubGateway struct {
	clock clock.Clock
}

func NewStubGateway(c clock.Clock) *StubGateway {
	return &StubGateway{clock: c}
}

func (g *StubGateway) Name() string {
	return StubName
}

func (g *StubGateway) Charge(ctx context.Context, payment *entity.Payment, method *entity.PaymentMethod) (*entity.SettlementOutcome, error) {
	now := g.clock.Now()
	gatewayId := "stub_" + uuid.NewString()

	outcome := &entity.SettlementOutcome{
		GatewayPaymentId: gatewayId,
		Raw: map[string]interface{}{
			"gateway":     StubName,
			"id":          gatewayId,
			"method_type": string(payment.PaymentMethodType),
			"amount":      int64(payment.AmountInCents),
			"currency":    payment.Currency,
		},
	}

	switch payment.PaymentMethodType {
	case entity.PaymentMethodTypePix:
		expires := now.Add(pixTTL)
		outcome.Status = entity.PaymentStatusPending
		outcome.PixQrCode = pixPayloadPrefix + randomAlphanumeric(40)
		outcome.PixExpiresAt = &expires
	case entity.PaymentMethodTypeBoleto:
		expires := now.Add(boletoTTL)
		outcome.Status = entity.PaymentStatusPending
		outcome.BoletoUrl = boletoBaseURL + gatewayId
		outcome.BoletoBarcode = randomDigits(boletoDigits)
		outcome.BoletoExpiresAt = &expires
	default:
		outcome.Status = entity.PaymentStatusSucceeded
		outcome.PaidAt = &now
	}

	outcome.Raw["status"] = string(outcome.Status)
	return outcome, nil
}

func (g *StubGateway) Tokenize(ctx context.Context, attrs entity.PaymentMethodAttributes) (string, error) {
	return "stub_token_" + randomAlphanumeric(20), nil
}

func (g *StubGateway) OpenDispute(ctx context.Context, payment *entity.Payment, reason entity.DisputeReason) (string, error) {
	if payment.GatewayPaymentId == "" {
		return "", fmt.Errorf("payment %s has no gateway reference", payment.Id)
	}
	return "stub_dispute_" + randomAlphanumeric(16), nil
}

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomAlphanumeric(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphanumeric[rand.IntN(len(alphanumeric))])
	}
	return b.String()
}

func randomDigits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
