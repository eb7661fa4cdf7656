// Package gateway is the boundary to the payment processor. The engine only
// sees the Gateway interface; StubGateway is the reference implementation
// and ResilientGateway bounds any implementation with a timeout and breaker.
package gateway

import (
	"context"

	"billing-engine-be/internal/entity"
)

type Gateway interface {
	Name() string

	// Charge attempts to settle payment. Every PaymentStatus is a legitimate
	// outcome; an error means the gateway could not answer at all.
	Charge(ctx context.Context, payment *entity.Payment, method *entity.PaymentMethod) (*entity.SettlementOutcome, error)

	// Tokenize stores the method with the processor and returns an opaque token.
	Tokenize(ctx context.Context, attrs entity.PaymentMethodAttributes) (string, error)

	// OpenDispute files a dispute and returns the processor's reference.
	OpenDispute(ctx context.Context, payment *entity.Payment, reason entity.DisputeReason) (string, error)
}
