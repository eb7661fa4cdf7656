package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/logger"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGateway struct {
	*StubGateway
	delay time.Duration
	err   error
	calls int
}

func (g *scriptedGateway) Charge(ctx context.Context, payment *entity.Payment, method *entity.PaymentMethod) (*entity.SettlementOutcome, error) {
	g.calls++
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.StubGateway.Charge(ctx, payment, method)
}

func newResilient(next Gateway, threshold uint32) *ResilientGateway {
	return NewResilientGateway(next, ResilientConfig{
		Timeout:          50 * time.Millisecond,
		FailureThreshold: threshold,
		OpenTimeout:      time.Minute,
	}, logger.NewNopLogger())
}

func TestResilientGateway_PassesThrough(t *testing.T) {
	next := &scriptedGateway{StubGateway: NewStubGateway(clock.Fixed{At: stubNow})}
	g := newResilient(next, 3)

	out, err := g.Charge(context.Background(), stubPayment(entity.PaymentMethodTypeCreditCard), nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSucceeded, out.Status)
	assert.Equal(t, "stub", g.Name())
}

func TestResilientGateway_TimeoutIsUnavailable(t *testing.T) {
	next := &scriptedGateway{StubGateway: NewStubGateway(clock.Fixed{At: stubNow}), delay: time.Second}
	g := newResilient(next, 3)

	_, err := g.Charge(context.Background(), stubPayment(entity.PaymentMethodTypeCreditCard), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestResilientGateway_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &scriptedGateway{
		StubGateway: NewStubGateway(clock.Fixed{At: stubNow}),
		err:         errors.New("connection refused"),
	}
	g := newResilient(next, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Charge(ctx, stubPayment(entity.PaymentMethodTypeCreditCard), nil)
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.Charge(ctx, stubPayment(entity.PaymentMethodTypeCreditCard), nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, next.calls, "open breaker must not reach the gateway")
}

func TestResilientGateway_ZeroConfigFallsBackToDefaults(t *testing.T) {
	next := &scriptedGateway{StubGateway: NewStubGateway(clock.Fixed{At: stubNow})}
	g := NewResilientGateway(next, ResilientConfig{}, logger.NewNopLogger())

	assert.Equal(t, defaultTimeout, g.timeout)

	out, err := g.Charge(context.Background(), stubPayment(entity.PaymentMethodTypeCreditCard), nil)
	require.NoError(t, err, "a zero timeout must not expire every call")
	assert.Equal(t, entity.PaymentStatusSucceeded, out.Status)

	next.err = errors.New("connection refused")
	_, err = g.Charge(context.Background(), stubPayment(entity.PaymentMethodTypeCreditCard), nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, gobreaker.StateClosed, g.State(), "one failure is below the default threshold")
}
