package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/logger"

	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable wraps every failure of the underlying gateway: timeouts,
// transport errors and calls rejected by an open breaker.
var ErrUnavailable = errors.New("payment gateway unavailable")

const (
	defaultTimeout          = 10 * time.Second
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

type ResilientConfig struct {
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// ResilientGateway decorates a Gateway with a per-call deadline and a circuit
// breaker so a dead processor fails fast instead of holding transactions open.
type ResilientGateway struct {
	next    Gateway
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

func NewResilientGateway(next Gateway, cfg ResilientConfig, log logger.ILogger) *ResilientGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("GATEWAY", "Circuit breaker state changed", map[string]interface{}{
				"gateway": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &ResilientGateway{
		next:    next,
		timeout: cfg.Timeout,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (g *ResilientGateway) Name() string {
	return g.next.Name()
}

// State exposes the breaker state for health reporting.
func (g *ResilientGateway) State() gobreaker.State {
	return g.breaker.State()
}

func (g *ResilientGateway) Charge(ctx context.Context, payment *entity.Payment, method *entity.PaymentMethod) (*entity.SettlementOutcome, error) {
	res, err := g.call(ctx, func(ctx context.Context) (any, error) {
		return g.next.Charge(ctx, payment, method)
	})
	if err != nil {
		return nil, err
	}
	return res.(*entity.SettlementOutcome), nil
}

func (g *ResilientGateway) Tokenize(ctx context.Context, attrs entity.PaymentMethodAttributes) (string, error) {
	res, err := g.call(ctx, func(ctx context.Context) (any, error) {
		return g.next.Tokenize(ctx, attrs)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (g *ResilientGateway) OpenDispute(ctx context.Context, payment *entity.Payment, reason entity.DisputeReason) (string, error) {
	res, err := g.call(ctx, func(ctx context.Context) (any, error) {
		return g.next.OpenDispute(ctx, payment, reason)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (g *ResilientGateway) call(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	res, err := g.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		type result struct {
			val any
			err error
		}
		done := make(chan result, 1)
		go func() {
			v, err := fn(callCtx)
			done <- result{v, err}
		}()

		select {
		case r := <-done:
			return r.val, r.err
		case <-callCtx.Done():
			return nil, callCtx.Err()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, nil
}
