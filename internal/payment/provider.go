package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// Provider charges an order and returns the provider's payment reference.
type Provider interface {
	Charge(ctx context.Context, order *domain.Order) (string, error)
}

// SimulatedProvider stands in for a real payment gateway. It produces
// references of the form sim_<hex> and can be configured with an artificial
// failure rate for exercising the payment_failed path.
type SimulatedProvider struct {
	failureRate float64
	latency     time.Duration
}

// NewSimulatedProvider creates a simulator. failureRate is the fraction of
// charges (0..1) that fail with ErrPaymentFailed.
func NewSimulatedProvider(failureRate float64, latency time.Duration) *SimulatedProvider {
	return &SimulatedProvider{
		failureRate: failureRate,
		latency:     latency,
	}
}

// Charge simulates a payment capture.
func (p *SimulatedProvider) Charge(ctx context.Context, order *domain.Order) (string, error) {
	if p.latency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.latency):
		}
	}

	if p.failureRate > 0 && mrand.Float64() < p.failureRate { // #nosec G404 -- simulation only
		return "", apperrors.PaymentFailed(fmt.Sprintf(
			"payment declined for order %s", order.ID))
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate payment reference: %w", err)
	}

	return "sim_" + hex.EncodeToString(buf), nil
}

// BreakerProvider wraps another provider with a circuit breaker so a
// misbehaving gateway sheds load instead of stalling the order processor.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewBreakerProvider wraps the given provider. The breaker trips when at
// least 5 requests have been seen and 60% of them failed, and probes again
// after 30 seconds.
func NewBreakerProvider(inner Provider, logger *slog.Logger) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("payment circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

// Charge executes the charge through the breaker. An open breaker surfaces
// as a payment failure so the order moves to payment_failed rather than
// being retried forever.
func (p *BreakerProvider) Charge(ctx context.Context, order *domain.Order) (string, error) {
	ref, err := p.breaker.Execute(func() (string, error) {
		return p.inner.Charge(ctx, order)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", apperrors.PaymentFailed("payment provider unavailable")
		}
		return "", err
	}
	return ref, nil
}
