// internal/payment/simulated.go
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SimulatedProvider emulates a mobile money / card processor without a live
// backend: a 2-4s processing delay, then success at a configurable rate or a
// random decline from the fixed reason set.
type SimulatedProvider struct {
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand

	sleep func(ctx context.Context, d time.Duration) error
}

func NewSimulatedProvider(successRate float64) *SimulatedProvider {
	return &SimulatedProvider{
		successRate: successRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:       sleepCtx,
	}
}

var simulatedReasons = []FailureReason{
	ReasonInsufficientFunds,
	ReasonTimeout,
	ReasonInvalidCredential,
	ReasonNetworkError,
}

func (p *SimulatedProvider) SubmitPayment(ctx context.Context, req Request) (Outcome, error) {
	if req.Method == MethodMobileMoney && req.PhoneNumber == "" {
		return Outcome{Success: false, Reason: ReasonInvalidCredential}, nil
	}

	p.mu.Lock()
	delay := 2*time.Second + time.Duration(p.rng.Int63n(int64(2*time.Second)))
	roll := p.rng.Float64()
	reason := simulatedReasons[p.rng.Intn(len(simulatedReasons))]
	p.mu.Unlock()

	if err := p.sleep(ctx, delay); err != nil {
		return Outcome{}, err
	}

	if roll >= p.successRate {
		logrus.WithFields(logrus.Fields{
			"method": req.Method,
			"reason": reason,
		}).Info("Simulated payment declined")
		return Outcome{Success: false, Reason: reason}, nil
	}

	ref := fmt.Sprintf("sim_%s", uuid.New().String())
	logrus.WithFields(logrus.Fields{
		"method":   req.Method,
		"amount":   req.Amount,
		"currency": req.Currency,
		"ref":      ref,
	}).Info("Simulated payment approved")

	return Outcome{Success: true, ProviderRef: ref}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
