// internal/payment/simulated_test.go
package payment

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulatedProvider(successRate float64) *SimulatedProvider {
	p := NewSimulatedProvider(successRate)
	p.rng = rand.New(rand.NewSource(42))
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}

func mobileMoneyRequest() Request {
	return Request{
		Amount:         5000,
		Currency:       "UGX",
		Method:         MethodMobileMoney,
		PhoneNumber:    "+256700000001",
		MobileProvider: ProviderMTN,
	}
}

func TestSimulatedProvider_AlwaysApprovesAtFullRate(t *testing.T) {
	p := newTestSimulatedProvider(1.0)

	for i := 0; i < 50; i++ {
		outcome, err := p.SubmitPayment(context.Background(), mobileMoneyRequest())
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Empty(t, outcome.Reason)
		assert.True(t, strings.HasPrefix(outcome.ProviderRef, "sim_"))
	}
}

func TestSimulatedProvider_AlwaysDeclinesAtZeroRate(t *testing.T) {
	p := newTestSimulatedProvider(0.0)

	for i := 0; i < 50; i++ {
		outcome, err := p.SubmitPayment(context.Background(), mobileMoneyRequest())
		require.NoError(t, err)
		assert.False(t, outcome.Success)
		assert.Contains(t, simulatedReasons, outcome.Reason)
		assert.Empty(t, outcome.ProviderRef)
	}
}

func TestSimulatedProvider_MissingPhoneIsInvalidCredential(t *testing.T) {
	p := newTestSimulatedProvider(1.0)

	req := mobileMoneyRequest()
	req.PhoneNumber = ""

	outcome, err := p.SubmitPayment(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, ReasonInvalidCredential, outcome.Reason)
}

func TestSimulatedProvider_CardWithoutPhoneIsFine(t *testing.T) {
	p := newTestSimulatedProvider(1.0)

	outcome, err := p.SubmitPayment(context.Background(), Request{
		Amount:    5000,
		Currency:  "UGX",
		Method:    MethodCard,
		CardToken: "tok_visa",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestSimulatedProvider_CancelledContext(t *testing.T) {
	p := NewSimulatedProvider(1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.SubmitPayment(ctx, mobileMoneyRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFailureReason_Messages(t *testing.T) {
	assert.Equal(t, "Insufficient funds. Please check your balance and try again.", ReasonInsufficientFunds.Message())
	assert.Equal(t, "Transaction timeout. Please try again.", ReasonTimeout.Message())
	assert.Equal(t, "Invalid PIN/password. Please check and try again.", ReasonInvalidCredential.Message())
	assert.Equal(t, "Network error. Please check your connection and retry.", ReasonNetworkError.Message())
	assert.Equal(t, "Payment failed. Please try again.", FailureReason("something_else").Message())
}

func TestPaymentError_WrapsReason(t *testing.T) {
	err := &Error{Reason: ReasonTimeout}
	assert.Equal(t, ReasonTimeout.Message(), err.Error())
}
