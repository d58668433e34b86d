// internal/payment/provider.go
package payment

import (
	"context"
)

type Method string

const (
	MethodMobileMoney Method = "mobile_money"
	MethodCard        Method = "card"
)

type MobileProvider string

const (
	ProviderMTN    MobileProvider = "mtn"
	ProviderAirtel MobileProvider = "airtel"
)

// FailureReason is the fixed set of provider failures. Every decline maps to
// one of these four; none of them is fatal and all are retryable.
type FailureReason string

const (
	ReasonInsufficientFunds FailureReason = "insufficient_funds"
	ReasonTimeout           FailureReason = "timeout"
	ReasonInvalidCredential FailureReason = "invalid_credential"
	ReasonNetworkError      FailureReason = "network_error"
)

var failureMessages = map[FailureReason]string{
	ReasonInsufficientFunds: "Insufficient funds. Please check your balance and try again.",
	ReasonTimeout:           "Transaction timeout. Please try again.",
	ReasonInvalidCredential: "Invalid PIN/password. Please check and try again.",
	ReasonNetworkError:      "Network error. Please check your connection and retry.",
}

func (r FailureReason) Message() string {
	if msg, ok := failureMessages[r]; ok {
		return msg
	}
	return "Payment failed. Please try again."
}

// Error is a declined payment. Declines are ordinary outcomes, but wrapping
// the reason as an error lets callers propagate it with the usual plumbing.
type Error struct {
	Reason FailureReason
}

func (e *Error) Error() string {
	return e.Reason.Message()
}

type Request struct {
	Amount         float64        `json:"amount"`
	Currency       string         `json:"currency"`
	Method         Method         `json:"method"`
	PhoneNumber    string         `json:"phone_number,omitempty"`
	MobileProvider MobileProvider `json:"mobile_provider,omitempty"`
	CardToken      string         `json:"card_token,omitempty"`
	Reference      string         `json:"reference,omitempty"`
}

type Outcome struct {
	Success     bool          `json:"success"`
	Reason      FailureReason `json:"reason,omitempty"`
	ProviderRef string        `json:"provider_ref,omitempty"`
}

// Provider is any payment processor that eventually reports success or one of
// the four failure reasons. The unlock flow depends only on this contract;
// production swaps in a real processor without touching the gate.
type Provider interface {
	SubmitPayment(ctx context.Context, req Request) (Outcome, error)
}
