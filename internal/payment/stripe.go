// internal/payment/stripe.go
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeProvider processes card payments through Stripe PaymentIntents.
type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) SubmitPayment(ctx context.Context, req Request) (Outcome, error) {
	if req.Method != MethodCard {
		return Outcome{}, fmt.Errorf("stripe provider only handles card payments, got %q", req.Method)
	}

	// Convert amount to the smallest currency unit for Stripe
	amountInCents := int64(req.Amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		Confirm:  stripe.Bool(true),
	}
	params.Context = ctx
	if req.CardToken != "" {
		params.PaymentMethod = stripe.String(req.CardToken)
	}
	if req.Reference != "" {
		params.AddMetadata("reference", req.Reference)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return Outcome{Success: false, Reason: mapStripeDecline(stripeErr)}, nil
		}
		return Outcome{Success: false, Reason: ReasonNetworkError}, nil
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return Outcome{Success: true, ProviderRef: pi.ID}, nil
	case stripe.PaymentIntentStatusProcessing:
		return Outcome{Success: false, Reason: ReasonTimeout, ProviderRef: pi.ID}, nil
	default:
		return Outcome{Success: false, Reason: ReasonInvalidCredential, ProviderRef: pi.ID}, nil
	}
}

func mapStripeDecline(err *stripe.Error) FailureReason {
	switch err.Code {
	case stripe.ErrorCodeCardDeclined, stripe.ErrorCodeBalanceInsufficient:
		return ReasonInsufficientFunds
	case stripe.ErrorCodeExpiredCard, stripe.ErrorCodeIncorrectCVC, stripe.ErrorCodeIncorrectNumber:
		return ReasonInvalidCredential
	case stripe.ErrorCodeProcessingError:
		return ReasonTimeout
	default:
		return ReasonNetworkError
	}
}
