package payments

import (
	"context"
	"errors"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	ErrInvalidPrice  = errors.New("price must be a positive number")
	ErrNotConfigured = errors.New("payment provider is not configured")
)

// IntentCreator opens a payment intent and returns its client secret.
type IntentCreator interface {
	CreateIntent(ctx context.Context, price float64) (string, error)
}

type StripeService struct {
	api      *client.API
	currency stripe.Currency
}

// NewStripeService returns nil without a secret key.
func NewStripeService(secretKey string) *StripeService {
	if secretKey == "" {
		return nil
	}
	return &StripeService{api: client.New(secretKey, nil), currency: stripe.CurrencyUSD}
}

// AmountInCents converts a dollar price to the provider's smallest unit.
func AmountInCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return int64(math.Round(price * 100)), nil
}

func (s *StripeService) CreateIntent(ctx context.Context, price float64) (string, error) {
	if s == nil || s.api == nil {
		return "", ErrNotConfigured
	}
	amount, err := AmountInCents(price)
	if err != nil {
		return "", err
	}
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(s.currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
