package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/pkg/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripePaymentGateway implements the PaymentGateway interface with Stripe PaymentIntents
type StripePaymentGateway struct {
	api    *client.API
	logger logger.Logger
}

// NewStripePaymentGateway creates a new Stripe payment gateway
func NewStripePaymentGateway(apiKey string, log logger.Logger) *StripePaymentGateway {
	api := &client.API{}
	api.Init(apiKey, nil)

	return &StripePaymentGateway{
		api:    api,
		logger: log,
	}
}

// CreateOrder opens a PaymentIntent for amount minor units of currency
func (g *StripePaymentGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*entity.PaymentOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	params.AddMetadata("receipt", receipt)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stripe payment intent: %w", err)
	}

	g.logger.Debug("Payment intent created", "id", intent.ID, "receipt", receipt)

	return &entity.PaymentOrder{
		ExternalID:   intent.ID,
		Receipt:      receipt,
		Amount:       intent.Amount,
		Currency:     strings.ToUpper(string(intent.Currency)),
		Status:       entity.PaymentOrderCreated,
		ClientSecret: intent.ClientSecret,
		CreatedAt:    time.Unix(intent.Created, 0),
	}, nil
}
