package usecase

import (
	"context"
	"math"
	"strings"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount = apperror.Validation("invalid_amount", "Amount must be at least 1.")
	ErrPaymentFailed = apperror.New(apperror.KindUpstream, "payment_failed", "Failed to create order.")
)

// Payments opens orders with the payment provider and records them
type Payments struct {
	gateway         repository.PaymentGateway
	ledger          repository.PaymentOrderRepository
	defaultCurrency string
	metrics         *metrics.Metrics
	logger          logger.Logger
}

// NewPayments creates the payments use case. ledger may be nil, in which
// case orders are created but not recorded.
func NewPayments(
	gateway repository.PaymentGateway,
	ledger repository.PaymentOrderRepository,
	defaultCurrency string,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Payments {
	return &Payments{
		gateway:         gateway,
		ledger:          ledger,
		defaultCurrency: defaultCurrency,
		metrics:         metrics,
		logger:          logger,
	}
}

// CreatePaymentOrder opens an order for amount in major currency units
func (p *Payments) CreatePaymentOrder(ctx context.Context, amount float64, currency string) (*entity.PaymentOrder, error) {
	if math.IsNaN(amount) || amount < 1 {
		return nil, ErrInvalidAmount
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = p.defaultCurrency
	}

	minor := int64(math.Round(amount * 100))
	receipt := "receipt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

	order, err := p.gateway.CreateOrder(ctx, minor, currency, receipt)
	if err != nil {
		p.metrics.PaymentOrders.WithLabelValues(entity.PaymentOrderFailed).Inc()
		p.logger.Error("Payment order failed", "receipt", receipt, "amount", minor, "error", err)
		return nil, ErrPaymentFailed.Wrap(err)
	}
	p.metrics.PaymentOrders.WithLabelValues(entity.PaymentOrderCreated).Inc()

	if p.ledger != nil {
		if err := p.ledger.Create(ctx, order); err != nil {
			p.logger.Error("Failed to record payment order", "orderID", order.ExternalID, "error", err)
		}
	}

	p.logger.Info("Payment order created", "orderID", order.ExternalID, "receipt", receipt, "amount", minor, "currency", currency)
	return order, nil
}
