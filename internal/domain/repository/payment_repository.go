package repository

import (
	"context"

	"safarsathi-service/internal/domain/entity"
)

// PaymentGateway opens orders with the external payment provider
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*entity.PaymentOrder, error)
}

// PaymentOrderRepository records orders opened with the payment provider
type PaymentOrderRepository interface {
	Create(ctx context.Context, order *entity.PaymentOrder) error
	FindByExternalID(ctx context.Context, externalID string) (*entity.PaymentOrder, error)
}
