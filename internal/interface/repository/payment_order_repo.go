package repository

import (
	"context"
	"errors"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormPaymentOrderRepository implements the PaymentOrderRepository interface
type GormPaymentOrderRepository struct {
	db *gorm.DB
}

// NewGormPaymentOrderRepository creates a new GORM payment order repository
func NewGormPaymentOrderRepository(db *gorm.DB) repository.PaymentOrderRepository {
	return &GormPaymentOrderRepository{
		db: db,
	}
}

// PaymentOrders GORM model for database mapping
type PaymentOrders struct {
	gorm.Model
	ExternalID string `gorm:"column:external_id;uniqueIndex"`
	Receipt    string `gorm:"column:receipt"`
	Amount     int64  `gorm:"column:amount"`
	Currency   string `gorm:"column:currency"`
	Status     string `gorm:"column:status"`
}

// TableName overrides the default table name
func (PaymentOrders) TableName() string {
	return "payment_orders"
}

// Create inserts a new payment order
func (r *GormPaymentOrderRepository) Create(ctx context.Context, order *entity.PaymentOrder) error {
	model := PaymentOrders{
		ExternalID: order.ExternalID,
		Receipt:    order.Receipt,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Status:     order.Status,
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	// Update the entity with the generated ID
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt

	return nil
}

// FindByExternalID finds an order by the payment provider's ID
func (r *GormPaymentOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.PaymentOrder, error) {
	var model PaymentOrders
	result := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &entity.PaymentOrder{
		ID:         model.ID,
		ExternalID: model.ExternalID,
		Receipt:    model.Receipt,
		Amount:     model.Amount,
		Currency:   model.Currency,
		Status:     model.Status,
		CreatedAt:  model.CreatedAt,
	}, nil
}
