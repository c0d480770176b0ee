package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/pos-app/models"
	"gorm.io/gorm"
)

var ErrInvalidPayment = errors.New("invalid payment")

type PaymentInput struct {
	OrderID uint
	Amount  float64
	Method  string
	Email   string
	Contact string
}

// PaymentService records payments taken against orders.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{
		db: db,
	}
}

// RecordPayment stores a captured payment. The order must exist.
func (s *PaymentService) RecordPayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	switch in.Method {
	case models.PaymentMethodCash, models.PaymentMethodOnline:
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, in.Method)
	}

	payment := models.Payment{
		PaymentRef: "pay_" + uuid.NewString(),
		OrderID:    in.OrderID,
		Amount:     in.Amount,
		Currency:   "INR",
		Status:     models.PaymentStatusCaptured,
		Method:     in.Method,
		Email:      in.Email,
		Contact:    in.Contact,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, in.OrderID).Error; err != nil {
			return fmt.Errorf("failed to find order: %w", err)
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentByID mendapatkan pembayaran berdasarkan ID
func (s *PaymentService) GetPaymentByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPayments returns payments newest first, optionally for one order.
func (s *PaymentService) ListPayments(ctx context.Context, orderID uint) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if orderID != 0 {
		q = q.Where("order_id = ?", orderID)
	}
	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
