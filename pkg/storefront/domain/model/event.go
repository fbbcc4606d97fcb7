package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductUpdated struct {
	ProductID uuid.UUID
}

func (e ProductUpdated) Type() string { return "ProductUpdated" }

type ProductRetired struct {
	ProductID uuid.UUID
}

func (e ProductRetired) Type() string { return "ProductRetired" }

type ProductStockChanged struct {
	ProductID    uuid.UUID
	ChangeAmount int // negative on checkout, positive on restock
}

func (e ProductStockChanged) Type() string { return "ProductStockChanged" }

type UserRegistered struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

func (e UserRegistered) Type() string { return "UserRegistered" }

type OrderCreated struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	TotalAmount decimal.Decimal
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderPaymentSubmitted struct {
	OrderID         uuid.UUID
	PaymentLastFive string
}

func (e OrderPaymentSubmitted) Type() string { return "OrderPaymentSubmitted" }

type OrderStatusChanged struct {
	OrderID   uuid.UUID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }
