package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

type OrderStatus int

const (
	Pending OrderStatus = iota
	Paid
	Shipped
	Completed
	Cancelled
)

var orderStatusNames = map[OrderStatus]string{
	Pending:   "pending",
	Paid:      "paid",
	Shipped:   "shipped",
	Completed: "completed",
	Cancelled: "cancelled",
}

// lifecycle is the forward transition graph of an order.
var lifecycle = map[OrderStatus][]OrderStatus{
	Pending: {Paid, Cancelled},
	Paid:    {Shipped},
	Shipped: {Completed},
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for status, name := range orderStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, ErrInvalidOrderStatus
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range lifecycle[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(lifecycle[s]) == 0
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	ShippingAddress string
	Notes           string
	PaymentLastFive *string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a frozen copy of the catalog row at checkout time.
// ProductID is informational only; the product may since have been retired or edited.
type OrderItem struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	Subtotal     decimal.Decimal
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	// Create stores the order together with its items.
	Create(order *Order) error
	// Update persists status, payment code and modification time.
	Update(order *Order) error
	Find(id uuid.UUID) (*Order, error)
	// FindForUpdate is Find with the order row locked until the surrounding transaction ends.
	FindForUpdate(id uuid.UUID) (*Order, error)
	ListByUser(userID uuid.UUID) ([]Order, error)
}
