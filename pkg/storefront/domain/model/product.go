package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock quantity")
	ErrInvalidProductState = errors.New("invalid product status")
)

// ProductStatus separates "visible in the catalog" from "referenceable by history".
// A retired product is never removed so order history keeps resolving.
type ProductStatus int

const (
	Active ProductStatus = iota
	Retired
)

func (s ProductStatus) String() string {
	switch s {
	case Active:
		return "active"
	case Retired:
		return "retired"
	default:
		return fmt.Sprintf("ProductStatus(%d)", int(s))
	}
}

func ParseProductStatus(s string) (ProductStatus, error) {
	switch s {
	case "active":
		return Active, nil
	case "retired":
		return Retired, nil
	default:
		return 0, ErrInvalidProductState
	}
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Product) IsActive() bool {
	return p.Status == Active
}

// InsufficientStockError reports the product that blocked a checkout and what is left of it.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.ProductName, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(product *Product) error
	Update(product *Product) error
	// Find returns the product regardless of its status.
	Find(id uuid.UUID) (*Product, error)
	ListActive() ([]Product, error)
	ListAll() ([]Product, error)
	// DecreaseStock atomically subtracts quantity from an active product.
	// It fails with ErrInsufficientStock and leaves the row untouched when stock < quantity.
	DecreaseStock(id uuid.UUID, quantity int) error
	IncreaseStock(id uuid.UUID, quantity int) error
}
