package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
}

// CartLine is a cart item joined with the live catalog row it points to.
type CartLine struct {
	ItemID    uuid.UUID
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Stock     int
	ImageURL  string
	Quantity  int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	UserID uuid.UUID
	Lines  []CartLine
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total.Round(2)
}

func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

type CartRepository interface {
	NextID() (uuid.UUID, error)
	Find(userID, itemID uuid.UUID) (*CartItem, error)
	FindByProduct(userID, productID uuid.UUID) (*CartItem, error)
	Store(item *CartItem) error
	// Delete removes the item only if it belongs to userID; a missing item is not an error.
	Delete(userID, itemID uuid.UUID) error
	Clear(userID uuid.UUID) error
	// Lines returns the user's items whose product is active.
	Lines(userID uuid.UUID) ([]CartLine, error)
}
