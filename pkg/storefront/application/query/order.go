package query

import (
	"context"

	"storefront/pkg/storefront/domain/model"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type OrderFilter struct {
	Status *model.OrderStatus
	Page   int
	Limit  int
}

// Normalize clamps paging to page >= 1 and 1 <= limit <= MaxPageLimit.
func (f OrderFilter) Normalize() OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type OrderView struct {
	model.Order
	CustomerName  string
	CustomerEmail string
}

type OrderPage struct {
	Orders     []OrderView
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func NewOrderPage(filter OrderFilter, orders []OrderView, total int) *OrderPage {
	pages := 0
	if total > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	return &OrderPage{
		Orders:     orders,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: pages,
	}
}

// OrderQueryService is the read side used by the admin back office.
type OrderQueryService interface {
	ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error)
}
