package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/domain/model"
)

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate string    `json:"birth_date,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
	if !u.BirthDate.IsZero() {
		resp.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	return resp
}

type productResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	ImageURL    string      `json:"image_url"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func newProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Status:      p.Status.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newProductsResponse(products []model.Product) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	return resp
}

type cartLineResponse struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"product_id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Stock     int         `json:"stock"`
	ImageURL  string      `json:"image_url"`
	Quantity  int         `json:"quantity"`
	Subtotal  json.Number `json:"subtotal"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total json.Number        `json:"total"`
	Count int                `json:"count"`
}

func newCartResponse(cart *model.Cart) cartResponse {
	items := make([]cartLineResponse, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, cartLineResponse{
			ID:        line.ItemID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     money(line.Price),
			Stock:     line.Stock,
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
			Subtotal:  money(line.Subtotal()),
		})
	}
	return cartResponse{Items: items, Total: money(cart.Total()), Count: cart.Count()}
}

type orderItemResponse struct {
	ID           uuid.UUID   `json:"id"`
	ProductID    uuid.UUID   `json:"product_id"`
	ProductName  string      `json:"product_name"`
	ProductPrice json.Number `json:"product_price"`
	Quantity     int         `json:"quantity"`
	Subtotal     json.Number `json:"subtotal"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	TotalAmount     json.Number         `json:"total_amount"`
	Status          string              `json:"status"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           string              `json:"notes"`
	PaymentLastFive *string             `json:"payment_last_five"`
	Items           []orderItemResponse `json:"items"`
	CustomerName    string              `json:"customer_name,omitempty"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func newOrderResponse(o *model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: money(item.ProductPrice),
			Quantity:     item.Quantity,
			Subtotal:     money(item.Subtotal),
		})
	}
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     money(o.TotalAmount),
		Status:          o.Status.String(),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		PaymentLastFive: o.PaymentLastFive,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func newOrdersResponse(orders []model.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	return resp
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type orderPageResponse struct {
	Orders     []orderResponse    `json:"orders"`
	Pagination paginationResponse `json:"pagination"`
}

func newOrderPageResponse(page *query.OrderPage) orderPageResponse {
	orders := make([]orderResponse, 0, len(page.Orders))
	for i := range page.Orders {
		order := newOrderResponse(&page.Orders[i].Order)
		order.CustomerName = page.Orders[i].CustomerName
		order.CustomerEmail = page.Orders[i].CustomerEmail
		orders = append(orders, order)
	}
	return orderPageResponse{
		Orders: orders,
		Pagination: paginationResponse{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}
