package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const reportTimeLayout = "2006-01-02 15:04:05"

type ReportItem struct {
	ProductName string
	Quantity    int
}

type OrderReportRow struct {
	OrderID         uuid.UUID
	CreatedAt       time.Time
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Status          string
	TotalAmount     decimal.Decimal
	PaymentLastFive string
	ShippingAddress string
	Notes           string
	Items           []ReportItem
}

var orderReportHeader = []string{
	"order_id",
	"created_at",
	"customer_name",
	"customer_email",
	"customer_phone",
	"status",
	"total_amount",
	"payment_last_five",
	"shipping_address",
	"notes",
	"items",
}

func (r OrderReportRow) Record() []string {
	return []string{
		r.OrderID.String(),
		r.CreatedAt.UTC().Format(reportTimeLayout),
		r.CustomerName,
		r.CustomerEmail,
		r.CustomerPhone,
		r.Status,
		r.TotalAmount.StringFixed(2),
		r.PaymentLastFive,
		r.ShippingAddress,
		r.Notes,
		FormatItems(r.Items),
	}
}

// FormatItems renders items as "name x qty" joined by "; ".
func FormatItems(items []ReportItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x %d", item.ProductName, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

type CustomerReportRow struct {
	CustomerID   uuid.UUID
	Name         string
	Email        string
	Phone        string
	BirthDate    time.Time
	RegisteredAt time.Time
	OrderCount   int
	// TotalSpent leaves out cancelled orders.
	TotalSpent decimal.Decimal
}

var customerReportHeader = []string{
	"customer_id",
	"name",
	"email",
	"phone",
	"birth_date",
	"registered_at",
	"order_count",
	"total_spent",
}

func (r CustomerReportRow) Record() []string {
	birthDate := ""
	if !r.BirthDate.IsZero() {
		birthDate = r.BirthDate.Format("2006-01-02")
	}
	return []string{
		r.CustomerID.String(),
		r.Name,
		r.Email,
		r.Phone,
		birthDate,
		r.RegisteredAt.UTC().Format(reportTimeLayout),
		strconv.Itoa(r.OrderCount),
		r.TotalSpent.StringFixed(2),
	}
}

type ReportQueryService interface {
	// OrderRows lists every order, newest first.
	OrderRows(ctx context.Context) ([]OrderReportRow, error)
	// CustomerRows lists every customer account, oldest first.
	CustomerRows(ctx context.Context) ([]CustomerReportRow, error)
}
