package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/domain/model"
)

func NewOrderQueryService(db *sqlx.DB) query.OrderQueryService {
	return &orderQueryService{db: db}
}

type orderQueryService struct {
	db *sqlx.DB
}

type orderViewRow struct {
	orderRow
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
}

func (s *orderQueryService) ListOrders(ctx context.Context, filter query.OrderFilter) (*query.OrderPage, error) {
	filter = filter.Normalize()

	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		where = append(where, "o.status = ?")
		args = append(args, filter.Status.String())
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders o `+clause, args...); err != nil {
		return nil, errors.Wrap(err, "failed to count orders")
	}

	var rows []orderViewRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.shipping_address, o.notes, o.payment_last_five,
			o.created_at, o.updated_at, u.name AS customer_name, u.email AS customer_email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		`+clause+`
		ORDER BY o.created_at DESC
		LIMIT ? OFFSET ?`,
		append(args, filter.Limit, filter.Offset())...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	views := make([]query.OrderView, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		order, err := row.toModel()
		if err != nil {
			return nil, err
		}
		views = append(views, query.OrderView{
			Order:         order,
			CustomerName:  row.CustomerName,
			CustomerEmail: row.CustomerEmail,
		})
		ids = append(ids, order.ID)
	}

	items, err := loadOrderItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Items = items[views[i].ID]
	}
	return query.NewOrderPage(filter, views, total), nil
}

func NewReportQueryService(db *sqlx.DB) query.ReportQueryService {
	return &reportQueryService{db: db}
}

type reportQueryService struct {
	db *sqlx.DB
}

type orderReportRow struct {
	ID              uuid.UUID       `db:"id"`
	CreatedAt       time.Time       `db:"created_at"`
	CustomerName    string          `db:"customer_name"`
	CustomerEmail   string          `db:"customer_email"`
	CustomerPhone   string          `db:"customer_phone"`
	Status          string          `db:"status"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	PaymentLastFive sql.NullString  `db:"payment_last_five"`
	ShippingAddress string          `db:"shipping_address"`
	Notes           string          `db:"notes"`
}

type reportItemRow struct {
	OrderID     uuid.UUID `db:"order_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
}

func (s *reportQueryService) OrderRows(ctx context.Context) ([]query.OrderReportRow, error) {
	var rows []orderReportRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.created_at, u.name AS customer_name, u.email AS customer_email, u.phone AS customer_phone,
			o.status, o.total_amount, o.payment_last_five, o.shipping_address, o.notes
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read order report")
	}

	var items []reportItemRow
	err = s.db.SelectContext(ctx, &items, `SELECT order_id, product_name, quantity FROM order_items ORDER BY order_id, line_no`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read order report items")
	}
	byOrder := make(map[uuid.UUID][]query.ReportItem, len(rows))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], query.ReportItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}

	result := make([]query.OrderReportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, query.OrderReportRow{
			OrderID:         row.ID,
			CreatedAt:       row.CreatedAt,
			CustomerName:    row.CustomerName,
			CustomerEmail:   row.CustomerEmail,
			CustomerPhone:   row.CustomerPhone,
			Status:          row.Status,
			TotalAmount:     row.TotalAmount,
			PaymentLastFive: row.PaymentLastFive.String,
			ShippingAddress: row.ShippingAddress,
			Notes:           row.Notes,
			Items:           byOrder[row.ID],
		})
	}
	return result, nil
}

type customerReportRow struct {
	ID           uuid.UUID       `db:"id"`
	Name         string          `db:"name"`
	Email        string          `db:"email"`
	Phone        string          `db:"phone"`
	BirthDate    sql.NullTime    `db:"birth_date"`
	RegisteredAt time.Time       `db:"created_at"`
	OrderCount   int             `db:"order_count"`
	TotalSpent   decimal.Decimal `db:"total_spent"`
}

func (s *reportQueryService) CustomerRows(ctx context.Context) ([]query.CustomerReportRow, error) {
	var rows []customerReportRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.name, u.email, u.phone, u.birth_date, u.created_at,
			COUNT(o.id) AS order_count,
			COALESCE(SUM(CASE WHEN o.status <> ? THEN o.total_amount END), 0) AS total_spent
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		WHERE u.role = ?
		GROUP BY u.id, u.name, u.email, u.phone, u.birth_date, u.created_at
		ORDER BY u.created_at`,
		model.Cancelled.String(), model.Customer.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read customer report")
	}

	result := make([]query.CustomerReportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, query.CustomerReportRow{
			CustomerID:   row.ID,
			Name:         row.Name,
			Email:        row.Email,
			Phone:        row.Phone,
			BirthDate:    row.BirthDate.Time,
			RegisteredAt: row.RegisteredAt,
			OrderCount:   row.OrderCount,
			TotalSpent:   row.TotalSpent,
		})
	}
	return result, nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return errors.WithStack(db.PingContext(ctx))
}
