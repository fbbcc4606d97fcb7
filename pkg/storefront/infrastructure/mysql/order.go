package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/storefront/domain/model"
)

const orderColumns = `id, user_id, total_amount, status, shipping_address, notes, payment_last_five, created_at, updated_at`

type orderRow struct {
	ID              uuid.UUID       `db:"id"`
	UserID          uuid.UUID       `db:"user_id"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Status          string          `db:"status"`
	ShippingAddress string          `db:"shipping_address"`
	Notes           string          `db:"notes"`
	PaymentLastFive sql.NullString  `db:"payment_last_five"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func newOrderRow(o *model.Order) orderRow {
	row := orderRow{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status.String(),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.PaymentLastFive != nil {
		row.PaymentLastFive = sql.NullString{String: *o.PaymentLastFive, Valid: true}
	}
	return row
}

func (r orderRow) toModel() (model.Order, error) {
	status, err := model.ParseOrderStatus(r.Status)
	if err != nil {
		return model.Order{}, err
	}
	order := model.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		TotalAmount:     r.TotalAmount,
		Status:          status,
		ShippingAddress: r.ShippingAddress,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.PaymentLastFive.Valid {
		code := r.PaymentLastFive.String
		order.PaymentLastFive = &code
	}
	return order, nil
}

type orderItemRow struct {
	ID           uuid.UUID       `db:"id"`
	OrderID      uuid.UUID       `db:"order_id"`
	LineNo       int             `db:"line_no"`
	ProductID    uuid.UUID       `db:"product_id"`
	ProductName  string          `db:"product_name"`
	ProductPrice decimal.Decimal `db:"product_price"`
	Quantity     int             `db:"quantity"`
	Subtotal     decimal.Decimal `db:"subtotal"`
}

func (r orderItemRow) toModel() model.OrderItem {
	return model.OrderItem{
		ID:           r.ID,
		ProductID:    r.ProductID,
		ProductName:  r.ProductName,
		ProductPrice: r.ProductPrice,
		Quantity:     r.Quantity,
		Subtotal:     r.Subtotal,
	}
}

type orderRepository struct {
	ctx context.Context
	db  sqlx.ExtContext
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *orderRepository) Create(order *model.Order) error {
	_, err := sqlx.NamedExecContext(r.ctx, r.db, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :user_id, :total_amount, :status, :shipping_address, :notes, :payment_last_five, :created_at, :updated_at)`,
		newOrderRow(order),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	if len(order.Items) == 0 {
		return nil
	}
	items := make([]orderItemRow, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, orderItemRow{
			ID:           item.ID,
			OrderID:      order.ID,
			LineNo:       i + 1,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal,
		})
	}
	_, err = sqlx.NamedExecContext(r.ctx, r.db, `
		INSERT INTO order_items (id, order_id, line_no, product_id, product_name, product_price, quantity, subtotal)
		VALUES (:id, :order_id, :line_no, :product_id, :product_name, :product_price, :quantity, :subtotal)`,
		items,
	)
	return errors.Wrap(err, "failed to insert order items")
}

func (r *orderRepository) Update(order *model.Order) error {
	row := newOrderRow(order)
	result, err := r.db.ExecContext(r.ctx,
		`UPDATE orders SET status = ?, payment_last_five = ?, updated_at = ? WHERE id = ?`,
		row.Status, row.PaymentLastFive, row.UpdatedAt, row.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update order")
	}
	return expectRow(result, model.ErrOrderNotFound)
}

func (r *orderRepository) Find(id uuid.UUID) (*model.Order, error) {
	return r.find(`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

func (r *orderRepository) FindForUpdate(id uuid.UUID) (*model.Order, error) {
	return r.find(`SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id)
}

func (r *orderRepository) find(query string, id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := sqlx.GetContext(r.ctx, r.db, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}

	order, err := row.toModel()
	if err != nil {
		return nil, err
	}
	items, err := loadOrderItems(r.ctx, r.db, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *orderRepository) ListByUser(userID uuid.UUID) ([]model.Order, error) {
	var rows []orderRow
	err := sqlx.SelectContext(r.ctx, r.db, &rows,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]model.Order, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		order, err := row.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	items, err := loadOrderItems(r.ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func loadOrderItems(ctx context.Context, db sqlx.ExtContext, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	result := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, line_no, product_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, line_no`, orderIDs)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var rows []orderItemRow
	if err := sqlx.SelectContext(ctx, db, &rows, db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to load order items")
	}
	for _, row := range rows {
		result[row.OrderID] = append(result[row.OrderID], row.toModel())
	}
	return result, nil
}
