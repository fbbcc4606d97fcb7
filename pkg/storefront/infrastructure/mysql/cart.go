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

type cartItemRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
}

func (r cartItemRow) toModel() *model.CartItem {
	return &model.CartItem{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
	}
}

type cartLineRow struct {
	ItemID    uuid.UUID       `db:"item_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Stock     int             `db:"stock"`
	ImageURL  string          `db:"image_url"`
	Quantity  int             `db:"quantity"`
}

type cartRepository struct {
	ctx context.Context
	db  sqlx.ExtContext
}

func (r *cartRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *cartRepository) Find(userID, itemID uuid.UUID) (*model.CartItem, error) {
	return r.get(`SELECT id, user_id, product_id, quantity, created_at FROM cart_items WHERE id = ? AND user_id = ?`, itemID, userID)
}

func (r *cartRepository) FindByProduct(userID, productID uuid.UUID) (*model.CartItem, error) {
	return r.get(`SELECT id, user_id, product_id, quantity, created_at FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
}

func (r *cartRepository) get(query string, args ...interface{}) (*model.CartItem, error) {
	var row cartItemRow
	err := sqlx.GetContext(r.ctx, r.db, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCartItemNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find cart item")
	}
	return row.toModel(), nil
}

// Store relies on the (user_id, product_id) unique key: a line for the same product is overwritten.
func (r *cartRepository) Store(item *model.CartItem) error {
	_, err := sqlx.NamedExecContext(r.ctx, r.db, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
		VALUES (:id, :user_id, :product_id, :quantity, :created_at)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`,
		cartItemRow{
			ID:        item.ID,
			UserID:    item.UserID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CreatedAt: item.CreatedAt,
		},
	)
	return errors.Wrap(err, "failed to store cart item")
}

func (r *cartRepository) Delete(userID, itemID uuid.UUID) error {
	_, err := r.db.ExecContext(r.ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, itemID, userID)
	return errors.Wrap(err, "failed to delete cart item")
}

func (r *cartRepository) Clear(userID uuid.UUID) error {
	_, err := r.db.ExecContext(r.ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return errors.Wrap(err, "failed to clear cart")
}

func (r *cartRepository) Lines(userID uuid.UUID) ([]model.CartLine, error) {
	var rows []cartLineRow
	err := sqlx.SelectContext(r.ctx, r.db, &rows, `
		SELECT c.id AS item_id, p.id AS product_id, p.name, p.price, p.stock, p.image_url, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ? AND p.status = ?
		ORDER BY c.created_at, c.id`,
		userID, model.Active.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cart")
	}

	lines := make([]model.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, model.CartLine(row))
	}
	return lines, nil
}
