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

const productColumns = `id, name, description, price, stock, image_url, status, created_at, updated_at`

type productRow struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	ImageURL    string          `db:"image_url"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func newProductRow(p *model.Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Status:      p.Status.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r productRow) toModel() (model.Product, error) {
	status, err := model.ParseProductStatus(r.Status)
	if err != nil {
		return model.Product{}, err
	}
	return model.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Status:      status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

type productRepository struct {
	ctx context.Context
	db  sqlx.ExtContext
}

func (r *productRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *productRepository) Create(p *model.Product) error {
	_, err := sqlx.NamedExecContext(r.ctx, r.db, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :name, :description, :price, :stock, :image_url, :status, :created_at, :updated_at)`,
		newProductRow(p),
	)
	return errors.Wrap(err, "failed to insert product")
}

func (r *productRepository) Update(p *model.Product) error {
	result, err := sqlx.NamedExecContext(r.ctx, r.db, `
		UPDATE products
		SET name = :name, description = :description, price = :price, stock = :stock,
			image_url = :image_url, status = :status, updated_at = :updated_at
		WHERE id = :id`,
		newProductRow(p),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update product")
	}
	return expectRow(result, model.ErrProductNotFound)
}

func (r *productRepository) Find(id uuid.UUID) (*model.Product, error) {
	var row productRow
	err := sqlx.GetContext(r.ctx, r.db, &row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}

	product, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListActive() ([]model.Product, error) {
	return r.list(`SELECT `+productColumns+` FROM products WHERE status = ? ORDER BY created_at DESC`, model.Active.String())
}

func (r *productRepository) ListAll() ([]model.Product, error) {
	return r.list(`SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`)
}

func (r *productRepository) list(query string, args ...interface{}) ([]model.Product, error) {
	var rows []productRow
	if err := sqlx.SelectContext(r.ctx, r.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		product, err := row.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// DecreaseStock is a single conditional UPDATE so the check and the write
// cannot be split by a concurrent checkout.
func (r *productRepository) DecreaseStock(id uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(r.ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND status = ? AND stock >= ?`,
		quantity, time.Now().UTC(), id, model.Active.String(), quantity,
	)
	if err != nil {
		return errors.Wrap(err, "failed to decrease stock")
	}
	return expectRow(result, model.ErrInsufficientStock)
}

func (r *productRepository) IncreaseStock(id uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(r.ctx,
		`UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?`,
		quantity, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "failed to increase stock")
	}
	return expectRow(result, model.ErrProductNotFound)
}

func expectRow(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
