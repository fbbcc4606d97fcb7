package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

const userColumns = `id, name, email, phone, birth_date, password_hash, role, created_at`

type userRow struct {
	ID           uuid.UUID    `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Phone        string       `db:"phone"`
	BirthDate    sql.NullTime `db:"birth_date"`
	PasswordHash string       `db:"password_hash"`
	Role         string       `db:"role"`
	CreatedAt    time.Time    `db:"created_at"`
}

type userRepository struct {
	ctx context.Context
	db  sqlx.ExtContext
}

func (r *userRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *userRepository) Create(user *model.User) error {
	row := userRow{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		BirthDate:    sql.NullTime{Time: user.BirthDate, Valid: !user.BirthDate.IsZero()},
		PasswordHash: user.HashedPassword,
		Role:         user.Role.String(),
		CreatedAt:    user.CreatedAt,
	}
	_, err := sqlx.NamedExecContext(r.ctx, r.db, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :email, :phone, :birth_date, :password_hash, :role, :created_at)`,
		row,
	)
	if isDuplicateEntry(err) {
		return model.ErrEmailTaken
	}
	return errors.Wrap(err, "failed to insert user")
}

func (r *userRepository) Find(id uuid.UUID) (*model.User, error) {
	return r.get(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	return r.get(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) get(query string, arg interface{}) (*model.User, error) {
	var row userRow
	err := sqlx.GetContext(r.ctx, r.db, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	role, err := model.ParseRole(row.Role)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		Phone:          row.Phone,
		HashedPassword: row.PasswordHash,
		Role:           role,
		CreatedAt:      row.CreatedAt,
	}
	if row.BirthDate.Valid {
		user.BirthDate = row.BirthDate.Time
	}
	return user, nil
}
