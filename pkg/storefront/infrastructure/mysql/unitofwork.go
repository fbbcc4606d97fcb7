package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
)

func NewUnitOfWork(db *sqlx.DB) service.UnitOfWork {
	return &unitOfWork{db: db}
}

type unitOfWork struct {
	db *sqlx.DB
}

func (u *unitOfWork) Execute(ctx context.Context, action func(provider service.RepositoryProvider) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := action(&repositoryProvider{ctx: ctx, tx: tx}); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, context.Canceled) {
			log.WithError(rollbackErr).Error("failed to rollback transaction")
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

type repositoryProvider struct {
	ctx context.Context
	tx  *sqlx.Tx
}

func (p *repositoryProvider) ProductRepository() model.ProductRepository {
	return &productRepository{ctx: p.ctx, db: p.tx}
}

func (p *repositoryProvider) CartRepository() model.CartRepository {
	return &cartRepository{ctx: p.ctx, db: p.tx}
}

func (p *repositoryProvider) OrderRepository() model.OrderRepository {
	return &orderRepository{ctx: p.ctx, db: p.tx}
}

func (p *repositoryProvider) UserRepository() model.UserRepository {
	return &userRepository{ctx: p.ctx, db: p.tx}
}

func (p *repositoryProvider) SettingRepository() model.SettingRepository {
	return &settingRepository{ctx: p.ctx, db: p.tx}
}
