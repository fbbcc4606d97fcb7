package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

type settingRow struct {
	Key         string `db:"setting_key"`
	Value       string `db:"value"`
	Description string `db:"description"`
}

type settingRepository struct {
	ctx context.Context
	db  sqlx.ExtContext
}

func (r *settingRepository) List() ([]model.Setting, error) {
	var rows []settingRow
	err := sqlx.SelectContext(r.ctx, r.db, &rows, `SELECT setting_key, value, description FROM settings ORDER BY setting_key`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list settings")
	}

	settings := make([]model.Setting, 0, len(rows))
	for _, row := range rows {
		settings = append(settings, model.Setting(row))
	}
	return settings, nil
}

func (r *settingRepository) Store(key, value string) error {
	_, err := r.db.ExecContext(r.ctx, `
		INSERT INTO settings (setting_key, value, description) VALUES (?, ?, '')
		ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		key, value,
	)
	return errors.Wrap(err, "failed to store setting")
}

// SeedSettings adds the known keys without touching values that are already set.
func SeedSettings(ctx context.Context, db sqlx.ExtContext) error {
	for _, setting := range model.DefaultSettings() {
		_, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO settings (setting_key, value, description) VALUES (?, ?, ?)`,
			setting.Key, setting.Value, setting.Description,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to seed setting %s", setting.Key)
		}
	}
	return nil
}
