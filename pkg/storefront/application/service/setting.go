package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

type SettingService interface {
	// ListSettings returns every known key, empty when it was never stored.
	ListSettings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error)
}

func NewSettingService(uow UnitOfWork) SettingService {
	return &settingService{uow: uow}
}

type settingService struct {
	uow UnitOfWork
}

func (s *settingService) ListSettings(ctx context.Context) (map[string]string, error) {
	var result map[string]string
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		result, err = listSettings(provider.SettingRepository())
		return err
	})
	return result, err
}

func (s *settingService) UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	for key := range values {
		if !model.IsKnownSetting(key) {
			return nil, errors.Wrap(model.ErrUnknownSetting, key)
		}
	}

	var result map[string]string
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		repo := provider.SettingRepository()
		for key, value := range values {
			if err := repo.Store(key, strings.TrimSpace(value)); err != nil {
				return err
			}
		}
		var err error
		result, err = listSettings(repo)
		return err
	})
	return result, err
}

func listSettings(repo model.SettingRepository) (map[string]string, error) {
	settings, err := repo.List()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(settings))
	for _, setting := range model.DefaultSettings() {
		result[setting.Key] = ""
	}
	for _, setting := range settings {
		if model.IsKnownSetting(setting.Key) {
			result[setting.Key] = setting.Value
		}
	}
	return result, nil
}
