// Package services содержит бизнес-логику настроек бюджета.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SettingsRepository определяет доступ к единственной записи настроек.
type SettingsRepository interface {
	ReadSettings(ctx context.Context) (models.BudgetSettings, error)
	UpsertSettings(ctx context.Context, settings models.BudgetSettings) (models.BudgetSettings, error)
}

// SettingsService читает и обновляет настройки бюджета.
type SettingsService struct {
	repo SettingsRepository
	log  *slog.Logger
}

// NewSettingsService создает новый экземпляр SettingsService.
func NewSettingsService(repo SettingsRepository, log *slog.Logger) *SettingsService {
	return &SettingsService{
		repo: repo,
		log:  log,
	}
}

// Get возвращает сохранённые настройки или значения по умолчанию.
func (s *SettingsService) Get(ctx context.Context) (models.BudgetSettings, error) {
	const op = "services.settings.Get"

	settings, err := s.repo.ReadSettings(ctx)
	if err != nil {
		return models.BudgetSettings{}, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

// Update перезаписывает настройки: отсутствующий бюджет сбрасывается,
// отсутствующий порог возвращается к 80.
func (s *SettingsService) Update(ctx context.Context, req models.DummySettings) (models.BudgetSettings, error) {
	const op = "services.settings.Update"

	settings := models.DefaultSettings()
	if req.MonthlyBudget != nil {
		if req.MonthlyBudget.IsNegative() {
			return models.BudgetSettings{}, fmt.Errorf("%s: %w: negative monthly budget", op, billing.ErrInvalidInput)
		}
		budget := *req.MonthlyBudget
		settings.MonthlyBudget = &budget
	}
	if req.AlertThreshold != nil {
		if *req.AlertThreshold < 1 || *req.AlertThreshold > 100 {
			return models.BudgetSettings{}, fmt.Errorf("%s: %w: alert threshold out of range", op, billing.ErrInvalidInput)
		}
		settings.AlertThreshold = *req.AlertThreshold
	}

	saved, err := s.repo.UpsertSettings(ctx, settings)
	if err != nil {
		return models.BudgetSettings{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("budget settings updated", slog.Int("alert_threshold", saved.AlertThreshold))
	return saved, nil
}
