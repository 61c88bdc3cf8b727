package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// settingsRowID — настройки хранятся одной строкой.
const settingsRowID = 1

// ReadSettings возвращает настройки бюджета или значения по умолчанию, если они ещё не сохранялись.
func (s *Storage) ReadSettings(ctx context.Context) (models.BudgetSettings, error) {
	const op = "storage.ReadSettings"

	var (
		budget   decimal.NullDecimal
		settings models.BudgetSettings
		updated  sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT monthly_budget, alert_threshold, updated_at FROM user_settings WHERE id = $1`,
		settingsRowID).Scan(&budget, &settings.AlertThreshold, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.BudgetSettings{}, fmt.Errorf("%s: %w", op, err)
	}
	if budget.Valid {
		settings.MonthlyBudget = &budget.Decimal
	}
	if updated.Valid {
		settings.UpdatedAt = &updated.Time
	}
	return settings, nil
}

// UpsertSettings сохраняет настройки бюджета, создавая запись при первом вызове.
func (s *Storage) UpsertSettings(ctx context.Context, settings models.BudgetSettings) (models.BudgetSettings, error) {
	const op = "storage.UpsertSettings"

	budget := decimal.NullDecimal{}
	if settings.MonthlyBudget != nil {
		budget = decimal.NewNullDecimal(*settings.MonthlyBudget)
	}

	query := `INSERT INTO user_settings (id, monthly_budget, alert_threshold, updated_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (id) DO UPDATE
			  SET monthly_budget = EXCLUDED.monthly_budget,
			      alert_threshold = EXCLUDED.alert_threshold,
			      updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, settingsRowID, budget, settings.AlertThreshold); err != nil {
		return models.BudgetSettings{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.ReadSettings(ctx)
}
