package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAlertThreshold — порог предупреждения о бюджете в процентах по умолчанию.
const DefaultAlertThreshold = 80

// BudgetSettings — единственная запись настроек бюджета пользователя.
// MonthlyBudget == nil означает, что бюджет не задан.
type BudgetSettings struct {
	MonthlyBudget  *decimal.Decimal `json:"monthly_budget"`
	AlertThreshold int              `json:"alert_threshold"`
	UpdatedAt      *time.Time       `json:"updated_at,omitempty"`
}

// DefaultSettings возвращает настройки, действующие до первого сохранения.
func DefaultSettings() BudgetSettings {
	return BudgetSettings{AlertThreshold: DefaultAlertThreshold}
}

// DummySettings используется для приёма обновления настроек.
// Отсутствующий monthly_budget сбрасывает бюджет, отсутствующий alert_threshold
// возвращает порог по умолчанию.
type DummySettings struct {
	MonthlyBudget  *decimal.Decimal `json:"monthly_budget" swaggertype:"number"`
	AlertThreshold *int             `json:"alert_threshold,omitempty" validate:"omitempty,min=1,max=100"`
}
