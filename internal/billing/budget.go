package billing

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Состояния бюджета.
const (
	BudgetUnset     = "unset"
	BudgetOK        = "ok"
	BudgetNearLimit = "near_limit"
	BudgetOver      = "over_budget"
)

// maxBudgetPercentage ограничивает заполнение шкалы бюджета.
var maxBudgetPercentage = decimal.NewFromInt(150)

var hundred = decimal.NewFromInt(100)

// BudgetStatus — сравнение месячных трат с бюджетом.
type BudgetStatus struct {
	State          string           `json:"state"`
	MonthlyBudget  *decimal.Decimal `json:"monthly_budget"`
	Spending       decimal.Decimal  `json:"spending"`
	Percentage     decimal.Decimal  `json:"percentage"`
	Remaining      decimal.Decimal  `json:"remaining"`
	AlertThreshold int              `json:"alert_threshold"`
}

// EvaluateBudget сравнивает траты с бюджетом. Процент ограничен 150;
// near_limit выставляется, когда процент достиг порога, но бюджет ещё не превышен.
func EvaluateBudget(settings models.BudgetSettings, spending decimal.Decimal) BudgetStatus {
	threshold := settings.AlertThreshold
	if threshold <= 0 {
		threshold = models.DefaultAlertThreshold
	}
	status := BudgetStatus{
		State:          BudgetUnset,
		MonthlyBudget:  settings.MonthlyBudget,
		Spending:       spending,
		Percentage:     decimal.Zero,
		Remaining:      decimal.Zero,
		AlertThreshold: threshold,
	}
	if settings.MonthlyBudget == nil || !settings.MonthlyBudget.IsPositive() {
		return status
	}

	budget := *settings.MonthlyBudget
	status.Percentage = decimal.Min(spending.Div(budget).Mul(hundred), maxBudgetPercentage)
	status.Remaining = budget.Sub(spending)
	switch {
	case spending.GreaterThan(budget):
		status.State = BudgetOver
	case status.Percentage.GreaterThanOrEqual(decimal.NewFromInt(int64(threshold))):
		status.State = BudgetNearLimit
	default:
		status.State = BudgetOK
	}
	return status
}
