package billing

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// AnnualPlanDiscount — принятая доля экономии при переходе на годовую оплату
// (обычно два месяца бесплатно). Фиксированная константа, а не расчёт по тарифам.
var AnnualPlanDiscount = decimal.RequireFromString("0.1667")

// AnnualPlanSavings оценивает годовую экономию от перехода ежемесячной подписки
// на годовую оплату, округляя до целого. Для ежегодных и невалидных подписок ok = false.
func AnnualPlanSavings(sub models.Subscription) (decimal.Decimal, bool) {
	if Validate(sub) != nil || sub.BillingCycle != models.BillingMonthly {
		return decimal.Zero, false
	}
	return sub.Cost.Mul(monthsInYear).Mul(AnnualPlanDiscount).Round(0), true
}
