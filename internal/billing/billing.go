// Package billing переводит условия оплаты подписок в сопоставимые месячные суммы,
// проецирует даты продления, делит стоимость общих подписок и строит агрегаты
// для дашборда, календаря и симулятора.
//
// Все функции пакета чистые: не выполняют ввода-вывода, не хранят состояние и
// безопасны для одновременного вызова. Денежные суммы не округляются — округление
// до двух знаков выполняется только при отображении.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ErrInvalidInput — запись подписки нарушает предусловия расчёта.
var ErrInvalidInput = errors.New("invalid subscription")

var monthsInYear = decimal.NewFromInt(12)

// Rejection — запись, отклонённая на границе перед агрегированием.
type Rejection struct {
	Subscription models.Subscription
	Err          error
}

// Validate проверяет, что подписку можно использовать в расчётах:
// стоимость неотрицательна, период известен, shared_with не меньше 1.
func Validate(sub models.Subscription) error {
	switch {
	case sub.Cost.IsNegative():
		return fmt.Errorf("%w: %s: negative cost %s", ErrInvalidInput, sub.ID, sub.Cost)
	case !sub.BillingCycle.Valid():
		return fmt.Errorf("%w: %s: unknown billing cycle %q", ErrInvalidInput, sub.ID, sub.BillingCycle)
	case sub.SharedWith < 1:
		return fmt.Errorf("%w: %s: shared_with must be at least 1, got %d", ErrInvalidInput, sub.ID, sub.SharedWith)
	}
	return nil
}

// Partition разделяет подписки на пригодные для агрегирования и отклонённые.
// Порядок пригодных записей сохраняется.
func Partition(subs []models.Subscription) ([]models.Subscription, []Rejection) {
	valid := make([]models.Subscription, 0, len(subs))
	var rejected []Rejection
	for _, sub := range subs {
		if err := Validate(sub); err != nil {
			rejected = append(rejected, Rejection{Subscription: sub, Err: err})
			continue
		}
		valid = append(valid, sub)
	}
	return valid, rejected
}

// NormalizedMonthlyCost возвращает месячный эквивалент стоимости без учёта деления:
// cost для ежемесячных подписок и cost/12 для ежегодных.
func NormalizedMonthlyCost(sub models.Subscription) (decimal.Decimal, error) {
	if err := Validate(sub); err != nil {
		return decimal.Zero, err
	}
	if sub.BillingCycle == models.BillingYearly {
		return sub.Cost.Div(monthsInYear), nil
	}
	return sub.Cost, nil
}

// PayerShareCost возвращает долю одного плательщика в месячной стоимости.
// Для необщих подписок и shared_with = 1 совпадает с NormalizedMonthlyCost.
func PayerShareCost(sub models.Subscription) (decimal.Decimal, error) {
	cost, err := NormalizedMonthlyCost(sub)
	if err != nil {
		return decimal.Zero, err
	}
	return splitCost(cost, splitOf(sub)), nil
}

// splitOf возвращает число плательщиков, на которых делится подписка.
func splitOf(sub models.Subscription) int {
	if sub.IsShared && sub.SharedWith > 1 {
		return sub.SharedWith
	}
	return 1
}

func splitCost(cost decimal.Decimal, split int) decimal.Decimal {
	if split > 1 {
		return cost.Div(decimal.NewFromInt(int64(split)))
	}
	return cost
}

// payerShare — PayerShareCost для уже проверенных записей; невалидные дают ok = false.
func payerShare(sub models.Subscription) (decimal.Decimal, bool) {
	cost, err := PayerShareCost(sub)
	return cost, err == nil
}
