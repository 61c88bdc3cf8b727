package billing

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// MaxSplit — наибольшее число плательщиков, которое можно задать в симуляции.
const MaxSplit = 10

// Session — сеанс симуляции: гипотетические изменения поверх реальных подписок.
// Значение сериализуемо и не хранится на сервере.
type Session struct {
	Removed       []string                   `json:"removed,omitempty"`
	CostOverride  map[string]decimal.Decimal `json:"cost_override,omitempty"`
	SplitOverride map[string]int             `json:"split_override,omitempty"`
}

// SimulationLine — результат симуляции для одной подписки.
type SimulationLine struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Removed        bool            `json:"removed"`
	CurrentShare   decimal.Decimal `json:"current_share"`
	SimulatedShare decimal.Decimal `json:"simulated_share"`
	Split          int             `json:"split"`
}

// SimulationResult — сравнение текущих и смоделированных месячных трат.
type SimulationResult struct {
	CurrentMonthly   decimal.Decimal  `json:"current_monthly"`
	SimulatedMonthly decimal.Decimal  `json:"simulated_monthly"`
	Savings          decimal.Decimal  `json:"savings"`
	SavingsPercent   decimal.Decimal  `json:"savings_percent"`
	Lines            []SimulationLine `json:"lines"`
}

// Validate проверяет переопределения: стоимость не может быть отрицательной,
// число плательщиков — меньше 1.
func (s Session) Validate() error {
	for id, cost := range s.CostOverride {
		if cost.IsNegative() {
			return fmt.Errorf("%w: cost override for %s is negative", ErrInvalidInput, id)
		}
	}
	for id, split := range s.SplitOverride {
		if split < 1 {
			return fmt.Errorf("%w: split override for %s must be at least 1, got %d", ErrInvalidInput, id, split)
		}
	}
	return nil
}

// IsRemoved сообщает, исключена ли подписка в сеансе.
func (s Session) IsRemoved(id string) bool {
	return slices.Contains(s.Removed, id)
}

// Reset возвращает пустой сеанс.
func (Session) Reset() Session {
	return Session{}
}

// ToggleRemoval возвращает копию сеанса, в которой исключение подписки id инвертировано.
func (s Session) ToggleRemoval(id string) Session {
	out := s.clone()
	if i := slices.Index(out.Removed, id); i >= 0 {
		out.Removed = slices.Delete(out.Removed, i, i+1)
		return out
	}
	out.Removed = append(out.Removed, id)
	return out
}

// AdjustSplit возвращает копию сеанса, в которой число плательщиков подписки
// изменено на delta и ограничено диапазоном 1..MaxSplit.
func (s Session) AdjustSplit(sub models.Subscription, delta int) Session {
	out := s.clone()
	current, ok := out.SplitOverride[sub.ID]
	if !ok {
		current = splitOf(sub)
	}
	if out.SplitOverride == nil {
		out.SplitOverride = make(map[string]int)
	}
	out.SplitOverride[sub.ID] = min(max(current+delta, 1), MaxSplit)
	return out
}

func (s Session) clone() Session {
	out := Session{Removed: slices.Clone(s.Removed)}
	if s.CostOverride != nil {
		out.CostOverride = make(map[string]decimal.Decimal, len(s.CostOverride))
		for k, v := range s.CostOverride {
			out.CostOverride[k] = v
		}
	}
	if s.SplitOverride != nil {
		out.SplitOverride = make(map[string]int, len(s.SplitOverride))
		for k, v := range s.SplitOverride {
			out.SplitOverride[k] = v
		}
	}
	return out
}

// Simulate пересчитывает месячные траты с учётом переопределений сеанса.
//
// CurrentMonthly — сумма PayerShareCost без переопределений. Для каждой
// неисключённой подписки SimulatedMonthly берёт переопределённую стоимость
// (иначе NormalizedMonthlyCost) и делит её на переопределённое число плательщиков
// (иначе shared_with, если подписка общая, и 1, если нет). Переопределённая
// стоимость трактуется как месячная.
// Невалидные подписки пропускаются.
func Simulate(subs []models.Subscription, session Session) (SimulationResult, error) {
	if err := session.Validate(); err != nil {
		return SimulationResult{}, err
	}

	res := SimulationResult{
		CurrentMonthly:   decimal.Zero,
		SimulatedMonthly: decimal.Zero,
		Savings:          decimal.Zero,
		SavingsPercent:   decimal.Zero,
		Lines:            make([]SimulationLine, 0, len(subs)),
	}

	for _, sub := range subs {
		base, err := NormalizedMonthlyCost(sub)
		if err != nil {
			continue
		}
		current := splitCost(base, splitOf(sub))
		res.CurrentMonthly = res.CurrentMonthly.Add(current)

		line := SimulationLine{
			ID:             sub.ID,
			Name:           sub.Name,
			CurrentShare:   current,
			SimulatedShare: decimal.Zero,
			Split:          splitOf(sub),
		}
		if split, ok := session.SplitOverride[sub.ID]; ok {
			line.Split = split
		}

		if session.IsRemoved(sub.ID) {
			line.Removed = true
			res.Lines = append(res.Lines, line)
			continue
		}

		cost := base
		if override, ok := session.CostOverride[sub.ID]; ok {
			cost = override
		}
		line.SimulatedShare = splitCost(cost, line.Split)
		res.SimulatedMonthly = res.SimulatedMonthly.Add(line.SimulatedShare)
		res.Lines = append(res.Lines, line)
	}

	res.Savings = res.CurrentMonthly.Sub(res.SimulatedMonthly)
	if res.CurrentMonthly.IsPositive() {
		res.SavingsPercent = res.Savings.Div(res.CurrentMonthly).Mul(hundred)
	}
	return res, nil
}
