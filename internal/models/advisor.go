package models

import "github.com/shopspring/decimal"

// AdvisorSubscription — подписка в запросах к советнику. Клиент присылает
// записи как есть, поэтому поля не валидируются, а даты не нужны.
type AdvisorSubscription struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Cost         decimal.Decimal `json:"cost" swaggertype:"number"`
	BillingCycle string          `json:"billing_cycle"`
	Category     string          `json:"category"`
	IsShared     bool            `json:"is_shared"`
	SharedWith   int             `json:"shared_with"`
}

// Subscription переводит запись запроса в доменную модель.
func (a AdvisorSubscription) Subscription() Subscription {
	return Subscription{
		ID:           a.ID,
		Name:         a.Name,
		Cost:         a.Cost,
		BillingCycle: BillingCycle(a.BillingCycle),
		Category:     Category(a.Category),
		Status:       StatusActive,
		IsShared:     a.IsShared,
		SharedWith:   a.SharedWith,
	}
}
