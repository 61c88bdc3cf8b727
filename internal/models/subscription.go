// Package models содержит доменные структуры подписки и настроек бюджета,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle — период списания стоимости подписки.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Valid сообщает, является ли период одним из поддерживаемых.
func (c BillingCycle) Valid() bool {
	return c == BillingMonthly || c == BillingYearly
}

// Status — состояние подписки.
type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

// LookupStatus распознаёт состояние подписки.
func LookupStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusCanceled:
		return st, true
	default:
		return "", false
	}
}

// Subscription представляет собой основную модель подписки,
// используемую в бизнес-логике и хранилище.
// Cost указан за один период списания (а не за месяц).
// FirstPaymentDate может быть nil — тогда дату продления вычислить нельзя.
type Subscription struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	BillingCycle     BillingCycle    `json:"billing_cycle"`
	FirstPaymentDate *time.Time      `json:"first_payment_date"`
	Category         Category        `json:"category"`
	Status           Status          `json:"status"`
	IsShared         bool            `json:"is_shared"`
	SharedWith       int             `json:"shared_with"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// DummySubscription используется для приёма данных из JSON-запроса на создание,
// прежде чем конвертировать их в Subscription.
// Дата приходит строкой в формате 2006-01-02.
type DummySubscription struct {
	Name             string           `json:"name" validate:"required"`
	Cost             *decimal.Decimal `json:"cost" validate:"required" swaggertype:"number"`
	BillingCycle     string           `json:"billing_cycle,omitempty" validate:"omitempty,oneof=monthly yearly"`
	FirstPaymentDate string           `json:"first_payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Category         string           `json:"category,omitempty" validate:"omitempty,oneof=entertainment productivity utilities health education other"`
	Status           string           `json:"status,omitempty" validate:"omitempty,oneof=active canceled"`
	IsShared         bool             `json:"is_shared"`
	SharedWith       int              `json:"shared_with,omitempty" validate:"omitempty,min=1,max=10"`
}

// SubscriptionPatch — частичное обновление подписки: nil означает «не менять».
type SubscriptionPatch struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Cost             *decimal.Decimal `json:"cost,omitempty" swaggertype:"number"`
	BillingCycle     *string          `json:"billing_cycle,omitempty" validate:"omitempty,oneof=monthly yearly"`
	FirstPaymentDate *string          `json:"first_payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Category         *string          `json:"category,omitempty" validate:"omitempty,oneof=entertainment productivity utilities health education other"`
	Status           *string          `json:"status,omitempty" validate:"omitempty,oneof=active canceled"`
	IsShared         *bool            `json:"is_shared,omitempty"`
	SharedWith       *int             `json:"shared_with,omitempty" validate:"omitempty,min=1,max=10"`
}

// ListFilter — параметры выборки списка подписок.
type ListFilter struct {
	Category Category // пустая строка — все категории
	Status   Status   // пустая строка — любые состояния
	Query    string   // поиск по названию без учёта регистра
}

// DateLayout — формат календарной даты во всех запросах и ответах.
const DateLayout = "2006-01-02"
