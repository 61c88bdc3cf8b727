package models

import "github.com/shopspring/decimal"

// RenewalReminder — сообщение о скором продлении подписки,
// которое планировщик публикует в брокер, а отправитель превращает в письмо.
type RenewalReminder struct {
	SubscriptionID string          `json:"subscription_id"`
	Name           string          `json:"name"`
	RenewalDate    string          `json:"renewal_date"`
	DaysUntil      int             `json:"days_until"`
	Cost           decimal.Decimal `json:"cost"`
	PayerShare     decimal.Decimal `json:"payer_share"`
	BillingCycle   BillingCycle    `json:"billing_cycle"`
	IsShared       bool            `json:"is_shared"`
	SharedWith     int             `json:"shared_with"`
}
