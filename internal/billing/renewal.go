package billing

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/month"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Renewal — ближайшее продление подписки.
type Renewal struct {
	Subscription models.Subscription `json:"subscription"`
	Date         time.Time           `json:"date"`
	DaysUntil    int                 `json:"days_until"`
	PayerShare   decimal.Decimal     `json:"payer_share"`
}

// NextRenewalDate возвращает первую дату продления не раньше календарной даты now.
// Если first_payment_date не задан или период неизвестен, возвращает nil.
//
// Дата получается прибавлением целого числа периодов к first_payment_date;
// число периодов вычисляется напрямую, без перебора. Дни, которых нет
// в целевом месяце, прижимаются к его концу (см. пакет month).
func NextRenewalDate(sub models.Subscription, now time.Time) *time.Time {
	if sub.FirstPaymentDate == nil {
		return nil
	}
	anchor := month.Date(*sub.FirstPaymentDate)
	today := month.Date(now)
	if !anchor.Before(today) {
		return &anchor
	}

	var next time.Time
	switch sub.BillingCycle {
	case models.BillingMonthly:
		n := month.Between(anchor, today)
		next = month.AddMonths(anchor, n)
		if next.Before(today) {
			next = month.AddMonths(anchor, n+1)
		}
	case models.BillingYearly:
		n := today.Year() - anchor.Year()
		next = month.AddYears(anchor, n)
		if next.Before(today) {
			next = month.AddYears(anchor, n+1)
		}
	default:
		return nil
	}
	return &next
}

// DaysUntil возвращает количество дней до даты, округлённое вверх.
// Дата трактуется как начало суток в локации now, поэтому для сегодняшней даты результат 0.
func DaysUntil(date *time.Time, now time.Time) *int {
	if date == nil {
		return nil
	}
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	days := int(math.Ceil(start.Sub(now).Hours() / 24))
	return &days
}

// UpcomingRenewals возвращает ближайшие продления, отсортированные по дате.
// Подписки без first_payment_date и невалидные записи пропускаются.
// limit <= 0 означает без ограничения.
func UpcomingRenewals(subs []models.Subscription, now time.Time, limit int) []Renewal {
	renewals := make([]Renewal, 0, len(subs))
	for _, sub := range subs {
		share, ok := payerShare(sub)
		if !ok {
			continue
		}
		date := NextRenewalDate(sub, now)
		if date == nil {
			continue
		}
		renewals = append(renewals, Renewal{
			Subscription: sub,
			Date:         *date,
			DaysUntil:    *DaysUntil(date, now),
			PayerShare:   share,
		})
	}

	sort.SliceStable(renewals, func(i, j int) bool {
		if !renewals[i].Date.Equal(renewals[j].Date) {
			return renewals[i].Date.Before(renewals[j].Date)
		}
		return renewals[i].Subscription.Name < renewals[j].Subscription.Name
	})

	if limit > 0 && len(renewals) > limit {
		renewals = renewals[:limit]
	}
	return renewals
}
