package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/month"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Пороги интенсивности трат за день для тепловой карты календаря.
var (
	intensityHigh   = decimal.NewFromInt(500)
	intensityMedium = decimal.NewFromInt(100)
)

// MonthTotal — сумма трат за календарный месяц.
type MonthTotal struct {
	Month  time.Month      `json:"month"`
	Total  decimal.Decimal `json:"total"`
	Active bool            `json:"active"`
}

// CalendarDay — продления в конкретный день месяца.
type CalendarDay struct {
	Day       int                   `json:"day"`
	Renewals  []models.Subscription `json:"renewals"`
	Total     decimal.Decimal       `json:"total"`
	Intensity int                   `json:"intensity"`
}

// CalendarMonth — календарь продлений на месяц с годовой полосой сумм.
type CalendarMonth struct {
	Year        int            `json:"year"`
	Month       time.Month     `json:"month"`
	Days        []CalendarDay  `json:"days"`
	MonthTotals [12]MonthTotal `json:"month_totals"`
}

// CategoryBreakdown суммирует NormalizedMonthlyCost по категориям.
// Деление общих подписок здесь намеренно не учитывается.
// Пустые и неизвестные категории попадают в other.
func CategoryBreakdown(subs []models.Subscription) map[models.Category]decimal.Decimal {
	out := make(map[models.Category]decimal.Decimal)
	for _, sub := range subs {
		cost, err := NormalizedMonthlyCost(sub)
		if err != nil {
			continue
		}
		cat := sub.Category.Normalize()
		out[cat] = out[cat].Add(cost)
	}
	return out
}

// TotalMonthly — сумма NormalizedMonthlyCost по всем подпискам.
func TotalMonthly(subs []models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range subs {
		if cost, err := NormalizedMonthlyCost(sub); err == nil {
			total = total.Add(cost)
		}
	}
	return total
}

// TotalPayerMonthly — сумма PayerShareCost по всем подпискам: месячные траты пользователя.
func TotalPayerMonthly(subs []models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range subs {
		if share, ok := payerShare(sub); ok {
			total = total.Add(share)
		}
	}
	return total
}

// YearlyTotal — годовые траты пользователя.
func YearlyTotal(subs []models.Subscription) decimal.Decimal {
	return TotalPayerMonthly(subs).Mul(monthsInYear)
}

// MonthlySpendingByAnchorMonth возвращает 12 сумм (индекс 0 — январь) для года year.
// Ежемесячная подписка добавляет свою долю в каждый месяц, ежегодная — только
// в месяц своей first_payment_date.
func MonthlySpendingByAnchorMonth(subs []models.Subscription, year int) [12]decimal.Decimal {
	var totals [12]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}

	for _, sub := range subs {
		share, ok := payerShare(sub)
		if !ok {
			continue
		}
		switch sub.BillingCycle {
		case models.BillingMonthly:
			for i := range totals {
				totals[i] = totals[i].Add(share)
			}
		case models.BillingYearly:
			if sub.FirstPaymentDate == nil {
				continue
			}
			m := reanchor(*sub.FirstPaymentDate, year).Month()
			totals[m-1] = totals[m-1].Add(share)
		}
	}
	return totals
}

// RenewalsOnDay возвращает подписки, продлеваемые в указанный день.
// Ежегодная подписка продлевается в день своей first_payment_date, перенесённой в year.
// Ежемесячная — в день месяца своей first_payment_date, если такой день есть в month:
// подписка от 31-го числа в 30-дневном месяце не попадает никуда.
func RenewalsOnDay(subs []models.Subscription, year int, m time.Month, day int) []models.Subscription {
	var out []models.Subscription
	for _, sub := range subs {
		if sub.FirstPaymentDate == nil || Validate(sub) != nil {
			continue
		}
		anchor := month.Date(*sub.FirstPaymentDate)
		switch sub.BillingCycle {
		case models.BillingYearly:
			d := reanchor(anchor, year)
			if d.Month() == m && d.Day() == day {
				out = append(out, sub)
			}
		case models.BillingMonthly:
			if anchor.Day() == day && day <= month.DaysIn(year, m) {
				out = append(out, sub)
			}
		}
	}
	return out
}

// SpendingIntensity оценивает траты дня по шкале 0..3:
// 0 — продлений нет, 1 — до 100 включительно, 2 — до 500 включительно, 3 — больше 500.
func SpendingIntensity(daySubs []models.Subscription) int {
	if len(daySubs) == 0 {
		return 0
	}
	total := dayTotal(daySubs)
	switch {
	case total.GreaterThan(intensityHigh):
		return 3
	case total.GreaterThan(intensityMedium):
		return 2
	case total.IsPositive():
		return 1
	}
	return 0
}

// MonthCalendar строит календарь продлений на месяц: все дни месяца с продлениями
// и интенсивностью, плюс суммы по месяцам года с отметкой текущего.
func MonthCalendar(subs []models.Subscription, year int, m time.Month) CalendarMonth {
	n := month.DaysIn(year, m)
	cal := CalendarMonth{
		Year:  year,
		Month: m,
		Days:  make([]CalendarDay, 0, n),
	}
	for day := 1; day <= n; day++ {
		renewals := RenewalsOnDay(subs, year, m, day)
		cal.Days = append(cal.Days, CalendarDay{
			Day:       day,
			Renewals:  renewals,
			Total:     dayTotal(renewals),
			Intensity: SpendingIntensity(renewals),
		})
	}

	totals := MonthlySpendingByAnchorMonth(subs, year)
	for i, total := range totals {
		cal.MonthTotals[i] = MonthTotal{
			Month:  time.Month(i + 1),
			Total:  total,
			Active: time.Month(i+1) == m,
		}
	}
	return cal
}

func dayTotal(daySubs []models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range daySubs {
		if share, ok := payerShare(sub); ok {
			total = total.Add(share)
		}
	}
	return total
}

// reanchor переносит дату в указанный год, прижимая 29 февраля к 28-му.
func reanchor(anchor time.Time, year int) time.Time {
	d := month.Date(anchor)
	return month.AddYears(d, year-d.Year())
}
