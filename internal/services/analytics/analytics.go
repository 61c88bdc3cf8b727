// Package services собирает агрегаты дашборда, календаря и симулятора
// поверх текущего портфеля подписок.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// UpcomingLimit — сколько ближайших продлений показывает дашборд.
const UpcomingLimit = 3

// SubscriptionSource отдаёт портфель подписок.
type SubscriptionSource interface {
	All(ctx context.Context) ([]models.Subscription, error)
	Read(ctx context.Context, id string) (models.Subscription, error)
}

// SettingsSource отдаёт настройки бюджета.
type SettingsSource interface {
	Get(ctx context.Context) (models.BudgetSettings, error)
}

// CategorySlice — доля категории в месячных тратах.
type CategorySlice struct {
	Category   models.Category `json:"category"`
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Dashboard — сводка по портфелю.
type Dashboard struct {
	MonthlySpending decimal.Decimal      `json:"monthly_spending"`
	YearlySpending  decimal.Decimal      `json:"yearly_spending"`
	Count           int                  `json:"count"`
	ActiveCount     int                  `json:"active_count"`
	Upcoming        []billing.Renewal    `json:"upcoming"`
	Categories      []CategorySlice      `json:"categories"`
	Budget          billing.BudgetStatus `json:"budget"`
	Rejected        int                  `json:"rejected"`
}

// Projection — расчёт по одной подписке.
type Projection struct {
	Subscription      models.Subscription `json:"subscription"`
	NormalizedMonthly decimal.Decimal     `json:"normalized_monthly"`
	PayerShare        decimal.Decimal     `json:"payer_share"`
	NextRenewal       *time.Time          `json:"next_renewal"`
	DaysUntil         *int                `json:"days_until"`
	AnnualSavings     *decimal.Decimal    `json:"annual_savings,omitempty"`
}

// AnalyticsService вычисляет агрегаты. Хранилище не меняет.
type AnalyticsService struct {
	subs     SubscriptionSource
	settings SettingsSource
	log      *slog.Logger
	now      func() time.Time
}

// NewAnalyticsService создает новый экземпляр AnalyticsService.
func NewAnalyticsService(subs SubscriptionSource, settings SettingsSource, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		subs:     subs,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// Dashboard собирает сводку: траты плательщика, ближайшие продления,
// разбивку по категориям и состояние бюджета.
func (s *AnalyticsService) Dashboard(ctx context.Context) (Dashboard, error) {
	const op = "services.analytics.Dashboard"

	subs, rejected, err := s.portfolio(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}

	monthly := billing.TotalPayerMonthly(subs)
	active := 0
	for _, sub := range subs {
		if sub.Status == models.StatusActive {
			active++
		}
	}

	return Dashboard{
		MonthlySpending: monthly,
		YearlySpending:  billing.YearlyTotal(subs),
		Count:           len(subs),
		ActiveCount:     active,
		Upcoming:        billing.UpcomingRenewals(subs, s.now(), UpcomingLimit),
		Categories:      categorySlices(subs),
		Budget:          billing.EvaluateBudget(settings, monthly),
		Rejected:        rejected,
	}, nil
}

// Calendar возвращает календарь продлений на месяц.
func (s *AnalyticsService) Calendar(ctx context.Context, year int, month time.Month) (billing.CalendarMonth, error) {
	const op = "services.analytics.Calendar"

	if year < 1 || month < time.January || month > time.December {
		return billing.CalendarMonth{}, fmt.Errorf("%s: %w: bad year or month", op, billing.ErrInvalidInput)
	}
	subs, _, err := s.portfolio(ctx)
	if err != nil {
		return billing.CalendarMonth{}, fmt.Errorf("%s: %w", op, err)
	}
	return billing.MonthCalendar(subs, year, month), nil
}

// Simulate считает траты с учётом гипотетических изменений сессии.
func (s *AnalyticsService) Simulate(ctx context.Context, session billing.Session) (billing.SimulationResult, error) {
	const op = "services.analytics.Simulate"

	subs, _, err := s.portfolio(ctx)
	if err != nil {
		return billing.SimulationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	res, err := billing.Simulate(subs, session)
	if err != nil {
		return billing.SimulationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Projection возвращает расчёт стоимости и продления одной подписки.
func (s *AnalyticsService) Projection(ctx context.Context, id string) (Projection, error) {
	const op = "services.analytics.Projection"

	sub, err := s.subs.Read(ctx, id)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}
	normalized, err := billing.NormalizedMonthlyCost(sub)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}
	share, err := billing.PayerShareCost(sub)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	next := billing.NextRenewalDate(sub, now)
	p := Projection{
		Subscription:      sub,
		NormalizedMonthly: normalized,
		PayerShare:        share,
		NextRenewal:       next,
		DaysUntil:         billing.DaysUntil(next, now),
	}
	if savings, ok := billing.AnnualPlanSavings(sub); ok {
		p.AnnualSavings = &savings
	}
	return p, nil
}

// portfolio загружает подписки и отбрасывает невалидные записи.
func (s *AnalyticsService) portfolio(ctx context.Context) ([]models.Subscription, int, error) {
	all, err := s.subs.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	valid, rejected := billing.Partition(all)
	for _, r := range rejected {
		s.log.Warn("subscription skipped in analytics",
			slog.String("id", r.Subscription.ID),
			slog.String("name", r.Subscription.Name),
			sl.Err(r.Err),
		)
	}
	metrics.RejectedSubscriptions.Add(float64(len(rejected)))
	return valid, len(rejected), nil
}

func categorySlices(subs []models.Subscription) []CategorySlice {
	breakdown := billing.CategoryBreakdown(subs)
	total := billing.TotalMonthly(subs)

	slices := make([]CategorySlice, 0, len(breakdown))
	for _, cat := range models.Categories() {
		sum, ok := breakdown[cat]
		if !ok {
			continue
		}
		meta := cat.Meta()
		pct := decimal.Zero
		if total.IsPositive() {
			pct = sum.Div(total).Mul(decimal.NewFromInt(100))
		}
		slices = append(slices, CategorySlice{
			Category:   cat,
			Label:      meta.Label,
			Color:      meta.Color,
			Total:      sum,
			Percentage: pct,
		})
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Total.GreaterThan(slices[j].Total)
	})
	return slices
}
