// Package services содержит планировщик напоминаний о продлении подписок.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/rabbitmq"
)

const defaultInterval = 24 * time.Hour

// SubscriptionRepository — чтение портфеля и учёт отправленных напоминаний.
type SubscriptionRepository interface {
	ListSubscriptions(ctx context.Context, filter models.ListFilter) ([]models.Subscription, error)
	MarkReminderSent(ctx context.Context, subscriptionID string, renewalDate time.Time) (bool, error)
}

// SchedulerService периодически ищет подписки, продление которых наступит
// в ближайшие LeadDays дней, и публикует по одному напоминанию на каждую дату продления.
type SchedulerService struct {
	repo     SubscriptionRepository
	log      *slog.Logger
	leadDays int
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, cfg config.Reminders, loc *time.Location, log *slog.Logger) *SchedulerService {
	if loc == nil {
		loc = time.UTC
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &SchedulerService{
		repo:     repo,
		log:      log,
		leadDays: cfg.LeadDays,
		interval: interval,
		loc:      loc,
		now:      time.Now,
	}
}

// PublishUpcomingRenewals выполняет проверку сразу и затем с периодом interval,
// пока не отменён ctx.
func (s *SchedulerService) PublishUpcomingRenewals(ctx context.Context, channel rabbitmq.Publisher) {
	s.runPublishUpcomingRenewals(ctx, channel)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("renewal scheduler stopped")
			return
		case <-ticker.C:
			s.runPublishUpcomingRenewals(ctx, channel)
		}
	}
}

// runPublishUpcomingRenewals возвращает число опубликованных напоминаний.
func (s *SchedulerService) runPublishUpcomingRenewals(ctx context.Context, channel rabbitmq.Publisher) int {
	s.log.Info("starting search for upcoming renewals", slog.Int("lead_days", s.leadDays))

	subs, err := s.repo.ListSubscriptions(ctx, models.ListFilter{})
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return 0
	}

	due := s.dueReminders(subs)
	if len(due) == 0 {
		s.log.Info("no upcoming renewals found")
		return 0
	}
	s.log.Info("found upcoming renewals", "count", len(due))

	published := 0
	for _, r := range due {
		first, err := s.repo.MarkReminderSent(ctx, r.Subscription.ID, r.Date)
		if err != nil {
			s.log.Error("failed to mark reminder", slog.String("subscription_id", r.Subscription.ID), sl.Err(err))
			continue
		}
		if !first {
			continue
		}
		if err := rabbitmq.PublishMessage(channel, rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyUpcoming, reminderOf(r)); err != nil {
			s.log.Error("failed to publish message", slog.String("subscription_id", r.Subscription.ID), sl.Err(err))
			continue
		}
		metrics.RemindersPublished.Inc()
		published++
	}
	s.log.Info("renewal reminders published", "count", published)
	return published
}

// dueReminders отбирает активные подписки с продлением в окне [0, leadDays] дней.
func (s *SchedulerService) dueReminders(subs []models.Subscription) []billing.Renewal {
	valid, rejected := billing.Partition(subs)
	for _, r := range rejected {
		s.log.Warn("subscription skipped by scheduler", slog.String("id", r.Subscription.ID), sl.Err(r.Err))
	}

	active := make([]models.Subscription, 0, len(valid))
	for _, sub := range valid {
		if sub.Status == models.StatusActive {
			active = append(active, sub)
		}
	}

	var due []billing.Renewal
	for _, r := range billing.UpcomingRenewals(active, s.now().In(s.loc), 0) {
		if r.DaysUntil > s.leadDays {
			break
		}
		due = append(due, r)
	}
	return due
}

func reminderOf(r billing.Renewal) models.RenewalReminder {
	return models.RenewalReminder{
		SubscriptionID: r.Subscription.ID,
		Name:           r.Subscription.Name,
		RenewalDate:    r.Date.Format(models.DateLayout),
		DaysUntil:      r.DaysUntil,
		Cost:           r.Subscription.Cost,
		PayerShare:     r.PayerShare,
		BillingCycle:   r.Subscription.BillingCycle,
		IsShared:       r.Subscription.IsShared,
		SharedWith:     r.Subscription.SharedWith,
	}
}
