// Package services содержит бизнес-логику управления подписками и их кеширование.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const (
	subscriptionKeyPrefix = "subscription:"
	allSubscriptionsKey   = "subscriptions:all"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	ReadSubscription(ctx context.Context, id string) (models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	RemoveSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context, filter models.ListFilter) ([]models.Subscription, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш.
	Set(ctx context.Context, key string, value any) error
	// Invalidate удаляет значения по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// SubscriptionService реализует CRUD подписок поверх хранилища и кеша.
// Ошибки кеша только логируются и никогда не прерывают запрос.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create подставляет значения по умолчанию, проверяет запись и сохраняет её.
func (s *SubscriptionService) Create(ctx context.Context, req models.DummySubscription) (models.Subscription, error) {
	const op = "services.subscription.Create"

	sub, err := newSubscription(req)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := billing.Validate(sub); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheSet(ctx, subscriptionKeyPrefix+created.ID, created)
	s.cacheInvalidate(ctx, allSubscriptionsKey)
	return created, nil
}

// Read возвращает подписку по id, сначала заглядывая в кеш.
func (s *SubscriptionService) Read(ctx context.Context, id string) (models.Subscription, error) {
	const op = "services.subscription.Read"

	key := subscriptionKeyPrefix + id
	var cached models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to get from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	sub, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheSet(ctx, key, sub)
	return sub, nil
}

// Update применяет частичное обновление к актуальной записи из хранилища.
func (s *SubscriptionService) Update(ctx context.Context, id string, patch models.SubscriptionPatch) (models.Subscription, error) {
	const op = "services.subscription.Update"

	current, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := billing.Validate(next); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.UpdateSubscription(ctx, next)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheSet(ctx, subscriptionKeyPrefix+updated.ID, updated)
	s.cacheInvalidate(ctx, allSubscriptionsKey)
	return updated, nil
}

// Remove удаляет подписку и сбрасывает связанные ключи кеша.
func (s *SubscriptionService) Remove(ctx context.Context, id string) error {
	const op = "services.subscription.Remove"

	if err := s.repo.RemoveSubscription(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.cacheInvalidate(ctx, subscriptionKeyPrefix+id, allSubscriptionsKey)
	return nil
}

// List возвращает подписки от новых к старым. Полный список без фильтра кешируется.
func (s *SubscriptionService) List(ctx context.Context, filter models.ListFilter) ([]models.Subscription, error) {
	const op = "services.subscription.List"

	unfiltered := filter == models.ListFilter{}
	if unfiltered {
		var cached []models.Subscription
		found, err := s.cache.Get(ctx, allSubscriptionsKey, &cached)
		if err != nil {
			s.log.Warn("failed to get from cache", slog.String("key", allSubscriptionsKey), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	subs, err := s.repo.ListSubscriptions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if unfiltered {
		s.cacheSet(ctx, allSubscriptionsKey, subs)
	}
	return subs, nil
}

// All возвращает весь портфель подписок.
func (s *SubscriptionService) All(ctx context.Context) ([]models.Subscription, error) {
	return s.List(ctx, models.ListFilter{})
}

func (s *SubscriptionService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.Warn("failed to set cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *SubscriptionService) cacheInvalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate cache", slog.Any("keys", keys), sl.Err(err))
	}
}

func newSubscription(req models.DummySubscription) (models.Subscription, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Cost == nil {
		return models.Subscription{}, fmt.Errorf("%w: name and cost are required", billing.ErrInvalidInput)
	}

	sub := models.Subscription{
		Name:         name,
		Cost:         *req.Cost,
		BillingCycle: models.BillingMonthly,
		Category:     models.ParseCategory(req.Category),
		Status:       models.StatusActive,
		IsShared:     req.IsShared,
		SharedWith:   1,
	}
	if req.BillingCycle != "" {
		sub.BillingCycle = models.BillingCycle(req.BillingCycle)
	}
	if req.Status != "" {
		sub.Status = models.Status(req.Status)
	}
	if req.IsShared && req.SharedWith > 0 {
		sub.SharedWith = req.SharedWith
	}
	if req.FirstPaymentDate != "" {
		date, err := parseDate(req.FirstPaymentDate)
		if err != nil {
			return models.Subscription{}, err
		}
		sub.FirstPaymentDate = &date
	}
	return sub, nil
}

func applyPatch(sub models.Subscription, patch models.SubscriptionPatch) (models.Subscription, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Subscription{}, fmt.Errorf("%w: name must not be empty", billing.ErrInvalidInput)
		}
		sub.Name = name
	}
	if patch.Cost != nil {
		sub.Cost = *patch.Cost
	}
	if patch.BillingCycle != nil {
		sub.BillingCycle = models.BillingCycle(*patch.BillingCycle)
	}
	if patch.FirstPaymentDate != nil {
		if *patch.FirstPaymentDate == "" {
			sub.FirstPaymentDate = nil
		} else {
			date, err := parseDate(*patch.FirstPaymentDate)
			if err != nil {
				return models.Subscription{}, err
			}
			sub.FirstPaymentDate = &date
		}
	}
	if patch.Category != nil {
		sub.Category = models.ParseCategory(*patch.Category)
	}
	if patch.Status != nil {
		sub.Status = models.Status(*patch.Status)
	}
	if patch.IsShared != nil {
		sub.IsShared = *patch.IsShared
	}
	if patch.SharedWith != nil {
		sub.SharedWith = *patch.SharedWith
	}
	if !sub.IsShared {
		sub.SharedWith = 1
	}
	return sub, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: first_payment_date: %v", billing.ErrInvalidInput, err)
	}
	return date, nil
}
