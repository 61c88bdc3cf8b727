package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	args := m.Called(ctx, sub)
	if fn, ok := args.Get(0).(func(context.Context, models.Subscription) models.Subscription); ok {
		return fn(ctx, sub), args.Error(1)
	}
	return args.Get(0).(models.Subscription), args.Error(1)
}

func (m *RepoMock) ReadSubscription(ctx context.Context, id string) (models.Subscription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Subscription), args.Error(1)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	args := m.Called(ctx, sub)
	if fn, ok := args.Get(0).(func(context.Context, models.Subscription) models.Subscription); ok {
		return fn(ctx, sub), args.Error(1)
	}
	return args.Get(0).(models.Subscription), args.Error(1)
}

func (m *RepoMock) RemoveSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, filter models.ListFilter) ([]models.Subscription, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	args := []any{ctx}
	for _, k := range keys {
		args = append(args, k)
	}
	return m.Called(args...).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(v string) *string { return &v }

func TestSubscriptionService_Create(t *testing.T) {
	tests := []struct {
		name   string
		req    models.DummySubscription
		expect func(t *testing.T, sub models.Subscription)
	}{
		{
			name: "значения по умолчанию",
			req:  models.DummySubscription{Name: " Netflix ", Cost: decPtr("649")},
			expect: func(t *testing.T, sub models.Subscription) {
				assert.Equal(t, "Netflix", sub.Name)
				assert.Equal(t, models.BillingMonthly, sub.BillingCycle)
				assert.Equal(t, models.CategoryOther, sub.Category)
				assert.Equal(t, models.StatusActive, sub.Status)
				assert.Equal(t, 1, sub.SharedWith)
				assert.Nil(t, sub.FirstPaymentDate)
			},
		},
		{
			name: "общая подписка с датой",
			req: models.DummySubscription{
				Name: "Spotify Family", Cost: decPtr("179"), BillingCycle: "yearly",
				FirstPaymentDate: "2024-01-31", Category: "entertainment", IsShared: true, SharedWith: 4,
			},
			expect: func(t *testing.T, sub models.Subscription) {
				assert.Equal(t, models.BillingYearly, sub.BillingCycle)
				assert.Equal(t, models.CategoryEntertainment, sub.Category)
				assert.Equal(t, 4, sub.SharedWith)
				require.NotNil(t, sub.FirstPaymentDate)
				assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), *sub.FirstPaymentDate)
			},
		},
		{
			name: "shared_with без is_shared сбрасывается",
			req:  models.DummySubscription{Name: "Zoom", Cost: decPtr("10"), SharedWith: 5},
			expect: func(t *testing.T, sub models.Subscription) {
				assert.False(t, sub.IsShared)
				assert.Equal(t, 1, sub.SharedWith)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewSubscriptionService(repo, cache, newNoopLogger())

			repo.On("CreateSubscription", mock.Anything, mock.AnythingOfType("models.Subscription")).
				Return(func(_ context.Context, sub models.Subscription) models.Subscription {
					sub.ID = "id-1"
					return sub
				}, nil).Once()
			cache.On("Set", mock.Anything, "subscription:id-1", mock.Anything).Return(nil).Once()
			cache.On("Invalidate", mock.Anything, "subscriptions:all").Return(nil).Once()

			got, err := svc.Create(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, "id-1", got.ID)
			tt.expect(t, got)

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_CreateInvalid(t *testing.T) {
	tests := []struct {
		name string
		req  models.DummySubscription
	}{
		{"без имени", models.DummySubscription{Cost: decPtr("10")}},
		{"без стоимости", models.DummySubscription{Name: "Netflix"}},
		{"отрицательная стоимость", models.DummySubscription{Name: "Netflix", Cost: decPtr("-1")}},
		{"неизвестный период", models.DummySubscription{Name: "Netflix", Cost: decPtr("1"), BillingCycle: "weekly"}},
		{"некорректная дата", models.DummySubscription{Name: "Netflix", Cost: decPtr("1"), FirstPaymentDate: "31-01-2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewSubscriptionService(repo, cache, newNoopLogger())

			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, billing.ErrInvalidInput)
			repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
		})
	}
}

func TestSubscriptionService_Read(t *testing.T) {
	sub := models.Subscription{ID: "id-1", Name: "Netflix", Cost: decimal.RequireFromString("649")}

	t.Run("из кеша", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		cache.On("Get", mock.Anything, "subscription:id-1", mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(2).(*models.Subscription) = sub
			}).Return(true, nil).Once()

		got, err := svc.Read(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, "Netflix", got.Name)
		repo.AssertNotCalled(t, "ReadSubscription", mock.Anything, mock.Anything)
	})

	t.Run("ошибка кеша не прерывает чтение", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		cache.On("Get", mock.Anything, "subscription:id-1", mock.Anything).Return(false, errors.New("redis down")).Once()
		repo.On("ReadSubscription", mock.Anything, "id-1").Return(sub, nil).Once()
		cache.On("Set", mock.Anything, "subscription:id-1", sub).Return(errors.New("redis down")).Once()

		got, err := svc.Read(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, sub, got)
		repo.AssertExpectations(t)
	})

	t.Run("не найдена", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		cache.On("Get", mock.Anything, "subscription:missing", mock.Anything).Return(false, nil).Once()
		repo.On("ReadSubscription", mock.Anything, "missing").
			Return(models.Subscription{}, repository.ErrSubscriptionNotFound).Once()

		_, err := svc.Read(context.Background(), "missing")
		assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
	})
}

func TestSubscriptionService_Update(t *testing.T) {
	anchor := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	current := models.Subscription{
		ID: "id-1", Name: "Netflix", Cost: decimal.RequireFromString("649"),
		BillingCycle: models.BillingMonthly, FirstPaymentDate: &anchor,
		Category: models.CategoryEntertainment, Status: models.StatusActive,
		IsShared: true, SharedWith: 3,
	}

	t.Run("частичное обновление", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		off := false
		patch := models.SubscriptionPatch{
			Cost:             decPtr("799"),
			IsShared:         &off,
			FirstPaymentDate: strPtr(""),
			Status:           strPtr("canceled"),
		}

		repo.On("ReadSubscription", mock.Anything, "id-1").Return(current, nil).Once()
		repo.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.Name == "Netflix" &&
				s.Cost.Equal(decimal.RequireFromString("799")) &&
				!s.IsShared && s.SharedWith == 1 &&
				s.FirstPaymentDate == nil &&
				s.Status == models.StatusCanceled &&
				s.Category == models.CategoryEntertainment
		})).Return(func(_ context.Context, s models.Subscription) models.Subscription { return s }, nil).Once()
		cache.On("Set", mock.Anything, "subscription:id-1", mock.Anything).Return(nil).Once()
		cache.On("Invalidate", mock.Anything, "subscriptions:all").Return(nil).Once()

		got, err := svc.Update(context.Background(), "id-1", patch)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SharedWith)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("невалидный результат не сохраняется", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		repo.On("ReadSubscription", mock.Anything, "id-1").Return(current, nil).Once()

		_, err := svc.Update(context.Background(), "id-1", models.SubscriptionPatch{Cost: decPtr("-5")})
		assert.ErrorIs(t, err, billing.ErrInvalidInput)
		repo.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything)
	})

	t.Run("не найдена", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		repo.On("ReadSubscription", mock.Anything, "missing").
			Return(models.Subscription{}, repository.ErrSubscriptionNotFound).Once()

		_, err := svc.Update(context.Background(), "missing", models.SubscriptionPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
	})
}

func TestSubscriptionService_Remove(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, newNoopLogger())

	repo.On("RemoveSubscription", mock.Anything, "id-1").Return(nil).Once()
	cache.On("Invalidate", mock.Anything, "subscription:id-1", "subscriptions:all").Return(nil).Once()
	repo.On("RemoveSubscription", mock.Anything, "missing").Return(repository.ErrSubscriptionNotFound).Once()

	require.NoError(t, svc.Remove(context.Background(), "id-1"))
	assert.ErrorIs(t, svc.Remove(context.Background(), "missing"), repository.ErrSubscriptionNotFound)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_List(t *testing.T) {
	subs := []models.Subscription{{ID: "b", Name: "Notion"}, {ID: "a", Name: "Netflix"}}

	t.Run("полный список кешируется", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		cache.On("Get", mock.Anything, "subscriptions:all", mock.Anything).Return(false, nil).Once()
		repo.On("ListSubscriptions", mock.Anything, models.ListFilter{}).Return(subs, nil).Once()
		cache.On("Set", mock.Anything, "subscriptions:all", subs).Return(nil).Once()

		got, err := svc.All(context.Background())
		require.NoError(t, err)
		assert.Equal(t, subs, got)
		cache.AssertExpectations(t)
	})

	t.Run("фильтр идёт мимо кеша", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		filter := models.ListFilter{Query: "net"}
		repo.On("ListSubscriptions", mock.Anything, filter).Return(subs[1:], nil).Once()

		got, err := svc.List(context.Background(), filter)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("фильтр по состоянию идёт мимо кеша", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		filter := models.ListFilter{Status: models.StatusActive}
		repo.On("ListSubscriptions", mock.Anything, filter).Return(subs, nil).Once()

		_, err := svc.List(context.Background(), filter)
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := NewSubscriptionService(repo, cache, newNoopLogger())

		cache.On("Get", mock.Anything, "subscriptions:all", mock.Anything).Return(false, nil).Once()
		repo.On("ListSubscriptions", mock.Anything, models.ListFilter{}).Return(nil, errors.New("db down")).Once()

		_, err := svc.List(context.Background(), models.ListFilter{})
		assert.Error(t, err)
	})
}
