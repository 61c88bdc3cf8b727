package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции проекта.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateSubscription создает подписку через хранилище с разумными значениями по умолчанию
func (f *TestDataFactory) CreateSubscription(t *testing.T, name, cost string, category models.Category) models.Subscription {
	t.Helper()
	first := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sub, err := f.storage.CreateSubscription(context.Background(), models.Subscription{
		Name:             name,
		Cost:             decimal.RequireFromString(cost),
		BillingCycle:     models.BillingMonthly,
		FirstPaymentDate: &first,
		Category:         category,
		Status:           models.StatusActive,
		SharedWith:       1,
	})
	require.NoError(t, err)
	return sub
}

// countSubscriptions возвращает число строк в subscriptions
func countSubscriptions(t *testing.T, storage *Storage, id string) int {
	t.Helper()
	var count int
	err := storage.DB.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE id = $1", id).Scan(&count)
	require.NoError(t, err)
	return count
}
