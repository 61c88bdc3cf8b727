package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `id, name, cost, billing_cycle, first_payment_date, category,
	status, is_shared, shared_with, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var (
		sub          models.Subscription
		cycle        string
		category     string
		status       string
		firstPayment sql.NullTime
	)
	err := row.Scan(&sub.ID, &sub.Name, &sub.Cost, &cycle, &firstPayment, &category,
		&status, &sub.IsShared, &sub.SharedWith, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.BillingCycle = models.BillingCycle(cycle)
	sub.Category = models.Category(category)
	sub.Status = models.Status(status)
	if firstPayment.Valid {
		d := time.Date(firstPayment.Time.Year(), firstPayment.Time.Month(), firstPayment.Time.Day(), 0, 0, 0, 0, time.UTC)
		sub.FirstPaymentDate = &d
	}
	return sub, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateSubscription вставляет новую подписку, присваивая ей id и метки времени.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	const op = "storage.CreateSubscription"

	sub.ID = uuid.NewString()
	query := `INSERT INTO subscriptions (id, name, cost, billing_cycle, first_payment_date,
			      category, status, is_shared, shared_with)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + subscriptionColumns
	row := s.DB.QueryRowContext(ctx, query,
		sub.ID, sub.Name, sub.Cost, string(sub.BillingCycle), nullDate(sub.FirstPaymentDate),
		string(sub.Category), string(sub.Status), sub.IsShared, sub.SharedWith)

	created, err := scanSubscription(row)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// ReadSubscription возвращает подписку по id.
func (s *Storage) ReadSubscription(ctx context.Context, id string) (models.Subscription, error) {
	const op = "storage.ReadSubscription"

	if _, err := uuid.Parse(id); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscription перезаписывает все изменяемые поля подписки и обновляет updated_at.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	const op = "storage.UpdateSubscription"

	if _, err := uuid.Parse(sub.ID); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}

	query := `UPDATE subscriptions
			  SET name = $1, cost = $2, billing_cycle = $3, first_payment_date = $4,
			      category = $5, status = $6, is_shared = $7, shared_with = $8, updated_at = NOW()
			  WHERE id = $9
			  RETURNING ` + subscriptionColumns
	row := s.DB.QueryRowContext(ctx, query,
		sub.Name, sub.Cost, string(sub.BillingCycle), nullDate(sub.FirstPaymentDate),
		string(sub.Category), string(sub.Status), sub.IsShared, sub.SharedWith, sub.ID)

	updated, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// RemoveSubscription удаляет подписку по id.
func (s *Storage) RemoveSubscription(ctx context.Context, id string) error {
	const op = "storage.RemoveSubscription"

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}

// ListSubscriptions возвращает подписки от новых к старым. Пустой фильтр
// возвращает все записи; Category и Status сравниваются точно, Query ищет
// по подстроке имени без учёта регистра.
func (s *Storage) ListSubscriptions(ctx context.Context, filter models.ListFilter) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE ($1::text = '' OR category = $1::text)
			    AND ($2::text = '' OR name ILIKE '%' || $2::text || '%')
			    AND ($3::text = '' OR status = $3::text)
			  ORDER BY created_at DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, string(filter.Category), filter.Query, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminderSent фиксирует отправку напоминания о продлении. Возвращает false,
// если напоминание для этой подписки и даты уже было отправлено.
func (s *Storage) MarkReminderSent(ctx context.Context, subscriptionID string, renewalDate time.Time) (bool, error) {
	const op = "storage.MarkReminderSent"

	result, err := s.DB.ExecContext(ctx, `INSERT INTO renewal_reminders (subscription_id, renewal_date)
			  VALUES ($1, $2)
			  ON CONFLICT DO NOTHING`, subscriptionID, renewalDate)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}
