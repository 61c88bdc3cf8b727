package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func TestNextRenewalDate(t *testing.T) {
	tests := []struct {
		name   string
		cycle  models.BillingCycle
		anchor *time.Time
		now    time.Time
		want   *time.Time
	}{
		{
			name:   "без даты первого платежа",
			cycle:  models.BillingMonthly,
			anchor: nil,
			now:    *date(2025, 3, 1),
			want:   nil,
		},
		{
			name:   "дата в будущем возвращается как есть",
			cycle:  models.BillingMonthly,
			anchor: date(2025, 6, 10),
			now:    *date(2025, 3, 1),
			want:   date(2025, 6, 10),
		},
		{
			name:   "сегодняшняя дата",
			cycle:  models.BillingYearly,
			anchor: date(2025, 3, 1),
			now:    time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC),
			want:   date(2025, 3, 1),
		},
		{
			name:   "31 января прижимается к 28 февраля",
			cycle:  models.BillingMonthly,
			anchor: date(2025, 1, 31),
			now:    *date(2025, 2, 15),
			want:   date(2025, 2, 28),
		},
		{
			name:   "после февраля снова 31 число",
			cycle:  models.BillingMonthly,
			anchor: date(2025, 1, 31),
			now:    *date(2025, 3, 1),
			want:   date(2025, 3, 31),
		},
		{
			name:   "ежемесячная, день ещё не наступил",
			cycle:  models.BillingMonthly,
			anchor: date(2024, 5, 20),
			now:    *date(2025, 3, 10),
			want:   date(2025, 3, 20),
		},
		{
			name:   "ежемесячная, день прошёл",
			cycle:  models.BillingMonthly,
			anchor: date(2024, 5, 5),
			now:    *date(2025, 3, 10),
			want:   date(2025, 4, 5),
		},
		{
			name:   "ежемесячная, переход через год",
			cycle:  models.BillingMonthly,
			anchor: date(2024, 1, 15),
			now:    *date(2024, 12, 20),
			want:   date(2025, 1, 15),
		},
		{
			name:   "ежегодная, прошла в этом году",
			cycle:  models.BillingYearly,
			anchor: date(2024, 1, 15),
			now:    *date(2025, 3, 1),
			want:   date(2026, 1, 15),
		},
		{
			name:   "ежегодная, ещё впереди в этом году",
			cycle:  models.BillingYearly,
			anchor: date(2020, 11, 2),
			now:    *date(2025, 3, 1),
			want:   date(2025, 11, 2),
		},
		{
			name:   "29 февраля в невисокосный год",
			cycle:  models.BillingYearly,
			anchor: date(2024, 2, 29),
			now:    *date(2025, 1, 10),
			want:   date(2025, 2, 28),
		},
		{
			name:   "неизвестный период",
			cycle:  "weekly",
			anchor: date(2024, 1, 1),
			now:    *date(2025, 3, 1),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sub("a", "10", tt.cycle)
			s.FirstPaymentDate = tt.anchor

			got := NextRenewalDate(s, tt.now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestNextRenewalDate_Properties(t *testing.T) {
	anchors := []*time.Time{
		date(2023, 1, 31), date(2023, 8, 29), date(2024, 2, 29), date(2024, 12, 31), date(2025, 4, 1),
	}
	cycles := []models.BillingCycle{models.BillingMonthly, models.BillingYearly}

	for _, anchor := range anchors {
		for _, cycle := range cycles {
			for now := *date(2025, 1, 1); now.Year() == 2025; now = now.AddDate(0, 0, 7) {
				s := sub("a", "10", cycle)
				s.FirstPaymentDate = anchor

				next := NextRenewalDate(s, now)
				require.NotNil(t, next)
				assert.False(t, next.Before(now), "anchor %s now %s next %s", anchor, now, next)

				again := NextRenewalDate(s, *next)
				require.NotNil(t, again)
				assert.Equal(t, *next, *again, "renewal date must be a fixed point")
			}
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date *time.Time
		want *int
	}{
		{"нет даты", nil, nil},
		{"сегодня", date(2025, 3, 1), intPtr(0)},
		{"завтра", date(2025, 3, 2), intPtr(1)},
		{"через неделю", date(2025, 3, 8), intPtr(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysUntil(tt.date, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestDaysUntil_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2025, 3, 1, 1, 0, 0, 0, loc)

	got := DaysUntil(date(2025, 3, 1), now)
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)
}

func TestUpcomingRenewals(t *testing.T) {
	now := *date(2025, 3, 1)

	netflix := sub("netflix", "649", models.BillingMonthly)
	netflix.Name = "Netflix"
	netflix.FirstPaymentDate = date(2024, 7, 10)

	spotify := shared(sub("spotify", "179", models.BillingMonthly), 2)
	spotify.Name = "Spotify"
	spotify.FirstPaymentDate = date(2024, 1, 3)

	aws := sub("aws", "1200", models.BillingYearly)
	aws.Name = "AWS"
	aws.FirstPaymentDate = date(2023, 3, 10)

	noDate := sub("nodate", "10", models.BillingMonthly)

	broken := sub("broken", "-1", models.BillingMonthly)
	broken.FirstPaymentDate = date(2025, 3, 2)

	subs := []models.Subscription{netflix, spotify, aws, noDate, broken}

	got := UpcomingRenewals(subs, now, 0)
	require.Len(t, got, 3)

	assert.Equal(t, "Spotify", got[0].Subscription.Name)
	assert.Equal(t, *date(2025, 3, 3), got[0].Date)
	assert.Equal(t, 2, got[0].DaysUntil)
	assertDecimal(t, "89.5", got[0].PayerShare)

	// одинаковая дата сортируется по имени
	assert.Equal(t, "AWS", got[1].Subscription.Name)
	assert.Equal(t, "Netflix", got[2].Subscription.Name)
	assertDecimal(t, "100", got[1].PayerShare)

	limited := UpcomingRenewals(subs, now, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "Spotify", limited[0].Subscription.Name)
}

func TestUpcomingRenewals_Empty(t *testing.T) {
	assert.Empty(t, UpcomingRenewals(nil, *date(2025, 3, 1), 3))
}

func intPtr(v int) *int {
	return &v
}
