package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	analyticsservice "github.com/magabrotheeeer/subscription-tracker/internal/services/analytics"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Dashboard(ctx context.Context) (analyticsservice.Dashboard, error) {
	args := m.Called(ctx)
	return args.Get(0).(analyticsservice.Dashboard), args.Error(1)
}

func TestDashboardHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("Dashboard", mock.Anything).Return(analyticsservice.Dashboard{
			MonthlySpending: decimal.NewFromInt(839),
			Count:           4,
			ActiveCount:     3,
			Upcoming:        []billing.Renewal{},
			Categories:      []analyticsservice.CategorySlice{},
			Budget:          billing.BudgetStatus{State: billing.BudgetUnset, AlertThreshold: 80},
		}, nil).Once()

		w := httptest.NewRecorder()
		New(log, mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"active_count":3`)
		assert.Contains(t, w.Body.String(), `"state":"unset"`)
		mockService.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("Dashboard", mock.Anything).Return(analyticsservice.Dashboard{}, errors.New("db error")).Once()

		w := httptest.NewRecorder()
		New(log, mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"could not build dashboard"}`, w.Body.String())
	})
}
