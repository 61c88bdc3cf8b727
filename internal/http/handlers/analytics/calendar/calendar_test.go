package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Calendar(ctx context.Context, year int, month time.Month) (billing.CalendarMonth, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(billing.CalendarMonth), args.Error(1)
}

func TestCalendarHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "текущий месяц по умолчанию",
			url:  "/api/calendar",
			setupMock: func(m *MockService) {
				m.On("Calendar", mock.Anything, 2025, time.April).
					Return(billing.CalendarMonth{Year: 2025, Month: time.April}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"year":2025,"month":4`,
		},
		{
			name: "явный месяц",
			url:  "/api/calendar?year=2024&month=2",
			setupMock: func(m *MockService) {
				m.On("Calendar", mock.Anything, 2024, time.February).
					Return(billing.CalendarMonth{Year: 2024, Month: time.February}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"year":2024,"month":2`,
		},
		{
			name:           "год не число",
			url:            "/api/calendar?year=abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid year"`,
		},
		{
			name: "месяц вне диапазона",
			url:  "/api/calendar?month=13",
			setupMock: func(m *MockService) {
				m.On("Calendar", mock.Anything, 2025, time.Month(13)).
					Return(billing.CalendarMonth{}, fmt.Errorf("op: %w", billing.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid year or month"`,
		},
		{
			name: "ошибка сервиса",
			url:  "/api/calendar",
			setupMock: func(m *MockService) {
				m.On("Calendar", mock.Anything, 2025, time.April).
					Return(billing.CalendarMonth{}, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not build calendar"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), mockService)
			handler.now = func() time.Time { return time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC) }

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
