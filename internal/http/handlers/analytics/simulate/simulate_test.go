package simulate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Simulate(ctx context.Context, session billing.Session) (billing.SimulationResult, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(billing.SimulationResult), args.Error(1)
}

func TestSimulateHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"removed":["netflix"],"split_override":{"spotify":2}}`,
			setupMock: func(m *MockService) {
				m.On("Simulate", mock.Anything, mock.MatchedBy(func(s billing.Session) bool {
					return s.IsRemoved("netflix") && s.SplitOverride["spotify"] == 2
				})).Return(billing.SimulationResult{
					CurrentMonthly:   decimal.NewFromInt(839),
					SimulatedMonthly: decimal.NewFromInt(170),
					Lines:            []billing.SimulationLine{{ID: "netflix", Removed: true}},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"removed":true`,
		},
		{
			name:           "malformed json",
			body:           `[]`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "negative override",
			body: `{"cost_override":{"netflix":-1}}`,
			setupMock: func(m *MockService) {
				m.On("Simulate", mock.Anything, mock.Anything).
					Return(billing.SimulationResult{}, fmt.Errorf("op: %w", billing.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"invalid simulation session"`,
		},
		{
			name: "service error",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Simulate", mock.Anything, billing.Session{}).
					Return(billing.SimulationResult{}, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not simulate"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/simulator", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
