package services

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/rabbitmq"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const reminderJSON = `{"subscription_id":"id-1","name":"Spotify Family","renewal_date":"2025-04-10","days_until":2,` +
	`"cost":179,"payer_share":59.67,"billing_cycle":"monthly","is_shared":true,"shared_with":3}`

func TestSenderService_SendRenewalReminder(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		recipient     string
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
		rejected      bool
	}{
		{
			name:      "success - send renewal reminder email",
			body:      []byte(reminderJSON),
			recipient: "me@example.com",
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				t.On("GetSMTPUser").Return("sender@example.com")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "sender@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "me@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.MatchedBy(func(p []byte) bool {
					msg := string(p)
					return strings.Contains(msg, "Subject: Spotify Family renews in 2 days") &&
						strings.Contains(msg, "renews on 2025-04-10") &&
						strings.Contains(msg, "Shared with 3 people, your monthly share: ₹59.67")
				})).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			recipient:     "me@example.com",
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
			rejected:      true,
		},
		{
			name:          "recipient not configured",
			body:          []byte(reminderJSON),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorMessage:  "recipient is not configured",
		},
		{
			name:      "SMTP connection error",
			body:      []byte(reminderJSON),
			recipient: "me@example.com",
			setupMocks: func(t *MockTransport) {
				t.On("GetSMTPUser").Return("sender@example.com")
				t.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
		{
			name:      "RCPT rejected",
			body:      []byte(reminderJSON),
			recipient: "me@example.com",
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)
				t.On("GetSMTPUser").Return("sender@example.com")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "sender@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "me@example.com").Return(errors.New("550 no such user")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "550",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(transport, tt.recipient, newNoopLogger())

			tt.setupMocks(transport)

			before := testutil.ToFloat64(metrics.RemindersSent)
			err := service.SendRenewalReminder(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
				assert.Equal(t, tt.rejected, errors.Is(err, rabbitmq.ErrRejected))
				assert.Equal(t, before, testutil.ToFloat64(metrics.RemindersSent))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, before+1, testutil.ToFloat64(metrics.RemindersSent))
			}

			transport.AssertExpectations(t)
		})
	}
}

func TestReminderSubject(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "Netflix renews today"},
		{1, "Netflix renews tomorrow"},
		{3, "Netflix renews in 3 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reminderSubject(models.RenewalReminder{Name: "Netflix", DaysUntil: tt.days}))
	}
}

func TestReminderBody_NotShared(t *testing.T) {
	body := reminderBody(models.RenewalReminder{
		Name: "Notion", RenewalDate: "2025-04-10", Cost: decimal.NewFromInt(960),
		BillingCycle: models.BillingYearly, SharedWith: 1,
	})
	assert.Contains(t, body, "Charge: ₹960.00 (yearly)")
	assert.NotContains(t, body, "Shared with")
}
