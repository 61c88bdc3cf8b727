// Package services содержит отправку писем с напоминаниями о продлении.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/rabbitmq"
)

// ErrNoRecipient — адрес получателя напоминаний не настроен.
var ErrNoRecipient = errors.New("reminder recipient is not configured")

// SenderService превращает напоминания из очереди в письма.
type SenderService struct {
	transport smtp.TransportInterface
	recipient string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, recipient string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		recipient: recipient,
		log:       log,
	}
}

// SendRenewalReminder разбирает сообщение RenewalReminder и отправляет письмо.
// Неразборчивое сообщение отклоняется через rabbitmq.ErrRejected, остальные
// ошибки приводят к повторной доставке.
func (s *SenderService) SendRenewalReminder(body []byte) error {
	const op = "services.sender.SendRenewalReminder"

	var message models.RenewalReminder
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrRejected, err)
	}
	if s.recipient == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}

	if err := s.sendEmail([]string{s.recipient}, reminderSubject(message), reminderBody(message)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.RemindersSent.Inc()
	return nil
}

func reminderSubject(m models.RenewalReminder) string {
	switch m.DaysUntil {
	case 0:
		return fmt.Sprintf("%s renews today", m.Name)
	case 1:
		return fmt.Sprintf("%s renews tomorrow", m.Name)
	default:
		return fmt.Sprintf("%s renews in %d days", m.Name, m.DaysUntil)
	}
}

func reminderBody(m models.RenewalReminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s subscription renews on %s.\n\n", m.Name, m.RenewalDate)
	fmt.Fprintf(&b, "Charge: ₹%s (%s)\n", m.Cost.StringFixed(2), m.BillingCycle)
	if m.IsShared && m.SharedWith > 1 {
		fmt.Fprintf(&b, "Shared with %d people, your monthly share: ₹%s\n", m.SharedWith, m.PayerShare.StringFixed(2))
	}
	b.WriteString("\nCancel it beforehand if you no longer use it.\n")
	return b.String()
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
