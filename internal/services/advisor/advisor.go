// Package services реализует советника по подпискам: подбор категории,
// анализ трат и поиск альтернатив. Сначала используются локальные правила,
// затем языковая модель; при её недоступности отдаются шаблонные ответы.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/llm"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Источники ответа советника.
const (
	SourceLocal    = "local"
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceError    = "error"
)

// ErrInvalidRequest — в запросе нет данных, с которыми можно работать.
var ErrInvalidRequest = errors.New("invalid advisor request")

// LLM — клиент языковой модели.
type LLM interface {
	Enabled() bool
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Categorization — предложенная категория сервиса.
type Categorization struct {
	Category models.Category `json:"category"`
	Tip      string          `json:"tip"`
	Source   string          `json:"source"`
}

// Recommendation — один совет по сокращению трат.
type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Analysis — сводка трат с рекомендациями.
type Analysis struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
	Source          string           `json:"source"`
}

// Alternative — более дешёвая замена подписки.
type Alternative struct {
	Name          string          `json:"name"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Savings       decimal.Decimal `json:"savings"`
	Reason        string          `json:"reason"`
}

// Alternatives — альтернативы и советы по оплате.
// AnnualSavings и AnnualTip равны nil для ежегодных подписок.
type Alternatives struct {
	Alternatives  []Alternative    `json:"alternatives"`
	BundleTip     *string          `json:"bundle_tip"`
	AnnualSavings *decimal.Decimal `json:"annual_savings"`
	AnnualTip     *string          `json:"annual_tip"`
	Source        string           `json:"source"`
}

// AdvisorService отвечает на запросы советника. На результаты расчётов
// пакета billing не влияет.
type AdvisorService struct {
	llm LLM
	log *slog.Logger
}

// NewAdvisorService создает новый экземпляр AdvisorService.
func NewAdvisorService(client LLM, log *slog.Logger) *AdvisorService {
	return &AdvisorService{
		llm: client,
		log: log,
	}
}

// Categorize подбирает категорию по названию сервиса.
func (s *AdvisorService) Categorize(ctx context.Context, serviceName string) (Categorization, error) {
	const op = "services.advisor.Categorize"

	if strings.TrimSpace(serviceName) == "" {
		return Categorization{}, fmt.Errorf("%s: %w: service name is required", op, ErrInvalidRequest)
	}

	if cat, ok := lookupCategory(serviceName); ok {
		return s.categorized(Categorization{
			Category: cat,
			Tip:      fmt.Sprintf("Recognized as a %s service.", cat),
			Source:   SourceLocal,
		}), nil
	}

	if !s.llm.Enabled() {
		return s.categorized(Categorization{
			Category: models.CategoryOther,
			Tip:      "AI categorization unavailable. Please select a category manually.",
			Source:   SourceFallback,
		}), nil
	}

	text, err := s.llm.Complete(ctx, llm.Request{
		System:      categorizePrompt,
		Prompt:      fmt.Sprintf("Categorize this subscription service: \"%s\"", serviceName),
		MaxTokens:   100,
		Temperature: 0.3,
	})
	if err != nil {
		s.log.Error("ai categorization failed", slog.String("op", op), sl.Err(err))
		return s.categorized(Categorization{
			Category: models.CategoryOther,
			Tip:      "Could not reach AI service. Please select manually.",
			Source:   SourceError,
		}), nil
	}

	var parsed struct {
		Category string `json:"category"`
		Tip      string `json:"tip"`
	}
	if err := llm.ExtractJSON(text, &parsed); err != nil || parsed.Category == "" {
		return s.categorized(Categorization{
			Category: models.CategoryOther,
			Tip:      "Unable to categorize. Please select manually.",
			Source:   SourceAI,
		}), nil
	}
	return s.categorized(Categorization{
		Category: models.ParseCategory(parsed.Category),
		Tip:      parsed.Tip,
		Source:   SourceAI,
	}), nil
}

// Analyze даёт сводку трат и три рекомендации.
func (s *AdvisorService) Analyze(ctx context.Context, subs []models.Subscription) (Analysis, error) {
	const op = "services.advisor.Analyze"

	if subs == nil {
		return Analysis{}, fmt.Errorf("%s: %w: subscriptions array is required", op, ErrInvalidRequest)
	}

	input := make([]models.Subscription, len(subs))
	for i, sub := range subs {
		input[i] = withDefaults(sub)
	}
	subs = input
	total := billing.TotalMonthly(subs)
	fallback := func(source string) Analysis {
		return s.analyzed(Analysis{
			Summary: fmt.Sprintf("You're spending ₹%s/month across %d subscriptions.",
				total.StringFixed(2), len(subs)),
			Recommendations: defaultRecommendations(),
			Source:          source,
		})
	}

	if !s.llm.Enabled() {
		return fallback(SourceFallback), nil
	}

	lines := make([]string, 0, len(subs))
	for _, sub := range subs {
		lines = append(lines, fmt.Sprintf("%s: ₹%s/%s (%s)",
			sub.Name, sub.Cost.String(), periodUnit(sub.BillingCycle), sub.Category.Normalize()))
	}
	text, err := s.llm.Complete(ctx, llm.Request{
		System: analyzePrompt,
		Prompt: fmt.Sprintf("Analyze these subscriptions:\n%s\n\nTotal monthly: ₹%s",
			strings.Join(lines, "\n"), total.StringFixed(2)),
		MaxTokens:   500,
		Temperature: 0.5,
	})
	if err != nil {
		s.log.Error("ai analysis failed", slog.String("op", op), sl.Err(err))
		return fallback(SourceError), nil
	}

	var parsed Analysis
	if err := llm.ExtractJSON(text, &parsed); err != nil || len(parsed.Recommendations) == 0 {
		s.log.Warn("ai analysis unparseable", slog.String("op", op))
		return fallback(SourceFallback), nil
	}
	parsed.Source = SourceAI
	return s.analyzed(parsed), nil
}

// Alternatives ищет более дешёвые замены подписки и оценивает выгоду годовой оплаты.
func (s *AdvisorService) Alternatives(ctx context.Context, sub models.Subscription) (Alternatives, error) {
	const op = "services.advisor.Alternatives"

	if strings.TrimSpace(sub.Name) == "" {
		return Alternatives{}, fmt.Errorf("%s: %w: subscription data is required", op, ErrInvalidRequest)
	}

	sub = withDefaults(sub)
	var annual *decimal.Decimal
	if savings, ok := billing.AnnualPlanSavings(sub); ok {
		annual = &savings
	}

	if !s.llm.Enabled() {
		return s.alternatives(Alternatives{
			Alternatives: []Alternative{{
				Name:          "Generic Alternative",
				EstimatedCost: sub.Cost.Mul(decimal.RequireFromString("0.7")).Floor(),
				Savings:       sub.Cost.Mul(decimal.RequireFromString("0.3")).Floor(),
				Reason:        "Consider exploring free or lower-cost alternatives in this category.",
			}},
			BundleTip:     strPtr("Check if any of your other subscriptions offer bundled access to similar services."),
			AnnualSavings: annual,
			AnnualTip:     annualTip("Switching to annual billing could save you ~₹%s/year", annual),
			Source:        SourceFallback,
		}), nil
	}

	fallback := func(source string) Alternatives {
		return s.alternatives(Alternatives{
			Alternatives: []Alternative{{
				Name:          "Free tier options",
				EstimatedCost: decimal.Zero,
				Savings:       sub.Cost,
				Reason:        "Many services offer free tiers with limited features.",
			}},
			BundleTip:     strPtr("Check for bundle deals that include this service."),
			AnnualSavings: annual,
			AnnualTip:     annualTip("Annual billing could save ~₹%s/year", annual),
			Source:        source,
		})
	}

	text, err := s.llm.Complete(ctx, llm.Request{
		System: alternativesPrompt,
		Prompt: fmt.Sprintf("Find alternatives for: %s (₹%s/%s, Category: %s)",
			sub.Name, sub.Cost.String(), sub.BillingCycle, sub.Category.Normalize()),
		MaxTokens:   500,
		Temperature: 0.5,
	})
	if err != nil {
		s.log.Error("ai alternatives failed", slog.String("op", op), sl.Err(err))
		return fallback(SourceError), nil
	}

	var parsed Alternatives
	if err := llm.ExtractJSON(text, &parsed); err != nil || len(parsed.Alternatives) == 0 {
		s.log.Warn("ai alternatives unparseable", slog.String("op", op))
		return fallback(SourceFallback), nil
	}
	if (parsed.AnnualSavings == nil || parsed.AnnualSavings.IsZero()) && annual != nil {
		parsed.AnnualSavings = annual
		parsed.AnnualTip = annualTip("Switching to annual billing could save you ~₹%s/year", annual)
	}
	parsed.Source = SourceAI
	return s.alternatives(parsed), nil
}

func (s *AdvisorService) categorized(c Categorization) Categorization {
	metrics.AdvisorResponses.WithLabelValues("categorize", c.Source).Inc()
	return c
}

func (s *AdvisorService) analyzed(a Analysis) Analysis {
	metrics.AdvisorResponses.WithLabelValues("analyze", a.Source).Inc()
	return a
}

func (s *AdvisorService) alternatives(a Alternatives) Alternatives {
	metrics.AdvisorResponses.WithLabelValues("alternatives", a.Source).Inc()
	return a
}

func defaultRecommendations() []Recommendation {
	return []Recommendation{
		{
			Type:        "savings",
			Title:       "Consider Annual Plans",
			Description: "Switching to yearly billing often saves 15-20% on subscription costs.",
		},
		{
			Type:        "overlap",
			Title:       "Review Similar Services",
			Description: "Check if any of your subscriptions offer overlapping features.",
		},
		{
			Type:        "unused",
			Title:       "Track Your Usage",
			Description: "Cancel subscriptions you haven't used in the last 30 days.",
		},
	}
}

// withDefaults дополняет запись, пришедшую от клиента, значениями по умолчанию.
func withDefaults(sub models.Subscription) models.Subscription {
	if sub.BillingCycle == "" {
		sub.BillingCycle = models.BillingMonthly
	}
	if sub.SharedWith < 1 {
		sub.SharedWith = 1
	}
	return sub
}

func periodUnit(c models.BillingCycle) string {
	if c == models.BillingYearly {
		return "year"
	}
	return "month"
}

func annualTip(format string, savings *decimal.Decimal) *string {
	if savings == nil {
		return nil
	}
	return strPtr(fmt.Sprintf(format, savings.String()))
}

func strPtr(s string) *string { return &s }
