// Package llm обращается к OpenAI-совместимому API Groq за текстовыми советами
// и разбирает JSON из ответов модели.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
)

var (
	// ErrDisabled — ключ API не настроен, обращения к модели не выполняются.
	ErrDisabled = errors.New("llm: api key is not configured")
	// ErrUnparseable — в ответе модели не найден JSON нужной формы.
	ErrUnparseable = errors.New("llm: response is not valid json")
)

// Request — один запрос к модели: системная инструкция и пользовательский текст.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Compressor сжимает текст запроса перед отправкой. При любой ошибке
// реализация должна вернуть исходные строки.
type Compressor interface {
	Compress(ctx context.Context, system, prompt string) (string, string)
}

// Client — клиент chat completions.
type Client struct {
	api        *openai.Client
	model      string
	timeout    time.Duration
	compressor Compressor
	log        *slog.Logger
}

// New создаёт клиента по настройкам. Без GroqAPIKey клиент выключен и
// Complete возвращает ErrDisabled. Сжатие включается ключом Scaledown.
func New(cfg config.AI, log *slog.Logger) *Client {
	c := &Client{
		model:   cfg.Model,
		timeout: cfg.TimeoutAI,
		log:     log,
	}
	if cfg.GroqAPIKey != "" {
		apiCfg := openai.DefaultConfig(cfg.GroqAPIKey)
		apiCfg.BaseURL = cfg.GroqBaseURL
		c.api = openai.NewClientWithConfig(apiCfg)
	}
	if cfg.ScaledownAPIKey != "" {
		c.compressor = NewScaledown(cfg.ScaledownURL, cfg.ScaledownAPIKey, cfg.ScaledownTimeout, log)
	}
	return c
}

// Enabled сообщает, настроен ли ключ API.
func (c *Client) Enabled() bool {
	return c != nil && c.api != nil
}

// Complete отправляет запрос модели и возвращает текст первого варианта ответа.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	const op = "llm.Complete"
	if !c.Enabled() {
		return "", ErrDisabled
	}

	system, prompt := req.System, req.Prompt
	if c.compressor != nil {
		system, prompt = c.compressor.Compress(ctx, system, prompt)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	c.log.Debug("llm completion received",
		slog.String("op", op),
		slog.String("model", resp.Model),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
