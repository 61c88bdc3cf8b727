package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// Scaledown — клиент сервиса сжатия промптов.
type Scaledown struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

type compressRequest struct {
	Context   string          `json:"context"`
	Prompt    string          `json:"prompt"`
	Scaledown compressOptions `json:"scaledown"`
}

type compressOptions struct {
	Rate string `json:"rate"`
}

type compressResponse struct {
	CompressedContext string `json:"compressed_context"`
	CompressedPrompt  string `json:"compressed_prompt"`
}

// NewScaledown создаёт клиента, apiURL — полный адрес метода compress/raw.
func NewScaledown(apiURL, apiKey string, timeout time.Duration, log *slog.Logger) *Scaledown {
	return &Scaledown{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (s *Scaledown) newRequest(ctx context.Context, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Compress возвращает сжатые system и prompt. Ошибка сервиса не прерывает
// запрос к модели: возвращаются исходные строки.
func (s *Scaledown) Compress(ctx context.Context, system, prompt string) (string, string) {
	const op = "llm.Scaledown.Compress"

	resp, err := s.compress(ctx, system, prompt)
	if err != nil {
		s.log.Info("prompt compression skipped", slog.String("op", op), sl.Err(err))
		return system, prompt
	}
	if resp.CompressedContext != "" {
		system = resp.CompressedContext
	}
	if resp.CompressedPrompt != "" {
		prompt = resp.CompressedPrompt
	}
	return system, prompt
}

func (s *Scaledown) compress(ctx context.Context, system, prompt string) (*compressResponse, error) {
	req, err := s.newRequest(ctx, compressRequest{
		Context:   system,
		Prompt:    prompt,
		Scaledown: compressOptions{Rate: "auto"},
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var out compressResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
