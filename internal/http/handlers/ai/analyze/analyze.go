// Package analyze реализует HTTP-обработчик анализа трат на подписки.
package analyze

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	advisorservice "github.com/magabrotheeeer/subscription-tracker/internal/services/advisor"
)

// Request — тело запроса анализа.
type Request struct {
	Subscriptions []models.AdvisorSubscription `json:"subscriptions"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Analyze(ctx context.Context, subs []models.Subscription) (advisorservice.Analysis, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Анализ трат
// @Description Сводка трат и три рекомендации. Без ключа языковой модели возвращаются шаблонные советы.
// @Tags AI
// @Accept json
// @Produce json
// @Param request body Request true "Подписки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /ai/analyze [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.analyze"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.Subscriptions == nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Subscriptions array is required"))
		return
	}

	subs := make([]models.Subscription, 0, len(req.Subscriptions))
	for _, s := range req.Subscriptions {
		subs = append(subs, s.Subscription())
	}

	res, err := h.service.Analyze(r.Context(), subs)
	if err != nil {
		if errors.Is(err, advisorservice.ErrInvalidRequest) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Subscriptions array is required"))
			return
		}
		log.Error("failed to analyze", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Analysis failed"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
