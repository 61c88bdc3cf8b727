// Package alternatives реализует HTTP-обработчик поиска более дешёвых замен подписки.
package alternatives

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	advisorservice "github.com/magabrotheeeer/subscription-tracker/internal/services/advisor"
)

// Request — тело запроса альтернатив.
type Request struct {
	Subscription *models.AdvisorSubscription `json:"subscription"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Alternatives(ctx context.Context, sub models.Subscription) (advisorservice.Alternatives, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Альтернативы подписке
// @Tags AI
// @Accept json
// @Produce json
// @Param request body Request true "Подписка"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /ai/alternatives [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.alternatives"

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
	if req.Subscription == nil || strings.TrimSpace(req.Subscription.Name) == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Subscription data is required"))
		return
	}

	res, err := h.service.Alternatives(r.Context(), req.Subscription.Subscription())
	if err != nil {
		if errors.Is(err, advisorservice.ErrInvalidRequest) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Subscription data is required"))
			return
		}
		log.Error("failed to find alternatives", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Failed to find alternatives"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
