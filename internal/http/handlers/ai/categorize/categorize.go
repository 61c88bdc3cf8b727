// Package categorize реализует HTTP-обработчик подбора категории по названию сервиса.
package categorize

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
	advisorservice "github.com/magabrotheeeer/subscription-tracker/internal/services/advisor"
)

// Request — тело запроса категоризации.
type Request struct {
	ServiceName string `json:"serviceName" example:"Netflix"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Categorize(ctx context.Context, serviceName string) (advisorservice.Categorization, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подобрать категорию
// @Description Сначала ищет сервис в локальном словаре, затем спрашивает языковую модель.
// @Tags AI
// @Accept json
// @Produce json
// @Param request body Request true "Название сервиса"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /ai/categorize [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.categorize"

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
	if strings.TrimSpace(req.ServiceName) == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Service name is required"))
		return
	}

	res, err := h.service.Categorize(r.Context(), req.ServiceName)
	if err != nil {
		if errors.Is(err, advisorservice.ErrInvalidRequest) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Service name is required"))
			return
		}
		log.Error("failed to categorize", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Categorization failed"))
		return
	}

	log.Debug("service categorized", slog.String("category", string(res.Category)), slog.String("source", res.Source))
	render.JSON(w, r, response.StatusOKWithData(res))
}
