// Package simulate реализует HTTP-обработчик симулятора трат.
// Сеанс симуляции целиком приходит в запросе и на сервере не хранится.
package simulate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Simulate(ctx context.Context, session billing.Session) (billing.SimulationResult, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Симуляция трат
// @Description Пересчитывает месячные траты с исключёнными подписками и изменёнными стоимостями или числом плательщиков.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body billing.Session true "Сеанс симуляции"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Недопустимые переопределения"
// @Failure 500 {object} response.ErrorResponse
// @Router /simulator [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.simulate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var session billing.Session
	if err := render.DecodeJSON(r.Body, &session); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	res, err := h.service.Simulate(r.Context(), session)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidInput) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid simulation session"))
			return
		}
		log.Error("failed to simulate", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not simulate"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
