// Package list реализует HTTP-обработчик списка подписок с фильтром
// по категории и поиском по названию.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Подписки от новых к старым. category=all или пустое значение отключает фильтр.
// @Tags Subscriptions
// @Produce json
// @Param category query string false "Категория"
// @Param status query string false "Состояние: all, active, canceled"
// @Param q query string false "Поиск по названию"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.ListFilter{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" && category != "all" {
		c, ok := models.LookupCategory(category)
		if !ok {
			log.Info("unknown category filter", slog.String("category", category))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid category"))
			return
		}
		filter.Category = c
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" && status != "all" {
		st, ok := models.LookupStatus(status)
		if !ok {
			log.Info("unknown status filter", slog.String("status", status))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid status"))
			return
		}
		filter.Status = st
	}

	res, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list subscriptions"))
		return
	}
	if res == nil {
		res = []models.Subscription{}
	}

	log.Debug("subscriptions listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":         len(res),
		"subscriptions": res,
	}))
}
