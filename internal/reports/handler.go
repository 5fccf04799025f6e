package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arotkhata/arotkhata/internal/platform/httpx"
)

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/daily", h.daily)
		r.Get("/season/{seasonID}", h.season)
		r.Get("/customers/{customerID}/season/{seasonID}", h.statement)
	})
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	seasonID, err := strconv.ParseInt(r.URL.Query().Get("season_id"), 10, 64)
	if err != nil || seasonID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "season_id is required")
		return
	}
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
			return
		}
	}

	summary, err := h.service.DailySummary(r.Context(), seasonID, day)
	if err != nil {
		h.respondErr(w, err, "daily summary")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) season(w http.ResponseWriter, r *http.Request) {
	seasonID, err := strconv.ParseInt(chi.URLParam(r, "seasonID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid season id")
		return
	}
	summary, err := h.service.SeasonSummary(r.Context(), seasonID)
	if err != nil {
		h.respondErr(w, err, "season summary")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	seasonID, err := strconv.ParseInt(chi.URLParam(r, "seasonID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid season id")
		return
	}
	st, err := h.service.CustomerStatement(r.Context(), customerID, seasonID)
	if err != nil {
		h.respondErr(w, err, "customer statement")
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrBalanceNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}
