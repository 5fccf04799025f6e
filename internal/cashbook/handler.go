package cashbook

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arotkhata/arotkhata/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the cash book.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers cash book routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/cashbook", func(r chi.Router) {
		r.Get("/balance/{seasonID}", h.showBalance)
		r.Route("/funds", func(r chi.Router) {
			r.Get("/", h.listFundInputs)
			r.Post("/", h.addFundInput)
		})
		r.Route("/incomes", func(r chi.Router) {
			r.Get("/", h.listIncomes)
			r.Post("/", h.addIncome)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.listExpenses)
			r.Post("/", h.addExpense)
		})
	})
}

func (h *Handler) showBalance(w http.ResponseWriter, r *http.Request) {
	seasonID, err := strconv.ParseInt(chi.URLParam(r, "seasonID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid season id")
		return
	}
	cb, err := h.service.CashBalance(r.Context(), seasonID)
	if err != nil {
		h.respondErr(w, err, "cash balance")
		return
	}
	httpx.JSON(w, http.StatusOK, cb)
}

func (h *Handler) addFundInput(w http.ResponseWriter, r *http.Request) {
	var req CreateFundInputRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	f, err := h.service.AddFundInput(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "add fund input")
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) listFundInputs(w http.ResponseWriter, r *http.Request) {
	seasonID := queryInt64(r, "season_id")
	items, err := h.service.ListFundInputs(r.Context(), seasonID)
	if err != nil {
		h.respondErr(w, err, "list fund inputs")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"fund_inputs": items})
}

func (h *Handler) addIncome(w http.ResponseWriter, r *http.Request) {
	var req CreateIncomeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	in, err := h.service.AddIncome(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "add income")
		return
	}
	httpx.JSON(w, http.StatusCreated, in)
}

func (h *Handler) listIncomes(w http.ResponseWriter, r *http.Request) {
	seasonID := queryInt64(r, "season_id")
	items, err := h.service.ListIncomes(r.Context(), seasonID)
	if err != nil {
		h.respondErr(w, err, "list incomes")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"incomes": items})
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	e, err := h.service.AddExpense(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "add expense")
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	seasonID := queryInt64(r, "season_id")
	items, err := h.service.ListExpenses(r.Context(), seasonID)
	if err != nil {
		h.respondErr(w, err, "list expenses")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": items})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

func queryInt64(r *http.Request, key string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return fields
}
