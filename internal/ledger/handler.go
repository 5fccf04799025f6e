package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arotkhata/arotkhata/internal/platform/httpx"
	"github.com/arotkhata/arotkhata/internal/shared"
)

// Handler wires HTTP endpoints for transactions, payments and balances.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.listTransactions)
		r.Post("/", h.createTransaction)
		r.Get("/{id}", h.showTransaction)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.listPayments)
		r.Post("/", h.recordPayment)
	})
	r.Route("/balances", func(r chi.Router) {
		r.Get("/season/{seasonID}", h.listBalances)
		r.Get("/season/{seasonID}/customer/{customerID}", h.showBalance)
	})
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}

	txn, err := h.service.CreateTransaction(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "create transaction")
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) showTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaction id")
		return
	}
	txn, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get transaction")
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	req := ListTransactionsRequest{
		CustomerID: queryInt64(r, "customer_id"),
		SeasonID:   queryInt64(r, "season_id"),
		Status:     PaymentStatus(r.URL.Query().Get("status")),
		Limit:      int(queryInt64(r, "limit")),
		Offset:     int(queryInt64(r, "offset")),
	}

	txns, total, err := h.service.ListTransactions(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "list transactions")
		return
	}

	page := 1
	if req.Limit > 0 {
		page = req.Offset/req.Limit + 1
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"pagination":   shared.NewPagination(page, req.Limit, total),
	})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "record payment")
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	req := ListPaymentsRequest{
		CustomerID:    queryInt64(r, "customer_id"),
		SeasonID:      queryInt64(r, "season_id"),
		TransactionID: queryInt64(r, "transaction_id"),
		Limit:         int(queryInt64(r, "limit")),
		Offset:        int(queryInt64(r, "offset")),
	}

	payments, err := h.service.ListPayments(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, "list payments")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) listBalances(w http.ResponseWriter, r *http.Request) {
	seasonID, err := strconv.ParseInt(chi.URLParam(r, "seasonID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid season id")
		return
	}
	balances, err := h.service.ListCustomerBalances(r.Context(), seasonID)
	if err != nil {
		h.respondErr(w, err, "list balances")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balances": balances})
}

func (h *Handler) showBalance(w http.ResponseWriter, r *http.Request) {
	seasonID, err1 := strconv.ParseInt(chi.URLParam(r, "seasonID"), 10, 64)
	customerID, err2 := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	balance, err := h.service.GetCustomerBalance(r.Context(), customerID, seasonID)
	if err != nil {
		h.respondErr(w, err, "get balance")
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrCustomerNotFound), errors.Is(err, ErrTransactionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrCustomerMismatch), errors.Is(err, ErrNoItems), errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if v < 0 {
		return 0
	}
	return v
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
