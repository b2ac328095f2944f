package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/enum"
	"github.com/confetex/api/internal/middleware"
	"github.com/confetex/api/internal/service"
	"github.com/confetex/api/internal/status"
)

// PaymentStore defines the database methods needed by order payment handlers.
type PaymentStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderPayment, error)
	CreateOrderPayment(ctx context.Context, arg database.CreateOrderPaymentParams) (database.OrderPayment, error)
	SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// PaymentHandler handles order payment endpoints.
type PaymentHandler struct {
	store    PaymentStore
	pool     service.TxBeginner
	newStore NewPaymentStore
}

func NewPaymentHandler(store PaymentStore, pool service.TxBeginner, newStore NewPaymentStore) *PaymentHandler {
	return &PaymentHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted at /schools/{sid}/orders/{id}/payments
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Add)
	r.Get("/", h.List)
}

// --- Request / Response types ---

type addPaymentRequest struct {
	Method    string `json:"method"`
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

type paymentResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	Method     string    `json:"method"`
	Amount     string    `json:"amount"`
	Reference  string    `json:"reference,omitempty"`
	RecordedBy uuid.UUID `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

type addPaymentResponse struct {
	Payment    paymentResponse `json:"payment"`
	PaidAmount string          `json:"paid_amount"`
	Balance    string          `json:"balance"`
	Paid       bool            `json:"paid"`
}

// --- Handlers ---

// Add handles POST /schools/{sid}/orders/{id}/payments.
// The balance rule is enforced inside a transaction that locks the order row,
// so two concurrent payments cannot overshoot the total together.
func (h *PaymentHandler) Add(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de encargo inválido")
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "no autenticado")
		return
	}

	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}

	if !enum.ValidPaymentMethod(req.Method) {
		writeDetail(w, http.StatusBadRequest, "método de pago inválido")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "monto inválido")
		return
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		writeDetail(w, http.StatusBadRequest, "el abono debe ser mayor que cero")
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for add payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)

	order, err := txStore.GetOrderForUpdate(r.Context(), database.GetOrderForUpdateParams{
		ID:       orderID,
		SchoolID: schoolID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "encargo no encontrado")
			return
		}
		log.Printf("ERROR: get order for add payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if order.Status == status.OrderCancelled {
		writeDetail(w, http.StatusConflict, "no se pueden registrar abonos en un encargo cancelado")
		return
	}

	totalPaid, err := txStore.SumPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: sum payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	paidSoFar := numericToDecimal(totalPaid)
	balance := numericToDecimal(order.Total).Sub(paidSoFar)

	if balance.LessThanOrEqual(decimal.Zero) {
		writeDetail(w, http.StatusConflict, "el encargo ya está pagado en su totalidad")
		return
	}
	if amount.GreaterThan(balance) {
		writeDetail(w, http.StatusConflict,
			"el abono no puede ser mayor que el saldo pendiente ("+balance.StringFixed(2)+")")
		return
	}

	var reference pgtype.Text
	if req.Reference != "" {
		reference = pgtype.Text{String: req.Reference, Valid: true}
	}

	payment, err := txStore.CreateOrderPayment(r.Context(), database.CreateOrderPaymentParams{
		OrderID:    orderID,
		Method:     req.Method,
		Amount:     decimalToNumeric(amount),
		Reference:  reference,
		RecordedBy: claims.UserID,
	})
	if err != nil {
		log.Printf("ERROR: create payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx for add payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	newPaid := paidSoFar.Add(amount)
	newBalance := balance.Sub(amount)
	writeJSON(w, http.StatusCreated, addPaymentResponse{
		Payment:    dbOrderPaymentToResponse(payment),
		PaidAmount: newPaid.StringFixed(2),
		Balance:    newBalance.StringFixed(2),
		Paid:       newBalance.IsZero(),
	})
}

// List handles GET /schools/{sid}/orders/{id}/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de encargo inválido")
		return
	}

	if _, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, SchoolID: schoolID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "encargo no encontrado")
			return
		}
		log.Printf("ERROR: get order for list payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	payments, err := h.store.ListPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = dbOrderPaymentToResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func dbOrderPaymentToResponse(p database.OrderPayment) paymentResponse {
	return paymentResponse{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Method:     p.Method,
		Amount:     numericString(p.Amount),
		Reference:  textString(p.Reference),
		RecordedBy: p.RecordedBy,
		RecordedAt: p.RecordedAt,
	}
}
