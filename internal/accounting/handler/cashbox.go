// Package handler exposes the Caja Menor / Caja Mayor ledger: manual income
// and expense entries per school, plus per-box balance summaries.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/enum"
	"github.com/confetex/api/internal/middleware"
	"github.com/confetex/api/internal/service"
)

const maxTransactionCodeRetries = 3

// --- Store interface ---

type CashboxStore interface {
	GetNextCashTransactionNumber(ctx context.Context, schoolID uuid.UUID) (int32, error)
	CreateCashTransaction(ctx context.Context, arg database.CreateCashTransactionParams) (database.CashTransaction, error)
	ListCashTransactions(ctx context.Context, arg database.ListCashTransactionsParams) ([]database.CashTransaction, error)
	SummarizeCashBoxes(ctx context.Context, schoolID uuid.UUID) ([]database.CashBoxSummaryRow, error)
}

// --- CashboxHandler ---

type CashboxHandler struct {
	store CashboxStore
}

func NewCashboxHandler(store CashboxStore) *CashboxHandler {
	return &CashboxHandler{store: store}
}

// RegisterRoutes registers accounting endpoints on the given Chi router.
// Expected to be mounted at /schools/{sid}/accounting
func (h *CashboxHandler) RegisterRoutes(r chi.Router) {
	r.Get("/transactions", h.ListTransactions)
	r.Post("/transactions", h.CreateTransaction)
	r.Get("/summary", h.Summary)
}

// --- Request / Response types ---

type createTransactionRequest struct {
	Box          string `json:"box"`
	Kind         string `json:"kind"`
	Concept      string `json:"concept"`
	Amount       string `json:"amount"`
	EntryDate    string `json:"entry_date"`
	OrderID      string `json:"order_id"`
	AlterationID string `json:"alteration_id"`
}

type transactionResponse struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     uuid.UUID `json:"school_id"`
	Box          string    `json:"box"`
	Kind         string    `json:"kind"`
	Code         string    `json:"code"`
	Concept      string    `json:"concept"`
	Amount       string    `json:"amount"`
	EntryDate    string    `json:"entry_date"`
	OrderID      string    `json:"order_id,omitempty"`
	AlterationID string    `json:"alteration_id,omitempty"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type boxSummaryResponse struct {
	Box     string `json:"box"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

// --- Handlers ---

// ListTransactions handles GET /schools/{sid}/accounting/transactions.
// Supports ?box=, ?kind=, ?start_date=, ?end_date= filters.
func (h *CashboxHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	box := r.URL.Query().Get("box")
	if box != "" && !enum.ValidCashBox(box) {
		writeDetail(w, http.StatusBadRequest, "caja inválida")
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind != "" && !enum.ValidCashKind(kind) {
		writeDetail(w, http.StatusBadRequest, "tipo de movimiento inválido")
		return
	}
	startDate, ok := parseDateQuery(w, r, "start_date")
	if !ok {
		return
	}
	endDate, ok := parseDateQuery(w, r, "end_date")
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	txs, err := h.store.ListCashTransactions(r.Context(), database.ListCashTransactionsParams{
		SchoolID:  schoolID,
		Box:       textParam(box),
		Kind:      textParam(kind),
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		log.Printf("ERROR: list cash transactions: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = dbTransactionToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTransaction handles POST /schools/{sid}/accounting/transactions.
func (h *CashboxHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "no autenticado")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}

	if !enum.ValidCashBox(req.Box) {
		writeDetail(w, http.StatusBadRequest, "caja inválida")
		return
	}
	if !enum.ValidCashKind(req.Kind) {
		writeDetail(w, http.StatusBadRequest, "tipo de movimiento inválido")
		return
	}
	if req.Concept == "" {
		writeDetail(w, http.StatusBadRequest, "el concepto es obligatorio")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		writeDetail(w, http.StatusBadRequest, "el monto debe ser mayor que cero")
		return
	}

	entryDate := pgtype.Date{Time: time.Now(), Valid: true}
	if req.EntryDate != "" {
		t, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "fecha inválida, use AAAA-MM-DD")
			return
		}
		entryDate = pgtype.Date{Time: t, Valid: true}
	}

	orderID, ok := parseOptionalUUID(w, req.OrderID, "order_id inválido")
	if !ok {
		return
	}
	alterationID, ok := parseOptionalUUID(w, req.AlterationID, "alteration_id inválido")
	if !ok {
		return
	}

	var tx database.CashTransaction
	for attempt := 0; attempt < maxTransactionCodeRetries; attempt++ {
		seq, err := h.store.GetNextCashTransactionNumber(r.Context(), schoolID)
		if err != nil {
			log.Printf("ERROR: next cash transaction number: %v", err)
			writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
			return
		}

		tx, err = h.store.CreateCashTransaction(r.Context(), database.CreateCashTransactionParams{
			SchoolID:     schoolID,
			Box:          req.Box,
			Kind:         req.Kind,
			Code:         fmt.Sprintf("TRX-%04d", seq),
			Concept:      req.Concept,
			Amount:       decimalToNumeric(amount),
			EntryDate:    entryDate,
			OrderID:      orderID,
			AlterationID: alterationID,
			CreatedBy:    claims.UserID,
		})
		if err == nil {
			break
		}
		if !service.IsUniqueViolation(err) || attempt == maxTransactionCodeRetries-1 {
			log.Printf("ERROR: create cash transaction: %v", err)
			writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
			return
		}
	}

	writeJSON(w, http.StatusCreated, dbTransactionToResponse(tx))
}

// Summary handles GET /schools/{sid}/accounting/summary: income, expense, and
// balance per box.
func (h *CashboxHandler) Summary(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	rows, err := h.store.SummarizeCashBoxes(r.Context(), schoolID)
	if err != nil {
		log.Printf("ERROR: summarize cash boxes: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]boxSummaryResponse, len(rows))
	for i, row := range rows {
		income := numericToDecimal(row.Income)
		expense := numericToDecimal(row.Expense)
		resp[i] = boxSummaryResponse{
			Box:     row.Box,
			Income:  income.StringFixed(2),
			Expense: expense.StringFixed(2),
			Balance: income.Sub(expense).StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func parseSchoolID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	schoolID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de colegio inválido")
		return uuid.Nil, false
	}
	return schoolID, true
}

func parseDateQuery(w http.ResponseWriter, r *http.Request, name string) (pgtype.Date, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return pgtype.Date{}, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, name+" inválida, use AAAA-MM-DD")
		return pgtype.Date{}, false
	}
	return pgtype.Date{Time: t, Valid: true}, true
}

func parseOptionalUUID(w http.ResponseWriter, s, msg string) (pgtype.UUID, bool) {
	if s == "" {
		return pgtype.UUID{}, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, msg)
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: id, Valid: true}, true
}

func parsePagination(r *http.Request) (limit, offset int32) {
	limit = 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			if v > 200 {
				v = 200
			}
			limit = int32(v)
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = int32(v)
		}
	}
	return limit, offset
}

func textParam(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

func dbTransactionToResponse(t database.CashTransaction) transactionResponse {
	resp := transactionResponse{
		ID:        t.ID,
		SchoolID:  t.SchoolID,
		Box:       t.Box,
		Kind:      t.Kind,
		Code:      t.Code,
		Concept:   t.Concept,
		Amount:    numericToDecimal(t.Amount).StringFixed(2),
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
	if t.EntryDate.Valid {
		resp.EntryDate = t.EntryDate.Time.Format("2006-01-02")
	}
	if t.OrderID.Valid {
		resp.OrderID = uuid.UUID(t.OrderID.Bytes).String()
	}
	if t.AlterationID.Valid {
		resp.AlterationID = uuid.UUID(t.AlterationID.Bytes).String()
	}
	return resp
}
