package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

const maxAlterationCodeRetries = 3

// AlterationStore defines the database methods needed by alteration handlers.
type AlterationStore interface {
	GetNextAlterationNumber(ctx context.Context) (int32, error)
	CreateAlteration(ctx context.Context, arg database.CreateAlterationParams) (database.Alteration, error)
	GetAlteration(ctx context.Context, id uuid.UUID) (database.Alteration, error)
	GetAlterationForUpdate(ctx context.Context, id uuid.UUID) (database.Alteration, error)
	ListAlterations(ctx context.Context, arg database.ListAlterationsParams) ([]database.Alteration, error)
	UpdateAlteration(ctx context.Context, arg database.UpdateAlterationParams) (database.Alteration, error)
	UpdateAlterationStatus(ctx context.Context, arg database.UpdateAlterationStatusParams) (database.Alteration, error)
	CancelAlteration(ctx context.Context, id uuid.UUID) (database.Alteration, error)
	CreateAlterationPayment(ctx context.Context, arg database.CreateAlterationPaymentParams) (database.AlterationPayment, error)
	ListPaymentsByAlteration(ctx context.Context, alterationID uuid.UUID) ([]database.AlterationPayment, error)
	SumPaymentsByAlteration(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error)
}

// NewAlterationStore creates an AlterationStore from a DBTX (pool or tx).
type NewAlterationStore func(db database.DBTX) AlterationStore

// AlterationHandler handles alteration endpoints. Alterations live outside the
// school scope: the workshop serves walk-in clients from every school.
type AlterationHandler struct {
	store    AlterationStore
	pool     service.TxBeginner
	newStore NewAlterationStore
}

func NewAlterationHandler(store AlterationStore, pool service.TxBeginner, newStore NewAlterationStore) *AlterationHandler {
	return &AlterationHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterRoutes registers alteration endpoints on the given Chi router.
// Expected to be mounted at /global/alterations
func (h *AlterationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/pay", h.AddPayment)
	r.Get("/{id}/payments", h.ListPayments)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type createAlterationRequest struct {
	ClientID          string `json:"client_id"`
	ClientName        string `json:"client_name"`
	ClientPhone       string `json:"client_phone"`
	Garment           string `json:"garment"`
	Description       string `json:"description"`
	Cost              string `json:"cost"`
	ReceivedDate      string `json:"received_date"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

type updateAlterationRequest struct {
	Garment           string `json:"garment"`
	Description       string `json:"description"`
	Cost              string `json:"cost"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

type alterationPaymentRequest struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

type alterationResponse struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	ClientID          string    `json:"client_id,omitempty"`
	ClientName        string    `json:"client_name,omitempty"`
	ClientPhone       string    `json:"client_phone,omitempty"`
	Garment           string    `json:"garment"`
	Description       string    `json:"description,omitempty"`
	Cost              string    `json:"cost"`
	Status            string    `json:"status"`
	StatusLabel       string    `json:"status_label"`
	StatusColor       string    `json:"status_color"`
	NextStatus        string    `json:"next_status,omitempty"`
	ReceivedDate      string    `json:"received_date,omitempty"`
	EstimatedDelivery string    `json:"estimated_delivery,omitempty"`
	CreatedBy         uuid.UUID `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type alterationDetailResponse struct {
	alterationResponse
	PaidAmount string `json:"paid_amount"`
	Balance    string `json:"balance"`
}

type alterationPaymentResponse struct {
	ID           uuid.UUID `json:"id"`
	AlterationID uuid.UUID `json:"alteration_id"`
	Method       string    `json:"method"`
	Amount       string    `json:"amount"`
	RecordedBy   uuid.UUID `json:"recorded_by"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type addAlterationPaymentResponse struct {
	Payment    alterationPaymentResponse `json:"payment"`
	PaidAmount string                    `json:"paid_amount"`
	Balance    string                    `json:"balance"`
	Paid       bool                      `json:"paid"`
}

// --- Handlers ---

// List handles GET /global/alterations.
func (h *AlterationHandler) List(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !status.AlterationStatus(statusFilter).Valid() {
		writeDetail(w, http.StatusBadRequest, "estado de arreglo inválido")
		return
	}

	limit, offset := parsePagination(r)
	alterations, err := h.store.ListAlterations(r.Context(), database.ListAlterationsParams{
		Status: textParam(statusFilter),
		Search: textParam(r.URL.Query().Get("search")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list alterations: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]alterationResponse, len(alterations))
	for i, a := range alterations {
		resp[i] = dbAlterationToResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /global/alterations.
func (h *AlterationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "no autenticado")
		return
	}

	var req createAlterationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}

	if req.Garment == "" {
		writeDetail(w, http.StatusBadRequest, "la prenda del arreglo es obligatoria")
		return
	}

	clientID, clientName, clientPhone, err := service.ResolveClientMode(req.ClientID, req.ClientName, req.ClientPhone)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	cost, err := decimal.NewFromString(req.Cost)
	if err != nil || cost.LessThan(decimal.Zero) {
		writeDetail(w, http.StatusBadRequest, "costo inválido")
		return
	}

	receivedDate, ok := parseDateField(w, req.ReceivedDate, "fecha de recepción inválida, use AAAA-MM-DD")
	if !ok {
		return
	}
	if !receivedDate.Valid {
		receivedDate = pgtype.Date{Time: time.Now(), Valid: true}
	}
	estimatedDelivery, ok := parseDateField(w, req.EstimatedDelivery, "fecha estimada inválida, use AAAA-MM-DD")
	if !ok {
		return
	}

	var description pgtype.Text
	if req.Description != "" {
		description = pgtype.Text{String: req.Description, Valid: true}
	}

	// Two concurrent creates can read the same MAX; retry on the code's unique
	// violation.
	var alteration database.Alteration
	for attempt := 0; attempt < maxAlterationCodeRetries; attempt++ {
		seq, err := h.store.GetNextAlterationNumber(r.Context())
		if err != nil {
			log.Printf("ERROR: next alteration number: %v", err)
			writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
			return
		}

		alteration, err = h.store.CreateAlteration(r.Context(), database.CreateAlterationParams{
			Code:              fmt.Sprintf("ARR-%04d", seq),
			ClientID:          clientID,
			ClientName:        clientName,
			ClientPhone:       clientPhone,
			Garment:           req.Garment,
			Description:       description,
			Cost:              decimalToNumeric(cost),
			ReceivedDate:      receivedDate,
			EstimatedDelivery: estimatedDelivery,
			CreatedBy:         claims.UserID,
		})
		if err == nil {
			break
		}
		if !service.IsUniqueViolation(err) {
			log.Printf("ERROR: create alteration: %v", err)
			writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
			return
		}
		if attempt == maxAlterationCodeRetries-1 {
			log.Printf("ERROR: create alteration: code retries exhausted: %v", err)
			writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
			return
		}
	}

	writeJSON(w, http.StatusCreated, alterationDetailResponse{
		alterationResponse: dbAlterationToResponse(alteration),
		PaidAmount:         "0.00",
		Balance:            numericString(alteration.Cost),
	})
}

// Get handles GET /global/alterations/{id}.
func (h *AlterationHandler) Get(w http.ResponseWriter, r *http.Request) {
	alterationID, ok := parseAlterationID(w, r)
	if !ok {
		return
	}

	alteration, err := h.store.GetAlteration(r.Context(), alterationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "arreglo no encontrado")
			return
		}
		log.Printf("ERROR: get alteration: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	paid, err := h.store.SumPaymentsByAlteration(r.Context(), alterationID)
	if err != nil {
		log.Printf("ERROR: sum alteration payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	paidAmount := numericToDecimal(paid)
	balance := numericToDecimal(alteration.Cost).Sub(paidAmount)
	writeJSON(w, http.StatusOK, alterationDetailResponse{
		alterationResponse: dbAlterationToResponse(alteration),
		PaidAmount:         paidAmount.StringFixed(2),
		Balance:            balance.StringFixed(2),
	})
}

// Update handles PATCH /global/alterations/{id}.
func (h *AlterationHandler) Update(w http.ResponseWriter, r *http.Request) {
	alterationID, ok := parseAlterationID(w, r)
	if !ok {
		return
	}

	var req updateAlterationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if req.Garment == "" {
		writeDetail(w, http.StatusBadRequest, "la prenda del arreglo es obligatoria")
		return
	}
	cost, err := decimal.NewFromString(req.Cost)
	if err != nil || cost.LessThan(decimal.Zero) {
		writeDetail(w, http.StatusBadRequest, "costo inválido")
		return
	}
	estimatedDelivery, ok := parseDateField(w, req.EstimatedDelivery, "fecha estimada inválida, use AAAA-MM-DD")
	if !ok {
		return
	}

	current, err := h.store.GetAlteration(r.Context(), alterationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "arreglo no encontrado")
			return
		}
		log.Printf("ERROR: get alteration for update: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if current.Status.IsTerminal() {
		writeDetail(w, http.StatusConflict, "no se puede editar un arreglo en estado final")
		return
	}

	var description pgtype.Text
	if req.Description != "" {
		description = pgtype.Text{String: req.Description, Valid: true}
	}

	updated, err := h.store.UpdateAlteration(r.Context(), database.UpdateAlterationParams{
		ID:                alterationID,
		Garment:           req.Garment,
		Description:       description,
		Cost:              decimalToNumeric(cost),
		EstimatedDelivery: estimatedDelivery,
	})
	if err != nil {
		log.Printf("ERROR: update alteration: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbAlterationToResponse(updated))
}

// UpdateStatus handles PATCH /global/alterations/{id}/status.
func (h *AlterationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	alterationID, ok := parseAlterationID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	target := status.AlterationStatus(req.Status)
	if !target.Valid() {
		writeDetail(w, http.StatusBadRequest, "estado de arreglo inválido")
		return
	}

	alteration, err := h.store.GetAlteration(r.Context(), alterationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "arreglo no encontrado")
			return
		}
		log.Printf("ERROR: get alteration for status update: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if alteration.Status.IsTerminal() {
		writeDetail(w, http.StatusConflict, "el arreglo ya está en un estado final")
		return
	}
	if !alteration.Status.CanTransition(target) {
		writeDetail(w, http.StatusConflict, "transición de estado inválida: "+alteration.Status.Label()+" → "+target.Label())
		return
	}

	if target == status.AlterationCancelled {
		cancelled, err := h.store.CancelAlteration(r.Context(), alterationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeDetail(w, http.StatusConflict, "el arreglo ya está en un estado final")
				return
			}
			log.Printf("ERROR: cancel alteration: %v", err)
			writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
			return
		}
		writeJSON(w, http.StatusOK, dbAlterationToResponse(cancelled))
		return
	}

	updated, err := h.store.UpdateAlterationStatus(r.Context(), database.UpdateAlterationStatusParams{
		ID:         alterationID,
		Status:     target,
		PrevStatus: alteration.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusConflict, "el arreglo cambió de estado, recargue e intente de nuevo")
			return
		}
		log.Printf("ERROR: update alteration status: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbAlterationToResponse(updated))
}

// AddPayment handles POST /global/alterations/{id}/pay.
func (h *AlterationHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	alterationID, ok := parseAlterationID(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "no autenticado")
		return
	}

	var req alterationPaymentRequest
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
		log.Printf("ERROR: begin tx for alteration payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)

	alteration, err := txStore.GetAlterationForUpdate(r.Context(), alterationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "arreglo no encontrado")
			return
		}
		log.Printf("ERROR: get alteration for payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if alteration.Status == status.AlterationCancelled {
		writeDetail(w, http.StatusConflict, "no se pueden registrar abonos en un arreglo cancelado")
		return
	}

	totalPaid, err := txStore.SumPaymentsByAlteration(r.Context(), alterationID)
	if err != nil {
		log.Printf("ERROR: sum alteration payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	paidSoFar := numericToDecimal(totalPaid)
	balance := numericToDecimal(alteration.Cost).Sub(paidSoFar)

	if balance.LessThanOrEqual(decimal.Zero) {
		writeDetail(w, http.StatusConflict, "el arreglo ya está pagado en su totalidad")
		return
	}
	if amount.GreaterThan(balance) {
		writeDetail(w, http.StatusConflict,
			"el abono no puede ser mayor que el saldo pendiente ("+balance.StringFixed(2)+")")
		return
	}

	payment, err := txStore.CreateAlterationPayment(r.Context(), database.CreateAlterationPaymentParams{
		AlterationID: alterationID,
		Method:       req.Method,
		Amount:       decimalToNumeric(amount),
		RecordedBy:   claims.UserID,
	})
	if err != nil {
		log.Printf("ERROR: create alteration payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx for alteration payment: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	newPaid := paidSoFar.Add(amount)
	newBalance := balance.Sub(amount)
	writeJSON(w, http.StatusCreated, addAlterationPaymentResponse{
		Payment:    dbAlterationPaymentToResponse(payment),
		PaidAmount: newPaid.StringFixed(2),
		Balance:    newBalance.StringFixed(2),
		Paid:       newBalance.IsZero(),
	})
}

// ListPayments handles GET /global/alterations/{id}/payments.
func (h *AlterationHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	alterationID, ok := parseAlterationID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetAlteration(r.Context(), alterationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "arreglo no encontrado")
			return
		}
		log.Printf("ERROR: get alteration for list payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	payments, err := h.store.ListPaymentsByAlteration(r.Context(), alterationID)
	if err != nil {
		log.Printf("ERROR: list alteration payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]alterationPaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = dbAlterationPaymentToResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles DELETE /global/alterations/{id}.
func (h *AlterationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	alterationID, ok := parseAlterationID(w, r)
	if !ok {
		return
	}

	cancelled, err := h.store.CancelAlteration(r.Context(), alterationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not found, or already terminal; distinguish for the caller.
			if _, getErr := h.store.GetAlteration(r.Context(), alterationID); getErr != nil {
				writeDetail(w, http.StatusNotFound, "arreglo no encontrado")
				return
			}
			writeDetail(w, http.StatusConflict, "el arreglo ya está en un estado final")
			return
		}
		log.Printf("ERROR: cancel alteration: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbAlterationToResponse(cancelled))
}

// --- Helpers ---

func parseAlterationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de arreglo inválido")
		return uuid.Nil, false
	}
	return id, true
}

func parseDateField(w http.ResponseWriter, value, msg string) (pgtype.Date, bool) {
	if value == "" {
		return pgtype.Date{}, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, msg)
		return pgtype.Date{}, false
	}
	return pgtype.Date{Time: t, Valid: true}, true
}

func dbAlterationToResponse(a database.Alteration) alterationResponse {
	resp := alterationResponse{
		ID:                a.ID,
		Code:              a.Code,
		ClientName:        textString(a.ClientName),
		ClientPhone:       textString(a.ClientPhone),
		Garment:           a.Garment,
		Description:       textString(a.Description),
		Cost:              numericString(a.Cost),
		Status:            string(a.Status),
		StatusLabel:       a.Status.Label(),
		StatusColor:       a.Status.Color(),
		ReceivedDate:      dateString(a.ReceivedDate),
		EstimatedDelivery: dateString(a.EstimatedDelivery),
		CreatedBy:         a.CreatedBy,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.ClientID.Valid {
		resp.ClientID = uuid.UUID(a.ClientID.Bytes).String()
	}
	if next, ok := a.Status.Next(); ok {
		resp.NextStatus = string(next)
	}
	return resp
}

func dbAlterationPaymentToResponse(p database.AlterationPayment) alterationPaymentResponse {
	return alterationPaymentResponse{
		ID:           p.ID,
		AlterationID: p.AlterationID,
		Method:       p.Method,
		Amount:       numericString(p.Amount),
		RecordedBy:   p.RecordedBy,
		RecordedAt:   p.RecordedAt,
	}
}
