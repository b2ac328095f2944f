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

	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/middleware"
	"github.com/confetex/api/internal/service"
	"github.com/confetex/api/internal/status"
)

// OrderStore defines the database methods needed by order handlers.
type OrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	GetOrderItem(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	ReleaseOrderStock(ctx context.Context, orderID uuid.UUID) error
	SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// OrderHandler handles order endpoints.
type OrderHandler struct {
	store    OrderStore
	pool     service.TxBeginner
	newStore NewOrderStore
	svc      *service.OrderService
}

func NewOrderHandler(store OrderStore, pool service.TxBeginner, newStore NewOrderStore, svc *service.OrderService) *OrderHandler {
	return &OrderHandler{store: store, pool: pool, newStore: newStore, svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /schools/{sid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/items/{itemID}/status", h.UpdateItemStatus)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type createOrderRequest struct {
	ClientID     string                   `json:"client_id"`
	ClientName   string                   `json:"client_name"`
	ClientPhone  string                   `json:"client_phone"`
	DeliveryDate string                   `json:"delivery_date"`
	Notes        string                   `json:"notes"`
	Items        []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       int32           `json:"quantity"`
	Measurements   json.RawMessage `json:"measurements,omitempty"`
	EmbroideryText string          `json:"embroidery_text"`
	ReserveStock   bool            `json:"reserve_stock"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     uuid.UUID `json:"school_id"`
	Code         string    `json:"code"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientName   string    `json:"client_name,omitempty"`
	ClientPhone  string    `json:"client_phone,omitempty"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	StatusColor  string    `json:"status_color"`
	NextStatus   string    `json:"next_status,omitempty"`
	Subtotal     string    `json:"subtotal"`
	TaxAmount    string    `json:"tax_amount"`
	Total        string    `json:"total"`
	DeliveryDate string    `json:"delivery_date,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type orderItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int32           `json:"quantity"`
	UnitPrice      string          `json:"unit_price"`
	Subtotal       string          `json:"subtotal"`
	Status         string          `json:"status"`
	StatusLabel    string          `json:"status_label"`
	Measurements   json.RawMessage `json:"measurements,omitempty"`
	EmbroideryText string          `json:"embroidery_text,omitempty"`
	StockReserved  bool            `json:"stock_reserved"`
}

type orderDetailResponse struct {
	orderResponse
	PaidAmount string              `json:"paid_amount"`
	Balance    string              `json:"balance"`
	Items      []orderItemResponse `json:"items"`
}

// --- Handlers ---

// List handles GET /schools/{sid}/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !status.OrderStatus(statusFilter).Valid() {
		writeDetail(w, http.StatusBadRequest, "estado de encargo inválido")
		return
	}

	limit, offset := parsePagination(r)
	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		SchoolID: schoolID,
		Status:   textParam(statusFilter),
		Search:   textParam(r.URL.Query().Get("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /schools/{sid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "no autenticado")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			Measurements:   it.Measurements,
			EmbroideryText: it.EmbroideryText,
			ReserveStock:   it.ReserveStock,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		SchoolID:     schoolID,
		CreatedBy:    claims.UserID,
		ClientID:     req.ClientID,
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		DeliveryDate: req.DeliveryDate,
		Notes:        req.Notes,
		Items:        items,
	})
	if err != nil {
		writeOrderServiceError(w, err)
		return
	}

	itemResp := make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		itemResp[i] = dbOrderItemToResponse(it)
	}
	writeJSON(w, http.StatusCreated, orderDetailResponse{
		orderResponse: dbOrderToResponse(result.Order),
		PaidAmount:    "0.00",
		Balance:       numericString(result.Order.Total),
		Items:         itemResp,
	})
}

// Get handles GET /schools/{sid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de encargo inválido")
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, SchoolID: schoolID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "encargo no encontrado")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	paid, err := h.store.SumPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: sum order payments: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, buildOrderDetail(order, items, paid))
}

// UpdateStatus handles PATCH /schools/{sid}/orders/{id}/status.
// Transitions are forward-only; cancellation goes through the cancel path so
// reserved stock is released.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de encargo inválido")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	target := status.OrderStatus(req.Status)
	if !target.Valid() {
		writeDetail(w, http.StatusBadRequest, "estado de encargo inválido")
		return
	}

	if target == status.OrderCancelled {
		h.cancelOrder(w, r, orderID, schoolID)
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, SchoolID: schoolID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "encargo no encontrado")
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if order.Status.IsTerminal() {
		writeDetail(w, http.StatusConflict, "el encargo ya está en un estado final")
		return
	}
	if !order.Status.CanTransition(target) {
		writeDetail(w, http.StatusConflict, "transición de estado inválida: "+order.Status.Label()+" → "+target.Label())
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:         orderID,
		SchoolID:   schoolID,
		Status:     target,
		PrevStatus: order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race: someone moved the order first.
			writeDetail(w, http.StatusConflict, "el encargo cambió de estado, recargue e intente de nuevo")
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// UpdateItemStatus handles PATCH /schools/{sid}/orders/{id}/items/{itemID}/status.
// Item status moves independently of the order status.
func (h *OrderHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de encargo inválido")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de prenda inválido")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	target := status.OrderStatus(req.Status)
	if !target.Valid() {
		writeDetail(w, http.StatusBadRequest, "estado de prenda inválido")
		return
	}

	// Scope check: the order must belong to the school.
	if _, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, SchoolID: schoolID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "encargo no encontrado")
			return
		}
		log.Printf("ERROR: get order for item status: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	item, err := h.store.GetOrderItem(r.Context(), database.GetOrderItemParams{ID: itemID, OrderID: orderID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "prenda no encontrada")
			return
		}
		log.Printf("ERROR: get order item: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if item.Status.IsTerminal() {
		writeDetail(w, http.StatusConflict, "la prenda ya está en un estado final")
		return
	}
	if !item.Status.CanTransition(target) {
		writeDetail(w, http.StatusConflict, "transición de estado inválida: "+item.Status.Label()+" → "+target.Label())
		return
	}

	updated, err := h.store.UpdateOrderItemStatus(r.Context(), database.UpdateOrderItemStatusParams{
		ID:         itemID,
		OrderID:    orderID,
		Status:     target,
		PrevStatus: item.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusConflict, "la prenda cambió de estado, recargue e intente de nuevo")
			return
		}
		log.Printf("ERROR: update order item status: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbOrderItemToResponse(updated))
}

// Cancel handles DELETE /schools/{sid}/orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de encargo inválido")
		return
	}
	h.cancelOrder(w, r, orderID, schoolID)
}

// cancelOrder cancels in one transaction: lock, flip status, release any
// reserved stock back to the catalog.
func (h *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request, orderID, schoolID uuid.UUID) {
	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for cancel order: %v", err)
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
		log.Printf("ERROR: get order for cancel: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if order.Status == status.OrderDelivered {
		writeDetail(w, http.StatusConflict, "no se puede cancelar un encargo entregado")
		return
	}
	if order.Status == status.OrderCancelled {
		writeDetail(w, http.StatusConflict, "el encargo ya está cancelado")
		return
	}

	cancelled, err := txStore.CancelOrder(r.Context(), database.CancelOrderParams{ID: orderID, SchoolID: schoolID})
	if err != nil {
		log.Printf("ERROR: cancel order: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if err := txStore.ReleaseOrderStock(r.Context(), orderID); err != nil {
		log.Printf("ERROR: release order stock: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx for cancel order: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(cancelled))
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

func writeOrderServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrClientRequired),
		errors.Is(err, service.ErrClientConflict),
		errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, service.ErrInvalidProductID),
		errors.Is(err, service.ErrInvalidDeliveryDate),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrMeasurementsRequired):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: create order: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
	}
}

func buildOrderDetail(order database.Order, items []database.OrderItem, paid pgtype.Numeric) orderDetailResponse {
	itemResp := make([]orderItemResponse, len(items))
	for i, it := range items {
		itemResp[i] = dbOrderItemToResponse(it)
	}
	paidAmount := numericToDecimal(paid)
	balance := numericToDecimal(order.Total).Sub(paidAmount)
	return orderDetailResponse{
		orderResponse: dbOrderToResponse(order),
		PaidAmount:    paidAmount.StringFixed(2),
		Balance:       balance.StringFixed(2),
		Items:         itemResp,
	}
}

func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		SchoolID:     o.SchoolID,
		Code:         o.Code,
		ClientName:   textString(o.ClientName),
		ClientPhone:  textString(o.ClientPhone),
		Status:       string(o.Status),
		StatusLabel:  o.Status.Label(),
		StatusColor:  o.Status.Color(),
		Subtotal:     numericString(o.Subtotal),
		TaxAmount:    numericString(o.TaxAmount),
		Total:        numericString(o.Total),
		DeliveryDate: dateString(o.DeliveryDate),
		Notes:        textString(o.Notes),
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.ClientID.Valid {
		resp.ClientID = uuid.UUID(o.ClientID.Bytes).String()
	}
	if next, ok := o.Status.Next(); ok {
		resp.NextStatus = string(next)
	}
	return resp
}

func dbOrderItemToResponse(it database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:             it.ID,
		ProductID:      it.ProductID,
		Quantity:       it.Quantity,
		UnitPrice:      numericString(it.UnitPrice),
		Subtotal:       numericString(it.Subtotal),
		Status:         string(it.Status),
		StatusLabel:    it.Status.Label(),
		Measurements:   it.Measurements,
		EmbroideryText: textString(it.EmbroideryText),
		StockReserved:  it.StockReserved,
	}
}
