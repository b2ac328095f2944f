package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/confetex/api/internal/database"
)

const maxOrderCodeRetries = 3

// taxRate is the IVA applied to order subtotals.
var taxRate = decimal.NewFromFloat(0.19)

// Errors returned by the order service. Messages are user-facing: they travel
// verbatim in the error envelope's detail field.
var (
	ErrEmptyItems           = errors.New("el encargo debe tener al menos una prenda")
	ErrInvalidQuantity      = errors.New("la cantidad debe ser mayor que cero")
	ErrClientRequired       = errors.New("debe indicar un cliente registrado o un cliente externo")
	ErrClientConflict       = errors.New("indique un cliente registrado o uno externo, no ambos")
	ErrInvalidClientID      = errors.New("client_id inválido")
	ErrInvalidProductID     = errors.New("product_id inválido")
	ErrInvalidDeliveryDate  = errors.New("fecha de entrega inválida, use AAAA-MM-DD")
	ErrProductNotFound      = errors.New("producto no encontrado para este colegio")
	ErrProductInactive      = errors.New("el producto no está disponible")
	ErrInsufficientStock    = errors.New("stock insuficiente para reservar la prenda")
	ErrMeasurementsRequired = errors.New("la prenda requiere medidas del cliente")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries.
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, schoolID uuid.UUID) (int32, error)
	GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	ReserveProductStock(ctx context.Context, arg database.ReserveProductStockParams) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), letting the
// service run its queries inside the transaction it opens.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order. Exactly one
// of ClientID or ClientName must be set.
type CreateOrderRequest struct {
	SchoolID     uuid.UUID
	CreatedBy    uuid.UUID
	ClientID     string
	ClientName   string
	ClientPhone  string
	DeliveryDate string // YYYY-MM-DD
	Notes        string
	Items        []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single garment line in the order.
type CreateOrderItemRequest struct {
	ProductID      string
	Quantity       int32
	Measurements   json.RawMessage
	EmbroideryText string
	ReserveStock   bool
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// preparedItem is a priced line waiting for the order row to exist.
type preparedItem struct {
	req       CreateOrderItemRequest
	productID uuid.UUID
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// CreateOrder validates the request, prices each item against the locked
// product row, reserves stock where asked, and writes order plus items in one
// transaction. Retries on order-code unique violations (two transactions can
// read the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	clientID, clientName, clientPhone, err := ResolveClientMode(req.ClientID, req.ClientName, req.ClientPhone)
	if err != nil {
		return nil, err
	}

	var deliveryDate pgtype.Date
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return nil, ErrInvalidDeliveryDate
		}
		deliveryDate = pgtype.Date{Time: t, Valid: true}
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return nil, ErrInvalidProductID
		}
	}

	var result *CreateOrderResult
	for attempt := 0; attempt < maxOrderCodeRetries; attempt++ {
		result, err = s.createOrderTx(ctx, req, clientID, clientName, clientPhone, deliveryDate)
		if err == nil {
			return result, nil
		}
		if !IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("create order: %w", err)
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest,
	clientID pgtype.UUID, clientName, clientPhone pgtype.Text, deliveryDate pgtype.Date) (*CreateOrderResult, error) {

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	subtotal := decimal.Zero
	prepared := make([]preparedItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, _ := uuid.Parse(item.ProductID)

		product, err := store.GetProductForOrder(ctx, database.GetProductForOrderParams{
			ID:       productID,
			SchoolID: req.SchoolID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("get product: %w", err)
		}
		if !product.IsActive {
			return nil, ErrProductInactive
		}
		if product.RequiresMeasurements && !hasMeasurements(item.Measurements) {
			return nil, ErrMeasurementsRequired
		}

		if item.ReserveStock {
			if _, err := store.ReserveProductStock(ctx, database.ReserveProductStockParams{
				ID:       productID,
				Quantity: item.Quantity,
			}); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, ErrInsufficientStock
				}
				return nil, fmt.Errorf("reserve stock: %w", err)
			}
		}

		unitPrice := numericToDecimal(product.Price)
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		subtotal = subtotal.Add(lineSubtotal)
		prepared = append(prepared, preparedItem{
			req:       item,
			productID: productID,
			unitPrice: unitPrice,
			subtotal:  lineSubtotal,
		})
	}

	taxAmount := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(taxAmount)

	seq, err := store.GetNextOrderNumber(ctx, req.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("next order number: %w", err)
	}

	var notes pgtype.Text
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		SchoolID:     req.SchoolID,
		Code:         fmt.Sprintf("PED-%04d", seq),
		ClientID:     clientID,
		ClientName:   clientName,
		ClientPhone:  clientPhone,
		Subtotal:     decimalToNumeric(subtotal),
		TaxAmount:    decimalToNumeric(taxAmount),
		Total:        decimalToNumeric(total),
		DeliveryDate: deliveryDate,
		Notes:        notes,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	items := make([]database.OrderItem, 0, len(prepared))
	for _, p := range prepared {
		var embroidery pgtype.Text
		if p.req.EmbroideryText != "" {
			embroidery = pgtype.Text{String: p.req.EmbroideryText, Valid: true}
		}
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:        order.ID,
			ProductID:      p.productID,
			Quantity:       p.req.Quantity,
			UnitPrice:      decimalToNumeric(p.unitPrice),
			Subtotal:       decimalToNumeric(p.subtotal),
			Measurements:   p.req.Measurements,
			EmbroideryText: embroidery,
			StockReserved:  p.req.ReserveStock,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CreateOrderResult{Order: order, Items: items}, nil
}

// ResolveClientMode enforces the exclusive client modes: a registered
// client_id or an external name (+ optional phone), never both, never neither.
func ResolveClientMode(clientID, clientName, clientPhone string) (pgtype.UUID, pgtype.Text, pgtype.Text, error) {
	var id pgtype.UUID
	var name, phone pgtype.Text

	switch {
	case clientID != "" && clientName != "":
		return id, name, phone, ErrClientConflict
	case clientID == "" && clientName == "":
		return id, name, phone, ErrClientRequired
	case clientID != "":
		parsed, err := uuid.Parse(clientID)
		if err != nil {
			return id, name, phone, ErrInvalidClientID
		}
		id = pgtype.UUID{Bytes: parsed, Valid: true}
	default:
		name = pgtype.Text{String: clientName, Valid: true}
		if clientPhone != "" {
			phone = pgtype.Text{String: clientPhone, Valid: true}
		}
	}
	return id, name, phone, nil
}

func hasMeasurements(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return len(m) > 0
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
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
