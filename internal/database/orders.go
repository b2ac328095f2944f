package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/confetex/api/internal/status"
)

const orderColumns = `id, school_id, code, client_id, client_name, client_phone, status,
	subtotal, tax_amount, total, delivery_date, notes, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.SchoolID, &o.Code, &o.ClientID, &o.ClientName, &o.ClientPhone,
		&o.Status, &o.Subtotal, &o.TaxAmount, &o.Total, &o.DeliveryDate, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// GetNextOrderNumber returns the next per-school sequence number used to build
// the order code. Callers run it inside the creating transaction.
func (q *Queries) GetNextOrderNumber(ctx context.Context, schoolID uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(SUBSTRING(code FROM 5) AS INT)), 0) + 1
		 FROM orders WHERE school_id = $1`, schoolID).Scan(&n)
	return n, err
}

type CreateOrderParams struct {
	SchoolID     uuid.UUID
	Code         string
	ClientID     pgtype.UUID
	ClientName   pgtype.Text
	ClientPhone  pgtype.Text
	Subtotal     pgtype.Numeric
	TaxAmount    pgtype.Numeric
	Total        pgtype.Numeric
	DeliveryDate pgtype.Date
	Notes        pgtype.Text
	CreatedBy    uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (school_id, code, client_id, client_name, client_phone, status,
			subtotal, tax_amount, total, delivery_date, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8, $9, $10, $11)
		RETURNING `+orderColumns,
		arg.SchoolID, arg.Code, arg.ClientID, arg.ClientName, arg.ClientPhone,
		arg.Subtotal, arg.TaxAmount, arg.Total, arg.DeliveryDate, arg.Notes, arg.CreatedBy)
	return scanOrder(row)
}

type GetOrderParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND school_id = $2`,
		arg.ID, arg.SchoolID)
	return scanOrder(row)
}

type GetOrderForUpdateParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
}

// GetOrderForUpdate locks the order row to serialize concurrent payment and
// cancellation writes.
func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderForUpdateParams) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND school_id = $2 FOR NO KEY UPDATE`,
		arg.ID, arg.SchoolID)
	return scanOrder(row)
}

type ListOrdersParams struct {
	SchoolID uuid.UUID
	Status   pgtype.Text
	Search   pgtype.Text
	Limit    int32
	Offset   int32
}

// ListOrders filters by status and by a search term matched against the order
// code and the client name (registered clients included via join).
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT o.id, o.school_id, o.code, o.client_id, o.client_name, o.client_phone, o.status,
			o.subtotal, o.tax_amount, o.total, o.delivery_date, o.notes, o.created_by, o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN clients c ON c.id = o.client_id
		WHERE o.school_id = $1
		  AND ($2::text IS NULL OR o.status = $2)
		  AND ($3::text IS NULL
			OR o.code ILIKE '%' || $3 || '%'
			OR o.client_name ILIKE '%' || $3 || '%'
			OR c.name ILIKE '%' || $3 || '%')
		ORDER BY o.created_at DESC
		LIMIT $4 OFFSET $5`,
		arg.SchoolID, arg.Status, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	SchoolID   uuid.UUID
	Status     status.OrderStatus
	PrevStatus status.OrderStatus
}

// UpdateOrderStatus is a compare-and-set: it only writes if the status is still
// the one the caller validated against, surfacing races as pgx.ErrNoRows.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND school_id = $2 AND status = $4
		RETURNING `+orderColumns,
		arg.ID, arg.SchoolID, arg.Status, arg.PrevStatus)
	return scanOrder(row)
}

type CancelOrderParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
}

// CancelOrder enforces the precondition atomically: only non-terminal orders
// can be cancelled. No rows updated means not found or already terminal.
func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND school_id = $2 AND status NOT IN ('delivered', 'cancelled')
		RETURNING `+orderColumns,
		arg.ID, arg.SchoolID)
	return scanOrder(row)
}

const orderItemColumns = `id, order_id, product_id, quantity, unit_price, subtotal, status,
	measurements, embroidery_text, stock_reserved, created_at, updated_at`

func scanOrderItem(row pgx.Row) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal,
		&it.Status, &it.Measurements, &it.EmbroideryText, &it.StockReserved, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

type CreateOrderItemParams struct {
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	Quantity       int32
	UnitPrice      pgtype.Numeric
	Subtotal       pgtype.Numeric
	Measurements   []byte
	EmbroideryText pgtype.Text
	StockReserved  bool
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, status,
			measurements, embroidery_text, stock_reserved)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8)
		RETURNING `+orderItemColumns,
		arg.OrderID, arg.ProductID, arg.Quantity, arg.UnitPrice, arg.Subtotal,
		arg.Measurements, arg.EmbroideryText, arg.StockReserved)
	return scanOrderItem(row)
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type GetOrderItemParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

func (q *Queries) GetOrderItem(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE id = $1 AND order_id = $2`,
		arg.ID, arg.OrderID)
	return scanOrderItem(row)
}

type UpdateOrderItemStatusParams struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Status     status.OrderStatus
	PrevStatus status.OrderStatus
}

func (q *Queries) UpdateOrderItemStatus(ctx context.Context, arg UpdateOrderItemStatusParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE order_items SET status = $3, updated_at = now()
		WHERE id = $1 AND order_id = $2 AND status = $4
		RETURNING `+orderItemColumns,
		arg.ID, arg.OrderID, arg.Status, arg.PrevStatus)
	return scanOrderItem(row)
}

// ReleaseOrderStock returns reserved stock to the catalog for every reserved
// item of the order. Run in the same transaction as CancelOrder.
func (q *Queries) ReleaseOrderStock(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE products p
		SET stock = p.stock + oi.quantity, updated_at = now()
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.stock_reserved AND oi.product_id = p.id`,
		orderID)
	return err
}
