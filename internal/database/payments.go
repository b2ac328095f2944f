package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderPaymentColumns = `id, order_id, method, amount, reference, recorded_by, recorded_at`

func scanOrderPayment(row pgx.Row) (OrderPayment, error) {
	var p OrderPayment
	err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.Reference, &p.RecordedBy, &p.RecordedAt)
	return p, err
}

type CreateOrderPaymentParams struct {
	OrderID    uuid.UUID
	Method     string
	Amount     pgtype.Numeric
	Reference  pgtype.Text
	RecordedBy uuid.UUID
}

func (q *Queries) CreateOrderPayment(ctx context.Context, arg CreateOrderPaymentParams) (OrderPayment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_payments (order_id, method, amount, reference, recorded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderPaymentColumns,
		arg.OrderID, arg.Method, arg.Amount, arg.Reference, arg.RecordedBy)
	return scanOrderPayment(row)
}

func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderPayment, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+orderPaymentColumns+` FROM order_payments WHERE order_id = $1 ORDER BY recorded_at`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []OrderPayment
	for rows.Next() {
		p, err := scanOrderPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (q *Queries) SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM order_payments WHERE order_id = $1`,
		orderID).Scan(&total)
	return total, err
}
