package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/confetex/api/internal/status"
)

const alterationColumns = `id, code, client_id, client_name, client_phone, garment, description,
	cost, status, received_date, estimated_delivery, created_by, created_at, updated_at`

func scanAlteration(row pgx.Row) (Alteration, error) {
	var a Alteration
	err := row.Scan(&a.ID, &a.Code, &a.ClientID, &a.ClientName, &a.ClientPhone, &a.Garment,
		&a.Description, &a.Cost, &a.Status, &a.ReceivedDate, &a.EstimatedDelivery,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetNextAlterationNumber returns the next global sequence number for the
// alteration code.
func (q *Queries) GetNextAlterationNumber(ctx context.Context) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(SUBSTRING(code FROM 5) AS INT)), 0) + 1 FROM alterations`).Scan(&n)
	return n, err
}

type CreateAlterationParams struct {
	Code              string
	ClientID          pgtype.UUID
	ClientName        pgtype.Text
	ClientPhone       pgtype.Text
	Garment           string
	Description       pgtype.Text
	Cost              pgtype.Numeric
	ReceivedDate      pgtype.Date
	EstimatedDelivery pgtype.Date
	CreatedBy         uuid.UUID
}

func (q *Queries) CreateAlteration(ctx context.Context, arg CreateAlterationParams) (Alteration, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO alterations (code, client_id, client_name, client_phone, garment, description,
			cost, status, received_date, estimated_delivery, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'received', $8, $9, $10)
		RETURNING `+alterationColumns,
		arg.Code, arg.ClientID, arg.ClientName, arg.ClientPhone, arg.Garment, arg.Description,
		arg.Cost, arg.ReceivedDate, arg.EstimatedDelivery, arg.CreatedBy)
	return scanAlteration(row)
}

func (q *Queries) GetAlteration(ctx context.Context, id uuid.UUID) (Alteration, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+alterationColumns+` FROM alterations WHERE id = $1`, id)
	return scanAlteration(row)
}

// GetAlterationForUpdate locks the alteration row for payment serialization.
func (q *Queries) GetAlterationForUpdate(ctx context.Context, id uuid.UUID) (Alteration, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+alterationColumns+` FROM alterations WHERE id = $1 FOR NO KEY UPDATE`, id)
	return scanAlteration(row)
}

type ListAlterationsParams struct {
	Status pgtype.Text
	Search pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListAlterations(ctx context.Context, arg ListAlterationsParams) ([]Alteration, error) {
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.code, a.client_id, a.client_name, a.client_phone, a.garment, a.description,
			a.cost, a.status, a.received_date, a.estimated_delivery, a.created_by, a.created_at, a.updated_at
		FROM alterations a
		LEFT JOIN clients c ON c.id = a.client_id
		WHERE ($1::text IS NULL OR a.status = $1)
		  AND ($2::text IS NULL
			OR a.code ILIKE '%' || $2 || '%'
			OR a.garment ILIKE '%' || $2 || '%'
			OR a.client_name ILIKE '%' || $2 || '%'
			OR c.name ILIKE '%' || $2 || '%')
		ORDER BY a.created_at DESC
		LIMIT $3 OFFSET $4`,
		arg.Status, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alterations []Alteration
	for rows.Next() {
		a, err := scanAlteration(rows)
		if err != nil {
			return nil, err
		}
		alterations = append(alterations, a)
	}
	return alterations, rows.Err()
}

type UpdateAlterationParams struct {
	ID                uuid.UUID
	Garment           string
	Description       pgtype.Text
	Cost              pgtype.Numeric
	EstimatedDelivery pgtype.Date
}

func (q *Queries) UpdateAlteration(ctx context.Context, arg UpdateAlterationParams) (Alteration, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE alterations
		SET garment = $2, description = $3, cost = $4, estimated_delivery = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+alterationColumns,
		arg.ID, arg.Garment, arg.Description, arg.Cost, arg.EstimatedDelivery)
	return scanAlteration(row)
}

type UpdateAlterationStatusParams struct {
	ID         uuid.UUID
	Status     status.AlterationStatus
	PrevStatus status.AlterationStatus
}

// UpdateAlterationStatus is a compare-and-set like UpdateOrderStatus.
func (q *Queries) UpdateAlterationStatus(ctx context.Context, arg UpdateAlterationStatusParams) (Alteration, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE alterations SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+alterationColumns,
		arg.ID, arg.Status, arg.PrevStatus)
	return scanAlteration(row)
}

func (q *Queries) CancelAlteration(ctx context.Context, id uuid.UUID) (Alteration, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE alterations SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status NOT IN ('delivered', 'cancelled')
		RETURNING `+alterationColumns, id)
	return scanAlteration(row)
}

const alterationPaymentColumns = `id, alteration_id, method, amount, recorded_by, recorded_at`

func scanAlterationPayment(row pgx.Row) (AlterationPayment, error) {
	var p AlterationPayment
	err := row.Scan(&p.ID, &p.AlterationID, &p.Method, &p.Amount, &p.RecordedBy, &p.RecordedAt)
	return p, err
}

type CreateAlterationPaymentParams struct {
	AlterationID uuid.UUID
	Method       string
	Amount       pgtype.Numeric
	RecordedBy   uuid.UUID
}

func (q *Queries) CreateAlterationPayment(ctx context.Context, arg CreateAlterationPaymentParams) (AlterationPayment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO alteration_payments (alteration_id, method, amount, recorded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+alterationPaymentColumns,
		arg.AlterationID, arg.Method, arg.Amount, arg.RecordedBy)
	return scanAlterationPayment(row)
}

func (q *Queries) ListPaymentsByAlteration(ctx context.Context, alterationID uuid.UUID) ([]AlterationPayment, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+alterationPaymentColumns+` FROM alteration_payments WHERE alteration_id = $1 ORDER BY recorded_at`,
		alterationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []AlterationPayment
	for rows.Next() {
		p, err := scanAlterationPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (q *Queries) SumPaymentsByAlteration(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM alteration_payments WHERE alteration_id = $1`,
		alterationID).Scan(&total)
	return total, err
}
