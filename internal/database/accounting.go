package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cashTransactionColumns = `id, school_id, box, kind, code, concept, amount, entry_date,
	order_id, alteration_id, created_by, created_at`

func scanCashTransaction(row pgx.Row) (CashTransaction, error) {
	var t CashTransaction
	err := row.Scan(&t.ID, &t.SchoolID, &t.Box, &t.Kind, &t.Code, &t.Concept, &t.Amount,
		&t.EntryDate, &t.OrderID, &t.AlterationID, &t.CreatedBy, &t.CreatedAt)
	return t, err
}

// GetNextCashTransactionNumber returns the next per-school sequence number for
// the transaction code.
func (q *Queries) GetNextCashTransactionNumber(ctx context.Context, schoolID uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(SUBSTRING(code FROM 5) AS INT)), 0) + 1
		 FROM cash_transactions WHERE school_id = $1`, schoolID).Scan(&n)
	return n, err
}

type CreateCashTransactionParams struct {
	SchoolID     uuid.UUID
	Box          string
	Kind         string
	Code         string
	Concept      string
	Amount       pgtype.Numeric
	EntryDate    pgtype.Date
	OrderID      pgtype.UUID
	AlterationID pgtype.UUID
	CreatedBy    uuid.UUID
}

func (q *Queries) CreateCashTransaction(ctx context.Context, arg CreateCashTransactionParams) (CashTransaction, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO cash_transactions (school_id, box, kind, code, concept, amount, entry_date,
			order_id, alteration_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+cashTransactionColumns,
		arg.SchoolID, arg.Box, arg.Kind, arg.Code, arg.Concept, arg.Amount, arg.EntryDate,
		arg.OrderID, arg.AlterationID, arg.CreatedBy)
	return scanCashTransaction(row)
}

type ListCashTransactionsParams struct {
	SchoolID  uuid.UUID
	Box       pgtype.Text
	Kind      pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Limit     int32
	Offset    int32
}

func (q *Queries) ListCashTransactions(ctx context.Context, arg ListCashTransactionsParams) ([]CashTransaction, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+cashTransactionColumns+` FROM cash_transactions
		WHERE school_id = $1
		  AND ($2::text IS NULL OR box = $2)
		  AND ($3::text IS NULL OR kind = $3)
		  AND ($4::date IS NULL OR entry_date >= $4)
		  AND ($5::date IS NULL OR entry_date <= $5)
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $6 OFFSET $7`,
		arg.SchoolID, arg.Box, arg.Kind, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []CashTransaction
	for rows.Next() {
		t, err := scanCashTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CashBoxSummaryRow aggregates one box's movements.
type CashBoxSummaryRow struct {
	Box     string
	Income  pgtype.Numeric
	Expense pgtype.Numeric
}

// SummarizeCashBoxes returns income and expense totals per box for a school.
func (q *Queries) SummarizeCashBoxes(ctx context.Context, schoolID uuid.UUID) ([]CashBoxSummaryRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT box,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
		FROM cash_transactions
		WHERE school_id = $1
		GROUP BY box
		ORDER BY box`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []CashBoxSummaryRow
	for rows.Next() {
		var s CashBoxSummaryRow
		if err := rows.Scan(&s.Box, &s.Income, &s.Expense); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
