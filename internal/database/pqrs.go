package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const pqrsColumns = `id, school_id, type, name, email, phone, message, status, created_at, updated_at`

func scanPqrsTicket(row pgx.Row) (PqrsTicket, error) {
	var t PqrsTicket
	err := row.Scan(&t.ID, &t.SchoolID, &t.Type, &t.Name, &t.Email, &t.Phone,
		&t.Message, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

type CreatePqrsTicketParams struct {
	SchoolID pgtype.UUID
	Type     string
	Name     string
	Email    string
	Phone    pgtype.Text
	Message  string
}

func (q *Queries) CreatePqrsTicket(ctx context.Context, arg CreatePqrsTicketParams) (PqrsTicket, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO pqrs_tickets (school_id, type, name, email, phone, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING `+pqrsColumns,
		arg.SchoolID, arg.Type, arg.Name, arg.Email, arg.Phone, arg.Message)
	return scanPqrsTicket(row)
}

type ListPqrsTicketsParams struct {
	Status pgtype.Text
	Type   pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListPqrsTickets(ctx context.Context, arg ListPqrsTicketsParams) ([]PqrsTicket, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+pqrsColumns+` FROM pqrs_tickets
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR type = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		arg.Status, arg.Type, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []PqrsTicket
	for rows.Next() {
		t, err := scanPqrsTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (q *Queries) GetPqrsTicket(ctx context.Context, id uuid.UUID) (PqrsTicket, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+pqrsColumns+` FROM pqrs_tickets WHERE id = $1`, id)
	return scanPqrsTicket(row)
}

type UpdatePqrsStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdatePqrsStatus(ctx context.Context, arg UpdatePqrsStatusParams) (PqrsTicket, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE pqrs_tickets SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+pqrsColumns,
		arg.ID, arg.Status)
	return scanPqrsTicket(row)
}
