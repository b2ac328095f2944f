package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const clientColumns = `id, school_id, name, phone, email, document, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Phone, &c.Email, &c.Document, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type ListClientsParams struct {
	SchoolID uuid.UUID
	Search   pgtype.Text
	Limit    int32
	Offset   int32
}

func (q *Queries) ListClients(ctx context.Context, arg ListClientsParams) ([]Client, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE school_id = $1
		  AND ($2::text IS NULL
			OR name ILIKE '%' || $2 || '%'
			OR phone ILIKE '%' || $2 || '%'
			OR document ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3 OFFSET $4`,
		arg.SchoolID, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type GetClientParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
}

func (q *Queries) GetClient(ctx context.Context, arg GetClientParams) (Client, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND school_id = $2`,
		arg.ID, arg.SchoolID)
	return scanClient(row)
}

type CreateClientParams struct {
	SchoolID uuid.UUID
	Name     string
	Phone    pgtype.Text
	Email    pgtype.Text
	Document pgtype.Text
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (Client, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO clients (school_id, name, phone, email, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clientColumns,
		arg.SchoolID, arg.Name, arg.Phone, arg.Email, arg.Document)
	return scanClient(row)
}

type UpdateClientParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
	Name     string
	Phone    pgtype.Text
	Email    pgtype.Text
	Document pgtype.Text
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (Client, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE clients SET name = $3, phone = $4, email = $5, document = $6, updated_at = now()
		WHERE id = $1 AND school_id = $2
		RETURNING `+clientColumns,
		arg.ID, arg.SchoolID, arg.Name, arg.Phone, arg.Email, arg.Document)
	return scanClient(row)
}

type DeleteClientParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
}

func (q *Queries) DeleteClient(ctx context.Context, arg DeleteClientParams) error {
	ct, err := q.db.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND school_id = $2`, arg.ID, arg.SchoolID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
