package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const schoolColumns = `id, name, slug, address, phone, is_active, created_at, updated_at`

func scanSchool(row pgx.Row) (School, error) {
	var s School
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Address, &s.Phone, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListSchools(ctx context.Context) ([]School, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+schoolColumns+` FROM schools WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schools []School
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

func (q *Queries) GetSchool(ctx context.Context, id uuid.UUID) (School, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id)
	return scanSchool(row)
}

type CreateSchoolParams struct {
	Name    string
	Slug    string
	Address pgtype.Text
	Phone   pgtype.Text
}

func (q *Queries) CreateSchool(ctx context.Context, arg CreateSchoolParams) (School, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO schools (name, slug, address, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+schoolColumns,
		arg.Name, arg.Slug, arg.Address, arg.Phone)
	return scanSchool(row)
}

type UpdateSchoolParams struct {
	ID      uuid.UUID
	Name    string
	Address pgtype.Text
	Phone   pgtype.Text
}

func (q *Queries) UpdateSchool(ctx context.Context, arg UpdateSchoolParams) (School, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE schools SET name = $2, address = $3, phone = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+schoolColumns,
		arg.ID, arg.Name, arg.Address, arg.Phone)
	return scanSchool(row)
}

func (q *Queries) SoftDeleteSchool(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE schools SET is_active = false, updated_at = now()
		WHERE id = $1
		RETURNING id`, id).Scan(&out)
	return out, err
}
