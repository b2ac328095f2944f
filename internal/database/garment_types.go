package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const garmentTypeColumns = `id, school_id, name, description, requires_measurements,
	is_active, created_at, updated_at`

func scanGarmentType(row pgx.Row) (GarmentType, error) {
	var gt GarmentType
	err := row.Scan(&gt.ID, &gt.SchoolID, &gt.Name, &gt.Description, &gt.RequiresMeasurements,
		&gt.IsActive, &gt.CreatedAt, &gt.UpdatedAt)
	return gt, err
}

func (q *Queries) collectGarmentTypes(ctx context.Context, sql string, args ...any) ([]GarmentType, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []GarmentType
	for rows.Next() {
		gt, err := scanGarmentType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, gt)
	}
	return types, rows.Err()
}

// ListGarmentTypes lists one scope: a school's own types, or the global ones
// when SchoolID is invalid.
func (q *Queries) ListGarmentTypes(ctx context.Context, schoolID pgtype.UUID) ([]GarmentType, error) {
	return q.collectGarmentTypes(ctx,
		`SELECT `+garmentTypeColumns+` FROM garment_types
		 WHERE school_id IS NOT DISTINCT FROM $1 ORDER BY name`, schoolID)
}

// ListCatalogGarmentTypes returns what a school's catalog groups by: its own
// types plus the global ones.
func (q *Queries) ListCatalogGarmentTypes(ctx context.Context, schoolID uuid.UUID) ([]GarmentType, error) {
	return q.collectGarmentTypes(ctx,
		`SELECT `+garmentTypeColumns+` FROM garment_types
		 WHERE school_id = $1 OR school_id IS NULL ORDER BY name`, schoolID)
}

type GetGarmentTypeParams struct {
	ID       uuid.UUID
	SchoolID pgtype.UUID
}

func (q *Queries) GetGarmentType(ctx context.Context, arg GetGarmentTypeParams) (GarmentType, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+garmentTypeColumns+` FROM garment_types
		 WHERE id = $1 AND school_id IS NOT DISTINCT FROM $2`,
		arg.ID, arg.SchoolID)
	return scanGarmentType(row)
}

type CreateGarmentTypeParams struct {
	SchoolID             pgtype.UUID
	Name                 string
	Description          pgtype.Text
	RequiresMeasurements bool
}

func (q *Queries) CreateGarmentType(ctx context.Context, arg CreateGarmentTypeParams) (GarmentType, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO garment_types (school_id, name, description, requires_measurements)
		VALUES ($1, $2, $3, $4)
		RETURNING `+garmentTypeColumns,
		arg.SchoolID, arg.Name, arg.Description, arg.RequiresMeasurements)
	return scanGarmentType(row)
}

type UpdateGarmentTypeParams struct {
	ID                   uuid.UUID
	SchoolID             pgtype.UUID
	Name                 string
	Description          pgtype.Text
	RequiresMeasurements bool
	IsActive             bool
}

func (q *Queries) UpdateGarmentType(ctx context.Context, arg UpdateGarmentTypeParams) (GarmentType, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE garment_types
		SET name = $3, description = $4, requires_measurements = $5, is_active = $6, updated_at = now()
		WHERE id = $1 AND school_id IS NOT DISTINCT FROM $2
		RETURNING `+garmentTypeColumns,
		arg.ID, arg.SchoolID, arg.Name, arg.Description, arg.RequiresMeasurements, arg.IsActive)
	return scanGarmentType(row)
}

type SoftDeleteGarmentTypeParams struct {
	ID       uuid.UUID
	SchoolID pgtype.UUID
}

func (q *Queries) SoftDeleteGarmentType(ctx context.Context, arg SoftDeleteGarmentTypeParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE garment_types SET is_active = false, updated_at = now()
		WHERE id = $1 AND school_id IS NOT DISTINCT FROM $2
		RETURNING id`,
		arg.ID, arg.SchoolID).Scan(&id)
	return id, err
}
