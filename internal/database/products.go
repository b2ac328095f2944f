package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, school_id, garment_type_id, name, size, color, price, stock,
	image_url, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SchoolID, &p.GarmentTypeID, &p.Name, &p.Size, &p.Color,
		&p.Price, &p.Stock, &p.ImageUrl, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) collectProducts(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProductsBySchool returns the school's own products only.
func (q *Queries) ListProductsBySchool(ctx context.Context, schoolID uuid.UUID) ([]Product, error) {
	return q.collectProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE school_id = $1 ORDER BY name, size, color`,
		schoolID)
}

// ListGlobalProducts returns the shared catalog (school_id IS NULL).
func (q *Queries) ListGlobalProducts(ctx context.Context) ([]Product, error) {
	return q.collectProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE school_id IS NULL ORDER BY name, size, color`)
}

// ListCatalogProducts returns what a school's storefront sees: its own
// products plus the global ones.
func (q *Queries) ListCatalogProducts(ctx context.Context, schoolID uuid.UUID) ([]Product, error) {
	return q.collectProducts(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE school_id = $1 OR school_id IS NULL
		 ORDER BY name, size, color`, schoolID)
}

type GetProductParams struct {
	ID       uuid.UUID
	SchoolID pgtype.UUID // invalid = global product
}

func (q *Queries) GetProduct(ctx context.Context, arg GetProductParams) (Product, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE id = $1 AND school_id IS NOT DISTINCT FROM $2`,
		arg.ID, arg.SchoolID)
	return scanProduct(row)
}

type CreateProductParams struct {
	SchoolID      pgtype.UUID
	GarmentTypeID uuid.UUID
	Name          string
	Size          string
	Color         string
	Price         pgtype.Numeric
	Stock         int32
	ImageUrl      pgtype.Text
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO products (school_id, garment_type_id, name, size, color, price, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		arg.SchoolID, arg.GarmentTypeID, arg.Name, arg.Size, arg.Color,
		arg.Price, arg.Stock, arg.ImageUrl)
	return scanProduct(row)
}

type UpdateProductParams struct {
	ID            uuid.UUID
	SchoolID      pgtype.UUID
	GarmentTypeID uuid.UUID
	Name          string
	Size          string
	Color         string
	Price         pgtype.Numeric
	Stock         int32
	ImageUrl      pgtype.Text
	IsActive      bool
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE products
		SET garment_type_id = $3, name = $4, size = $5, color = $6, price = $7, stock = $8,
			image_url = $9, is_active = $10, updated_at = now()
		WHERE id = $1 AND school_id IS NOT DISTINCT FROM $2
		RETURNING `+productColumns,
		arg.ID, arg.SchoolID, arg.GarmentTypeID, arg.Name, arg.Size, arg.Color,
		arg.Price, arg.Stock, arg.ImageUrl, arg.IsActive)
	return scanProduct(row)
}

type SoftDeleteProductParams struct {
	ID       uuid.UUID
	SchoolID pgtype.UUID
}

func (q *Queries) SoftDeleteProduct(ctx context.Context, arg SoftDeleteProductParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE products SET is_active = false, updated_at = now()
		WHERE id = $1 AND school_id IS NOT DISTINCT FROM $2
		RETURNING id`,
		arg.ID, arg.SchoolID).Scan(&id)
	return id, err
}

// GetProductForOrderRow carries the pricing and measurement rule needed while
// building an order item.
type GetProductForOrderRow struct {
	ID                   uuid.UUID
	Name                 string
	Price                pgtype.Numeric
	Stock                int32
	IsActive             bool
	RequiresMeasurements bool
}

type GetProductForOrderParams struct {
	ID       uuid.UUID
	SchoolID uuid.UUID
}

// GetProductForOrder locks the product row (its stock may be decremented in
// the same transaction) and joins the garment type's measurement rule. Global
// products are visible to every school.
func (q *Queries) GetProductForOrder(ctx context.Context, arg GetProductForOrderParams) (GetProductForOrderRow, error) {
	var r GetProductForOrderRow
	err := q.db.QueryRow(ctx, `
		SELECT p.id, p.name, p.price, p.stock, p.is_active, gt.requires_measurements
		FROM products p
		JOIN garment_types gt ON gt.id = p.garment_type_id
		WHERE p.id = $1 AND (p.school_id = $2 OR p.school_id IS NULL)
		FOR NO KEY UPDATE OF p`,
		arg.ID, arg.SchoolID).Scan(&r.ID, &r.Name, &r.Price, &r.Stock, &r.IsActive, &r.RequiresMeasurements)
	return r, err
}

type ReserveProductStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

// ReserveProductStock decrements stock only when enough is available; callers
// treat pgx.ErrNoRows as insufficient stock.
func (q *Queries) ReserveProductStock(ctx context.Context, arg ReserveProductStockParams) (int32, error) {
	var remaining int32
	err := q.db.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`,
		arg.ID, arg.Quantity).Scan(&remaining)
	return remaining, err
}
