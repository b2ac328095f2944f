package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/confetex/api/internal/catalog"
	"github.com/confetex/api/internal/database"
)

// ProductStore defines the database methods needed by product handlers.
type ProductStore interface {
	ListProductsBySchool(ctx context.Context, schoolID uuid.UUID) ([]database.Product, error)
	ListGlobalProducts(ctx context.Context) ([]database.Product, error)
	ListCatalogProducts(ctx context.Context, schoolID uuid.UUID) ([]database.Product, error)
	GetProduct(ctx context.Context, arg database.GetProductParams) (database.Product, error)
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	SoftDeleteProduct(ctx context.Context, arg database.SoftDeleteProductParams) (uuid.UUID, error)
	ListGarmentTypes(ctx context.Context, schoolID pgtype.UUID) ([]database.GarmentType, error)
	ListCatalogGarmentTypes(ctx context.Context, schoolID uuid.UUID) ([]database.GarmentType, error)
}

// CatalogCache caches rendered grouped-catalog payloads. Implementations must
// treat misses and backend errors alike: return ok=false and let the handler
// rebuild.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
	InvalidatePrefix(ctx context.Context, prefix string)
}

const (
	catalogKeyPrefix = "catalog:grouped:"
	catalogCacheTTL  = 5 * time.Minute
)

// ProductHandler handles product and grouped-catalog endpoints for both the
// school scope and the global catalog.
type ProductHandler struct {
	store ProductStore
	cache CatalogCache // nil disables caching
}

func NewProductHandler(store ProductStore, cache CatalogCache) *ProductHandler {
	return &ProductHandler{store: store, cache: cache}
}

// RegisterSchoolRoutes registers product endpoints mounted at /schools/{sid}/products.
func (h *ProductHandler) RegisterSchoolRoutes(r chi.Router) {
	r.Get("/", h.ListSchool)
	r.Post("/", h.CreateSchool)
	r.Get("/{id}", h.GetSchool)
	r.Put("/{id}", h.UpdateSchool)
	r.Delete("/{id}", h.DeleteSchool)
}

// RegisterGlobalRoutes registers product endpoints mounted at /global/products.
func (h *ProductHandler) RegisterGlobalRoutes(r chi.Router) {
	r.Get("/", h.ListGlobal)
	r.Post("/", h.CreateGlobal)
	r.Get("/{id}", h.GetGlobal)
	r.Put("/{id}", h.UpdateGlobal)
	r.Delete("/{id}", h.DeleteGlobal)
}

// --- Request / Response types ---

type productRequest struct {
	GarmentTypeID string `json:"garment_type_id"`
	Name          string `json:"name"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	Price         string `json:"price"`
	Stock         int32  `json:"stock"`
	ImageURL      string `json:"image_url"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

type productResponse struct {
	ID            uuid.UUID `json:"id"`
	SchoolID      string    `json:"school_id,omitempty"`
	GarmentTypeID uuid.UUID `json:"garment_type_id"`
	Name          string    `json:"name"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	Price         string    `json:"price"`
	Stock         int32     `json:"stock"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type groupedVariantResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Size     string    `json:"size"`
	Color    string    `json:"color"`
	Price    string    `json:"price"`
	Stock    int32     `json:"stock"`
	ImageURL string    `json:"image_url,omitempty"`
}

type groupedTypeResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	RequiresMeasurements bool      `json:"requires_measurements"`
}

type groupedCatalogGroup struct {
	GarmentType groupedTypeResponse      `json:"garment_type"`
	Sizes       []string                 `json:"sizes"`
	Variants    []groupedVariantResponse `json:"variants"`
}

// --- School-scoped handlers ---

// ListSchool handles GET /schools/{sid}/products.
func (h *ProductHandler) ListSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	products, err := h.store.ListProductsBySchool(r.Context(), schoolID)
	if err != nil {
		log.Printf("ERROR: list school products: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	writeProductList(w, products)
}

// CreateSchool handles POST /schools/{sid}/products.
func (h *ProductHandler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.create(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

// GetSchool handles GET /schools/{sid}/products/{id}.
func (h *ProductHandler) GetSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.get(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

// UpdateSchool handles PUT /schools/{sid}/products/{id}.
func (h *ProductHandler) UpdateSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.update(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

// DeleteSchool handles DELETE /schools/{sid}/products/{id}.
func (h *ProductHandler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.softDelete(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

// --- Global handlers ---

// ListGlobal handles GET /global/products.
func (h *ProductHandler) ListGlobal(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListGlobalProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list global products: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	writeProductList(w, products)
}

// CreateGlobal handles POST /global/products.
func (h *ProductHandler) CreateGlobal(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, pgtype.UUID{})
}

// GetGlobal handles GET /global/products/{id}.
func (h *ProductHandler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, pgtype.UUID{})
}

// UpdateGlobal handles PUT /global/products/{id}.
func (h *ProductHandler) UpdateGlobal(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, pgtype.UUID{})
}

// DeleteGlobal handles DELETE /global/products/{id}.
func (h *ProductHandler) DeleteGlobal(w http.ResponseWriter, r *http.Request) {
	h.softDelete(w, r, pgtype.UUID{})
}

// --- Grouped catalog ---

// GroupedSchoolCatalog handles GET /schools/{sid}/catalog/grouped.
// Groups the school's catalog (own plus global products) by garment type,
// size, and color. ?stock=with_stock hides variants without stock.
func (h *ProductHandler) GroupedSchoolCatalog(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	filter, ok := parseStockFilter(w, r)
	if !ok {
		return
	}

	key := catalogKeyPrefix + "school:" + schoolID.String() + ":" + string(filter)
	if h.writeCached(w, r, key) {
		return
	}

	products, err := h.store.ListCatalogProducts(r.Context(), schoolID)
	if err != nil {
		log.Printf("ERROR: list catalog products: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	types, err := h.store.ListCatalogGarmentTypes(r.Context(), schoolID)
	if err != nil {
		log.Printf("ERROR: list catalog garment types: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.writeGrouped(w, r, key, products, types, filter)
}

// GroupedGlobalCatalog handles GET /global/catalog/grouped. This is the public
// storefront feed: global products only.
func (h *ProductHandler) GroupedGlobalCatalog(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseStockFilter(w, r)
	if !ok {
		return
	}

	key := catalogKeyPrefix + "global:" + string(filter)
	if h.writeCached(w, r, key) {
		return
	}

	products, err := h.store.ListGlobalProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list global products for catalog: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	types, err := h.store.ListGarmentTypes(r.Context(), pgtype.UUID{})
	if err != nil {
		log.Printf("ERROR: list global garment types for catalog: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.writeGrouped(w, r, key, products, types, filter)
}

// --- Shared CRUD plumbing ---

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	_, params, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	params.SchoolID = scope
	product, err := h.store.CreateProduct(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.invalidateCatalog(r.Context(), scope)
	writeJSON(w, http.StatusCreated, dbProductToResponse(product))
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	product, err := h.store.GetProduct(r.Context(), database.GetProductParams{ID: productID, SchoolID: scope})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "producto no encontrado")
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	writeJSON(w, http.StatusOK, dbProductToResponse(product))
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	req, params, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:            productID,
		SchoolID:      scope,
		GarmentTypeID: params.GarmentTypeID,
		Name:          params.Name,
		Size:          params.Size,
		Color:         params.Color,
		Price:         params.Price,
		Stock:         params.Stock,
		ImageUrl:      params.ImageUrl,
		IsActive:      isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "producto no encontrado")
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.invalidateCatalog(r.Context(), scope)
	writeJSON(w, http.StatusOK, dbProductToResponse(product))
}

func (h *ProductHandler) softDelete(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	if _, err := h.store.SoftDeleteProduct(r.Context(), database.SoftDeleteProductParams{ID: productID, SchoolID: scope}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "producto no encontrado")
			return
		}
		log.Printf("ERROR: delete product: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.invalidateCatalog(r.Context(), scope)
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (productRequest, database.CreateProductParams, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return req, database.CreateProductParams{}, false
	}

	var errs []FieldError
	if req.Name == "" {
		errs = append(errs, FieldError{Msg: "el nombre es obligatorio", Loc: []string{"body", "name"}})
	}
	if req.Size == "" {
		errs = append(errs, FieldError{Msg: "la talla es obligatoria", Loc: []string{"body", "size"}})
	}
	if req.Color == "" {
		errs = append(errs, FieldError{Msg: "el color es obligatorio", Loc: []string{"body", "color"}})
	}
	garmentTypeID, err := uuid.Parse(req.GarmentTypeID)
	if err != nil {
		errs = append(errs, FieldError{Msg: "garment_type_id inválido", Loc: []string{"body", "garment_type_id"}})
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.LessThan(decimal.Zero) {
		errs = append(errs, FieldError{Msg: "precio inválido", Loc: []string{"body", "price"}})
	}
	if req.Stock < 0 {
		errs = append(errs, FieldError{Msg: "el stock no puede ser negativo", Loc: []string{"body", "stock"}})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, http.StatusUnprocessableEntity, errs)
		return req, database.CreateProductParams{}, false
	}

	var imageURL pgtype.Text
	if req.ImageURL != "" {
		imageURL = pgtype.Text{String: req.ImageURL, Valid: true}
	}

	return req, database.CreateProductParams{
		GarmentTypeID: garmentTypeID,
		Name:          req.Name,
		Size:          req.Size,
		Color:         req.Color,
		Price:         decimalToNumeric(price),
		Stock:         req.Stock,
		ImageUrl:      imageURL,
	}, true
}

func parseStockFilter(w http.ResponseWriter, r *http.Request) (catalog.StockFilter, bool) {
	switch s := r.URL.Query().Get("stock"); s {
	case "", string(catalog.StockAll):
		return catalog.StockAll, true
	case string(catalog.StockWith):
		return catalog.StockWith, true
	default:
		writeDetail(w, http.StatusBadRequest, "filtro de stock inválido")
		return catalog.StockAll, false
	}
}

func (h *ProductHandler) writeCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}
	payload, ok := h.cache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
	return true
}

func (h *ProductHandler) writeGrouped(w http.ResponseWriter, r *http.Request, key string,
	products []database.Product, types []database.GarmentType, filter catalog.StockFilter) {

	variants := make([]catalog.Variant, len(products))
	for i, p := range products {
		variants[i] = catalog.Variant{
			ID:            p.ID,
			GarmentTypeID: p.GarmentTypeID,
			Name:          p.Name,
			Size:          p.Size,
			Color:         p.Color,
			Price:         numericString(p.Price),
			Stock:         p.Stock,
			ImageURL:      textString(p.ImageUrl),
			Active:        p.IsActive,
		}
	}
	catalogTypes := make([]catalog.GarmentType, len(types))
	for i, gt := range types {
		catalogTypes[i] = catalog.GarmentType{
			ID:                   gt.ID,
			Name:                 gt.Name,
			RequiresMeasurements: gt.RequiresMeasurements,
		}
	}

	groups := catalog.GroupByGarmentType(variants, catalogTypes, filter)
	resp := make([]groupedCatalogGroup, len(groups))
	for i, g := range groups {
		vs := make([]groupedVariantResponse, len(g.Variants))
		for j, v := range g.Variants {
			vs[j] = groupedVariantResponse{
				ID:       v.ID,
				Name:     v.Name,
				Size:     v.Size,
				Color:    v.Color,
				Price:    v.Price,
				Stock:    v.Stock,
				ImageURL: v.ImageURL,
			}
		}
		resp[i] = groupedCatalogGroup{
			GarmentType: groupedTypeResponse{
				ID:                   g.GarmentType.ID,
				Name:                 g.GarmentType.Name,
				RequiresMeasurements: g.GarmentType.RequiresMeasurements,
			},
			Sizes:    g.Sizes,
			Variants: vs,
		}
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("ERROR: marshal grouped catalog: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), key, payload, catalogCacheTTL)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// invalidateCatalog drops every cached grouping the write could affect.
// Global product writes touch every school's merged catalog, so the whole
// prefix goes.
func (h *ProductHandler) invalidateCatalog(ctx context.Context, scope pgtype.UUID) {
	if h.cache == nil {
		return
	}
	if scope.Valid {
		h.cache.InvalidatePrefix(ctx, catalogKeyPrefix+"school:"+uuid.UUID(scope.Bytes).String())
		return
	}
	h.cache.InvalidatePrefix(ctx, catalogKeyPrefix)
}

func writeProductList(w http.ResponseWriter, products []database.Product) {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = dbProductToResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func dbProductToResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:            p.ID,
		GarmentTypeID: p.GarmentTypeID,
		Name:          p.Name,
		Size:          p.Size,
		Color:         p.Color,
		Price:         numericString(p.Price),
		Stock:         p.Stock,
		ImageURL:      textString(p.ImageUrl),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.SchoolID.Valid {
		resp.SchoolID = uuid.UUID(p.SchoolID.Bytes).String()
	}
	return resp
}
