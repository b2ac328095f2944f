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

	"github.com/confetex/api/internal/database"
)

// GarmentTypeStore defines the database methods needed by garment type handlers.
type GarmentTypeStore interface {
	ListGarmentTypes(ctx context.Context, schoolID pgtype.UUID) ([]database.GarmentType, error)
	GetGarmentType(ctx context.Context, arg database.GetGarmentTypeParams) (database.GarmentType, error)
	CreateGarmentType(ctx context.Context, arg database.CreateGarmentTypeParams) (database.GarmentType, error)
	UpdateGarmentType(ctx context.Context, arg database.UpdateGarmentTypeParams) (database.GarmentType, error)
	SoftDeleteGarmentType(ctx context.Context, arg database.SoftDeleteGarmentTypeParams) (uuid.UUID, error)
}

// GarmentTypeHandler handles garment type endpoints for both scopes.
type GarmentTypeHandler struct {
	store GarmentTypeStore
	cache CatalogCache
}

func NewGarmentTypeHandler(store GarmentTypeStore, cache CatalogCache) *GarmentTypeHandler {
	return &GarmentTypeHandler{store: store, cache: cache}
}

// RegisterSchoolRoutes registers endpoints mounted at /schools/{sid}/garment-types.
func (h *GarmentTypeHandler) RegisterSchoolRoutes(r chi.Router) {
	r.Get("/", h.ListSchool)
	r.Post("/", h.CreateSchool)
	r.Put("/{id}", h.UpdateSchool)
	r.Delete("/{id}", h.DeleteSchool)
}

// --- Request / Response types ---

type garmentTypeRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	RequiresMeasurements bool   `json:"requires_measurements"`
	IsActive             *bool  `json:"is_active,omitempty"`
}

type garmentTypeResponse struct {
	ID                   uuid.UUID `json:"id"`
	SchoolID             string    `json:"school_id,omitempty"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	RequiresMeasurements bool      `json:"requires_measurements"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// --- Handlers ---

func (h *GarmentTypeHandler) ListSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.list(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

func (h *GarmentTypeHandler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.create(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

func (h *GarmentTypeHandler) UpdateSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.update(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

func (h *GarmentTypeHandler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	h.softDelete(w, r, pgtype.UUID{Bytes: schoolID, Valid: true})
}

func (h *GarmentTypeHandler) ListGlobal(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, pgtype.UUID{})
}

func (h *GarmentTypeHandler) CreateGlobal(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, pgtype.UUID{})
}

func (h *GarmentTypeHandler) UpdateGlobal(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, pgtype.UUID{})
}

func (h *GarmentTypeHandler) DeleteGlobal(w http.ResponseWriter, r *http.Request) {
	h.softDelete(w, r, pgtype.UUID{})
}

// --- Shared plumbing ---

func (h *GarmentTypeHandler) list(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	types, err := h.store.ListGarmentTypes(r.Context(), scope)
	if err != nil {
		log.Printf("ERROR: list garment types: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]garmentTypeResponse, len(types))
	for i, gt := range types {
		resp[i] = dbGarmentTypeToResponse(gt)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GarmentTypeHandler) create(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	var req garmentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if req.Name == "" {
		writeFieldErrors(w, http.StatusUnprocessableEntity, []FieldError{
			{Msg: "el nombre es obligatorio", Loc: []string{"body", "name"}},
		})
		return
	}

	var description pgtype.Text
	if req.Description != "" {
		description = pgtype.Text{String: req.Description, Valid: true}
	}

	gt, err := h.store.CreateGarmentType(r.Context(), database.CreateGarmentTypeParams{
		SchoolID:             scope,
		Name:                 req.Name,
		Description:          description,
		RequiresMeasurements: req.RequiresMeasurements,
	})
	if err != nil {
		log.Printf("ERROR: create garment type: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.invalidateCatalog(r.Context(), scope)
	writeJSON(w, http.StatusCreated, dbGarmentTypeToResponse(gt))
}

func (h *GarmentTypeHandler) update(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de tipo de prenda inválido")
		return
	}

	var req garmentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if req.Name == "" {
		writeFieldErrors(w, http.StatusUnprocessableEntity, []FieldError{
			{Msg: "el nombre es obligatorio", Loc: []string{"body", "name"}},
		})
		return
	}

	var description pgtype.Text
	if req.Description != "" {
		description = pgtype.Text{String: req.Description, Valid: true}
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	gt, err := h.store.UpdateGarmentType(r.Context(), database.UpdateGarmentTypeParams{
		ID:                   id,
		SchoolID:             scope,
		Name:                 req.Name,
		Description:          description,
		RequiresMeasurements: req.RequiresMeasurements,
		IsActive:             isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "tipo de prenda no encontrado")
			return
		}
		log.Printf("ERROR: update garment type: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.invalidateCatalog(r.Context(), scope)
	writeJSON(w, http.StatusOK, dbGarmentTypeToResponse(gt))
}

func (h *GarmentTypeHandler) softDelete(w http.ResponseWriter, r *http.Request, scope pgtype.UUID) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de tipo de prenda inválido")
		return
	}

	if _, err := h.store.SoftDeleteGarmentType(r.Context(), database.SoftDeleteGarmentTypeParams{ID: id, SchoolID: scope}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "tipo de prenda no encontrado")
			return
		}
		log.Printf("ERROR: delete garment type: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	h.invalidateCatalog(r.Context(), scope)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GarmentTypeHandler) invalidateCatalog(ctx context.Context, scope pgtype.UUID) {
	if h.cache == nil {
		return
	}
	if scope.Valid {
		h.cache.InvalidatePrefix(ctx, catalogKeyPrefix+"school:"+uuid.UUID(scope.Bytes).String())
		return
	}
	h.cache.InvalidatePrefix(ctx, catalogKeyPrefix)
}

func dbGarmentTypeToResponse(gt database.GarmentType) garmentTypeResponse {
	resp := garmentTypeResponse{
		ID:                   gt.ID,
		Name:                 gt.Name,
		Description:          textString(gt.Description),
		RequiresMeasurements: gt.RequiresMeasurements,
		IsActive:             gt.IsActive,
		CreatedAt:            gt.CreatedAt,
		UpdatedAt:            gt.UpdatedAt,
	}
	if gt.SchoolID.Valid {
		resp.SchoolID = uuid.UUID(gt.SchoolID.Bytes).String()
	}
	return resp
}
