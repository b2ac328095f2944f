package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/confetex/api/internal/database"
)

// SchoolStore defines the database methods needed by school handlers.
type SchoolStore interface {
	ListSchools(ctx context.Context) ([]database.School, error)
	GetSchool(ctx context.Context, id uuid.UUID) (database.School, error)
	CreateSchool(ctx context.Context, arg database.CreateSchoolParams) (database.School, error)
	UpdateSchool(ctx context.Context, arg database.UpdateSchoolParams) (database.School, error)
	SoftDeleteSchool(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// SchoolHandler handles school administration endpoints.
type SchoolHandler struct {
	store SchoolStore
}

func NewSchoolHandler(store SchoolStore) *SchoolHandler {
	return &SchoolHandler{store: store}
}

// RegisterRoutes registers school endpoints on the given Chi router.
// Expected to be mounted at /global/schools
func (h *SchoolHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type schoolRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type schoolResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Handlers ---

// List handles GET /global/schools.
func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	schools, err := h.store.ListSchools(r.Context())
	if err != nil {
		log.Printf("ERROR: list schools: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]schoolResponse, len(schools))
	for i, s := range schools {
		resp[i] = dbSchoolToResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /global/schools.
func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req schoolRequest
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
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	school, err := h.store.CreateSchool(r.Context(), database.CreateSchoolParams{
		Name:    req.Name,
		Slug:    slug,
		Address: textParam(req.Address),
		Phone:   textParam(req.Phone),
	})
	if err != nil {
		log.Printf("ERROR: create school: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusCreated, dbSchoolToResponse(school))
}

// Get handles GET /global/schools/{id}.
func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de colegio inválido")
		return
	}

	school, err := h.store.GetSchool(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "colegio no encontrado")
			return
		}
		log.Printf("ERROR: get school: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbSchoolToResponse(school))
}

// Update handles PUT /global/schools/{id}.
func (h *SchoolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de colegio inválido")
		return
	}

	var req schoolRequest
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

	school, err := h.store.UpdateSchool(r.Context(), database.UpdateSchoolParams{
		ID:      id,
		Name:    req.Name,
		Address: textParam(req.Address),
		Phone:   textParam(req.Phone),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "colegio no encontrado")
			return
		}
		log.Printf("ERROR: update school: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbSchoolToResponse(school))
}

// Delete handles DELETE /global/schools/{id}.
func (h *SchoolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de colegio inválido")
		return
	}

	if _, err := h.store.SoftDeleteSchool(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "colegio no encontrado")
			return
		}
		log.Printf("ERROR: delete school: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}

func dbSchoolToResponse(s database.School) schoolResponse {
	return schoolResponse{
		ID:        s.ID,
		Name:      s.Name,
		Slug:      s.Slug,
		Address:   textString(s.Address),
		Phone:     textString(s.Phone),
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
