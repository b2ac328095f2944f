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
	"github.com/confetex/api/internal/enum"
)

// PqrsStore defines the database methods needed by PQRS handlers.
type PqrsStore interface {
	CreatePqrsTicket(ctx context.Context, arg database.CreatePqrsTicketParams) (database.PqrsTicket, error)
	ListPqrsTickets(ctx context.Context, arg database.ListPqrsTicketsParams) ([]database.PqrsTicket, error)
	GetPqrsTicket(ctx context.Context, id uuid.UUID) (database.PqrsTicket, error)
	UpdatePqrsStatus(ctx context.Context, arg database.UpdatePqrsStatusParams) (database.PqrsTicket, error)
}

// PqrsHandler handles support ticket endpoints. Creation is public so parents
// can file tickets from the storefront without an account.
type PqrsHandler struct {
	store PqrsStore
}

func NewPqrsHandler(store PqrsStore) *PqrsHandler {
	return &PqrsHandler{store: store}
}

// --- Request / Response types ---

type createPqrsRequest struct {
	SchoolID string `json:"school_id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
}

type pqrsStatusRequest struct {
	Status string `json:"status"`
}

type pqrsResponse struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  string    `json:"school_id,omitempty"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Handlers ---

// Create handles POST /global/pqrs.
func (h *PqrsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPqrsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}

	var errs []FieldError
	if !enum.ValidPQRSType(req.Type) {
		errs = append(errs, FieldError{Msg: "tipo de solicitud inválido", Loc: []string{"body", "type"}})
	}
	if req.Name == "" {
		errs = append(errs, FieldError{Msg: "el nombre es obligatorio", Loc: []string{"body", "name"}})
	}
	if req.Email == "" {
		errs = append(errs, FieldError{Msg: "el correo es obligatorio", Loc: []string{"body", "email"}})
	}
	if req.Message == "" {
		errs = append(errs, FieldError{Msg: "el mensaje es obligatorio", Loc: []string{"body", "message"}})
	}
	var schoolID pgtype.UUID
	if req.SchoolID != "" {
		sid, err := uuid.Parse(req.SchoolID)
		if err != nil {
			errs = append(errs, FieldError{Msg: "school_id inválido", Loc: []string{"body", "school_id"}})
		} else {
			schoolID = pgtype.UUID{Bytes: sid, Valid: true}
		}
	}
	if len(errs) > 0 {
		writeFieldErrors(w, http.StatusUnprocessableEntity, errs)
		return
	}

	ticket, err := h.store.CreatePqrsTicket(r.Context(), database.CreatePqrsTicketParams{
		SchoolID: schoolID,
		Type:     req.Type,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    textParam(req.Phone),
		Message:  req.Message,
	})
	if err != nil {
		log.Printf("ERROR: create pqrs ticket: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusCreated, dbPqrsToResponse(ticket))
}

// List handles GET /global/pqrs.
func (h *PqrsHandler) List(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !enum.ValidPQRSStatus(statusFilter) {
		writeDetail(w, http.StatusBadRequest, "estado de solicitud inválido")
		return
	}
	typeFilter := r.URL.Query().Get("type")
	if typeFilter != "" && !enum.ValidPQRSType(typeFilter) {
		writeDetail(w, http.StatusBadRequest, "tipo de solicitud inválido")
		return
	}

	limit, offset := parsePagination(r)
	tickets, err := h.store.ListPqrsTickets(r.Context(), database.ListPqrsTicketsParams{
		Status: textParam(statusFilter),
		Type:   textParam(typeFilter),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list pqrs tickets: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]pqrsResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = dbPqrsToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /global/pqrs/{id}.
func (h *PqrsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de solicitud inválido")
		return
	}

	ticket, err := h.store.GetPqrsTicket(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "solicitud no encontrada")
			return
		}
		log.Printf("ERROR: get pqrs ticket: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbPqrsToResponse(ticket))
}

// UpdateStatus handles PATCH /global/pqrs/{id}/status.
func (h *PqrsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de solicitud inválido")
		return
	}

	var req pqrsStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if !enum.ValidPQRSStatus(req.Status) {
		writeDetail(w, http.StatusBadRequest, "estado de solicitud inválido")
		return
	}

	ticket, err := h.store.UpdatePqrsStatus(r.Context(), database.UpdatePqrsStatusParams{
		ID:     id,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "solicitud no encontrada")
			return
		}
		log.Printf("ERROR: update pqrs status: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbPqrsToResponse(ticket))
}

// --- Helpers ---

func dbPqrsToResponse(t database.PqrsTicket) pqrsResponse {
	resp := pqrsResponse{
		ID:        t.ID,
		Type:      t.Type,
		Name:      t.Name,
		Email:     t.Email,
		Phone:     textString(t.Phone),
		Message:   t.Message,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.SchoolID.Valid {
		resp.SchoolID = uuid.UUID(t.SchoolID.Bytes).String()
	}
	return resp
}
