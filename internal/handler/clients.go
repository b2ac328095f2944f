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

	"github.com/confetex/api/internal/database"
)

// ClientStore defines the database methods needed by client handlers.
type ClientStore interface {
	ListClients(ctx context.Context, arg database.ListClientsParams) ([]database.Client, error)
	GetClient(ctx context.Context, arg database.GetClientParams) (database.Client, error)
	CreateClient(ctx context.Context, arg database.CreateClientParams) (database.Client, error)
	UpdateClient(ctx context.Context, arg database.UpdateClientParams) (database.Client, error)
	DeleteClient(ctx context.Context, arg database.DeleteClientParams) error
}

// ClientHandler handles registered-client endpoints.
type ClientHandler struct {
	store ClientStore
}

func NewClientHandler(store ClientStore) *ClientHandler {
	return &ClientHandler{store: store}
}

// RegisterRoutes registers client endpoints on the given Chi router.
// Expected to be mounted at /schools/{sid}/clients
func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type clientRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

type clientResponse struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  uuid.UUID `json:"school_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Document  string    `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Handlers ---

// List handles GET /schools/{sid}/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	clients, err := h.store.ListClients(r.Context(), database.ListClientsParams{
		SchoolID: schoolID,
		Search:   textParam(r.URL.Query().Get("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("ERROR: list clients: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = dbClientToResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /schools/{sid}/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	req, ok := decodeClientRequest(w, r)
	if !ok {
		return
	}

	client, err := h.store.CreateClient(r.Context(), database.CreateClientParams{
		SchoolID: schoolID,
		Name:     req.Name,
		Phone:    textParam(req.Phone),
		Email:    textParam(req.Email),
		Document: textParam(req.Document),
	})
	if err != nil {
		log.Printf("ERROR: create client: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusCreated, dbClientToResponse(client))
}

// Get handles GET /schools/{sid}/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	client, err := h.store.GetClient(r.Context(), database.GetClientParams{ID: clientID, SchoolID: schoolID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "cliente no encontrado")
			return
		}
		log.Printf("ERROR: get client: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbClientToResponse(client))
}

// Update handles PUT /schools/{sid}/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	req, ok := decodeClientRequest(w, r)
	if !ok {
		return
	}

	client, err := h.store.UpdateClient(r.Context(), database.UpdateClientParams{
		ID:       clientID,
		SchoolID: schoolID,
		Name:     req.Name,
		Phone:    textParam(req.Phone),
		Email:    textParam(req.Email),
		Document: textParam(req.Document),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "cliente no encontrado")
			return
		}
		log.Printf("ERROR: update client: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbClientToResponse(client))
}

// Delete handles DELETE /schools/{sid}/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	if err := h.store.DeleteClient(r.Context(), database.DeleteClientParams{ID: clientID, SchoolID: schoolID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "cliente no encontrado")
			return
		}
		log.Printf("ERROR: delete client: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func decodeClientRequest(w http.ResponseWriter, r *http.Request) (clientRequest, bool) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return req, false
	}
	if req.Name == "" {
		writeFieldErrors(w, http.StatusUnprocessableEntity, []FieldError{
			{Msg: "el nombre es obligatorio", Loc: []string{"body", "name"}},
		})
		return req, false
	}
	return req, true
}

func dbClientToResponse(c database.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		SchoolID:  c.SchoolID,
		Name:      c.Name,
		Phone:     textString(c.Phone),
		Email:     textString(c.Email),
		Document:  textString(c.Document),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
