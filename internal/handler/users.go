package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/enum"
)

// UserStore defines the database methods needed by user handlers.
type UserStore interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	ListUserSchoolRoles(ctx context.Context, userID uuid.UUID) ([]database.UserSchoolRole, error)
	UpsertUserSchoolRole(ctx context.Context, arg database.UpsertUserSchoolRoleParams) (database.UserSchoolRole, error)
	DeleteUserSchoolRole(ctx context.Context, arg database.DeleteUserSchoolRoleParams) error
}

// UserHandler handles user administration endpoints.
type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers user endpoints on the given Chi router.
// Expected to be mounted at /global/users
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{uid}", h.Get)
	r.Put("/{uid}", h.Update)
	r.Put("/{uid}/schools/{sid}/role", h.AssignRole)
	r.Delete("/{uid}/schools/{sid}/role", h.RevokeRole)
}

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type updateUserRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

type userSchoolRoleResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	SchoolID uuid.UUID `json:"school_id"`
	Role     string    `json:"role"`
}

type userDetailResponse struct {
	userResponse
	Roles []userSchoolRoleResponse `json:"roles"`
}

// --- Handlers ---

// List handles GET /global/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("ERROR: list users: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = dbUserToResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /global/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}

	var errs []FieldError
	if req.Email == "" {
		errs = append(errs, FieldError{Msg: "el correo es obligatorio", Loc: []string{"body", "email"}})
	}
	if len(req.Password) < 8 {
		errs = append(errs, FieldError{Msg: "la contraseña debe tener al menos 8 caracteres", Loc: []string{"body", "password"}})
	}
	if req.FullName == "" {
		errs = append(errs, FieldError{Msg: "el nombre completo es obligatorio", Loc: []string{"body", "full_name"}})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, http.StatusUnprocessableEntity, errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        textParam(req.Phone),
	})
	if err != nil {
		log.Printf("ERROR: create user: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusCreated, dbUserToResponse(user))
}

// Get handles GET /global/users/{uid}: the user with their per-school roles.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "usuario no encontrado")
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	roles, err := h.store.ListUserSchoolRoles(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: list user roles: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	roleResp := make([]userSchoolRoleResponse, len(roles))
	for i, role := range roles {
		roleResp[i] = userSchoolRoleResponse{UserID: role.UserID, SchoolID: role.SchoolID, Role: role.Role}
	}
	writeJSON(w, http.StatusOK, userDetailResponse{
		userResponse: dbUserToResponse(user),
		Roles:        roleResp,
	})
}

// Update handles PUT /global/users/{uid}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if req.FullName == "" {
		writeFieldErrors(w, http.StatusUnprocessableEntity, []FieldError{
			{Msg: "el nombre completo es obligatorio", Loc: []string{"body", "full_name"}},
		})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:       userID,
		FullName: req.FullName,
		Phone:    textParam(req.Phone),
		IsActive: isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "usuario no encontrado")
			return
		}
		log.Printf("ERROR: update user: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, dbUserToResponse(user))
}

// AssignRole handles PUT /global/users/{uid}/schools/{sid}/role.
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if !enum.ValidRole(req.Role) {
		writeDetail(w, http.StatusBadRequest, "rol inválido")
		return
	}

	role, err := h.store.UpsertUserSchoolRole(r.Context(), database.UpsertUserSchoolRoleParams{
		UserID:   userID,
		SchoolID: schoolID,
		Role:     req.Role,
	})
	if err != nil {
		log.Printf("ERROR: assign role: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, userSchoolRoleResponse{
		UserID:   role.UserID,
		SchoolID: role.SchoolID,
		Role:     role.Role,
	})
}

// RevokeRole handles DELETE /global/users/{uid}/schools/{sid}/role.
func (h *UserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	schoolID, ok := parseSchoolID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteUserSchoolRole(r.Context(), database.DeleteUserSchoolRoleParams{
		UserID:   userID,
		SchoolID: schoolID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "el usuario no tiene rol en este colegio")
			return
		}
		log.Printf("ERROR: revoke role: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "ID de usuario inválido")
		return uuid.Nil, false
	}
	return userID, true
}
