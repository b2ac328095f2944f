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

	"github.com/confetex/api/internal/auth"
	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/enum"
)

// AuthStore defines the database methods needed by auth handlers.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetUserSchoolRole(ctx context.Context, arg database.GetUserSchoolRoleParams) (database.UserSchoolRole, error)
	ListUserSchoolRoles(ctx context.Context, userID uuid.UUID) ([]database.UserSchoolRole, error)
}

// AuthHandler handles login and token refresh.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	SchoolID string `json:"school_id"` // optional: defaults to the user's first assignment
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	SchoolID     string `json:"school_id"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	IsActive bool      `json:"is_active"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	SchoolID     uuid.UUID    `json:"school_id"`
	Role         string       `json:"role"`
	User         userResponse `json:"user"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "correo y contraseña son obligatorios")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusUnauthorized, "credenciales inválidas")
			return
		}
		log.Printf("ERROR: get user by email: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeDetail(w, http.StatusUnauthorized, "credenciales inválidas")
		return
	}

	schoolID, role, err := h.resolveSchoolRole(r.Context(), user.ID, req.SchoolID)
	if err != nil {
		h.writeRoleError(w, err)
		return
	}

	h.respondWithTokens(w, user, schoolID, role)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	if req.RefreshToken == "" {
		writeDetail(w, http.StatusBadRequest, "refresh_token es obligatorio")
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "token inválido")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeDetail(w, http.StatusUnauthorized, "token inválido")
			return
		}
		log.Printf("ERROR: get user for refresh: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if !user.IsActive {
		writeDetail(w, http.StatusUnauthorized, "usuario desactivado")
		return
	}

	schoolID, role, err := h.resolveSchoolRole(r.Context(), user.ID, req.SchoolID)
	if err != nil {
		h.writeRoleError(w, err)
		return
	}

	h.respondWithTokens(w, user, schoolID, role)
}

var errNoSchoolAssignment = errors.New("no school assignment")

// resolveSchoolRole picks the school the token is scoped to. A requested
// school must have an explicit role row; without a request the first
// assignment wins, preferring an owner row.
func (h *AuthHandler) resolveSchoolRole(ctx context.Context, userID uuid.UUID, requested string) (uuid.UUID, string, error) {
	if requested != "" {
		sid, err := uuid.Parse(requested)
		if err != nil {
			return uuid.Nil, "", errors.New("school_id inválido")
		}
		role, err := h.store.GetUserSchoolRole(ctx, database.GetUserSchoolRoleParams{
			UserID:   userID,
			SchoolID: sid,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, "", errNoSchoolAssignment
			}
			return uuid.Nil, "", err
		}
		return role.SchoolID, role.Role, nil
	}

	roles, err := h.store.ListUserSchoolRoles(ctx, userID)
	if err != nil {
		return uuid.Nil, "", err
	}
	if len(roles) == 0 {
		return uuid.Nil, "", errNoSchoolAssignment
	}
	for _, r := range roles {
		if r.Role == enum.RoleOwner {
			return r.SchoolID, r.Role, nil
		}
	}
	return roles[0].SchoolID, roles[0].Role, nil
}

func (h *AuthHandler) writeRoleError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNoSchoolAssignment) {
		writeDetail(w, http.StatusForbidden, "el usuario no tiene acceso a este colegio")
		return
	}
	if err.Error() == "school_id inválido" {
		writeDetail(w, http.StatusBadRequest, "school_id inválido")
		return
	}
	log.Printf("ERROR: resolve school role: %v", err)
	writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, user database.User, schoolID uuid.UUID, role string) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, user.ID, schoolID, role)
	if err != nil {
		log.Printf("ERROR: generate access token: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		log.Printf("ERROR: generate refresh token: %v", err)
		writeDetail(w, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SchoolID:     schoolID,
		Role:         role,
		User:         dbUserToResponse(user),
	})
}

func dbUserToResponse(u database.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    textString(u.Phone),
		IsActive: u.IsActive,
	}
}
