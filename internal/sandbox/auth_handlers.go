package sandbox

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/sandbox/middleware"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	state      *State
	jwtService *auth.JWTService
	hasher     *auth.PasswordHasher
}

func NewAuthHandlers(state *State, jwtService *auth.JWTService, hasher *auth.PasswordHasher) *AuthHandlers {
	return &AuthHandlers{
		state:      state,
		jwtService: jwtService,
		hasher:     hasher,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token and the role flags the client stores
type LoginResponse struct {
	Access      string `json:"access"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type ProfileResponse struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

// Register creates a customer account; the response holds only the access token
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondFieldError(w, "email", "Enter a valid email address.")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		respondFieldError(w, "password", "This password is too short. It must contain at least 8 characters.")
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondFieldError(w, "password", "This password is too long.")
		return
	case err != nil:
		respondJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	u, err := h.state.CreateUser(req.Email, hash, "CUSTOMER")
	if errors.Is(err, ErrEmailTaken) {
		respondFieldError(w, "email", "user with this email already exists.")
		return
	}
	if err != nil {
		respondJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	token, ok := h.issueToken(w, u)
	if !ok {
		return
	}
	log.Printf("[Sandbox] Registered user %d", u.ID)
	respondJSON(w, http.StatusCreated, map[string]string{"access": token})
}

// Login verifies credentials and returns a token with the user's role flags
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, exists := h.state.UserByEmail(req.Email)
	if !exists || !auth.CheckPassword(req.Password, u.PasswordHash) {
		respondJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !u.IsActive {
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}

	token, ok := h.issueToken(w, u)
	if !ok {
		return
	}
	h.state.TouchLogin(u.ID)

	respondJSON(w, http.StatusOK, LoginResponse{
		Access:      token,
		Email:       u.Email,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(u))
}

type profileRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateMe patches the editable profile fields; role and flags are read-only here
func (h *AuthHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			respondFieldError(w, "email", "Enter a valid email address.")
			return
		}
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		respondFieldError(w, "username", "This field may not be blank.")
		return
	}

	updated, err := h.state.UpdateProfile(u.ID, ProfileChanges{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, ErrEmailTaken) {
		respondFieldError(w, "email", "user with this email already exists.")
		return
	}
	if err != nil {
		respondStateError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(updated))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == "" {
		respondFieldError(w, "current_password", "This field is required.")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		respondFieldError(w, "new_password", "Ensure this field has at least 8 characters.")
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondFieldError(w, "new_password", "This password is too long.")
		return
	case err != nil:
		respondJSONError(w, "Password change failed", http.StatusInternalServerError)
		return
	}

	if !auth.CheckPassword(req.CurrentPassword, u.PasswordHash) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "Current password is incorrect."})
		return
	}
	if err := h.state.SetPassword(u.ID, hash); err != nil {
		respondStateError(w, err)
		return
	}
	log.Printf("[Sandbox] Password changed for user %d", u.ID)
	respondJSON(w, http.StatusOK, map[string]string{"detail": "Password updated successfully."})
}

func toProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
		LastLogin:  u.LastLogin,
	}
}

func (h *AuthHandlers) issueToken(w http.ResponseWriter, u *User) (string, bool) {
	token, _, err := h.jwtService.GenerateAccessToken(auth.Claims{
		UserID:      strconv.FormatInt(u.ID, 10),
		Email:       u.Email,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	})
	if err != nil {
		respondJSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return "", false
	}
	return token, true
}

// currentUser resolves the user behind the request's claims, writing 401 when there is none
func currentUser(w http.ResponseWriter, r *http.Request, state *State) (*User, bool) {
	id, err := strconv.ParseInt(middleware.GetUserID(r.Context()), 10, 64)
	if err != nil {
		respondJSONError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return nil, false
	}
	u, ok := state.User(id)
	if !ok {
		respondJSONError(w, "User not found", http.StatusUnauthorized)
		return nil, false
	}
	return u, true
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFieldError writes a validation error keyed by field
func respondFieldError(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusBadRequest, map[string][]string{field: {message}})
}
