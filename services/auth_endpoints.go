package services

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/backend/models"
)

type AuthEndpoints struct {
	authService *AuthService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
}

type userView struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	FullName           string  `json:"full_name"`
	Role               string  `json:"role"`
	InterviewReadiness float64 `json:"interview_readiness"`
}

func viewUser(u *models.User) userView {
	return userView{
		ID:                 u.ID,
		Email:              u.Email,
		FullName:           u.FullName,
		Role:               u.Role,
		InterviewReadiness: u.InterviewReadiness,
	}
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", e.LoginHandler)
		r.Post("/signup", e.SignupHandler)
		r.Post("/logout", e.LogoutHandler)
		r.Group(func(r chi.Router) {
			r.Use(e.authService.Middleware)
			r.Get("/me", e.MeHandler)
		})
	})
}

func (e *AuthEndpoints) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	authResponse, err := e.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Error("Login failed", "error", err, "email", req.Email)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	e.authService.SetAuthCookie(w, authResponse.AccessToken)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":         viewUser(authResponse.User),
		"access_token": authResponse.AccessToken,
		"message":      "Login successful",
	})
}

func (e *AuthEndpoints) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	authResponse, err := e.authService.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		slog.Error("Signup failed", "error", err, "email", req.Email)
		if errors.Is(err, ErrInvalidState) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	e.authService.SetAuthCookie(w, authResponse.AccessToken)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":         viewUser(authResponse.User),
		"access_token": authResponse.AccessToken,
		"message":      "Signup successful",
	})
}

// LogoutHandler clears the cookie. Tokens are stateless, so there is nothing
// to revoke server-side.
func (e *AuthEndpoints) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	e.authService.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}

func (e *AuthEndpoints) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": viewUser(user)})
}
