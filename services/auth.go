package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hireready/backend/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenCookie = "access_token"
	tokenIssuer       = "hireready"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = fmt.Errorf("user already exists: %w", ErrInvalidState)
)

type contextKey string

const userContextKey contextKey = "user"

// AuthService issues and checks HS256 access tokens for candidates. Tokens
// are stateless; a token stays valid until expiry unless its user disappears.
type AuthService struct {
	users     UserStore
	jwtSecret []byte
	expiry    time.Duration
	now       func() time.Time
}

// AccessClaims is the payload of an access token. The subject is the user id.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token,omitempty"`
}

func NewAuthService(users UserStore, jwtSecret string, expiry time.Duration) *AuthService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		expiry:    expiry,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the password and returns a fresh token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user, "User logged in")
}

// Signup registers a candidate with a bcrypt-hashed password.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName string) (*AuthResponse, error) {
	email = normalizeEmail(email)
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(fullName),
		Role:     "candidate",
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", storeError(err))
	}
	return s.issue(user, "User signed up")
}

func (s *AuthService) issue(user *models.User, event string) (*AuthResponse, error) {
	token, err := s.signToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	slog.Info(event, "user_id", user.ID)
	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) signToken(user *models.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyAccessToken validates the token and loads its user, so deleted users
// lose access immediately.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*models.User, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     accessTokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("ENVIRONMENT") == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// SetAuthCookie stores the token in an HTTP-only cookie that lives as long as the token.
func (s *AuthService) SetAuthCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, s.cookie(accessToken, int(s.expiry.Seconds())))
}

func (s *AuthService) ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

// tokenFromRequest prefers the cookie and falls back to a bearer header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Middleware rejects requests without a valid token and puts the user in the context.
func (s *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, err := s.VerifyAccessToken(r.Context(), token)
		if err != nil {
			slog.Debug("Access token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user set by Middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}
