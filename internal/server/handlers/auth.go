package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cogniscreen/cogniscreen/internal/database"
	"github.com/cogniscreen/cogniscreen/internal/database/models"
	"github.com/cogniscreen/cogniscreen/internal/server/response"
	"github.com/cogniscreen/cogniscreen/pkg/auth"
)

// AuthHandler handles account registration and token issuance
type AuthHandler struct {
	users *database.UserService
	jwt   *auth.JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *database.UserService, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// TokenRequest represents a login request
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents an issued access token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserResponse represents an account in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := h.validateRegistration(&req); len(errs) > 0 {
		rw.ValidationError(errs)
		return
	}

	taken, err := h.users.UsernameOrEmailTaken(r.Context(), req.Username, req.Email)
	if err != nil {
		rw.InternalServerError("Failed to check account uniqueness", nil)
		return
	}
	if taken {
		rw.Error(http.StatusConflict, response.ErrorCodeDuplicateUser,
			"Username or email already registered", nil)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.BadRequest(err.Error(), nil)
		return
	}

	user := &models.User{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.TrimSpace(req.Email),
		HashedPassword: hashed,
		FullName:       strings.TrimSpace(req.FullName),
		Role:           req.Role,
		IsActive:       true,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		rw.InternalServerError("Failed to create account", nil)
		return
	}

	rw.Created(toUserResponse(user))
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))

	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(req.Password, user.HashedPassword) || !user.IsActive {
		// Same response for wrong user, wrong password, and disabled
		// account; don't leak which one it was.
		rw.Error(http.StatusUnauthorized, response.ErrorCodeInvalidCredential,
			"Incorrect username or password", nil)
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user.Username, user.Role)
	if err != nil {
		rw.InternalServerError("Failed to issue token", nil)
		return
	}

	rw.Success(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))

	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	rw.Success(toUserResponse(user), nil)
}

func (h *AuthHandler) validateRegistration(req *RegisterRequest) map[string]string {
	errs := make(map[string]string)

	if len(strings.TrimSpace(req.Username)) < 3 {
		errs["username"] = "username must be at least 3 characters"
	}
	if !strings.Contains(req.Email, "@") {
		errs["email"] = "a valid email address is required"
	}
	if len(req.Password) < auth.MinPasswordLength {
		errs["password"] = "password must be at least 8 characters"
	}
	if len(strings.TrimSpace(req.FullName)) < 2 {
		errs["full_name"] = "full name is required"
	}
	if req.Role == "" {
		req.Role = models.RoleDoctor
	} else if !models.ValidRole(req.Role) {
		errs["role"] = "role must be doctor, admin, or researcher"
	}

	return errs
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
