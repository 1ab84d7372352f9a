package api

import (
	"errors"
	"net/http"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/metrics"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/service"
	"alcyxob/trainlog/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const forgotPasswordMessage = "If an account exists with that email, you'll receive a reset link."

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService  service.AuthService
	instr        *metrics.Instrumentation
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, instr *metrics.Instrumentation, sessionTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		instr:        instr,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// --- Request/Response Structs ---

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{ID: user.ID.Hex(), Email: user.Email, Name: user.Name}
}

// --- Handler Methods ---

// Signup godoc
// @Summary Create an account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Field errors, or the email is taken"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req validation.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondError(c, validation.NewFieldError("email", "An account with this email already exists"))
			return
		}
		respondError(c, err)
		return
	}

	h.instr.CounterSignups.Inc()
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a session token, also set as an HttpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Invalid email or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req validation.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			h.instr.CounterLogins.WithLabelValues("rejected").Inc()
			abortWithError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.instr.CounterLogins.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	h.instr.CounterLogins.WithLabelValues("ok").Inc()
	h.setSessionCookie(c, token, int(h.sessionTTL.Seconds()))
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// Logout clears the session cookie. Tokens are stateless, so there is nothing to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	success(c)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", h.cookieSecure, true)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		// The account was removed after the token was issued.
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ForgotPassword answers with the same message whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req validation.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid email")
		return
	}
	if err := validation.Struct(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid email")
		return
	}

	h.instr.CounterResetRequests.Inc()
	h.authService.RequestPasswordReset(c.Request.Context(), req)
	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

// ResetPassword consumes a reset token. Errors are reported as a single message.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req validation.ResetPasswordRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		abortWithError(c, http.StatusBadRequest, validation.FromDecodeError(err, rawBody(c)).First())
		return
	}
	if err := validation.Struct(&req); err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			abortWithError(c, http.StatusBadRequest, vErr.First())
			return
		}
		respondError(c, err)
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			abortWithError(c, http.StatusBadRequest, "Invalid or expired reset link")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req validation.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			respondError(c, validation.NewFieldError("currentPassword", "Current password is incorrect"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
