package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/videoauth/auth-service/internal/auth"
	"github.com/videoauth/auth-service/pkg/middleware"
)

// LoginRequest carries password-based login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ConfirmTemporaryPasswordRequest replaces a provider-issued temporary
// password with a definitive one.
type ConfirmTemporaryPasswordRequest struct {
	Email             string `json:"email" binding:"required"`
	TemporaryPassword string `json:"temporaryPassword" binding:"required"`
	NewPassword       string `json:"newPassword" binding:"required"`
}

// RecoverRequest starts the password recovery flow.
type RecoverRequest struct {
	Email string `json:"email" binding:"required"`
}

// ConfirmRecoveryRequest completes password recovery with the emailed code.
type ConfirmRecoveryRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register routes under /auth. The authn middleware guards the routes that
// require a verified bearer token.
func (h *AuthHandler) Register(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterUser)
	a.POST("/login", h.Login)
	a.POST("/confirm-temporary-password", h.ConfirmTemporaryPassword)
	a.POST("/recover", h.Recover)
	a.POST("/confirm-recovery", h.ConfirmRecovery)
	a.GET("/validate", authn, h.Validate)
}

// statusForError maps the orchestrator's error kinds onto HTTP statuses.
func statusForError(err error) int {
	switch auth.KindOf(err) {
	case auth.KindValidation, auth.KindInvalidRecoveryCode, auth.KindUnexpectedChallenge:
		return http.StatusBadRequest
	case auth.KindInvalidCredentials:
		return http.StatusUnauthorized
	case auth.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorJSON renders the stable error kind plus a readable detail string.
func errorJSON(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"error":   auth.KindOf(err).String(),
		"message": auth.DetailOf(err),
	})
}

// RegisterUser provisions an identity at the provider and mirrors it locally.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}
	if err := h.svc.Register(c.Request.Context(), req); err != nil {
		errorJSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created"})
}

// Login exchanges email/password for a token set.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}
	tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		errorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// ConfirmTemporaryPassword drives the new-password challenge and returns
// the resulting token set.
func (h *AuthHandler) ConfirmTemporaryPassword(c *gin.Context) {
	var req ConfirmTemporaryPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}
	tokens, err := h.svc.ConfirmTemporaryPassword(c.Request.Context(), req.Email, req.TemporaryPassword, req.NewPassword)
	if err != nil {
		errorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Recover starts password recovery. The response never reveals whether the
// email is registered.
func (h *AuthHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}
	if err := h.svc.InitiatePasswordRecovery(c.Request.Context(), req.Email); err != nil {
		errorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recovery code sent"})
}

// ConfirmRecovery completes password recovery with the emailed code.
func (h *AuthHandler) ConfirmRecovery(c *gin.Context) {
	var req ConfirmRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}
	if err := h.svc.ConfirmPasswordRecovery(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		errorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Validate resolves the verified bearer principal to its directory record.
func (h *AuthHandler) Validate(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	u, err := h.svc.ValidatePrincipal(c.Request.Context(), p)
	if err != nil {
		errorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"nationalId": u.NationalID,
	})
}
