package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
	"github.com/soma-studio/soma-approve-api/pkg/response"
)

type authService interface {
	LoginWithGoogle(ctx context.Context, req models.GoogleLoginRequest) (*models.Session, string, error)
	Session(ctx context.Context, subjectID string) *models.Session
	Logout(ctx context.Context, subjectID string)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// GoogleLogin godoc
// @Summary Sign in with a Google credential
// @Description Exchanges a Google Identity Services credential for a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.GoogleLoginRequest true "Google credential"
// @Success 200 {object} models.GoogleAuthResponse
// @Failure 400 {object} models.GoogleAuthResponse
// @Failure 401 {object} models.GoogleAuthResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Credential == "" {
		c.JSON(http.StatusBadRequest, models.GoogleAuthResponse{
			Success: false,
			Message: "credential is required",
			Error:   appErrors.ErrValidation.Code,
		})
		return
	}

	session, token, err := h.service.LoginWithGoogle(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		c.JSON(appErr.Status, models.GoogleAuthResponse{
			Success: false,
			Message: appErr.Message,
			Error:   appErr.Code,
		})
		return
	}

	c.JSON(http.StatusOK, models.GoogleAuthResponse{
		Success: true,
		Token:   token,
		User:    sessionUser(session),
	})
}

// Logout godoc
// @Summary End the current session
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.GoogleAuthResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.service.Logout(c.Request.Context(), claims.UserID)
	c.JSON(http.StatusOK, models.GoogleAuthResponse{Success: true, Message: "logged out"})
}

// Me godoc
// @Summary Current session profile
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session := h.service.Session(c.Request.Context(), claims.UserID)
	if session == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session expired, please sign in again"))
		return
	}
	response.JSON(c, http.StatusOK, sessionUser(session), nil)
}

func sessionUser(session *models.Session) *models.AuthUser {
	return &models.AuthUser{
		ID:        session.SubjectID,
		Email:     session.Email,
		Name:      session.Name,
		Role:      session.Role,
		AvatarURL: session.AvatarURL,
	}
}
