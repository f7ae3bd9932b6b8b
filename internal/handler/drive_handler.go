package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soma-studio/soma-approve-api/internal/dto"
	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/pkg/response"
)

type driveSyncService interface {
	Mappings(ctx context.Context, actor *models.JWTClaims) ([]models.ClientFolderMapping, error)
	SyncClient(ctx context.Context, clientID string, actor *models.JWTClaims) (*dto.DriveSyncResponse, error)
}

// DriveHandler exposes Drive folder sync endpoints.
type DriveHandler struct {
	service driveSyncService
}

// NewDriveHandler constructs the handler.
func NewDriveHandler(service driveSyncService) *DriveHandler {
	return &DriveHandler{service: service}
}

// Mappings godoc
// @Summary Client Drive folder mappings
// @Tags Drive
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /drive/mappings [get]
func (h *DriveHandler) Mappings(c *gin.Context) {
	mappings, err := h.service.Mappings(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mappings, nil)
}

// Sync godoc
// @Summary Import new videos from a client's Drive folder
// @Tags Drive
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /drive/sync/{id} [post]
func (h *DriveHandler) Sync(c *gin.Context) {
	resp, err := h.service.SyncClient(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
