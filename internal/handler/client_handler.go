package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
	"github.com/soma-studio/soma-approve-api/pkg/response"
)

type clientService interface {
	Create(ctx context.Context, client *models.Client, actor *models.JWTClaims) error
	Get(ctx context.Context, id string) (*models.Client, error)
	ListActivity(ctx context.Context) ([]models.ClientActivity, error)
}

// ClientHandler exposes admin endpoints for client accounts.
type ClientHandler struct {
	service clientService
}

// NewClientHandler constructs the handler.
func NewClientHandler(service clientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create godoc
// @Summary Register a client account
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.Client true "Client payload"
// @Success 201 {object} response.Envelope
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var client models.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid client payload"))
		return
	}
	if err := h.service.Create(c.Request.Context(), &client, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Get godoc
// @Summary Fetch a client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Activity godoc
// @Summary Per-client review progress
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /clients/activity [get]
func (h *ClientHandler) Activity(c *gin.Context) {
	activity, err := h.service.ListActivity(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}
