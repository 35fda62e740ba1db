package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/middleware"
	"github.com/yigit/orghub/internal/pkg/websocket"
)

// FeedController streams organization change events over websocket
type FeedController struct {
	orgService *services.OrganizationService
	hub        *websocket.Hub
	logger     zerolog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(orgService *services.OrganizationService, hub *websocket.Hub, logger zerolog.Logger) *FeedController {
	return &FeedController{
		orgService: orgService,
		hub:        hub,
		logger:     logger,
	}
}

// Watch subscribes the caller to changes of an organization
// @Summary Watch an organization for changes
// @Description Upgrades to a websocket that receives an organization_changed event after every saved edit, upload or membership action. Browsers pass the JWT in the token query parameter.
// @Tags organizations
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param token query string false "JWT when no Authorization header can be sent"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id}/feed [get]
func (c *FeedController) Watch(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	if _, err := c.orgService.GetOrganization(ctx.Request.Context(), principal, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.hub.Serve(ctx.Writer, ctx.Request, id, principal.UserID); err != nil {
		c.logger.Warn().Err(err).Int64("organizationID", id).Str("user", principal.UserID).Msg("Failed to open organization feed")
	}
}
