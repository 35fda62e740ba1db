package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/middleware"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/metrics"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, m *metrics.Metrics, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		metrics:     m,
		logger:      logger,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user with username and password and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 429 {object} dto.ErrorResponse "Too many login attempts"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tokenResponse, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
			c.metrics.LoginAttempt("failure")
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.metrics.LoginAttempt("success")
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(tokenResponse, "Login successful"))
}

// Me returns the authenticated user
// @Summary Current user
// @Description Returns the identity and view role carried by the access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Current user"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(services.ToUserResponse(principal)))
}
