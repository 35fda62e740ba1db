package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/orghub/internal/app/controllers"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/middleware"
	"github.com/yigit/orghub/internal/pkg/metrics"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	organizationController *controllers.OrganizationController,
	membershipController *controllers.MembershipController,
	feedController *controllers.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		if loginLimiter != nil {
			auth.POST("/login", loginLimiter.Middleware(), authController.Login)
		} else {
			auth.POST("/login", authController.Login)
		}
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)

		organizations := authenticated.Group("/organizations")
		{
			organizations.GET("", organizationController.ListOrganizations)
			organizations.GET("/:id", organizationController.GetOrganization)
			organizations.PUT("/:id", organizationController.UpdateOrganization)
			organizations.POST("/:id/logo", organizationController.UploadLogo)
			organizations.GET("/:id/events", organizationController.GetEvents)

			// Officer cards, editable only by the officer they belong to
			organizations.GET("/:id/officers", organizationController.GetOfficers)
			organizations.PUT("/:id/officers/:name", organizationController.UpdateOfficer)
			organizations.POST("/:id/officers/:name/photo", organizationController.UploadOfficerPhoto)

			// Member table
			organizations.GET("/:id/members", membershipController.ListMembers)
			organizations.PATCH("/:id/members/:memberId", membershipController.EditMember)
			organizations.DELETE("/:id/members/:memberId", membershipController.KickMember)
			organizations.PATCH("/:id/member-rows/:row", membershipController.EditMemberRow)
			organizations.POST("/:id/member-rows/:row/kick", membershipController.KickMemberRow)

			// Applicant table
			organizations.GET("/:id/applicants", membershipController.ListApplicants)
			organizations.POST("/:id/applicants/:applicantId/accept", membershipController.AcceptApplicant)
			organizations.POST("/:id/applicants/:applicantId/decline", membershipController.DeclineApplicant)
			organizations.POST("/:id/applicant-rows/:row/accept", membershipController.AcceptApplicantRow)
			organizations.POST("/:id/applicant-rows/:row/decline", membershipController.DeclineApplicantRow)

			organizations.POST("/:id/applications", membershipController.Apply)

			if feedController != nil {
				organizations.GET("/:id/feed", feedController.Watch)
			}
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
}
