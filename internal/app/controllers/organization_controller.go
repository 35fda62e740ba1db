package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/middleware"
)

// OrganizationController handles organization, branch, officer and event endpoints
type OrganizationController struct {
	orgService *services.OrganizationService
	logger     zerolog.Logger
}

// NewOrganizationController creates a new OrganizationController
func NewOrganizationController(orgService *services.OrganizationService, logger zerolog.Logger) *OrganizationController {
	return &OrganizationController{
		orgService: orgService,
		logger:     logger,
	}
}

// ListOrganizations lists organizations or branches
// @Summary List organizations or branches
// @Description Lists top-level organizations, or every branch, filtered by a case-insensitive substring of the name
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name search"
// @Param kind query string false "organizations or branches" default(organizations)
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationListResponse} "Organizations retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Unknown listing kind"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /organizations [get]
func (c *OrganizationController) ListOrganizations(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	list, err := c.orgService.ListOrganizations(ctx.Request.Context(), principal, ctx.Query("kind"), ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// GetOrganization returns the details of an organization or branch
// @Summary Get organization details
// @Description Details, current officers, semesters, events and the caller's capabilities
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationDetailResponse} "Organization retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid organization ID"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id} [get]
func (c *OrganizationController) GetOrganization(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	detail, err := c.orgService.GetOrganization(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// UpdateOrganization edits brief, description and logo path
// @Summary Update organization details
// @Description Faculty and the organization's officers may edit the brief, objectives and logo path
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param request body dto.UpdateOrganizationRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationDetailResponse} "Organization updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Failure 500 {object} dto.ErrorResponse "Organization could not be saved"
// @Router /organizations/{id} [put]
func (c *OrganizationController) UpdateOrganization(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateOrganizationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	detail, err := c.orgService.UpdateOrganization(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(detail, "Organization updated successfully"))
}

// UploadLogo replaces the organization logo
// @Summary Upload organization logo
// @Tags organizations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param file formData file true "Logo image (.png, .jpg, .jpeg, .bmp)"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationDetailResponse} "Logo uploaded successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id}/logo [post]
func (c *OrganizationController) UploadLogo(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile(uploadField)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Image file is required").WithField(uploadField)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	detail, err := c.orgService.UploadLogo(ctx.Request.Context(), principal, id, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(detail, "Logo uploaded successfully"))
}

// GetOfficers returns the officer grid for a semester
// @Summary Get officers
// @Description Current officers, or the officers of a past semester
// @Tags officers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param semester query string false "Semester label; empty or 'Current Officers' selects the current list"
// @Success 200 {object} dto.APIResponse{data=dto.OfficerListResponse} "Officers retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id}/officers [get]
func (c *OrganizationController) GetOfficers(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	officers, err := c.orgService.GetOfficers(ctx.Request.Context(), principal, id, ctx.Query("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(officers))
}

// UpdateOfficer edits the caller's own officer card
// @Summary Update own officer card
// @Description An officer may change their position, start date (MM/DD/YYYY) and photo. The change applies to the current list and every semester.
// @Tags officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param name path string true "Officer name"
// @Param request body dto.UpdateOfficerRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.OfficerResponse} "Officer updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Officers can only edit their own card"
// @Failure 404 {object} dto.ErrorResponse "Officer not found"
// @Router /organizations/{id}/officers/{name} [put]
func (c *OrganizationController) UpdateOfficer(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateOfficerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	officer, err := c.orgService.UpdateOfficer(ctx.Request.Context(), principal, id, ctx.Param("name"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(officer, "Officer updated successfully"))
}

// UploadOfficerPhoto replaces the caller's officer photo
// @Summary Upload own officer photo
// @Tags officers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param name path string true "Officer name"
// @Param file formData file true "Photo (.png, .jpg, .jpeg, .bmp)"
// @Success 200 {object} dto.APIResponse{data=dto.OfficerResponse} "Photo uploaded successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Failure 403 {object} dto.ErrorResponse "Officers can only edit their own card"
// @Router /organizations/{id}/officers/{name}/photo [post]
func (c *OrganizationController) UploadOfficerPhoto(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile(uploadField)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Image file is required").WithField(uploadField)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	officer, err := c.orgService.UploadOfficerPhoto(ctx.Request.Context(), principal, id, ctx.Param("name"), fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(officer, "Photo uploaded successfully"))
}

// GetEvents lists the organization's events
// @Summary Get events
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id}/events [get]
func (c *OrganizationController) GetEvents(ctx *gin.Context) {
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	events, err := c.orgService.GetEvents(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}
