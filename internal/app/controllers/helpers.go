// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/middleware"
)

// uploadField is the multipart field carrying an image upload
const uploadField = "file"

// principalOrAbort returns the authenticated caller or answers 401
func principalOrAbort(ctx *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return models.Principal{}, false
	}
	return principal, true
}

// organizationIDParam parses the :id path parameter
func organizationIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid organization ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// rowParam parses the 0-based :row path parameter
func rowParam(ctx *gin.Context) (int, bool) {
	row, err := strconv.Atoi(ctx.Param("row"))
	if err != nil || row < 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid row").WithField("row")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return row, true
}

// bindOptionalJSON binds a JSON body when one is sent; an empty body leaves obj zeroed
func bindOptionalJSON(ctx *gin.Context, obj interface{}) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	return middleware.BindJSON(ctx, obj)
}
