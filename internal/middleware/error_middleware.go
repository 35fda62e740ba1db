package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/logger"
)

// errorMapping is the HTTP status, code and default message for a sentinel error
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel err wraps wins
var errorMappings = []errorMapping{
	{apperrors.ErrOrganizationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Organization not found"},
	{apperrors.ErrOfficerNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Officer not found"},
	{apperrors.ErrMemberNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Member not found"},
	{apperrors.ErrApplicantNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Applicant not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrConfirmationRequired, http.StatusBadRequest, dto.ErrorCodeConfirmationRequired, "This action must be confirmed"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "Bad request"},
	{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Already a member or applicant of this organization"},
	{apperrors.ErrOrganizationAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Organization already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Conflict"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "Too many requests"},
	{apperrors.ErrDataFileCorrupt, http.StatusInternalServerError, dto.ErrorCodeStorageError, "Organizations data could not be read"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, mapping := range errorMappings {
		if !errors.Is(err, mapping.target) {
			continue
		}

		message := mapping.message
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) && customErr.Message != "" {
			message = customErr.Message
		}

		if mapping.status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		}
		c.JSON(mapping.status, dto.NewErrorResponse(dto.NewErrorDetail(mapping.code, message)))
		return
	}

	// Handle unknown errors
	logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}
