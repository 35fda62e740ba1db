package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/orghub/internal/pkg/helpers"
)

// MemberPositions are the positions a manager may assign to a member
var MemberPositions = []string{
	"President",
	"Vice - Internal Chairperson",
	"Vice - External Chairperson",
	"Secretary",
	"Treasurer",
	"Member",
}

// Name validation min/max length
const (
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(`^[a-z0-9._\-]{3,64}$`),
}

// IsMemberPosition reports whether position is one of MemberPositions
func IsMemberPosition(position string) bool {
	for _, p := range MemberPositions {
		if p == position {
			return true
		}
	}
	return false
}

// IsOfficerStartDate reports whether value is a valid MM/DD/YYYY date
func IsOfficerStartDate(value string) bool {
	_, err := time.Parse(helpers.OfficerStartDateLayout, value)
	return err == nil
}

// IsImagePath reports whether path has one of the image extensions the directory displays
func IsImagePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".bmp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// RegisterRules adds the domain tags used in request DTOs to v
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("member_position", func(fl validator.FieldLevel) bool {
		return IsMemberPosition(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("officer_date", func(fl validator.FieldLevel) bool {
		return IsOfficerStartDate(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("image_path", func(fl validator.FieldLevel) bool {
		return IsImagePath(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Username.MatchString(fl.Field().String())
	})
}
