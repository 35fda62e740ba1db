package auth

import (
	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/pkg/apperrors"
)

// Members page labels
const (
	MembersLabelManage = "Manage Members"
	MembersLabelView   = "View Members"
)

// Capabilities are the management affordances a principal has on one organization.
// They are recomputed on every request from the principal and the current officer list.
type Capabilities struct {
	ViewRole            models.ViewRole
	CanManageMembers    bool
	CanManageApplicants bool
	CanEditOrg          bool
	IsManaging          bool
	MembersLabel        string
}

// CapabilitiesFor decides what the principal may do on org
func CapabilitiesFor(principal models.Principal, org *models.Organization) Capabilities {
	role := principal.ViewRole()

	var managing bool
	switch role {
	case models.ViewRoleFaculty:
		managing = true
	case models.ViewRoleOfficer:
		managing = org != nil && org.HasOfficer(principal.Name)
	}

	label := MembersLabelView
	if managing {
		label = MembersLabelManage
	}

	return Capabilities{
		ViewRole:            role,
		CanManageMembers:    managing,
		CanManageApplicants: managing,
		CanEditOrg:          managing,
		IsManaging:          managing,
		MembersLabel:        label,
	}
}

// CanEditOfficer reports whether the principal may edit an officer card. Only the
// officer themself may, matched by display name.
func CanEditOfficer(principal models.Principal, officer models.Officer) bool {
	return principal.Name != "" && principal.Name == officer.Name
}

// CanApply reports whether the principal may apply to org: students and officers
// who are neither a member nor a pending applicant.
func CanApply(principal models.Principal, org *models.Organization) bool {
	if org == nil || principal.ViewRole() == models.ViewRoleFaculty {
		return false
	}
	for _, m := range org.Members {
		if m.Name == principal.Name {
			return false
		}
	}
	for _, a := range org.Applicants {
		if a.Name == principal.Name {
			return false
		}
	}
	return true
}

// RequireManageMembers returns a permission error unless the principal manages org's members
func RequireManageMembers(principal models.Principal, org *models.Organization) error {
	if !CapabilitiesFor(principal, org).CanManageMembers {
		return apperrors.NewForbiddenError("You are not allowed to manage members of this organization")
	}
	return nil
}

// RequireManageApplicants returns a permission error unless the principal manages org's applicants
func RequireManageApplicants(principal models.Principal, org *models.Organization) error {
	if !CapabilitiesFor(principal, org).CanManageApplicants {
		return apperrors.NewForbiddenError("You are not allowed to manage applicants of this organization")
	}
	return nil
}

// RequireEditOrganization returns a permission error unless the principal may edit org
func RequireEditOrganization(principal models.Principal, org *models.Organization) error {
	if !CapabilitiesFor(principal, org).CanEditOrg {
		return apperrors.NewForbiddenError("You are not allowed to edit this organization")
	}
	return nil
}
