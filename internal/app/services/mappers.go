package services

import (
	"github.com/yigit/orghub/internal/app/auth"
	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/pkg/filestorage"
)

// Organization kinds as shown in titles
const (
	KindOrganization = "Organization"
	KindBranch       = "Branch"
)

func organizationKind(org *models.Organization) string {
	if org.IsBranch {
		return KindBranch
	}
	return KindOrganization
}

func toCapabilitiesResponse(caps auth.Capabilities, canApply bool) dto.CapabilitiesResponse {
	return dto.CapabilitiesResponse{
		ViewRole:            string(caps.ViewRole),
		IsManaging:          caps.IsManaging,
		CanManageMembers:    caps.CanManageMembers,
		CanManageApplicants: caps.CanManageApplicants,
		CanEditOrg:          caps.CanEditOrg,
		CanApply:            canApply,
		MembersLabel:        caps.MembersLabel,
	}
}

func toOrganizationSummary(org *models.Organization, parentID *int64, storage filestorage.FileStorage) dto.OrganizationSummary {
	return dto.OrganizationSummary{
		ID:          org.ID,
		Name:        org.Name,
		IsBranch:    org.IsBranch,
		Kind:        organizationKind(org),
		LogoPath:    storage.ResolveAssetPath(org.LogoPath),
		Brief:       org.Brief,
		Description: org.Description,
		ParentID:    parentID,
	}
}

func toOfficerResponses(principal models.Principal, officers []models.Officer, storage filestorage.FileStorage) []dto.OfficerResponse {
	responses := make([]dto.OfficerResponse, 0, len(officers))
	for _, officer := range officers {
		responses = append(responses, dto.OfficerResponse{
			Name:          officer.Name,
			Position:      officer.Position,
			PhotoPath:     storage.ResolveAssetPath(officer.PhotoPath),
			CardImagePath: storage.ResolveAssetPath(officer.CardImagePath),
			StartDate:     officer.StartDate,
			CanEdit:       auth.CanEditOfficer(principal, officer),
		})
	}
	return responses
}

func toEventResponses(events []models.Event) []dto.EventResponse {
	responses := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.EventResponse{
			Name:        event.Name,
			Date:        event.Date,
			Description: event.Description,
		})
	}
	return responses
}

func toMemberResponse(row int, m models.Member) dto.MemberResponse {
	return dto.MemberResponse{
		Row:        row,
		ID:         m.ID,
		Name:       m.Name,
		Position:   m.Position,
		Status:     m.Status,
		JoinedDate: m.JoinedDate,
	}
}

func toApplicantResponse(row int, a models.Applicant) dto.ApplicantResponse {
	return dto.ApplicantResponse{
		Row:         row,
		ID:          a.ID,
		Name:        a.Name,
		Position:    a.Position,
		AppliedDate: a.AppliedDate,
	}
}
