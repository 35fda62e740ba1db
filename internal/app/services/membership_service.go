package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/auth"
	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/helpers"
	"github.com/yigit/orghub/internal/pkg/rowfilter"
	"github.com/yigit/orghub/internal/pkg/validation"
)

// Table actions
const (
	ActionEdit    = "edit"
	ActionKick    = "kick"
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionApply   = "apply"
)

// defaultApplyPosition is used when an application names no position
const defaultApplyPosition = "Member"

var (
	memberView = rowfilter.View[models.Member]{
		Fields: models.Member.Fields,
		Key:    models.Member.Key,
	}
	applicantView = rowfilter.View[models.Applicant]{
		Fields: models.Applicant.Fields,
		Key:    models.Applicant.Key,
	}
)

// locator finds the index of the record an action targets. It returns
// repositories.ErrSkipUpdate when the addressed row no longer exists.
type locator[T any] func(items []T) (int, error)

// rowLocator resolves a row of the listing filtered by search
func rowLocator[T any](view rowfilter.View[T], search string, row int) locator[T] {
	return func(items []T) (int, error) {
		index, ok := view.Resolve(items, search, row)
		if !ok {
			return -1, repositories.ErrSkipUpdate
		}
		return index, nil
	}
}

// idLocator finds the record whose key is id
func idLocator[T any](view rowfilter.View[T], id string, notFound error) locator[T] {
	return func(items []T) (int, error) {
		for i, item := range items {
			if view.Key(item) == id {
				return i, nil
			}
		}
		return -1, notFound
	}
}

// MembershipService handles the members and applicants tables
type MembershipService struct {
	orgRepo  repositories.OrganizationRepository
	clock    helpers.Clock
	notifier ChangeNotifier
	logger   zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(orgRepo repositories.OrganizationRepository, clock helpers.Clock, logger zerolog.Logger) *MembershipService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &MembershipService{
		orgRepo:  orgRepo,
		clock:    clock,
		notifier: noopNotifier{},
		logger:   logger,
	}
}

// SetNotifier registers the receiver of change notifications
func (s *MembershipService) SetNotifier(n ChangeNotifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

func (s *MembershipService) findOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrOrganizationNotFound) {
			s.logger.Error().Err(err).Int64("organizationID", id).Msg("Failed to load organization")
		}
		return nil, apperrors.ErrOrganizationNotFound
	}
	return org, nil
}

// ListMembers returns the members table filtered by search. Anyone signed in may view it.
func (s *MembershipService) ListMembers(ctx context.Context, principal models.Principal, orgID int64, search string) (*dto.MemberListResponse, error) {
	org, err := s.findOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	filtered := memberView.Filter(org.Members, search)
	members := make([]dto.MemberResponse, 0, len(filtered))
	for row, member := range filtered {
		members = append(members, toMemberResponse(row, member))
	}

	caps := auth.CapabilitiesFor(principal, org)
	return &dto.MemberListResponse{
		OrganizationID: org.ID,
		Kind:           organizationKind(org),
		Title:          "Member List",
		Search:         search,
		Members:        members,
		Capabilities:   toCapabilitiesResponse(caps, auth.CanApply(principal, org)),
	}, nil
}

// ListApplicants returns the applicants table filtered by search. Only managers may view it.
func (s *MembershipService) ListApplicants(ctx context.Context, principal models.Principal, orgID int64, search string) (*dto.ApplicantListResponse, error) {
	org, err := s.findOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireManageApplicants(principal, org); err != nil {
		return nil, err
	}

	filtered := applicantView.Filter(org.Applicants, search)
	applicants := make([]dto.ApplicantResponse, 0, len(filtered))
	for row, applicant := range filtered {
		applicants = append(applicants, toApplicantResponse(row, applicant))
	}

	return &dto.ApplicantListResponse{
		OrganizationID: org.ID,
		Title:          "Applicant List",
		Search:         search,
		Applicants:     applicants,
	}, nil
}

// memberAction runs act on the located member inside one serialized update
func (s *MembershipService) memberAction(ctx context.Context, principal models.Principal, orgID int64, action string, confirm bool, locate locator[models.Member], act func(org *models.Organization, index int) *dto.ActionResult) (*dto.ActionResult, error) {
	var result *dto.ActionResult
	_, err := s.orgRepo.Update(ctx, orgID, func(org *models.Organization) error {
		result = nil
		if err := auth.RequireManageMembers(principal, org); err != nil {
			return err
		}
		if !confirm {
			return apperrors.ErrConfirmationRequired
		}
		index, err := locate(org.Members)
		if err != nil {
			return err
		}
		result = act(org, index)
		return nil
	})
	return s.finish(err, principal, orgID, action, result)
}

// applicantAction runs act on the located applicant inside one serialized update
func (s *MembershipService) applicantAction(ctx context.Context, principal models.Principal, orgID int64, action string, confirm bool, locate locator[models.Applicant], act func(org *models.Organization, index int) *dto.ActionResult) (*dto.ActionResult, error) {
	var result *dto.ActionResult
	_, err := s.orgRepo.Update(ctx, orgID, func(org *models.Organization) error {
		result = nil
		if err := auth.RequireManageApplicants(principal, org); err != nil {
			return err
		}
		if !confirm {
			return apperrors.ErrConfirmationRequired
		}
		index, err := locate(org.Applicants)
		if err != nil {
			return err
		}
		result = act(org, index)
		return nil
	})
	return s.finish(err, principal, orgID, action, result)
}

func (s *MembershipService) finish(err error, principal models.Principal, orgID int64, action string, result *dto.ActionResult) (*dto.ActionResult, error) {
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("organizationID", orgID).Str("action", action).Msg("Failed to save organization")
		}
		return nil, err
	}
	if result == nil {
		s.logger.Debug().Int64("organizationID", orgID).Str("action", action).Msg("Row no longer exists, nothing changed")
		return &dto.ActionResult{Applied: false, Action: action}, nil
	}

	event := s.logger.Info().Int64("organizationID", orgID).Str("action", action)
	if result.Member != nil {
		event = event.Str("member", result.Member.Name)
	}
	if result.Applicant != nil {
		event = event.Str("applicant", result.Applicant.Name)
	}
	event.Msg("Membership updated")
	s.notifier.OrganizationChanged(orgID, action, principal.UserID)
	return result, nil
}

func (s *MembershipService) editPosition(position string) (func(org *models.Organization, index int) *dto.ActionResult, error) {
	if !validation.IsMemberPosition(position) {
		return nil, apperrors.NewBadRequestError("Position must be one of the member positions")
	}
	return func(org *models.Organization, index int) *dto.ActionResult {
		org.Members[index].Position = position
		member := toMemberResponse(index, org.Members[index])
		return &dto.ActionResult{Applied: true, Action: ActionEdit, Member: &member}
	}, nil
}

func kickMember(org *models.Organization, index int) *dto.ActionResult {
	member := toMemberResponse(index, org.Members[index])
	org.Members = append(org.Members[:index], org.Members[index+1:]...)
	return &dto.ActionResult{Applied: true, Action: ActionKick, Member: &member}
}

func (s *MembershipService) acceptApplicant(org *models.Organization, index int) *dto.ActionResult {
	applicant := org.Applicants[index]
	org.Applicants = append(org.Applicants[:index], org.Applicants[index+1:]...)

	member := applicant.ToMember(helpers.Today(s.clock))
	org.Members = append(org.Members, member)

	memberResp := toMemberResponse(len(org.Members)-1, member)
	applicantResp := toApplicantResponse(index, applicant)
	return &dto.ActionResult{Applied: true, Action: ActionAccept, Member: &memberResp, Applicant: &applicantResp}
}

func declineApplicant(org *models.Organization, index int) *dto.ActionResult {
	applicant := toApplicantResponse(index, org.Applicants[index])
	org.Applicants = append(org.Applicants[:index], org.Applicants[index+1:]...)
	return &dto.ActionResult{Applied: true, Action: ActionDecline, Applicant: &applicant}
}

// EditMemberRow changes the position of the member shown at row of the listing filtered by search
func (s *MembershipService) EditMemberRow(ctx context.Context, principal models.Principal, orgID int64, row int, search, position string) (*dto.ActionResult, error) {
	act, err := s.editPosition(position)
	if err != nil {
		return nil, err
	}
	return s.memberAction(ctx, principal, orgID, ActionEdit, true, rowLocator(memberView, search, row), act)
}

// EditMember changes the position of the member with memberID
func (s *MembershipService) EditMember(ctx context.Context, principal models.Principal, orgID int64, memberID, position string) (*dto.ActionResult, error) {
	act, err := s.editPosition(position)
	if err != nil {
		return nil, err
	}
	return s.memberAction(ctx, principal, orgID, ActionEdit, true, idLocator(memberView, memberID, apperrors.ErrMemberNotFound), act)
}

// KickMemberRow removes the member shown at row of the listing filtered by search
func (s *MembershipService) KickMemberRow(ctx context.Context, principal models.Principal, orgID int64, row int, search string, confirm bool) (*dto.ActionResult, error) {
	return s.memberAction(ctx, principal, orgID, ActionKick, confirm, rowLocator(memberView, search, row), kickMember)
}

// KickMember removes the member with memberID
func (s *MembershipService) KickMember(ctx context.Context, principal models.Principal, orgID int64, memberID string, confirm bool) (*dto.ActionResult, error) {
	return s.memberAction(ctx, principal, orgID, ActionKick, confirm, idLocator(memberView, memberID, apperrors.ErrMemberNotFound), kickMember)
}

// AcceptApplicantRow accepts the applicant shown at row of the listing filtered by search
func (s *MembershipService) AcceptApplicantRow(ctx context.Context, principal models.Principal, orgID int64, row int, search string, confirm bool) (*dto.ActionResult, error) {
	return s.applicantAction(ctx, principal, orgID, ActionAccept, confirm, rowLocator(applicantView, search, row), s.acceptApplicant)
}

// AcceptApplicant accepts the applicant with applicantID
func (s *MembershipService) AcceptApplicant(ctx context.Context, principal models.Principal, orgID int64, applicantID string, confirm bool) (*dto.ActionResult, error) {
	return s.applicantAction(ctx, principal, orgID, ActionAccept, confirm, idLocator(applicantView, applicantID, apperrors.ErrApplicantNotFound), s.acceptApplicant)
}

// DeclineApplicantRow declines the applicant shown at row of the listing filtered by search
func (s *MembershipService) DeclineApplicantRow(ctx context.Context, principal models.Principal, orgID int64, row int, search string, confirm bool) (*dto.ActionResult, error) {
	return s.applicantAction(ctx, principal, orgID, ActionDecline, confirm, rowLocator(applicantView, search, row), declineApplicant)
}

// DeclineApplicant declines the applicant with applicantID
func (s *MembershipService) DeclineApplicant(ctx context.Context, principal models.Principal, orgID int64, applicantID string, confirm bool) (*dto.ActionResult, error) {
	return s.applicantAction(ctx, principal, orgID, ActionDecline, confirm, idLocator(applicantView, applicantID, apperrors.ErrApplicantNotFound), declineApplicant)
}

// Apply adds the caller to the applicants of an organization
func (s *MembershipService) Apply(ctx context.Context, principal models.Principal, orgID int64, position string) (*dto.ActionResult, error) {
	if position == "" {
		position = defaultApplyPosition
	}
	if !validation.IsMemberPosition(position) {
		return nil, apperrors.NewBadRequestError("Position must be one of the member positions")
	}

	var result *dto.ActionResult
	_, err := s.orgRepo.Update(ctx, orgID, func(org *models.Organization) error {
		if principal.ViewRole() == models.ViewRoleFaculty {
			return apperrors.NewForbiddenError("Faculty cannot apply to organizations")
		}
		if !auth.CanApply(principal, org) {
			return apperrors.ErrAlreadyApplied
		}

		applicant := models.Applicant{
			ID:          uuid.NewString(),
			Name:        principal.Name,
			Position:    position,
			AppliedDate: helpers.Today(s.clock),
		}
		org.Applicants = append(org.Applicants, applicant)

		resp := toApplicantResponse(len(org.Applicants)-1, applicant)
		result = &dto.ActionResult{Applied: true, Action: ActionApply, Applicant: &resp}
		return nil
	})
	return s.finish(err, principal, orgID, ActionApply, result)
}
