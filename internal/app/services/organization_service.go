package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/auth"
	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/filestorage"
	"github.com/yigit/orghub/internal/pkg/rowfilter"
)

// Upload sub-directories
const (
	logoUploadDir    = "logos"
	officerUploadDir = "officers"
)

var organizationView = rowfilter.View[models.Organization]{
	Fields: func(o models.Organization) []string { return []string{o.Name} },
	Key:    func(o models.Organization) string { return fmt.Sprint(o.ID) },
}

// OrganizationService handles browsing and editing organizations, branches and officers
type OrganizationService struct {
	orgRepo  repositories.OrganizationRepository
	storage  filestorage.FileStorage
	notifier ChangeNotifier
	logger   zerolog.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgRepo repositories.OrganizationRepository, storage filestorage.FileStorage, logger zerolog.Logger) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		storage:  storage,
		notifier: noopNotifier{},
		logger:   logger,
	}
}

// SetNotifier registers the receiver of change notifications
func (s *OrganizationService) SetNotifier(n ChangeNotifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

// loadAll returns every organization. A store that cannot be read is logged and
// treated as empty so the directory still renders.
func (s *OrganizationService) loadAll(ctx context.Context) []models.Organization {
	orgs, err := s.orgRepo.LoadAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load organizations, treating as empty")
		return []models.Organization{}
	}
	return orgs
}

// ListOrganizations lists top-level organizations or all branches, filtered by name
func (s *OrganizationService) ListOrganizations(ctx context.Context, principal models.Principal, kind, search string) (*dto.OrganizationListResponse, error) {
	if kind == "" {
		kind = dto.ListKindOrganizations
	}

	orgs := s.loadAll(ctx)
	summaries := []dto.OrganizationSummary{}

	switch strings.ToLower(kind) {
	case dto.ListKindOrganizations:
		for _, org := range organizationView.Filter(orgs, search) {
			summaries = append(summaries, toOrganizationSummary(&org, nil, s.storage))
		}
	case dto.ListKindBranches:
		for _, parent := range orgs {
			parentID := parent.ID
			for _, branch := range organizationView.Filter(parent.Branches, search) {
				summaries = append(summaries, toOrganizationSummary(&branch, &parentID, s.storage))
			}
		}
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown listing kind %q", kind))
	}

	return &dto.OrganizationListResponse{
		Kind:          strings.ToLower(kind),
		Search:        search,
		Organizations: summaries,
		Total:         len(summaries),
	}, nil
}

func logoDir(id int64) string    { return fmt.Sprintf("%s/%d", logoUploadDir, id) }
func officerDir(id int64) string { return fmt.Sprintf("%s/%d", officerUploadDir, id) }

// checkOwnUpload rejects a path inside the upload directory that belongs to another
// organization's upload area. Bundled assets outside the upload directory are allowed.
func (s *OrganizationService) checkOwnUpload(path, dir, message string) error {
	if s.storage.InScope(path, "") && !s.storage.InScope(path, dir) {
		return apperrors.NewBadRequestError(message)
	}
	return nil
}

// detailParent returns the parent id of org when it is a branch
func (s *OrganizationService) detailParent(ctx context.Context, org *models.Organization) *int64 {
	if !org.IsBranch {
		return nil
	}
	return parentOf(s.loadAll(ctx), org.ID)
}

// findOrganization returns the organization or branch with id. Read failures other
// than a missing id are logged and reported as not found, like an empty store.
func (s *OrganizationService) findOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrOrganizationNotFound) {
			s.logger.Error().Err(err).Int64("organizationID", id).Msg("Failed to load organization")
		}
		return nil, apperrors.ErrOrganizationNotFound
	}
	return org, nil
}

// parentOf returns the id of the organization holding branch id, if any
func parentOf(orgs []models.Organization, id int64) *int64 {
	for _, org := range orgs {
		for _, branch := range org.Branches {
			if branch.ID == id {
				parentID := org.ID
				return &parentID
			}
		}
	}
	return nil
}

// GetOrganization returns the details page of an organization or branch
func (s *OrganizationService) GetOrganization(ctx context.Context, principal models.Principal, id int64) (*dto.OrganizationDetailResponse, error) {
	org, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toDetail(principal, org, s.detailParent(ctx, org)), nil
}

func (s *OrganizationService) toDetail(principal models.Principal, org *models.Organization, parentID *int64) *dto.OrganizationDetailResponse {
	branches := make([]string, 0, len(org.Branches))
	for _, branch := range org.Branches {
		branches = append(branches, branch.Name)
	}

	caps := auth.CapabilitiesFor(principal, org)
	return &dto.OrganizationDetailResponse{
		OrganizationSummary: toOrganizationSummary(org, parentID, s.storage),
		Branches:            branches,
		Semesters:           org.Semesters(),
		Officers:            toOfficerResponses(principal, org.Officers, s.storage),
		Events:              toEventResponses(org.Events),
		MemberCount:         len(org.Members),
		Capabilities:        toCapabilitiesResponse(caps, auth.CanApply(principal, org)),
	}
}

// UpdateOrganization edits the brief, description and logo path of an organization
func (s *OrganizationService) UpdateOrganization(ctx context.Context, principal models.Principal, id int64, req *dto.UpdateOrganizationRequest) (*dto.OrganizationDetailResponse, error) {
	if req.LogoPath != nil {
		if err := s.checkOwnUpload(*req.LogoPath, logoDir(id), "Logo path must be one of this organization's uploads"); err != nil {
			return nil, err
		}
	}

	updated, err := s.orgRepo.Update(ctx, id, func(org *models.Organization) error {
		if err := auth.RequireEditOrganization(principal, org); err != nil {
			return err
		}
		if req.Brief != nil {
			org.Brief = *req.Brief
		}
		if req.Description != nil {
			org.Description = *req.Description
		}
		if req.LogoPath != nil {
			org.LogoPath = *req.LogoPath
		}
		return nil
	})
	if err != nil {
		return nil, s.updateError(err, id, "update organization")
	}

	s.logger.Info().Int64("organizationID", id).Str("user", principal.UserID).Msg("Organization details updated")
	s.notifier.OrganizationChanged(id, ActionUpdateDetails, principal.UserID)
	return s.toDetail(principal, updated, s.detailParent(ctx, updated)), nil
}

// UploadLogo stores a new logo image and points the organization at it
func (s *OrganizationService) UploadLogo(ctx context.Context, principal models.Principal, id int64, fileHeader *multipart.FileHeader) (*dto.OrganizationDetailResponse, error) {
	org, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireEditOrganization(principal, org); err != nil {
		return nil, err
	}

	storedPath, err := s.storage.SaveFileWithPath(fileHeader, logoDir(id))
	if err != nil {
		return nil, err
	}

	var previous string
	updated, err := s.orgRepo.Update(ctx, id, func(org *models.Organization) error {
		if err := auth.RequireEditOrganization(principal, org); err != nil {
			return err
		}
		previous = org.LogoPath
		org.LogoPath = storedPath
		return nil
	})
	if err != nil {
		if delErr := s.storage.DeleteFile(storedPath, logoDir(id)); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", storedPath).Msg("Failed to remove orphaned logo")
		}
		return nil, s.updateError(err, id, "upload logo")
	}

	if previous != storedPath && !updated.ReferencesAsset(previous) {
		if err := s.storage.DeleteFile(previous, logoDir(id)); err != nil {
			s.logger.Warn().Err(err).Str("path", previous).Msg("Failed to remove previous logo")
		}
	}

	s.logger.Info().Int64("organizationID", id).Str("path", storedPath).Msg("Organization logo uploaded")
	s.notifier.OrganizationChanged(id, ActionUploadLogo, principal.UserID)
	return s.toDetail(principal, updated, s.detailParent(ctx, updated)), nil
}

// GetOfficers returns the officers of a semester; empty or "Current Officers" selects the current list
func (s *OrganizationService) GetOfficers(ctx context.Context, principal models.Principal, id int64, semester string) (*dto.OfficerListResponse, error) {
	org, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(semester)
	if label == "" {
		label = models.CurrentOfficersLabel
	}

	return &dto.OfficerListResponse{
		OrganizationID: org.ID,
		Semester:       label,
		Semesters:      append([]string{models.CurrentOfficersLabel}, org.Semesters()...),
		Officers:       toOfficerResponses(principal, org.OfficersFor(label), s.storage),
	}, nil
}

// findOfficer looks an officer up by name in the current list, then in the history
func findOfficer(org *models.Organization, name string) (models.Officer, bool) {
	for _, officer := range org.Officers {
		if officer.Name == name {
			return officer, true
		}
	}
	for _, semester := range org.Semesters() {
		for _, officer := range org.OfficerHistory[semester] {
			if officer.Name == name {
				return officer, true
			}
		}
	}
	return models.Officer{}, false
}

// editOfficer applies change to the named officer everywhere it appears. Only the
// officer themself may edit the card.
func (s *OrganizationService) editOfficer(ctx context.Context, principal models.Principal, id int64, name string, change func(models.Officer) models.Officer) (*dto.OfficerResponse, error) {
	var result models.Officer
	_, err := s.orgRepo.Update(ctx, id, func(org *models.Organization) error {
		officer, ok := findOfficer(org, name)
		if !ok {
			return apperrors.ErrOfficerNotFound
		}
		if !auth.CanEditOfficer(principal, officer) {
			return apperrors.NewForbiddenError("Officers can only edit their own card")
		}

		result = change(officer)
		org.ReplaceOfficer(result)
		return nil
	})
	if err != nil {
		return nil, s.updateError(err, id, "edit officer")
	}
	s.notifier.OrganizationChanged(id, ActionEditOfficer, principal.UserID)

	responses := toOfficerResponses(principal, []models.Officer{result}, s.storage)
	return &responses[0], nil
}

// UpdateOfficer edits position, start date or photo of the caller's own officer card
func (s *OrganizationService) UpdateOfficer(ctx context.Context, principal models.Principal, id int64, name string, req *dto.UpdateOfficerRequest) (*dto.OfficerResponse, error) {
	if req.PhotoPath != nil {
		if err := s.checkOwnUpload(*req.PhotoPath, officerDir(id), "Photo path must be one of this organization's uploads"); err != nil {
			return nil, err
		}
	}

	officer, err := s.editOfficer(ctx, principal, id, name, func(o models.Officer) models.Officer {
		if req.Position != nil {
			o.Position = *req.Position
		}
		if req.StartDate != nil {
			o.StartDate = *req.StartDate
		}
		if req.PhotoPath != nil {
			o = o.WithPhoto(*req.PhotoPath)
		}
		return o
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("organizationID", id).Str("officer", name).Msg("Officer card updated")
	return officer, nil
}

// UploadOfficerPhoto stores a photo and sets it as both portrait and card image
func (s *OrganizationService) UploadOfficerPhoto(ctx context.Context, principal models.Principal, id int64, name string, fileHeader *multipart.FileHeader) (*dto.OfficerResponse, error) {
	org, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	officer, ok := findOfficer(org, name)
	if !ok {
		return nil, apperrors.ErrOfficerNotFound
	}
	if !auth.CanEditOfficer(principal, officer) {
		return nil, apperrors.NewForbiddenError("Officers can only edit their own card")
	}

	storedPath, err := s.storage.SaveFileWithPath(fileHeader, officerDir(id))
	if err != nil {
		return nil, err
	}

	updated, err := s.editOfficer(ctx, principal, id, name, func(o models.Officer) models.Officer {
		return o.WithPhoto(storedPath)
	})
	if err != nil {
		if delErr := s.storage.DeleteFile(storedPath, officerDir(id)); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", storedPath).Msg("Failed to remove orphaned officer photo")
		}
		return nil, err
	}

	previous := officer.PhotoPath
	if previous != "" && previous != storedPath {
		// Other officers of the organization may share the previous photo
		if current, err := s.findOrganization(ctx, id); err == nil && !current.ReferencesAsset(previous) {
			if err := s.storage.DeleteFile(previous, officerDir(id)); err != nil {
				s.logger.Warn().Err(err).Str("path", previous).Msg("Failed to remove previous officer photo")
			}
		}
	}
	return updated, nil
}

// GetEvents returns the events of an organization
func (s *OrganizationService) GetEvents(ctx context.Context, id int64) ([]dto.EventResponse, error) {
	org, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEventResponses(org.Events), nil
}

// updateError logs storage failures; domain errors are passed through unchanged
func (s *OrganizationService) updateError(err error, id int64, operation string) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error().Err(err).Int64("organizationID", id).Str("operation", operation).Msg("Failed to save organization")
	return err
}

// isDomainError reports whether err is an expected outcome rather than a storage failure
func isDomainError(err error) bool {
	return apperrors.Is(err,
		apperrors.ErrOrganizationNotFound,
		apperrors.ErrPermissionDenied,
		apperrors.ErrOfficerNotFound,
		apperrors.ErrMemberNotFound,
		apperrors.ErrApplicantNotFound,
		apperrors.ErrConfirmationRequired,
		apperrors.ErrAlreadyApplied,
		apperrors.ErrBadRequest,
	)
}
