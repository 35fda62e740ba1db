package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/orghub/internal/app/models"
	appRepos "github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/auth"
)

// Options controls how default data is created
type Options struct {
	DefaultPassword string
	// HashCost overrides the bcrypt cost; zero uses auth.BcryptCost
	HashCost int
	// ImportFrom is a JSON data file copied into an empty store, used for PostgreSQL
	ImportFrom string
}

// CreateDefaultData creates the default accounts and organizations when the stores are empty.
// Errors are collected so one failing step does not stop the other.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Users/Organizations)...")
	var finalErr error

	if err := EnsureUsers(ctx, repos.UserRepository, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default users")
		finalErr = errors.Join(finalErr, err)
	}

	if err := EnsureOrganizations(ctx, repos.OrganizationRepository, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default organizations")
		finalErr = errors.Join(finalErr, err)
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check complete.")
	}
	return finalErr
}

// EnsureUsers writes the default accounts when the users file has none
func EnsureUsers(ctx context.Context, userRepo *appRepos.UserRepository, opts Options, lgr zerolog.Logger) error {
	users, err := userRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	if opts.DefaultPassword == "" {
		return fmt.Errorf("default password is required to create default users")
	}

	cost := opts.HashCost
	if cost == 0 {
		cost = auth.BcryptCost
	}
	hash, err := auth.HashPasswordWithCost(opts.DefaultPassword, cost)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	defaults := DefaultUsers(hash)
	if err := userRepo.SaveAll(ctx, defaults); err != nil {
		return err
	}
	lgr.Info().Str("path", userRepo.Path()).Int("users", len(defaults)).Msg("Default users created")
	return nil
}

// EnsureOrganizations fills an empty organizations store, either from opts.ImportFrom or
// with the sample organizations
func EnsureOrganizations(ctx context.Context, repo appRepos.OrganizationRepository, opts Options, lgr zerolog.Logger) error {
	existing, err := repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	if opts.ImportFrom != "" {
		source := appRepos.NewOrganizationFileRepository(opts.ImportFrom)
		imported, err := ImportOrganizations(ctx, source, repo, lgr)
		if err != nil {
			return err
		}
		if imported > 0 {
			return nil
		}
	}

	defaults := DefaultOrganizations()
	for i := range defaults {
		org := &defaults[i]
		if err := repo.Create(ctx, org); err != nil && !errors.Is(err, apperrors.ErrOrganizationAlreadyExists) {
			return fmt.Errorf("failed to create organization %q: %w", org.Name, err)
		}
	}
	lgr.Info().Int("organizations", len(defaults)).Msg("Default organizations created")
	return nil
}

// ImportOrganizations copies every organization of src into dst, keeping ids.
// Organizations already present in dst are skipped.
func ImportOrganizations(ctx context.Context, src, dst appRepos.OrganizationRepository, lgr zerolog.Logger) (int, error) {
	orgs, err := src.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read source organizations: %w", err)
	}

	imported := 0
	for i := range orgs {
		err := dst.Create(ctx, &orgs[i])
		if errors.Is(err, apperrors.ErrOrganizationAlreadyExists) {
			lgr.Debug().Int64("organizationID", orgs[i].ID).Msg("Organization already present, skipping")
			continue
		}
		if err != nil {
			return imported, err
		}
		imported++
	}

	lgr.Info().Int("imported", imported).Int("total", len(orgs)).Msg("Organizations imported")
	return imported, nil
}

// DefaultUsers are the accounts created on first start, all sharing passwordHash
func DefaultUsers(passwordHash string) []appModels.User {
	return []appModels.User{
		{ID: "u-faculty", Username: "faculty.admin", Name: "Santos, Maria Elena", PasswordHash: passwordHash, PrimaryRole: appModels.PrimaryRoleFaculty},
		{ID: "u-officer", Username: "ruben.sj", Name: "Ruben, Stephen Joseph", PasswordHash: passwordHash, PrimaryRole: appModels.PrimaryRoleStudent, Roles: []string{appModels.RoleOrgOfficer}},
		{ID: "u-student", Username: "student", Name: "Dela Cruz, Juan", PasswordHash: passwordHash, PrimaryRole: appModels.PrimaryRoleStudent},
	}
}

// DefaultOrganizations is the sample directory created on first start
func DefaultOrganizations() []appModels.Organization {
	return []appModels.Organization{
		{
			ID:          1,
			Name:        "Computer Society",
			Brief:       "The home of every student who builds software.",
			Description: "Promote computing through workshops, hackathons and peer tutoring.",
			Branches: []appModels.Organization{
				{ID: 2, Name: "Computer Society - Robotics", IsBranch: true, Brief: "Robotics and embedded projects.", OfficerHistory: map[string][]appModels.Officer{}},
			},
			Officers: []appModels.Officer{
				{Name: "Ruben, Stephen Joseph", Position: "President", StartDate: "08/01/2025"},
			},
			OfficerHistory: map[string][]appModels.Officer{
				"2024-2025 2nd Semester": {
					{Name: "Ruben, Stephen Joseph", Position: "Secretary", StartDate: "01/13/2025"},
				},
			},
			Members: []appModels.Member{
				{Name: "Ruben, Stephen Joseph", Position: "President", Status: appModels.MemberStatusActive, JoinedDate: "2024-08-12"},
				{Name: "Dela Cruz, Juan", Position: "Member", Status: appModels.MemberStatusActive, JoinedDate: "2025-01-20"},
			},
			Applicants: []appModels.Applicant{
				{Name: "Lim, Carla", Position: "Member", AppliedDate: "2025-08-30"},
			},
			Events: []appModels.Event{
				{Name: "Freshmen Hackathon", Date: "2025-10-04", Description: "A 24-hour build event for first year students."},
			},
		},
		{
			ID:             3,
			Name:           "Mathematics Club",
			Brief:          "Problem solving every Friday.",
			Description:    "Prepare students for regional and national mathematics competitions.",
			OfficerHistory: map[string][]appModels.Officer{},
		},
	}
}
