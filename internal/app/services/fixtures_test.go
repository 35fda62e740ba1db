package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/filestorage"
)

const fixtureData = `{
    "organizations": [
        {
            "id": 1,
            "name": "Computer Society",
            "is_branch": false,
            "logo_path": "assets/logos/cs.png",
            "brief": "Tech org",
            "description": "Objectives",
            "branches": [
                {"id": 11, "name": "CS Robotics", "is_branch": true, "members": [], "applicants": []},
                {"id": 12, "name": "CS Web Guild", "is_branch": true, "members": [], "applicants": []}
            ],
            "officers": [
                {"name": "Ruben, Stephen Joseph", "position": "President", "photo_path": "", "card_image_path": "", "start_date": "07/08/2025"}
            ],
            "officer_history": {
                "2024-2025 2nd Semester": [
                    {"name": "Ruben, Stephen Joseph", "position": "Secretary", "photo_path": "", "card_image_path": "", "start_date": "01/10/2025"},
                    {"name": "Old, Officer", "position": "President", "photo_path": "", "card_image_path": "", "start_date": "01/10/2025"}
                ],
                "2024-2025 1st Semester": []
            },
            "members": [
                ["Dela Cruz, Juan", "Member", "Active", "2024-08-01", "m-1"],
                ["Lim, Carla", "Treasurer", "Active", "2024-08-02", "m-2"],
                ["Dela Cruz, Juan", "Secretary", "Active", "2024-08-03", "m-3"]
            ],
            "applicants": [
                ["Santos, Maria", "Member", "2025-01-05", "a-1"],
                ["Reyes, Ana", "Member", "2025-01-06", "a-2"]
            ],
            "events": [
                {"name": "Hackathon", "date": "2025-03-01", "description": "24 hours"}
            ]
        },
        {"id": 2, "name": "Math Club", "members": [], "applicants": []}
    ]
}`

var fixedNow = time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var (
	facultyPrincipal = models.Principal{UserID: "u-f", Name: "Prof. Reyes", PrimaryRole: models.PrimaryRoleFaculty}
	officerPrincipal = models.Principal{UserID: "u-o", Name: "Ruben, Stephen Joseph", PrimaryRole: models.PrimaryRoleStudent, Roles: []string{models.RoleOrgOfficer}}
	studentPrincipal = models.Principal{UserID: "u-s", Name: "New, Student", PrimaryRole: models.PrimaryRoleStudent}
)

type fixture struct {
	repo       *repositories.OrganizationFileRepository
	storage    *filestorage.LocalStorage
	orgs       *OrganizationService
	membership *MembershipService
	root       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	dataPath := filepath.Join(root, "organizations_data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(fixtureData), 0o644))

	storage, err := filestorage.NewLocalStorage("uploads", root)
	require.NoError(t, err)

	repo := repositories.NewOrganizationFileRepository(dataPath)
	logger := zerolog.Nop()
	return &fixture{
		repo:       repo,
		storage:    storage,
		orgs:       NewOrganizationService(repo, storage, logger),
		membership: NewMembershipService(repo, fixedClock, logger),
		root:       root,
	}
}

func (f *fixture) org(t *testing.T, id int64) *models.Organization {
	t.Helper()
	org, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return org
}
