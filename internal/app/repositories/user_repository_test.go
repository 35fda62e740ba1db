package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/pkg/apperrors"
)

const usersYAML = `users:
  - id: u-1
    username: ruben.sj
    name: Ruben, Stephen Joseph
    password_hash: $2a$04$abcdefghijklmnopqrstuu
    primary_role: student
    roles: [org_officer]
  - id: u-2
    username: reyes
    name: Prof. Reyes
    password_hash: $2a$04$abcdefghijklmnopqrstuu
    primary_role: faculty
`

func TestUserRepository_Lookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersYAML), 0o600))
	repo := NewUserRepository(path)
	ctx := context.Background()

	user, err := repo.GetByUsername(ctx, "RUBEN.SJ")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, []string{models.RoleOrgOfficer}, user.Roles)

	user, err = repo.GetByID(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, models.PrimaryRoleFaculty, user.PrimaryRole)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestUserRepository_MissingFile(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "none.yaml"))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_SaveAllThenList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.yaml")
	repo := NewUserRepository(path)
	ctx := context.Background()

	err := repo.SaveAll(ctx, []models.User{{ID: "u-9", Username: "lim.c", Name: "Lim, Carla", PrimaryRole: models.PrimaryRoleStudent}})
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "lim.c", users[0].Username)
}

func TestUserRepository_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [:"), 0o600))

	_, err := NewUserRepository(path).List(context.Background())
	assert.Error(t, err)
}
