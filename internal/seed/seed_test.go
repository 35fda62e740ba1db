package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appRepos "github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/auth"
)

func testOptions() Options {
	return Options{DefaultPassword: "changeme123", HashCost: bcrypt.MinCost}
}

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repos := appRepos.NewFileRepositories(filepath.Join(dir, "organizations_data.json"), filepath.Join(dir, "users.yaml"))

	require.NoError(t, CreateDefaultData(ctx, repos, testOptions(), zerolog.Nop()))

	user, err := repos.UserRepository.GetByUsername(ctx, "ruben.sj")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "changeme123"))

	orgs, err := repos.OrganizationRepository.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	for _, m := range orgs[0].Members {
		assert.NotEmpty(t, m.ID)
	}

	branch, err := repos.OrganizationRepository.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, branch.IsBranch)
}

func TestCreateDefaultData_KeepsExistingData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "organizations_data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"organizations":[{"id":7,"name":"Chess Club"}]}`), 0o644))
	usersPath := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(usersPath, []byte("users:\n  - id: u-1\n    username: only.user\n    name: Only\n    primary_role: student\n"), 0o600))

	repos := appRepos.NewFileRepositories(dataPath, usersPath)
	require.NoError(t, CreateDefaultData(ctx, repos, testOptions(), zerolog.Nop()))

	users, err := repos.UserRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	orgs, err := repos.OrganizationRepository.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Chess Club", orgs[0].Name)
}

func TestEnsureUsers_RequiresPassword(t *testing.T) {
	repo := appRepos.NewUserRepository(filepath.Join(t.TempDir(), "users.yaml"))
	err := EnsureUsers(context.Background(), repo, Options{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestEnsureOrganizations_ImportsFromFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	source := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(source, []byte(`{"organizations":[
		{"id":4,"name":"Debate Society","members":[["Reyes, Ana","Member","Active","2024-01-01"]]},
		{"id":9,"name":"Glee Club"}
	]}`), 0o644))

	target := appRepos.NewOrganizationFileRepository(filepath.Join(dir, "store.json"))
	opts := testOptions()
	opts.ImportFrom = source
	require.NoError(t, EnsureOrganizations(ctx, target, opts, zerolog.Nop()))

	orgs, err := target.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, int64(4), orgs[0].ID)
	assert.Equal(t, "Glee Club", orgs[1].Name)
	require.Len(t, orgs[0].Members, 1)
	assert.NotEmpty(t, orgs[0].Members[0].ID)

	// A second import skips what is already there
	imported, err := ImportOrganizations(ctx, appRepos.NewOrganizationFileRepository(source), target, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, imported)
}
