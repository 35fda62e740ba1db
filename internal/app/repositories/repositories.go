package repositories

import (
	"context"
	"errors"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/db"
)

// ErrSkipUpdate is returned by an Update callback that decided nothing should change.
// Update then returns without writing and without an error.
var ErrSkipUpdate = errors.New("skip update")

// UpdateFn mutates the organization or branch being updated in place
type UpdateFn func(org *models.Organization) error

// OrganizationRepository is the organizations data store
type OrganizationRepository interface {
	// LoadAll returns every top-level organization in stored order, branches nested
	LoadAll(ctx context.Context) ([]models.Organization, error)
	// FindByID returns the organization or branch with id
	FindByID(ctx context.Context, id int64) (*models.Organization, error)
	// Save merges org over the stored record with the same id. It reports false
	// without an error when no such record exists.
	Save(ctx context.Context, org *models.Organization) (bool, error)
	// Update loads the record with id, applies fn and saves the result as one
	// serialized step, returning the updated record.
	Update(ctx context.Context, id int64, fn UpdateFn) (*models.Organization, error)
	// Create appends a new top-level organization
	Create(ctx context.Context, org *models.Organization) error
}

// Repositories holds all the repository instances
type Repositories struct {
	OrganizationRepository OrganizationRepository
	UserRepository         *UserRepository
}

// NewFileRepositories initializes repositories backed by the JSON data file
func NewFileRepositories(dataFile, usersFile string) *Repositories {
	return &Repositories{
		OrganizationRepository: NewOrganizationFileRepository(dataFile),
		UserRepository:         NewUserRepository(usersFile),
	}
}

// NewPostgresRepositories initializes repositories backed by PostgreSQL
func NewPostgresRepositories(database *db.PostgresDB, usersFile string) *Repositories {
	return &Repositories{
		OrganizationRepository: NewOrganizationPostgresRepository(database),
		UserRepository:         NewUserRepository(usersFile),
	}
}
