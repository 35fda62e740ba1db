package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/logger"
)

// usersDocument is the users file layout
type usersDocument struct {
	Users []models.User `yaml:"users"`
}

// UserRepository reads accounts from a YAML file. The file is re-read when it changes.
type UserRepository struct {
	path    string
	mu      sync.RWMutex
	users   []models.User
	modTime time.Time
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Path returns the users file location
func (r *UserRepository) Path() string {
	return r.path
}

// GetByUsername finds a user by username, case-insensitively
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByID finds a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// List returns every account. A missing file means no accounts.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.User{}, nil
		}
		return nil, fmt.Errorf("failed to stat users file: %w", err)
	}

	r.mu.RLock()
	if r.users != nil && info.ModTime().Equal(r.modTime) {
		users := append([]models.User(nil), r.users...)
		r.mu.RUnlock()
		return users, nil
	}
	r.mu.RUnlock()

	content, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var doc usersDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", r.path, err)
	}
	if doc.Users == nil {
		doc.Users = []models.User{}
	}

	r.mu.Lock()
	r.users = doc.Users
	r.modTime = info.ModTime()
	r.mu.Unlock()

	logger.Debug().Str("path", r.path).Int("users", len(doc.Users)).Msg("Users file loaded")
	return append([]models.User(nil), doc.Users...), nil
}

// SaveAll rewrites the users file with users
func (r *UserRepository) SaveAll(ctx context.Context, users []models.User) error {
	content, err := yaml.Marshal(usersDocument{Users: users})
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create users directory: %w", err)
	}
	if err := os.WriteFile(r.path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}

	r.mu.Lock()
	r.users = nil
	r.mu.Unlock()
	return nil
}
