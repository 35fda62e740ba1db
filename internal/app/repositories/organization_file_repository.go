package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/logger"
)

const organizationsKey = "organizations"

// dataDocument is the whole data file: {"organizations": [...]} plus any other top-level keys
type dataDocument struct {
	Organizations []models.Organization
	Extra         map[string]json.RawMessage
}

// OrganizationFileRepository keeps every organization in one JSON file that is read
// and rewritten wholesale. All writes go through one mutex.
type OrganizationFileRepository struct {
	path string
	mu   sync.Mutex
}

// NewOrganizationFileRepository creates a repository over the data file at path
func NewOrganizationFileRepository(path string) *OrganizationFileRepository {
	return &OrganizationFileRepository{path: path}
}

// Path returns the data file location
func (r *OrganizationFileRepository) Path() string {
	return r.path
}

// LoadAll reads the data file. A missing file yields no organizations. Members and
// applicants stored without an id get one, and the file is rewritten so ids stay stable.
func (r *OrganizationFileRepository) LoadAll(ctx context.Context) ([]models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, assigned, err := r.read()
	if err != nil {
		return nil, err
	}

	if assigned > 0 {
		if err := r.write(doc); err != nil {
			logger.Warn().Err(err).Str("path", r.path).Int("ids", assigned).Msg("Failed to persist generated record ids")
		} else {
			logger.Info().Str("path", r.path).Int("ids", assigned).Msg("Assigned ids to legacy member and applicant records")
		}
	}

	return cloneAll(doc.Organizations), nil
}

// FindByID returns a copy of the organization or branch with id
func (r *OrganizationFileRepository) FindByID(ctx context.Context, id int64) (*models.Organization, error) {
	orgs, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	org := models.FindOrganization(orgs, id)
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return org, nil
}

// Inspect returns the file contents as stored, without assigning missing ids or writing
func (r *OrganizationFileRepository) Inspect(ctx context.Context) ([]models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", r.path, err)
	}
	doc, err := decodeDocument(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrDataFileCorrupt, r.path, err)
	}
	return doc.Organizations, nil
}

// Save re-reads the file, merges org over the stored record with the same id and rewrites
// the file. An unknown id is a no-op. A file that fails to parse is left untouched.
func (r *OrganizationFileRepository) Save(ctx context.Context, org *models.Organization) (bool, error) {
	if org == nil {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(org)
}

func (r *OrganizationFileRepository) saveLocked(org *models.Organization) (bool, error) {
	doc, _, err := r.read()
	if err != nil {
		return false, err
	}

	target := models.FindOrganization(doc.Organizations, org.ID)
	if target == nil {
		logger.Debug().Int64("organizationID", org.ID).Msg("Save skipped, organization not in data file")
		return false, nil
	}

	target.MergeFrom(org)
	if err := r.write(doc); err != nil {
		return false, err
	}
	return true, nil
}

// Update applies fn to the organization or branch with id and saves it under the write lock
func (r *OrganizationFileRepository) Update(ctx context.Context, id int64, fn UpdateFn) (*models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, _, err := r.read()
	if err != nil {
		return nil, err
	}

	target := models.FindOrganization(doc.Organizations, id)
	if target == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}

	working := target.Clone()
	if err := fn(&working); err != nil {
		if errors.Is(err, ErrSkipUpdate) {
			unchanged := target.Clone()
			return &unchanged, nil
		}
		return nil, err
	}
	// The id is the merge key and cannot be changed through an update
	working.ID = id

	target.MergeFrom(&working)
	if err := r.write(doc); err != nil {
		return nil, err
	}

	updated := target.Clone()
	return &updated, nil
}

// Create appends org to the file. A zero id is replaced by the next free id.
func (r *OrganizationFileRepository) Create(ctx context.Context, org *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, _, err := r.read()
	if err != nil {
		return err
	}

	if org.ID == 0 {
		org.ID = nextOrganizationID(doc.Organizations)
	} else if models.FindOrganization(doc.Organizations, org.ID) != nil {
		return apperrors.ErrOrganizationAlreadyExists
	}

	created := org.Clone()
	models.AssignMissingIDs([]models.Organization{created})
	doc.Organizations = append(doc.Organizations, created)
	return r.write(doc)
}

// read loads the data file and assigns missing record ids in memory
func (r *OrganizationFileRepository) read() (*dataDocument, int, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dataDocument{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to read data file %s: %w", r.path, err)
	}

	doc, err := decodeDocument(content)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", apperrors.ErrDataFileCorrupt, r.path, err)
	}

	assigned := models.AssignMissingIDs(doc.Organizations)
	return doc, assigned, nil
}

// write replaces the data file atomically through a temp file in the same directory
func (r *OrganizationFileRepository) write(doc *dataDocument) error {
	content, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to encode organizations: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp data file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp data file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace data file %s: %w", r.path, err)
	}
	return nil
}

func decodeDocument(content []byte) (*dataDocument, error) {
	doc := &dataDocument{}
	if len(bytes.TrimSpace(content)) == 0 {
		return doc, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	if orgs, ok := raw[organizationsKey]; ok {
		if err := json.Unmarshal(orgs, &doc.Organizations); err != nil {
			return nil, err
		}
		delete(raw, organizationsKey)
	}
	if len(raw) > 0 {
		doc.Extra = raw
	}
	return doc, nil
}

func encodeDocument(doc *dataDocument) ([]byte, error) {
	out := make(map[string]interface{}, len(doc.Extra)+1)
	for key, value := range doc.Extra {
		out[key] = value
	}
	orgs := doc.Organizations
	if orgs == nil {
		orgs = []models.Organization{}
	}
	out[organizationsKey] = orgs

	content, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(content, '\n'), nil
}

func nextOrganizationID(orgs []models.Organization) int64 {
	var maxID int64
	for _, org := range orgs {
		if org.ID > maxID {
			maxID = org.ID
		}
		for _, branch := range org.Branches {
			if branch.ID > maxID {
				maxID = branch.ID
			}
		}
	}
	return maxID + 1
}

func cloneAll(orgs []models.Organization) []models.Organization {
	out := make([]models.Organization, len(orgs))
	for i := range orgs {
		out[i] = orgs[i].Clone()
	}
	return out
}
