package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/db"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/dberrors"
	"github.com/yigit/orghub/internal/pkg/logger"
)

const (
	// organizationsPkey is the primary key constraint of the organizations table
	organizationsPkey = "organizations_pkey"

	// updateAttempts bounds the retries of an update that hit a deadlock
	updateAttempts = 3
)

// OrganizationPostgresRepository stores one JSONB document per top-level organization.
// Branches live inside their parent's document.
type OrganizationPostgresRepository struct {
	db *db.PostgresDB
	// Use squirrel instance with placeholder format
	sb squirrel.StatementBuilderType
}

// NewOrganizationPostgresRepository creates a new OrganizationPostgresRepository
func NewOrganizationPostgresRepository(database *db.PostgresDB) *OrganizationPostgresRepository {
	return &OrganizationPostgresRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LoadAll returns every organization ordered the way they were imported
func (r *OrganizationPostgresRepository) LoadAll(ctx context.Context) ([]models.Organization, error) {
	sql, args, err := r.sb.Select("document").
		From("organizations").
		OrderBy("ordinal", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list organizations query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}

		var org models.Organization
		if err := json.Unmarshal(document, &org); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrDataFileCorrupt, err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	if assigned := models.AssignMissingIDs(orgs); assigned > 0 {
		logger.Warn().Int("ids", assigned).Msg("Organizations documents contain records without ids")
	}
	return orgs, nil
}

// findQuery selects the row holding id, either as the organization itself or as one of
// its branches. The organization's own row wins when both match.
func (r *OrganizationPostgresRepository) findQuery(id int64, forUpdate bool) (string, []interface{}, error) {
	containment, err := branchContainment(id)
	if err != nil {
		return "", nil, err
	}

	query := r.sb.Select("id", "document").
		From("organizations").
		Where(squirrel.Or{
			squirrel.Eq{"id": id},
			squirrel.Expr("document->'branches' @> ?::jsonb", containment),
		}).
		OrderByClause("(id = ?) DESC", id).
		Limit(1)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}
	return query.ToSql()
}

// FindByID returns the organization or branch with id
func (r *OrganizationPostgresRepository) FindByID(ctx context.Context, id int64) (*models.Organization, error) {
	sql, args, err := r.findQuery(id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to build get organization query: %w", err)
	}

	var rowID int64
	var document []byte
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&rowID, &document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization %d: %w", id, err)
	}

	var top models.Organization
	if err := json.Unmarshal(document, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDataFileCorrupt, err)
	}

	org := models.FindOrganization([]models.Organization{top}, id)
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return org, nil
}

// Save merges org over the stored organization or branch with the same id
func (r *OrganizationPostgresRepository) Save(ctx context.Context, org *models.Organization) (bool, error) {
	if org == nil {
		return false, nil
	}

	_, err := r.Update(ctx, org.ID, func(target *models.Organization) error {
		target.MergeFrom(org)
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrOrganizationNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Update locks the row holding id, applies fn and bumps the document version.
// fn may run more than once when the transaction is retried.
func (r *OrganizationPostgresRepository) Update(ctx context.Context, id int64, fn UpdateFn) (*models.Organization, error) {
	var (
		updated *models.Organization
		err     error
	)
	for attempt := 1; attempt <= updateAttempts; attempt++ {
		updated, err = r.update(ctx, id, fn)
		if err == nil || !dberrors.IsRetryable(err) {
			break
		}
		logger.Warn().Err(err).Int64("organizationID", id).Int("attempt", attempt).Msg("Retrying organization update")
	}
	return updated, err
}

func (r *OrganizationPostgresRepository) update(ctx context.Context, id int64, fn UpdateFn) (*models.Organization, error) {
	sql, args, err := r.findQuery(id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to build lock organization query: %w", err)
	}

	var updated models.Organization
	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var rowID int64
		var document []byte
		err := tx.QueryRow(ctx, sql, args...).Scan(&rowID, &document)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrOrganizationNotFound
			}
			return fmt.Errorf("failed to lock organization %d: %w", id, err)
		}

		var top models.Organization
		if err := json.Unmarshal(document, &top); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrDataFileCorrupt, err)
		}

		target := models.FindOrganization([]models.Organization{top}, id)
		if target == nil {
			return apperrors.ErrOrganizationNotFound
		}

		working := target.Clone()
		if err := fn(&working); err != nil {
			if errors.Is(err, ErrSkipUpdate) {
				updated = target.Clone()
				return nil
			}
			return err
		}
		working.ID = id
		target.MergeFrom(&working)
		updated = target.Clone()

		updateSQL, updateArgs, err := r.updateQuery(rowID, &top)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, updateSQL, updateArgs...); err != nil {
			return fmt.Errorf("failed to update organization %d: %w", rowID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// updateQuery rewrites the document of row rowID and bumps its version
func (r *OrganizationPostgresRepository) updateQuery(rowID int64, top *models.Organization) (string, []interface{}, error) {
	encoded, err := json.Marshal(top)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode organization %d: %w", rowID, err)
	}

	sql, args, err := r.sb.Update("organizations").
		Set("document", encoded).
		Set("name", top.Name).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build update organization query: %w", err)
	}
	return sql, args, nil
}

// Create inserts a new top-level organization after the existing ones
func (r *OrganizationPostgresRepository) Create(ctx context.Context, org *models.Organization) error {
	if org.ID == 0 {
		sql, args, err := r.sb.Select("COALESCE(MAX(id), 0) + 1").From("organizations").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build next id query: %w", err)
		}
		if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&org.ID); err != nil {
			return fmt.Errorf("failed to allocate organization id: %w", err)
		}
	}

	created := org.Clone()
	models.AssignMissingIDs([]models.Organization{created})

	sql, args, err := r.insertQuery(&created)
	if err != nil {
		return err
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, organizationsPkey) {
			return apperrors.ErrOrganizationAlreadyExists
		}
		return fmt.Errorf("failed to create organization %d: %w", created.ID, err)
	}
	return nil
}

// insertQuery appends org after the highest ordinal
func (r *OrganizationPostgresRepository) insertQuery(org *models.Organization) (string, []interface{}, error) {
	encoded, err := json.Marshal(org)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode organization %d: %w", org.ID, err)
	}

	sql, args, err := r.sb.Insert("organizations").
		Columns("id", "ordinal", "name", "document").
		Values(org.ID, squirrel.Expr("(SELECT COALESCE(MAX(ordinal), 0) + 1 FROM organizations)"), org.Name, encoded).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build create organization query: %w", err)
	}
	return sql, args, nil
}

// branchContainment builds the JSONB value matching a branches array holding id
func branchContainment(id int64) (string, error) {
	encoded, err := json.Marshal([]map[string]int64{{"id": id}})
	if err != nil {
		return "", fmt.Errorf("failed to encode branch filter: %w", err)
	}
	return string(encoded), nil
}
