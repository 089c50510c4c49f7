package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/srtk/internal/repository"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/google/uuid"
)

// PostgresSiteRepository implements SiteRepository for PostgreSQL
type PostgresSiteRepository struct {
	db *sql.DB
}

// NewPostgresSiteRepository creates a new PostgreSQL site repository
func NewPostgresSiteRepository(db *sql.DB) repository.SiteRepository {
	return &PostgresSiteRepository{db: db}
}

// Create inserts a new site record. An empty ID is replaced by a fresh UUID.
func (r *PostgresSiteRepository) Create(ctx context.Context, site *models.Site) error {
	if site.ID == "" {
		site.ID = uuid.New().String()
	}
	if site.Status == "" {
		site.Status = models.StatusPending
	}
	now := time.Now().UTC()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = now
	}
	if site.UpdatedAt.IsZero() {
		site.UpdatedAt = now
	}

	profile, err := marshalNullable(site.Profile != nil, site.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	options, err := marshalNullable(site.Options != nil, site.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		INSERT INTO sites (id, name, x, y, z, profile, profile_s3_key, profile_format, options, status, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		site.ID,
		site.Name,
		site.X,
		site.Y,
		site.Z,
		profile,
		site.ProfileS3Key,
		site.ProfileFormat,
		options,
		site.Status,
		site.Progress,
		site.CreatedAt,
		site.UpdatedAt)

	return err
}

// GetByID retrieves a site by ID
func (r *PostgresSiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	query := `
		SELECT id, name, x, y, z, profile, profile_s3_key, profile_format, options, status, progress, error_message, created_at, updated_at, completed_at
		FROM sites
		WHERE id = $1`

	var site models.Site
	var x, y, z sql.NullFloat64
	var profile, profileS3Key, profileFormat, options, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&site.ID,
		&site.Name,
		&x,
		&y,
		&z,
		&profile,
		&profileS3Key,
		&profileFormat,
		&options,
		&site.Status,
		&site.Progress,
		&errorMsg,
		&site.CreatedAt,
		&site.UpdatedAt,
		&completedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	site.X = nullFloat(x)
	site.Y = nullFloat(y)
	site.Z = nullFloat(z)
	if profile.Valid {
		var p models.Profile
		if err := json.Unmarshal([]byte(profile.String), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		site.Profile = &p
	}
	if options.Valid {
		var o models.ComputeOptions
		if err := json.Unmarshal([]byte(options.String), &o); err != nil {
			return nil, fmt.Errorf("failed to unmarshal options: %w", err)
		}
		site.Options = &o
	}
	if profileS3Key.Valid {
		site.ProfileS3Key = &profileS3Key.String
	}
	if profileFormat.Valid {
		site.ProfileFormat = &profileFormat.String
	}
	if errorMsg.Valid {
		site.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		site.CompletedAt = &completedAt.Time
	}

	return &site, nil
}

// UpdateStatus updates the status and progress of a site
func (r *PostgresSiteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE sites
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks a site as failed with an error message
func (r *PostgresSiteRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE sites
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// SetOptions stores the options of the next computation and resets the site
// to pending
func (r *PostgresSiteRepository) SetOptions(ctx context.Context, id uuid.UUID, opts models.ComputeOptions) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		UPDATE sites
		SET options = $1, status = 'pending', progress = 0, error_message = NULL, updated_at = NOW()
		WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, string(data), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("site %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// StoreResults stores site results, replacing earlier results of the site
func (r *PostgresSiteRepository) StoreResults(ctx context.Context, results *models.SiteResults) error {
	if results.ID == "" {
		results.ID = uuid.New().String()
	}
	if results.CreatedAt.IsZero() {
		results.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	var class *string
	if results.GeotechClass != "" {
		class = &results.GeotechClass
	}

	query := `
		INSERT INTO site_results (id, site_id, geotech_class, k0, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (site_id) DO UPDATE
		SET id = EXCLUDED.id, geotech_class = EXCLUDED.geotech_class, k0 = EXCLUDED.k0,
		    data = EXCLUDED.data, created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.SiteID,
		class,
		results.K0,
		string(data),
		results.CreatedAt)

	return err
}

// GetResults retrieves the results of a site
func (r *PostgresSiteRepository) GetResults(ctx context.Context, siteID uuid.UUID) (*models.SiteResults, error) {
	query := `
		SELECT id, site_id, data, created_at
		FROM site_results
		WHERE site_id = $1`

	var id, sid, data string
	var createdAt time.Time

	err := r.db.QueryRowContext(ctx, query, siteID).Scan(&id, &sid, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results of site %s: %w", siteID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var results models.SiteResults
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	results.ID = id
	results.SiteID = sid
	results.CreatedAt = createdAt

	return &results, nil
}

func marshalNullable(valid bool, v any) (*string, error) {
	if !valid {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
