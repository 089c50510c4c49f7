package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a site or its results do not exist
var ErrNotFound = errors.New("not found")

// SiteRepository defines the interface for site data operations
type SiteRepository interface {
	Create(ctx context.Context, site *models.Site) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	SetOptions(ctx context.Context, id uuid.UUID, opts models.ComputeOptions) error
	StoreResults(ctx context.Context, results *models.SiteResults) error
	GetResults(ctx context.Context, siteID uuid.UUID) (*models.SiteResults, error)
}
