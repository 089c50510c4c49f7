package processing

import (
	"context"
	"errors"
	"fmt"

	"github.com/RMahshie/srtk/internal/profileio"
	"github.com/RMahshie/srtk/internal/repository"
	"github.com/RMahshie/srtk/internal/storage"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/site"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProcessingService runs site computations
type ProcessingService interface {
	ProcessSite(ctx context.Context, siteID uuid.UUID) error
	Compute(ctx context.Context, layers []models.Layer, opts models.ComputeOptions) (*models.SiteResults, error)
}

// Config holds the engine settings shared by every computation
type Config struct {
	Defaults    models.ComputeOptions
	Workers     int
	QwlMaxDepth float64
}

type processingService struct {
	s3         storage.S3Service
	repository repository.SiteRepository
	cfg        Config
}

func NewProcessingService(s3Service storage.S3Service, repo repository.SiteRepository, cfg Config) ProcessingService {
	return &processingService{
		s3:         s3Service,
		repository: repo,
		cfg:        cfg,
	}
}

// ProcessSite computes every result of a stored site. Failures of the
// computation itself are recorded on the site and do not return an error.
func (s *processingService) ProcessSite(ctx context.Context, siteID uuid.UUID) error {
	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, siteID, models.StatusProcessing, 1); err != nil {
		return err
	}

	// Step 2: Get site details
	rec, err := s.repository.GetByID(ctx, siteID)
	if err != nil {
		return err
	}

	// Step 3: Resolve the profile, inline or uploaded
	profile, err := s.loadProfile(ctx, rec)
	if err != nil {
		log.Warn().Err(err).Str("siteID", rec.ID).Msg("Failed to load profile")
		return s.repository.UpdateError(ctx, siteID, fmt.Sprintf("Failed to load profile: %v", err))
	}

	// Step 4: Run the engine, reporting progress per stage
	var opts models.ComputeOptions
	if rec.Options != nil {
		opts = *rec.Options
	}

	st := s.newSite(rec, profile)
	runErr := st.Run(opts.WithDefaults(s.cfg.Defaults), func(stage models.ResultKey, progress int) {
		if err := s.repository.UpdateStatus(ctx, siteID, models.StatusProcessing, progress); err != nil {
			log.Warn().Err(err).Str("siteID", rec.ID).Str("stage", string(stage)).Msg("Failed to report progress")
		}
	})
	if runErr != nil {
		log.Warn().Err(runErr).Str("siteID", rec.ID).Msg("Site computation failed")
		return s.repository.UpdateError(ctx, siteID, fmt.Sprintf("Computation failed: %v", runErr))
	}

	// Step 5: Store results
	results := st.Record()
	results.ID = uuid.New().String()
	if err := s.repository.StoreResults(ctx, &results); err != nil {
		return err
	}

	// Step 6: Mark complete
	log.Info().Str("siteID", rec.ID).Str("class", results.GeotechClass).Msg("Site computation completed")
	return s.repository.UpdateStatus(ctx, siteID, models.StatusCompleted, 100)
}

// Compute runs the engine on an inline profile without persisting anything
func (s *processingService) Compute(ctx context.Context, layers []models.Layer, opts models.ComputeOptions) (*models.SiteResults, error) {
	profile, err := models.NewProfile(layers)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := s.newSite(&models.Site{}, profile)
	if err := st.Run(opts.WithDefaults(s.cfg.Defaults), nil); err != nil {
		return nil, err
	}

	results := st.Record()
	return &results, nil
}

func (s *processingService) newSite(rec *models.Site, profile *models.Profile) *site.Site {
	h := site.Header{ID: rec.ID}
	if rec.X != nil {
		h.X = *rec.X
	}
	if rec.Y != nil {
		h.Y = *rec.Y
	}
	if rec.Z != nil {
		h.Z = *rec.Z
	}

	return site.New(h, profile,
		site.WithWorkers(s.cfg.Workers),
		site.WithQwlMaxDepth(s.cfg.QwlMaxDepth))
}

func (s *processingService) loadProfile(ctx context.Context, rec *models.Site) (*models.Profile, error) {
	if rec.Profile != nil {
		return rec.Profile, nil
	}
	if rec.ProfileS3Key == nil {
		return nil, errors.New("site has neither layers nor a profile file")
	}

	data, err := s.s3.DownloadFile(ctx, *rec.ProfileS3Key)
	if err != nil {
		return nil, err
	}

	format := ""
	if rec.ProfileFormat != nil {
		format = *rec.ProfileFormat
	}
	return profileio.ReadBytes(data, format)
}
