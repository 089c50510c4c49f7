package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/srtk/internal/processing"
	"github.com/RMahshie/srtk/internal/repository"
	"github.com/RMahshie/srtk/internal/storage"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadExpiry = 15 * time.Minute

// SiteHandler handles site-related HTTP requests
type SiteHandler struct {
	repo          repository.SiteRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(repo repository.SiteRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *SiteHandler {
	return &SiteHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateSite creates a site from inline layers, or reserves an upload URL
// for its profile file
func (h *SiteHandler) CreateSite(ctx context.Context, req *models.CreateSiteRequest) (*models.CreateSiteResponse, error) {
	siteID := uuid.New()
	log.Info().Str("siteID", siteID.String()).Str("name", req.Body.Name).Int("layers", len(req.Body.Layers)).Msg("Creating new site")

	now := time.Now()
	site := &models.Site{
		ID:        siteID.String(),
		Name:      req.Body.Name,
		X:         req.Body.X,
		Y:         req.Body.Y,
		Z:         req.Body.Z,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	resp := &models.CreateSiteResponse{}
	resp.Body.ID = site.ID

	switch {
	case len(req.Body.Layers) > 0:
		profile, err := models.NewProfile(req.Body.Layers)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid layer stack", err)
		}
		site.Profile = profile

	case req.Body.ProfileFormat != "":
		contentType, err := storage.ContentType(req.Body.ProfileFormat)
		if err != nil {
			return nil, huma.Error400BadRequest("Profile format not supported", err)
		}

		key := fmt.Sprintf("profiles/%s.%s", siteID, extension(req.Body.ProfileFormat))
		uploadURL, err := h.s3Service.GenerateUploadURL(ctx, key, contentType)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to prepare upload", err)
		}

		format := req.Body.ProfileFormat
		site.ProfileS3Key = &key
		site.ProfileFormat = &format
		resp.Body.UploadURL = &uploadURL
		resp.Body.ExpiresIn = int(uploadExpiry.Seconds())

	default:
		return nil, huma.Error400BadRequest("Provide either layers or a profile format")
	}

	if err := h.repo.Create(ctx, site); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create site", err)
	}

	log.Info().Str("siteID", site.ID).Bool("upload", site.ProfileS3Key != nil).Msg("Site created successfully")
	return resp, nil
}

// StartCompute stores the computation options and starts processing in the
// background
func (h *SiteHandler) StartCompute(ctx context.Context, req *models.StartComputeRequest) (*models.StartComputeResponse, error) {
	siteID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid site ID", err)
	}

	site, err := h.repo.GetByID(ctx, siteID)
	if err != nil {
		return nil, notFoundOr500("Site not found", err)
	}
	if site.Status == models.StatusProcessing {
		return nil, huma.Error409Conflict("Site is already being computed")
	}

	if err := h.repo.SetOptions(ctx, siteID, req.Body); err != nil {
		return nil, notFoundOr500("Failed to store options", err)
	}

	log.Info().Str("siteID", siteID.String()).Msg("Starting background computation")
	go func() {
		if err := h.processingSvc.ProcessSite(context.Background(), siteID); err != nil {
			log.Error().Err(err).Str("siteID", siteID.String()).Msg("Background computation failed")
			h.repo.UpdateError(context.Background(), siteID, fmt.Sprintf("Processing failed: %v", err))
		}
	}()

	resp := &models.StartComputeResponse{}
	resp.Body.Message = "Computation started successfully"
	return resp, nil
}

// GetSiteStatus returns the current status of a site
func (h *SiteHandler) GetSiteStatus(ctx context.Context, req *models.GetSiteStatusRequest) (*models.GetSiteStatusResponse, error) {
	siteID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid site ID", err)
	}

	site, err := h.repo.GetByID(ctx, siteID)
	if err != nil {
		return nil, notFoundOr500("Site not found", err)
	}

	var resultsID *string
	if site.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, siteID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	message := statusMessage(site.Status, site.Progress)
	if site.Status == models.StatusFailed && site.ErrorMsg != nil {
		message = *site.ErrorMsg
	}

	return &models.GetSiteStatusResponse{
		Body: models.GetSiteStatusResponseBody{
			ID:        site.ID,
			Status:    site.Status,
			Progress:  site.Progress,
			Message:   message,
			ResultsID: resultsID,
		},
	}, nil
}

// GetSiteResults returns the results of a completed site
func (h *SiteHandler) GetSiteResults(ctx context.Context, req *models.GetSiteResultsRequest) (*models.GetSiteResultsResponse, error) {
	siteID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid site ID", err)
	}

	site, err := h.repo.GetByID(ctx, siteID)
	if err != nil {
		return nil, notFoundOr500("Site not found", err)
	}
	if site.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Site computation not yet completed",
			fmt.Errorf("site status is %s", site.Status))
	}

	results, err := h.repo.GetResults(ctx, siteID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	return &models.GetSiteResultsResponse{Body: *results}, nil
}

// Compute runs every computation on an inline profile and returns the
// results without storing them
func (h *SiteHandler) Compute(ctx context.Context, req *models.ComputeRequest) (*models.ComputeResponse, error) {
	results, err := h.processingSvc.Compute(ctx, req.Body.Layers, req.Body.Options)
	if err != nil {
		if isInputError(err) {
			return nil, huma.Error422UnprocessableEntity("Computation rejected", err)
		}
		return nil, huma.Error500InternalServerError("Computation failed", err)
	}
	return &models.ComputeResponse{Body: *results}, nil
}

// isInputError reports whether err was caused by the request content
func isInputError(err error) bool {
	for _, target := range []error{
		siteresponse.ErrInvalidProfile,
		siteresponse.ErrInvalidDepth,
		siteresponse.ErrInvalidFrequency,
		siteresponse.ErrUnsupportedCode,
		siteresponse.ErrMissingPrerequisite,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func notFoundOr500(msg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return huma.Error404NotFound(msg, err)
	}
	return huma.Error500InternalServerError(msg, err)
}

func extension(format string) string {
	switch format {
	case models.FormatXLSX:
		return "xlsx"
	case models.FormatGeopsy:
		return "txt"
	}
	return "csv"
}

// statusMessage creates a human-readable status message
func statusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Site queued for computation..."
	case models.StatusProcessing:
		switch {
		case progress < 20:
			return "Loading profile and averaging velocities..."
		case progress < 50:
			return "Solving quarter-wavelength parameters..."
		case progress < 80:
			return "Computing SH-wave transfer function..."
		default:
			return "Estimating attenuation..."
		}
	case models.StatusCompleted:
		return "Computation complete!"
	case models.StatusFailed:
		return "Computation failed."
	default:
		return "Unknown status"
	}
}
