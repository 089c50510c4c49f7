package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RMahshie/srtk/internal/api/handlers"
	"github.com/RMahshie/srtk/internal/processing"
	"github.com/RMahshie/srtk/internal/repository"
	"github.com/RMahshie/srtk/internal/storage"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/danielgtaylor/huma/v2"
)

// Version is reported by the health endpoint and the OpenAPI document
const Version = "1.0.0"

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, s3Service storage.S3Service, siteRepo repository.SiteRepository, processingSvc processing.ProcessingService) {
	siteHandler := handlers.NewSiteHandler(siteRepo, s3Service, processingSvc)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = Version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "createSite",
		Method:      http.MethodPost,
		Path:        "/api/sites",
		Summary:     "Create a new site",
		Description: "Creates a site from inline layers, or returns an upload URL for its profile file",
		Tags:        []string{"Sites"},
	}, siteHandler.CreateSite)

	huma.Register(api, huma.Operation{
		OperationID: "startCompute",
		Method:      http.MethodPost,
		Path:        "/api/sites/{id}/compute",
		Summary:     "Start site computation",
		Description: "Stores the computation options and computes every site result in the background",
		Tags:        []string{"Sites"},
	}, siteHandler.StartCompute)

	huma.Register(api, huma.Operation{
		OperationID: "getSiteStatus",
		Method:      http.MethodGet,
		Path:        "/api/sites/{id}/status",
		Summary:     "Get site status",
		Description: "Returns the current status and progress of a site computation",
		Tags:        []string{"Sites"},
	}, siteHandler.GetSiteStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getSiteResults",
		Method:      http.MethodGet,
		Path:        "/api/sites/{id}/results",
		Summary:     "Get site results",
		Description: "Returns velocity averages, class, quarter-wavelength, transfer function and attenuation results",
		Tags:        []string{"Sites"},
	}, siteHandler.GetSiteResults)

	huma.Register(api, huma.Operation{
		OperationID: "compute",
		Method:      http.MethodPost,
		Path:        "/api/compute",
		Summary:     "Compute an inline profile",
		Description: "Runs every computation on a layer stack and returns the results without storing them",
		Tags:        []string{"Compute"},
	}, siteHandler.Compute)
}
