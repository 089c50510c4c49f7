package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/srtk/internal/repository"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

// MockSiteRepository implements repository.SiteRepository for testing
type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) Create(ctx context.Context, site *models.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, id)
	site, _ := args.Get(0).(*models.Site)
	return site, args.Error(1)
}

func (m *MockSiteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockSiteRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockSiteRepository) SetOptions(ctx context.Context, id uuid.UUID, opts models.ComputeOptions) error {
	args := m.Called(ctx, id, opts)
	return args.Error(0)
}

func (m *MockSiteRepository) StoreResults(ctx context.Context, results *models.SiteResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockSiteRepository) GetResults(ctx context.Context, siteID uuid.UUID) (*models.SiteResults, error) {
	args := m.Called(ctx, siteID)
	results, _ := args.Get(0).(*models.SiteResults)
	return results, args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessSite(ctx context.Context, siteID uuid.UUID) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

func (m *MockProcessingService) Compute(ctx context.Context, layers []models.Layer, opts models.ComputeOptions) (*models.SiteResults, error) {
	args := m.Called(ctx, layers, opts)
	results, _ := args.Get(0).(*models.SiteResults)
	return results, args.Error(1)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "not a huma status error: %v", err)
	return se.GetStatus()
}

func twoLayers() []models.Layer {
	return []models.Layer{
		{Thickness: models.Float(10), Vs: models.Float(200), Density: models.Float(1900)},
		{Thickness: models.Float(0), Vs: models.Float(800), Density: models.Float(2200)},
	}
}

func TestCreateSite(t *testing.T) {
	tests := []struct {
		name      string
		layers    []models.Layer
		format    string
		mockSetup func(*MockSiteRepository, *MockS3Service)
		wantCode  int
		wantURL   bool
	}{
		{
			name:   "inline layers",
			layers: twoLayers(),
			mockSetup: func(repo *MockSiteRepository, s3 *MockS3Service) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Site) bool {
					return s.Profile != nil && s.Profile.Len() == 2 && s.ProfileS3Key == nil
				})).Return(nil)
			},
		},
		{
			name:   "profile upload",
			format: models.FormatXLSX,
			mockSetup: func(repo *MockSiteRepository, s3 *MockS3Service) {
				s3.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
					return len(key) > 5 && key[len(key)-5:] == ".xlsx"
				}), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
					Return("https://example.com/upload", nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Site) bool {
					return s.ProfileS3Key != nil && *s.ProfileFormat == models.FormatXLSX
				})).Return(nil)
			},
			wantURL: true,
		},
		{
			name:      "invalid layers",
			layers:    []models.Layer{{Vs: models.Float(-1)}},
			mockSetup: func(*MockSiteRepository, *MockS3Service) {},
			wantCode:  422,
		},
		{
			name:      "no profile source",
			mockSetup: func(*MockSiteRepository, *MockS3Service) {},
			wantCode:  400,
		},
		{
			name:   "upload URL failure",
			format: models.FormatCSV,
			mockSetup: func(repo *MockSiteRepository, s3 *MockS3Service) {
				s3.On("GenerateUploadURL", mock.Anything, mock.Anything, "text/csv").Return("", assert.AnError)
			},
			wantCode: 500,
		},
		{
			name:   "database failure",
			layers: twoLayers(),
			mockSetup: func(repo *MockSiteRepository, s3 *MockS3Service) {
				repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			wantCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockSiteRepository{}
			s3 := &MockS3Service{}
			proc := &MockProcessingService{}
			tt.mockSetup(repo, s3)

			handler := NewSiteHandler(repo, s3, proc)

			req := &models.CreateSiteRequest{}
			req.Body.Name = "borehole A"
			req.Body.Layers = tt.layers
			req.Body.ProfileFormat = tt.format

			resp, err := handler.CreateSite(context.Background(), req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, statusOf(t, err))
			} else {
				require.NoError(t, err)
				_, err := uuid.Parse(resp.Body.ID)
				assert.NoError(t, err)
				if tt.wantURL {
					require.NotNil(t, resp.Body.UploadURL)
					assert.Equal(t, "https://example.com/upload", *resp.Body.UploadURL)
					assert.Equal(t, 900, resp.Body.ExpiresIn)
				} else {
					assert.Nil(t, resp.Body.UploadURL)
				}
			}

			repo.AssertExpectations(t)
			s3.AssertExpectations(t)
		})
	}
}

func TestStartCompute(t *testing.T) {
	id := uuid.New()
	opts := models.ComputeOptions{FreqNum: 100, Elastic: true}

	repo := &MockSiteRepository{}
	proc := &MockProcessingService{}
	done := make(chan struct{})

	repo.On("GetByID", mock.Anything, id).Return(&models.Site{ID: id.String(), Status: models.StatusPending}, nil)
	repo.On("SetOptions", mock.Anything, id, opts).Return(nil)
	proc.On("ProcessSite", mock.Anything, id).Run(func(mock.Arguments) { close(done) }).Return(nil)

	handler := NewSiteHandler(repo, &MockS3Service{}, proc)
	req := &models.StartComputeRequest{ID: id.String(), Body: opts}

	resp, err := handler.StartCompute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Computation started successfully", resp.Body.Message)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("background computation was not started")
	}

	repo.AssertExpectations(t)
	proc.AssertExpectations(t)
}

func TestStartCompute_Errors(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		id        string
		mockSetup func(*MockSiteRepository)
		wantCode  int
	}{
		{"invalid id", "not-a-uuid", func(*MockSiteRepository) {}, 400},
		{"unknown site", id.String(), func(repo *MockSiteRepository) {
			repo.On("GetByID", mock.Anything, id).Return(nil, fmt.Errorf("site: %w", repository.ErrNotFound))
		}, 404},
		{"already processing", id.String(), func(repo *MockSiteRepository) {
			repo.On("GetByID", mock.Anything, id).Return(&models.Site{ID: id.String(), Status: models.StatusProcessing}, nil)
		}, 409},
		{"options not stored", id.String(), func(repo *MockSiteRepository) {
			repo.On("GetByID", mock.Anything, id).Return(&models.Site{ID: id.String(), Status: models.StatusFailed}, nil)
			repo.On("SetOptions", mock.Anything, id, mock.Anything).Return(assert.AnError)
		}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockSiteRepository{}
			proc := &MockProcessingService{}
			tt.mockSetup(repo)

			handler := NewSiteHandler(repo, &MockS3Service{}, proc)
			_, err := handler.StartCompute(context.Background(), &models.StartComputeRequest{ID: tt.id})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, statusOf(t, err))
			proc.AssertNotCalled(t, "ProcessSite", mock.Anything, mock.Anything)
		})
	}
}

func TestGetSiteStatus(t *testing.T) {
	id := uuid.New()
	errMsg := "Computation failed: missing density"

	tests := []struct {
		name        string
		site        *models.Site
		results     *models.SiteResults
		wantMessage string
		wantResults bool
	}{
		{
			name:        "pending",
			site:        &models.Site{ID: id.String(), Status: models.StatusPending},
			wantMessage: "Site queued for computation...",
		},
		{
			name:        "processing",
			site:        &models.Site{ID: id.String(), Status: models.StatusProcessing, Progress: 45},
			wantMessage: "Solving quarter-wavelength parameters...",
		},
		{
			name:        "completed",
			site:        &models.Site{ID: id.String(), Status: models.StatusCompleted, Progress: 100},
			results:     &models.SiteResults{ID: "results-1"},
			wantMessage: "Computation complete!",
			wantResults: true,
		},
		{
			name:        "failed",
			site:        &models.Site{ID: id.String(), Status: models.StatusFailed, ErrorMsg: &errMsg},
			wantMessage: errMsg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockSiteRepository{}
			repo.On("GetByID", mock.Anything, id).Return(tt.site, nil)
			if tt.results != nil {
				repo.On("GetResults", mock.Anything, id).Return(tt.results, nil)
			}

			handler := NewSiteHandler(repo, &MockS3Service{}, &MockProcessingService{})
			resp, err := handler.GetSiteStatus(context.Background(), &models.GetSiteStatusRequest{ID: id.String()})
			require.NoError(t, err)

			assert.Equal(t, tt.site.Status, resp.Body.Status)
			assert.Equal(t, tt.site.Progress, resp.Body.Progress)
			assert.Equal(t, tt.wantMessage, resp.Body.Message)
			if tt.wantResults {
				require.NotNil(t, resp.Body.ResultsID)
				assert.Equal(t, "results-1", *resp.Body.ResultsID)
			} else {
				assert.Nil(t, resp.Body.ResultsID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestGetSiteResults(t *testing.T) {
	id := uuid.New()
	k0 := 0.0042

	repo := &MockSiteRepository{}
	repo.On("GetByID", mock.Anything, id).Return(&models.Site{ID: id.String(), Status: models.StatusCompleted}, nil)
	repo.On("GetResults", mock.Anything, id).Return(&models.SiteResults{ID: "r", SiteID: id.String(), K0: &k0}, nil)

	handler := NewSiteHandler(repo, &MockS3Service{}, &MockProcessingService{})
	resp, err := handler.GetSiteResults(context.Background(), &models.GetSiteResultsRequest{ID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.Body.SiteID)
	assert.Equal(t, &k0, resp.Body.K0)
}

func TestGetSiteResults_NotCompleted(t *testing.T) {
	id := uuid.New()

	repo := &MockSiteRepository{}
	repo.On("GetByID", mock.Anything, id).Return(&models.Site{ID: id.String(), Status: models.StatusProcessing}, nil)

	handler := NewSiteHandler(repo, &MockS3Service{}, &MockProcessingService{})
	_, err := handler.GetSiteResults(context.Background(), &models.GetSiteResultsRequest{ID: id.String()})
	require.Error(t, err)
	assert.Equal(t, 409, statusOf(t, err))
	repo.AssertNotCalled(t, "GetResults", mock.Anything, mock.Anything)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		result   *models.SiteResults
		err      error
		wantCode int
	}{
		{"success", &models.SiteResults{GeotechClass: "B"}, nil, 0},
		{"invalid profile", nil, fmt.Errorf("layer 1: %w", siteresponse.ErrInvalidProfile), 422},
		{"invalid frequency axis", nil, siteresponse.ErrInvalidFrequency, 422},
		{"unexpected failure", nil, assert.AnError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &MockProcessingService{}
			proc.On("Compute", mock.Anything, mock.Anything, mock.Anything).Return(tt.result, tt.err)

			handler := NewSiteHandler(&MockSiteRepository{}, &MockS3Service{}, proc)
			req := &models.ComputeRequest{}
			req.Body.Layers = twoLayers()

			resp, err := handler.Compute(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "B", resp.Body.GeotechClass)
		})
	}
}
