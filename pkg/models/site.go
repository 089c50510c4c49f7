package models

import (
	"time"
)

// Site processing states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Profile file formats accepted for uploaded profiles.
const (
	FormatCSV    = "CSV"
	FormatCSVNoH = "CSV-NoH"
	FormatGeopsy = "Geopsy"
	FormatXLSX   = "XLSX"
)

// DefaultVzDepth is the depth of Vs30.
const DefaultVzDepth = 30.0

// ResultKey names a derived result.
type ResultKey string

const (
	ResultFrequencies  ResultKey = "Frequencies"
	ResultVz           ResultKey = "Vz"
	ResultGeotechClass ResultKey = "GeotechClass"
	ResultQwl          ResultKey = "Qwl"
	ResultImpAmp       ResultKey = "ImpAmp"
	ResultShTF         ResultKey = "ShTF"
	ResultFn           ResultKey = "Fn"
	ResultAn           ResultKey = "An"
	ResultK0           ResultKey = "K0"
	ResultAttF         ResultKey = "AttF"
)

// Site represents a persisted site and its processing state (for internal use)
type Site struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	X             *float64        `json:"x,omitempty"`
	Y             *float64        `json:"y,omitempty"`
	Z             *float64        `json:"z,omitempty"`
	Profile       *Profile        `json:"profile,omitempty"`
	ProfileS3Key  *string         `json:"profile_s3_key,omitempty"`
	ProfileFormat *string         `json:"profile_format,omitempty"`
	Options       *ComputeOptions `json:"options,omitempty"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	ErrorMsg      *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// ComputeOptions selects what a site computation produces. Zero fields
// fall back to the service defaults.
type ComputeOptions struct {
	FreqMin        float64   `json:"freq_min,omitempty" minimum:"0" doc:"Lowest frequency in Hz"`
	FreqMax        float64   `json:"freq_max,omitempty" minimum:"0" doc:"Highest frequency in Hz"`
	FreqNum        int       `json:"freq_num,omitempty" minimum:"0" maximum:"20000" doc:"Number of frequency samples"`
	FreqLog        *bool     `json:"freq_log,omitempty" doc:"Logarithmic frequency spacing"`
	VzKey          ParamKey  `json:"vz_key,omitempty" enum:"Vs,Vp" doc:"Velocity column averaged for Vz"`
	VzDepths       []float64 `json:"vz_depths,omitempty" doc:"Depths in m for travel-time average velocities"`
	Code           string    `json:"code,omitempty" enum:"EC8" doc:"Building code for the geotechnical class"`
	IncidenceAngle float64   `json:"incidence_angle,omitempty" minimum:"0" exclusiveMaximum:"90" doc:"Incidence angle in the half-space, degrees"`
	Elastic        bool      `json:"elastic,omitempty" doc:"Ignore material damping in the SH transfer function"`
	KappaDepth     float64   `json:"kappa_depth,omitempty" minimum:"0" doc:"Kappa0 integration depth in m (0 for the whole profile)"`
	RefVelocity    float64   `json:"ref_velocity,omitempty" minimum:"0" doc:"Reference velocity for impedance amplification"`
	RefDensity     float64   `json:"ref_density,omitempty" minimum:"0" doc:"Reference density for impedance amplification"`
	QwlKey         ParamKey  `json:"qwl_key,omitempty" enum:"Vs,Vp" doc:"Velocity column for quarter-wavelength and impedance amplification"`
	KappaKey       ParamKey  `json:"kappa_key,omitempty" enum:"Vs,Vp" doc:"Velocity column for Kappa0, paired with Qs or Qp"`
}

// WithDefaults returns o with every unset field taken from d.
func (o ComputeOptions) WithDefaults(d ComputeOptions) ComputeOptions {
	if o.FreqMin == 0 {
		o.FreqMin = d.FreqMin
	}
	if o.FreqMax == 0 {
		o.FreqMax = d.FreqMax
	}
	if o.FreqNum == 0 {
		o.FreqNum = d.FreqNum
	}
	if o.FreqLog == nil {
		o.FreqLog = d.FreqLog
	}
	if o.VzKey == "" {
		o.VzKey = d.VzKey
	}
	if len(o.VzDepths) == 0 {
		o.VzDepths = d.VzDepths
	}
	if o.Code == "" {
		o.Code = d.Code
	}
	if o.KappaDepth == 0 {
		o.KappaDepth = d.KappaDepth
	}
	if o.RefVelocity == 0 {
		o.RefVelocity = d.RefVelocity
	}
	if o.RefDensity == 0 {
		o.RefDensity = d.RefDensity
	}
	if o.QwlKey == "" {
		o.QwlKey = d.QwlKey
	}
	if o.KappaKey == "" {
		o.KappaKey = d.KappaKey
	}
	return o
}

// DepthValue is a travel-time average velocity at one depth.
type DepthValue struct {
	Depth    float64 `json:"depth" doc:"Depth in m"`
	Velocity float64 `json:"velocity" doc:"Travel-time average velocity in m/s"`
}

// QwlPoint is the quarter-wavelength solution at one frequency.
type QwlPoint struct {
	Frequency     float64 `json:"frequency" doc:"Frequency in Hz"`
	Depth         float64 `json:"depth" doc:"Quarter-wavelength depth in m"`
	Velocity      float64 `json:"velocity" doc:"Average velocity in m/s"`
	Density       float64 `json:"density" doc:"Average density in kg/m3"`
	Amplification float64 `json:"amplification" doc:"Impedance amplification against the half-space"`
}

// Resonance is a local maximum of the transfer function.
type Resonance struct {
	Frequency float64 `json:"frequency" doc:"Resonance frequency in Hz"`
	Amplitude float64 `json:"amplitude" doc:"Transfer function modulus"`
}

// SiteResults holds every derived result of a site computation
type SiteResults struct {
	ID           string           `json:"id" doc:"Results unique identifier"`
	SiteID       string           `json:"site_id" doc:"Associated site ID"`
	Frequencies  []float64        `json:"frequencies" doc:"Frequency axis in Hz"`
	VzKey        ParamKey         `json:"vz_key,omitempty" doc:"Velocity column used for Vz"`
	Vz           []DepthValue     `json:"vz,omitempty" doc:"Travel-time average velocities"`
	GeotechClass string           `json:"geotech_class,omitempty" doc:"Geotechnical class"`
	Qwl          []QwlPoint       `json:"qwl,omitempty" doc:"Quarter-wavelength parameters"`
	ImpAmp       []FrequencyPoint `json:"imp_amp,omitempty" doc:"Impedance amplification against the chosen reference"`
	ShTF         []TransferPoint  `json:"sh_tf,omitempty" doc:"SH-wave transfer function"`
	Resonances   []Resonance      `json:"resonances,omitempty" doc:"Resonance frequencies and amplitudes"`
	K0           *float64         `json:"k0,omitempty" doc:"Kappa0 in s"`
	AttF         []FrequencyPoint `json:"att_f,omitempty" doc:"Kappa0 spectral attenuation"`
	CreatedAt    time.Time        `json:"created_at" doc:"Results creation timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateSiteRequest represents a request to create a new site
type CreateSiteRequest struct {
	Body struct {
		Name          string   `json:"name" minLength:"1" maxLength:"200" required:"true" doc:"Site name"`
		X             *float64 `json:"x,omitempty" doc:"Easting or longitude"`
		Y             *float64 `json:"y,omitempty" doc:"Northing or latitude"`
		Z             *float64 `json:"z,omitempty" doc:"Elevation in m"`
		Layers        []Layer  `json:"layers,omitempty" doc:"Inline layer stack, top to bottom"`
		ProfileFormat string   `json:"profile_format,omitempty" enum:"CSV,CSV-NoH,Geopsy,XLSX" doc:"Format of a profile file uploaded instead of inline layers"`
	}
}

// CreateSiteResponseBody is the body of the create site response
type CreateSiteResponseBody struct {
	ID        string  `json:"id" doc:"Site unique identifier"`
	UploadURL *string `json:"upload_url,omitempty" doc:"Pre-signed S3 URL for the profile file"`
	ExpiresIn int     `json:"expires_in,omitempty" doc:"URL expiration time in seconds"`
}

// CreateSiteResponse represents the response from creating a site
type CreateSiteResponse struct {
	Body CreateSiteResponseBody
}

// StartComputeRequest represents a request to start computing a site
type StartComputeRequest struct {
	ID   string `path:"id" doc:"Site ID"`
	Body ComputeOptions
}

// StartComputeResponse represents the response from starting a computation
type StartComputeResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// GetSiteStatusRequest represents a request to get site status
type GetSiteStatusRequest struct {
	ID string `path:"id" doc:"Site ID"`
}

// GetSiteStatusResponseBody is the body of the status response
type GetSiteStatusResponseBody struct {
	ID        string  `json:"id" doc:"Site ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Computation status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Computation progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when computation completes"`
}

// GetSiteStatusResponse represents the current status of a site
type GetSiteStatusResponse struct {
	Body GetSiteStatusResponseBody
}

// GetSiteResultsRequest represents a request to get site results
type GetSiteResultsRequest struct {
	ID string `path:"id" doc:"Site ID"`
}

// GetSiteResultsResponse represents the complete site results
type GetSiteResultsResponse struct {
	Body SiteResults
}

// ComputeRequest represents a synchronous computation on an inline profile
type ComputeRequest struct {
	Body struct {
		Layers  []Layer        `json:"layers" minItems:"1" required:"true" doc:"Layer stack, top to bottom"`
		Options ComputeOptions `json:"options,omitempty" doc:"Computation options"`
	}
}

// ComputeResponse represents the results of a synchronous computation
type ComputeResponse struct {
	Body SiteResults
}
