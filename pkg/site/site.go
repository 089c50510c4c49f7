// Package site orchestrates the site-response engine over one soil profile
// and keeps the derived results until the profile or frequency axis changes.
package site

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

// Decimal is the number of decimals kept in stored results.
const Decimal = 4

// Header identifies a site and its position.
type Header struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Results holds the derived results of a site. Absent results are nil or
// empty.
type Results struct {
	VzKey        models.ParamKey
	Vz           map[float64]float64
	GeotechClass string
	Qwl          *siteresponse.QwlResult
	ImpAmp       []float64
	ShTF         []complex128
	Fn           []float64
	An           []float64
	K0           *float64
	AttF         []float64
}

// Option configures a Site.
type Option func(*Site)

// WithWorkers solves up to n frequencies concurrently.
func WithWorkers(n int) Option {
	return func(s *Site) { s.workers = n }
}

// WithQwlMaxDepth caps the quarter-wavelength search depth.
func WithQwlMaxDepth(z float64) Option {
	return func(s *Site) { s.qwlMaxDepth = z }
}

// Site is a soil profile together with its frequency axis and cached
// results. It is not safe for concurrent use.
type Site struct {
	Header Header

	profile     *models.Profile
	freq        []float64
	workers     int
	qwlMaxDepth float64
	res         Results
}

// New returns a site over p.
func New(h Header, p *models.Profile, opts ...Option) *Site {
	s := &Site{Header: h, profile: p}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Layers returns a copy of the layer stack.
func (s *Site) Layers() []models.Layer {
	return s.profile.Layers()
}

// SetProfile replaces the profile and drops every result.
func (s *Site) SetProfile(p *models.Profile) {
	s.profile = p
	s.res = Results{}
}

// AddLayer appends a layer below the current half-space.
func (s *Site) AddLayer(l models.Layer) error {
	return s.mutate(func(p *models.Profile) error { return p.AddLayer(l) })
}

// InsertLayer inserts a layer before index i.
func (s *Site) InsertLayer(i int, l models.Layer) error {
	return s.mutate(func(p *models.Profile) error { return p.InsertLayer(i, l) })
}

// DeleteLayer removes the layer at index i.
func (s *Site) DeleteLayer(i int) error {
	return s.mutate(func(p *models.Profile) error { return p.DeleteLayer(i) })
}

func (s *Site) mutate(fn func(*models.Profile) error) error {
	if err := fn(s.profile); err != nil {
		return err
	}
	s.res = Results{}
	return nil
}

// FrequencyAxis sets the frequency axis and drops the results sampled on
// the previous one.
func (s *Site) FrequencyAxis(fmin, fmax float64, n int, log bool) error {
	axis, err := siteresponse.FrequencyAxis(fmin, fmax, n, log)
	if err != nil {
		return err
	}
	s.freq = axis
	s.res.Qwl = nil
	s.res.ImpAmp = nil
	s.res.ShTF = nil
	s.res.Fn, s.res.An = nil, nil
	s.res.AttF = nil
	return nil
}

// Frequencies returns a copy of the frequency axis.
func (s *Site) Frequencies() []float64 {
	return slices.Clone(s.freq)
}

// Results returns a copy of the derived results.
func (s *Site) Results() Results {
	r := s.res
	if r.Vz != nil {
		r.Vz = make(map[float64]float64, len(s.res.Vz))
		for k, v := range s.res.Vz {
			r.Vz[k] = v
		}
	}
	if r.Qwl != nil {
		q := siteresponse.QwlResult{
			Depth:         slices.Clone(r.Qwl.Depth),
			Velocity:      slices.Clone(r.Qwl.Velocity),
			Density:       slices.Clone(r.Qwl.Density),
			Amplification: slices.Clone(r.Qwl.Amplification),
		}
		r.Qwl = &q
	}
	if r.K0 != nil {
		k := *r.K0
		r.K0 = &k
	}
	r.ImpAmp = slices.Clone(r.ImpAmp)
	r.ShTF = slices.Clone(r.ShTF)
	r.Fn = slices.Clone(r.Fn)
	r.An = slices.Clone(r.An)
	r.AttF = slices.Clone(r.AttF)
	return r
}

// Has reports whether a result is currently available.
func (s *Site) Has(key models.ResultKey) bool {
	switch key {
	case models.ResultVz:
		return len(s.res.Vz) > 0
	case models.ResultGeotechClass:
		return s.res.GeotechClass != ""
	case models.ResultQwl:
		return s.res.Qwl != nil
	case models.ResultImpAmp:
		return s.res.ImpAmp != nil
	case models.ResultShTF:
		return s.res.ShTF != nil
	case models.ResultFn, models.ResultAn:
		return s.res.Fn != nil
	case models.ResultK0:
		return s.res.K0 != nil
	case models.ResultAttF:
		return s.res.AttF != nil
	}
	return false
}

// Vs30 returns the stored shear-wave velocity averaged over 30 m.
func (s *Site) Vs30() (float64, bool) {
	if s.res.VzKey != models.Vs {
		return 0, false
	}
	v, ok := s.res.Vz[models.DefaultVzDepth]
	return v, ok
}

// ComputeTTAV computes travel-time average velocities of the Vs or Vp
// column at every depth, 30 m when none is given. Results for the same
// column accumulate; switching column replaces them.
func (s *Site) ComputeTTAV(key models.ParamKey, depths ...float64) error {
	if err := checkVelocityKey(key); err != nil {
		return err
	}
	if len(depths) == 0 {
		depths = []float64{models.DefaultVzDepth}
	}

	hl, v, err := s.columns(models.Hl, key)
	if err != nil {
		return err
	}

	vz := make(map[float64]float64, len(depths))
	for _, z := range depths {
		avg, err := siteresponse.TTAverageVelocity(hl, v, z)
		if err != nil {
			return err
		}
		vz[z] = round(avg)
	}

	if s.res.VzKey != key || s.res.Vz == nil {
		s.res.Vz = make(map[float64]float64, len(vz))
		s.res.GeotechClass = ""
	}
	s.res.VzKey = key
	for z, avg := range vz {
		s.res.Vz[z] = avg
	}
	return nil
}

// ComputeGTClass classifies the site from its stored Vs30.
func (s *Site) ComputeGTClass(code string) error {
	vs30, ok := s.Vs30()
	if !ok {
		return missing(models.ResultGeotechClass, "Vs30")
	}

	class, err := siteresponse.Classify(vs30, code)
	if err != nil {
		return err
	}
	s.res.GeotechClass = class
	return nil
}

// ComputeQWL solves the quarter-wavelength problem on the frequency axis
// for the Vs or Vp column.
func (s *Site) ComputeQWL(key models.ParamKey) error {
	if err := checkVelocityKey(key); err != nil {
		return err
	}
	if s.freq == nil {
		return missing(models.ResultQwl, "frequency axis")
	}

	cols, err := s.profileColumns(models.Hl, key, models.Dn)
	if err != nil {
		return err
	}

	q, err := siteresponse.QwlSolve(cols[0], cols[1], cols[2], s.freq, siteresponse.QwlOptions{
		MaxDepth: s.qwlMaxDepth,
		Workers:  s.workers,
	})
	if err != nil {
		return err
	}

	roundAll(q.Depth)
	roundAll(q.Velocity)
	roundAll(q.Density)
	roundAll(q.Amplification)
	s.res.Qwl = &q
	s.res.ImpAmp = nil
	return nil
}

// ComputeImpAmp computes the impedance amplification of the stored
// quarter-wavelength parameters. Zero reference values select the
// half-space, taking its velocity from the key column.
func (s *Site) ComputeImpAmp(key models.ParamKey, vref, dref float64) error {
	if err := checkVelocityKey(key); err != nil {
		return err
	}
	if s.res.Qwl == nil {
		return missing(models.ResultImpAmp, string(models.ResultQwl))
	}

	if vref == 0 || dref == 0 {
		vs, dn, err := s.columns(key, models.Dn)
		if err != nil {
			return err
		}
		if vref == 0 {
			vref = vs[len(vs)-1]
		}
		if dref == 0 {
			dref = dn[len(dn)-1]
		}
	}

	amp, err := siteresponse.QwlImpedance(s.res.Qwl.Velocity, s.res.Qwl.Density, vref, dref)
	if err != nil {
		return err
	}
	s.res.ImpAmp = roundAll(amp)
	return nil
}

// ComputeSHTF computes the SH-wave transfer function on the frequency axis
// for an incidence angle in degrees. An elastic run does not need Qs.
func (s *Site) ComputeSHTF(angle float64, elastic bool) error {
	if s.freq == nil {
		return missing(models.ResultShTF, "frequency axis")
	}

	cols, err := s.profileColumns(models.Hl, models.Vs, models.Dn)
	if err != nil {
		return err
	}

	qs, err := s.profile.Column(models.Qs)
	if err != nil {
		if !elastic {
			return err
		}
		qs = make([]float64, s.profile.Len())
	}

	tf, err := siteresponse.ShTransferFunction(cols[0], cols[1], cols[2], qs, s.freq, siteresponse.ShOptions{
		IncidenceAngle: angle,
		Elastic:        elastic,
		Workers:        s.workers,
	})
	if err != nil {
		return err
	}

	if n := countNaN(tf); n > 0 {
		log.Debug().Str("siteID", s.Header.ID).Int("samples", n).Msg("SH transfer function undefined at some frequencies")
	}

	s.res.ShTF = tf
	s.res.Fn, s.res.An = nil, nil
	return nil
}

// ComputeFnRes picks the resonances of the stored transfer function.
func (s *Site) ComputeFnRes() error {
	if s.res.ShTF == nil {
		return missing(models.ResultFn, string(models.ResultShTF))
	}

	fn, an := siteresponse.GetResFreqComplex(s.freq, s.res.ShTF)
	if fn == nil {
		fn, an = []float64{}, []float64{}
	}
	s.res.Fn = roundAll(fn)
	s.res.An = roundAll(an)
	return nil
}

// ComputeKappa computes Kappa0 from a velocity column and its quality
// factor column (Vs with Qs, or Vp with Qp) down to depth z, or over the
// whole profile when z is zero.
func (s *Site) ComputeKappa(vKey, qKey models.ParamKey, z float64) error {
	if err := checkVelocityKey(vKey); err != nil {
		return err
	}
	if qKey != QualityKey(vKey) {
		return fmt.Errorf("%w: %s is not the quality factor of %s", siteresponse.ErrInvalidProfile, qKey, vKey)
	}

	cols, err := s.profileColumns(models.Hl, vKey, qKey)
	if err != nil {
		return err
	}

	k0, err := siteresponse.Kappa0(cols[0], cols[1], cols[2], z)
	if err != nil {
		return err
	}
	k0 = round(k0)
	s.res.K0 = &k0
	s.res.AttF = nil
	return nil
}

// ComputeAttFun computes the spectral decay of the stored Kappa0.
func (s *Site) ComputeAttFun() error {
	if s.res.K0 == nil {
		return missing(models.ResultAttF, string(models.ResultK0))
	}
	if s.freq == nil {
		return missing(models.ResultAttF, "frequency axis")
	}

	s.res.AttF = roundAll(siteresponse.AttenuationDecay(s.freq, *s.res.K0))
	return nil
}

func (s *Site) columns(a, b models.ParamKey) ([]float64, []float64, error) {
	cols, err := s.profileColumns(a, b)
	if err != nil {
		return nil, nil, err
	}
	return cols[0], cols[1], nil
}

func (s *Site) profileColumns(keys ...models.ParamKey) ([][]float64, error) {
	out := make([][]float64, len(keys))
	for i, k := range keys {
		c, err := s.profile.Column(k)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// QualityKey returns the quality factor column paired with a velocity
// column.
func QualityKey(velocity models.ParamKey) models.ParamKey {
	if velocity == models.Vp {
		return models.Qp
	}
	return models.Qs
}

func checkVelocityKey(key models.ParamKey) error {
	if key != models.Vs && key != models.Vp {
		return fmt.Errorf("%w: %s is not a velocity", siteresponse.ErrInvalidProfile, key)
	}
	return nil
}

func missing(result models.ResultKey, needs string) error {
	return fmt.Errorf("%w: %s needs %s", siteresponse.ErrMissingPrerequisite, result, needs)
}

func round(v float64) float64 {
	p := math.Pow10(Decimal)
	return math.Round(v*p) / p
}

func roundAll(values []float64) []float64 {
	for i, v := range values {
		values[i] = round(v)
	}
	return values
}

func countNaN(values []complex128) int {
	n := 0
	for _, v := range values {
		if cmplx.IsNaN(v) {
			n++
		}
	}
	return n
}
