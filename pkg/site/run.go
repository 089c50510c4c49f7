package site

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

// ProgressFunc receives the result just computed and the overall progress
// in percent.
type ProgressFunc func(stage models.ResultKey, progress int)

// DefaultOptions returns the options Run falls back to: 1000 log-spaced
// samples from 0.1 to 100 Hz, Vs30, EC8, and shear-wave QWL and Kappa0.
func DefaultOptions() models.ComputeOptions {
	logSpaced := true
	return models.ComputeOptions{
		FreqMin:  0.1,
		FreqMax:  100,
		FreqNum:  1000,
		FreqLog:  &logSpaced,
		VzKey:    models.Vs,
		VzDepths: []float64{models.DefaultVzDepth},
		Code:     siteresponse.CodeEC8,
		QwlKey:   models.Vs,
		KappaKey: models.Vs,
	}
}

// Run computes every result in dependency order. Classification is skipped
// when Vs30 is not among the requested averages, and Kappa0 is skipped for
// an elastic run on a profile without the quality factor paired with
// KappaKey. report may be nil.
func (s *Site) Run(o models.ComputeOptions, report ProgressFunc) error {
	o = o.WithDefaults(DefaultOptions())
	if report == nil {
		report = func(models.ResultKey, int) {}
	}

	steps := []struct {
		key      models.ResultKey
		progress int
		run      func() error
	}{
		{models.ResultFrequencies, 5, func() error { return s.FrequencyAxis(o.FreqMin, o.FreqMax, o.FreqNum, *o.FreqLog) }},
		{models.ResultVz, 15, func() error { return s.ComputeTTAV(o.VzKey, o.VzDepths...) }},
		{models.ResultGeotechClass, 20, func() error {
			if _, ok := s.Vs30(); !ok {
				log.Debug().Str("siteID", s.Header.ID).Msg("Vs30 not requested, skipping classification")
				return nil
			}
			return s.ComputeGTClass(o.Code)
		}},
		{models.ResultQwl, 45, func() error { return s.ComputeQWL(o.QwlKey) }},
		{models.ResultImpAmp, 50, func() error { return s.ComputeImpAmp(o.QwlKey, o.RefVelocity, o.RefDensity) }},
		{models.ResultShTF, 75, func() error { return s.ComputeSHTF(o.IncidenceAngle, o.Elastic) }},
		{models.ResultFn, 80, s.ComputeFnRes},
		{models.ResultK0, 90, func() error {
			qKey := QualityKey(o.KappaKey)
			if o.Elastic && !s.profile.HasColumn(qKey) {
				return nil
			}
			return s.ComputeKappa(o.KappaKey, qKey, o.KappaDepth)
		}},
		{models.ResultAttF, 95, func() error {
			if s.res.K0 == nil {
				return nil
			}
			return s.ComputeAttFun()
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return err
		}
		report(step.key, step.progress)
	}
	return nil
}

// Record converts the cached results into their API form.
func (s *Site) Record() models.SiteResults {
	r := models.SiteResults{
		SiteID:       s.Header.ID,
		Frequencies:  s.Frequencies(),
		GeotechClass: s.res.GeotechClass,
	}

	if len(s.res.Vz) > 0 {
		r.VzKey = s.res.VzKey
		depths := make([]float64, 0, len(s.res.Vz))
		for z := range s.res.Vz {
			depths = append(depths, z)
		}
		slices.Sort(depths)
		for _, z := range depths {
			r.Vz = append(r.Vz, models.DepthValue{Depth: z, Velocity: s.res.Vz[z]})
		}
	}

	if q := s.res.Qwl; q != nil {
		r.Qwl = make([]models.QwlPoint, len(s.freq))
		for i, f := range s.freq {
			r.Qwl[i] = models.QwlPoint{
				Frequency:     f,
				Depth:         q.Depth[i],
				Velocity:      q.Velocity[i],
				Density:       q.Density[i],
				Amplification: q.Amplification[i],
			}
		}
	}

	if s.res.ImpAmp != nil {
		r.ImpAmp = models.NewFrequencyPoints(s.freq, s.res.ImpAmp)
	}
	if s.res.ShTF != nil {
		r.ShTF = models.NewTransferPoints(s.freq, s.res.ShTF)
	}
	for i := range s.res.Fn {
		r.Resonances = append(r.Resonances, models.Resonance{Frequency: s.res.Fn[i], Amplitude: s.res.An[i]})
	}
	if s.res.K0 != nil {
		k := *s.res.K0
		r.K0 = &k
	}
	if s.res.AttF != nil {
		r.AttF = models.NewFrequencyPoints(s.freq, s.res.AttF)
	}
	return r
}
