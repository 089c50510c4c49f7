package site

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

// Db is a regional collection of sites.
type Db struct {
	ID   string
	Info string

	sites []*Site
}

// VzStat summarises one average velocity over a collection of sites,
// assuming it is log-normally distributed.
type VzStat struct {
	Depth   float64 `json:"depth"`
	Count   int     `json:"count"`
	GeoMean float64 `json:"geo_mean"`
	GeoStd  float64 `json:"geo_std"`
}

// NewDb returns an empty collection.
func NewDb(id, info string) *Db {
	return &Db{ID: id, Info: info}
}

// AddSite appends s to the collection.
func (d *Db) AddSite(s *Site) {
	d.sites = append(d.sites, s)
}

// InsertSite inserts s before index i.
func (d *Db) InsertSite(i int, s *Site) error {
	if i < 0 || i > len(d.sites) {
		return fmt.Errorf("site index %d out of range [0, %d]", i, len(d.sites))
	}
	d.sites = append(d.sites[:i], append([]*Site{s}, d.sites[i:]...)...)
	return nil
}

// DelSite removes the site at index i.
func (d *Db) DelSite(i int) error {
	if i < 0 || i >= len(d.sites) {
		return fmt.Errorf("site index %d out of range [0, %d)", i, len(d.sites))
	}
	d.sites = append(d.sites[:i], d.sites[i+1:]...)
	return nil
}

// Site returns the site at index i.
func (d *Db) Site(i int) (*Site, error) {
	if i < 0 || i >= len(d.sites) {
		return nil, fmt.Errorf("site index %d out of range [0, %d)", i, len(d.sites))
	}
	return d.sites[i], nil
}

// Sites returns the sites in insertion order.
func (d *Db) Sites() []*Site {
	out := make([]*Site, len(d.sites))
	copy(out, d.sites)
	return out
}

// Size returns the number of sites.
func (d *Db) Size() int {
	return len(d.sites)
}

// ComputeTTAV computes travel-time average velocities on every site.
func (d *Db) ComputeTTAV(key models.ParamKey, depths ...float64) error {
	for _, s := range d.sites {
		if err := s.ComputeTTAV(key, depths...); err != nil {
			return fmt.Errorf("site %s: %w", s.Header.ID, err)
		}
	}
	return nil
}

// RunAll runs the full computation on every site, at most workers sites at
// a time. The first failure cancels the sites not yet started.
func (d *Db) RunAll(ctx context.Context, o models.ComputeOptions, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, s := range d.sites {
		s := s // per-iteration copy; go.mod targets go 1.21
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.Run(o, nil); err != nil {
				return fmt.Errorf("site %s: %w", s.Header.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// VzStats returns the geometric mean and geometric standard deviation of
// the average velocity at depth z over all sites. Every site must have
// that average computed.
func (d *Db) VzStats(z float64) (VzStat, error) {
	if len(d.sites) == 0 {
		return VzStat{}, fmt.Errorf("%w: no sites", siteresponse.ErrMissingPrerequisite)
	}

	logs := make([]float64, len(d.sites))
	for i, s := range d.sites {
		v, ok := s.res.Vz[z]
		if !ok {
			return VzStat{}, fmt.Errorf("site %s: %w", s.Header.ID, missing(models.ResultVz, fmt.Sprintf("an average at %v m", z)))
		}
		logs[i] = math.Log(v)
	}

	mean, std := stat.PopMeanStdDev(logs, nil)
	return VzStat{
		Depth:   z,
		Count:   len(logs),
		GeoMean: math.Exp(mean),
		GeoStd:  math.Exp(std),
	}, nil
}
