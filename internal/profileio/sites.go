package profileio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/site"
)

// SiteEntry is one line of a site index: Id,X,Y,Z,File.
type SiteEntry struct {
	ID   string `validate:"required"`
	X    float64
	Y    float64
	Z    float64
	File string `validate:"required"`
}

// Opener opens the profile file named in a site index.
type Opener func(name string) (io.ReadCloser, error)

// DirOpener resolves relative profile names against root.
func DirOpener(root string) Opener {
	return func(name string) (io.ReadCloser, error) {
		if !filepath.IsAbs(name) {
			name = filepath.Join(root, name)
		}
		return os.Open(name)
	}
}

var validate = validator.New()

// ReadSiteIndex parses a headerless site index. Lines starting with # are
// comments.
func ReadSiteIndex(r io.Reader) ([]SiteEntry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	var entries []SiteEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read site index: %w", err)
		}

		e := SiteEntry{ID: strings.TrimSpace(rec[0]), File: strings.TrimSpace(rec[4])}
		for i, dst := range []*float64{&e.X, &e.Y, &e.Z} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("site %s: bad coordinate %q: %w", e.ID, rec[i+1], err)
			}
			*dst = v
		}
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("invalid site index entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ImportSites reads a site index and adds one site per entry to db, loading
// each profile through open. An empty format is detected per file.
func ImportSites(db *site.Db, index io.Reader, open Opener, format string, opts ...site.Option) error {
	entries, err := ReadSiteIndex(index)
	if err != nil {
		return err
	}

	for _, e := range entries {
		p, err := loadProfile(open, e.File, format)
		if err != nil {
			return fmt.Errorf("site %s: %w", e.ID, err)
		}
		db.AddSite(site.New(site.Header{ID: e.ID, X: e.X, Y: e.Y, Z: e.Z}, p, opts...))
	}
	return nil
}

// ReadFile reads a profile file. An empty format is taken from an .xlsx
// extension or detected from the content.
func ReadFile(path, format string) (*models.Profile, error) {
	return loadProfile(DirOpener(""), path, format)
}

func loadProfile(open Opener, name, format string) (*models.Profile, error) {
	rc, err := open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if format == "" && strings.EqualFold(filepath.Ext(name), ".xlsx") {
		format = models.FormatXLSX
	}
	return ReadBytes(data, format)
}
