// Package profileio reads soil profiles from delimited text and spreadsheets
// and writes derived results back out.
package profileio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

// Options describes a delimited profile file.
type Options struct {
	// Header names the columns. Nil reads it from the first line after the
	// skipped ones.
	Header []models.ParamKey

	// Delimiter separates fields. Any whitespace delimiter splits on runs
	// of whitespace. Zero selects a comma.
	Delimiter rune

	// SkipLines are dropped before the header or first data line.
	SkipLines int

	// Comment marks lines to ignore. Empty selects "#".
	Comment string
}

// FormatOptions returns the reader options of a named text format.
func FormatOptions(format string) (Options, error) {
	switch format {
	case models.FormatCSV, "":
		return Options{Delimiter: ','}, nil
	case models.FormatCSVNoH:
		return Options{Header: models.ParamKeys, Delimiter: ','}, nil
	case models.FormatGeopsy:
		return Options{Header: models.ParamKeys, Delimiter: ' ', SkipLines: 1}, nil
	}
	return Options{}, fmt.Errorf("unsupported text format %q", format)
}

// ReadFormat reads a profile in one of the named formats, spreadsheets
// included.
func ReadFormat(r io.Reader, format string) (*models.Profile, error) {
	if format == models.FormatXLSX {
		return ReadXLSX(r)
	}
	opts, err := FormatOptions(format)
	if err != nil {
		return nil, err
	}
	return Read(r, opts)
}

// ReadBytes reads a profile held in memory. An empty format is detected
// from the content.
func ReadBytes(data []byte, format string) (*models.Profile, error) {
	if format == "" {
		format = DetectFormat(data)
	}
	return ReadFormat(bytes.NewReader(data), format)
}

// Read parses a delimited profile, one layer per line from the surface
// down.
func Read(r io.Reader, opts Options) (*models.Profile, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Comment == "" {
		opts.Comment = "#"
	}

	sc := bufio.NewScanner(r)
	for i := 0; i < opts.SkipLines; i++ {
		if !sc.Scan() {
			break
		}
	}

	var header []string
	for _, k := range opts.Header {
		header = append(header, string(k))
	}

	var rows [][]string
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, opts.Comment) {
			continue
		}

		fields := split(text, opts.Delimiter)
		if header == nil {
			header = fields
			continue
		}
		rows = append(rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	layers, err := LayersFromRows(header, rows)
	if err != nil {
		return nil, err
	}
	return models.NewProfile(layers)
}

// ReadXLSX reads a profile from the first sheet of a workbook. The first row
// is the header.
func ReadXLSX(r io.Reader) (*models.Profile, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet has no layers", siteresponse.ErrInvalidProfile)
	}

	layers, err := LayersFromRows(rows[0], rows[1:])
	if err != nil {
		return nil, err
	}
	return models.NewProfile(layers)
}

// LayersFromRows converts textual rows into layers. Columns whose header is
// not a parameter key are ignored and empty cells leave the value absent.
func LayersFromRows(header []string, rows [][]string) ([]models.Layer, error) {
	keys := make([]models.ParamKey, len(header))
	for i, h := range header {
		k, err := models.ParseParamKey(strings.TrimSpace(h))
		if err != nil {
			log.Debug().Str("column", h).Msg("Ignoring unknown profile column")
			continue
		}
		keys[i] = k
	}

	layers := make([]models.Layer, 0, len(rows))
	for n, row := range rows {
		values := make(map[models.ParamKey]float64, len(keys))
		for i, cell := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %q is not a number", siteresponse.ErrInvalidProfile, n+1, keys[i], cell)
			}
			values[keys[i]] = v
		}
		layers = append(layers, models.LayerFromMap(values))
	}
	return layers, nil
}

func split(line string, delim rune) []string {
	if unicode.IsSpace(delim) {
		return strings.Fields(line)
	}
	fields := strings.Split(line, string(delim))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// DetectFormat guesses the format of a profile file from its first bytes:
// a zip container is a workbook, anything else is read as CSV.
func DetectFormat(data []byte) string {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return models.FormatXLSX
	}
	return models.FormatCSV
}
