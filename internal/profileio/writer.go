package profileio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/RMahshie/srtk/pkg/models"
)

const (
	spectraSheet = "Spectra"
	summarySheet = "Summary"
)

// ExportResults writes derived results as CSV or as an xlsx workbook.
//
// The frequency-dependent results form one table with a column per
// quantity; only computed quantities get a column. Scalar results (Vz,
// class, Kappa0, resonances) precede the table as "# key=value" comment
// lines in CSV and fill a separate sheet in xlsx. Undefined transfer
// function samples are written as empty cells.
func ExportResults(w io.Writer, r models.SiteResults, format string) error {
	header, rows := spectraTable(r)
	summary := summaryTable(r)

	switch format {
	case models.FormatCSV, "":
		return writeCSV(w, header, rows, summary)
	case models.FormatXLSX:
		return writeXLSX(w, header, rows, summary)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func spectraTable(r models.SiteResults) ([]string, [][]any) {
	header := []string{"frequency"}
	if r.Qwl != nil {
		header = append(header, "qwl_depth", "qwl_velocity", "qwl_density", "qwl_amp")
	}
	if r.ImpAmp != nil {
		header = append(header, "imp_amp")
	}
	if r.ShTF != nil {
		header = append(header, "sh_tf_real", "sh_tf_imag", "sh_tf_amp")
	}
	if r.AttF != nil {
		header = append(header, "att_f")
	}

	rows := make([][]any, len(r.Frequencies))
	for i, f := range r.Frequencies {
		row := make([]any, 0, len(header))
		row = append(row, f)
		if r.Qwl != nil {
			q := r.Qwl[i]
			row = append(row, q.Depth, q.Velocity, q.Density, q.Amplification)
		}
		if r.ImpAmp != nil {
			row = append(row, r.ImpAmp[i].Value)
		}
		if r.ShTF != nil {
			p := r.ShTF[i]
			row = append(row, optional(p.Real), optional(p.Imag), optional(p.Amplitude))
		}
		if r.AttF != nil {
			row = append(row, r.AttF[i].Value)
		}
		rows[i] = row
	}
	return header, rows
}

func summaryTable(r models.SiteResults) [][2]any {
	var out [][2]any
	if r.SiteID != "" {
		out = append(out, [2]any{"site_id", r.SiteID})
	}
	for _, v := range r.Vz {
		out = append(out, [2]any{fmt.Sprintf("%s%s", vzPrefix(r.VzKey), formatFloat(v.Depth)), v.Velocity})
	}
	if r.GeotechClass != "" {
		out = append(out, [2]any{"geotech_class", r.GeotechClass})
	}
	if r.K0 != nil {
		out = append(out, [2]any{"k0", *r.K0})
	}
	for i, res := range r.Resonances {
		out = append(out,
			[2]any{fmt.Sprintf("fn_%d", i), res.Frequency},
			[2]any{fmt.Sprintf("an_%d", i), res.Amplitude},
		)
	}
	return out
}

func vzPrefix(key models.ParamKey) string {
	if key == models.Vp {
		return "vp"
	}
	return "vs"
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func writeCSV(w io.Writer, header []string, rows [][]any, summary [][2]any) error {
	for _, kv := range summary {
		if _, err := fmt.Fprintf(w, "# %s=%s\n", kv[0], formatCell(kv[1])); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, header []string, rows [][]any, summary [][2]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), spectraSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(spectraSheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(spectraSheet, cell, &row); err != nil {
			return err
		}
	}

	if len(summary) > 0 {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return err
		}
		for i, kv := range summary {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			pair := []any{kv[0], kv[1]}
			if err := f.SetSheetRow(summarySheet, cell, &pair); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
