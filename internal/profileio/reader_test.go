package profileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

const site01CSV = `Hl,Vp,Vs,Dn,Qp,Qs
# soft cover
10,300,200,1900,50,20
10,500,300,1900,50,20

0,1000,800,2100,100,50
`

func column(t *testing.T, p *models.Profile, key models.ParamKey) []float64 {
	t.Helper()
	c, err := p.Column(key)
	require.NoError(t, err)
	return c
}

func TestRead_CSVWithHeader(t *testing.T) {
	p, err := ReadFormat(strings.NewReader(site01CSV), models.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []float64{200, 300, 800}, column(t, p, models.Vs))
	assert.Equal(t, []float64{10, 10, 0}, column(t, p, models.Hl))
	assert.Equal(t, []float64{20, 20, 50}, column(t, p, models.Qs))
}

func TestRead_Presets(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"headerless CSV", models.FormatCSVNoH, "10,300,200,1900,50,20\n0,1000,800,2100,100,50\n"},
		{"Geopsy", models.FormatGeopsy, "2\n10  300 200 1900 50 20\n0 1000   800 2100 100 50\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadFormat(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, []float64{200, 800}, column(t, p, models.Vs))
			assert.Equal(t, []float64{1900, 2100}, column(t, p, models.Dn))
		})
	}
}

func TestRead_CustomLayout(t *testing.T) {
	input := "exported by survey tool\nversion 2\n12.5;180\n!ignored\n0;650\n"
	p, err := Read(strings.NewReader(input), Options{
		Header:    []models.ParamKey{models.Hl, models.Vs},
		Delimiter: ';',
		SkipLines: 2,
		Comment:   "!",
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{12.5, 0}, column(t, p, models.Hl))
	assert.Equal(t, []float64{180, 650}, column(t, p, models.Vs))
	assert.False(t, p.HasColumn(models.Dn))
}

func TestRead_UnknownColumnsAndEmptyCells(t *testing.T) {
	input := "Name,Hl,Vs,Qs\ntop,5,150,\nrock,0,900,60\n"
	p, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{150, 900}, column(t, p, models.Vs))
	assert.False(t, p.HasColumn(models.Qs))
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a number", "Hl,Vs\n10,fast\n0,800\n"},
		{"no layers", "Hl,Vs\n"},
		{"interior layer without thickness", "Hl,Vs\n0,200\n0,800\n"},
		{"negative velocity", "Hl,Vs\n10,-200\n0,800\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), Options{})
			assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
		})
	}
}

func TestReadFormat_Unsupported(t *testing.T) {
	_, err := ReadFormat(strings.NewReader(site01CSV), "SEG-Y")
	assert.Error(t, err)
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := workbook(t, [][]any{
		{"Hl", "Vs", "Dn"},
		{10, 200, 1900},
		{0, 800, 2100},
	})

	assert.Equal(t, models.FormatXLSX, DetectFormat(data))

	p, err := ReadBytes(data, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 800}, column(t, p, models.Vs))
	assert.Equal(t, []float64{10, 0}, column(t, p, models.Hl))
}

func TestReadXLSX_EmptySheet(t *testing.T) {
	data := workbook(t, [][]any{{"Hl", "Vs"}})
	_, err := ReadBytes(data, models.FormatXLSX)
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, models.FormatCSV, DetectFormat([]byte(site01CSV)))
	assert.Equal(t, models.FormatCSV, DetectFormat(nil))
}
