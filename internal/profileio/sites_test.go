package profileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/site"
)

func TestReadSiteIndex(t *testing.T) {
	input := "# regional index\nS01, 10.5, 20, 0, site01.csv\nS02,11,21,3.5,sub/site02.mod\n"
	entries, err := ReadSiteIndex(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []SiteEntry{
		{ID: "S01", X: 10.5, Y: 20, Z: 0, File: "site01.csv"},
		{ID: "S02", X: 11, Y: 21, Z: 3.5, File: "sub/site02.mod"},
	}, entries)
}

func TestReadSiteIndex_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing field", "S01,1,2,3\n"},
		{"bad coordinate", "S01,east,2,3,a.csv\n"},
		{"empty id", ",1,2,3,a.csv\n"},
		{"empty file", "S01,1,2,3,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSiteIndex(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestImportSites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site01.csv"), []byte(site01CSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site02.csv"), []byte("Hl,Vs,Dn\n5,150,1800\n0,600,2000\n"), 0o644))

	db := site.NewDb("1", "test region")
	index := "A,1,2,3,site01.csv\nB,4,5,6,site02.csv\n"
	require.NoError(t, ImportSites(db, strings.NewReader(index), DirOpener(dir), "", site.WithWorkers(2)))

	require.Equal(t, 2, db.Size())
	b, err := db.Site(1)
	require.NoError(t, err)
	assert.Equal(t, site.Header{ID: "B", X: 4, Y: 5, Z: 6}, b.Header)
	assert.Len(t, b.Layers(), 2)

	require.NoError(t, db.ComputeTTAV(models.Vs))
	st, err := db.VzStats(30)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count)
}

func TestImportSites_MissingFile(t *testing.T) {
	db := site.NewDb("1", "")
	err := ImportSites(db, strings.NewReader("A,1,2,3,nowhere.csv\n"), DirOpener(t.TempDir()), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "site A")
	assert.Equal(t, 0, db.Size())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.txt")
	require.NoError(t, os.WriteFile(path, []byte(site01CSV), 0o644))

	p, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
}
