package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RMahshie/srtk/internal/config"
	"github.com/RMahshie/srtk/internal/profileio"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/site"
)

// RegionCmd computes every site of a site index and summarises their
// average velocities.
type RegionCmd struct {
	format  string
	outDir  string
	elastic bool
	jobs    int
}

func NewRegionCmd() *cobra.Command {
	rc := &RegionCmd{}
	cmd := &cobra.Command{
		Use:   "region <index>",
		Short: "Compute every site of a site index (Id,X,Y,Z,File) and summarise Vz",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", "", "Profile format of every file (detected when empty)")
	cmd.Flags().StringVar(&rc.outDir, "out-dir", "", "Directory receiving one result CSV per site")
	cmd.Flags().BoolVar(&rc.elastic, "elastic", false, "Ignore material damping")
	cmd.Flags().IntVar(&rc.jobs, "jobs", 4, "Sites computed concurrently")
	addEngineFlags(cmd)

	return cmd
}

func (rc *RegionCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper()
	if err != nil {
		return err
	}

	index, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer index.Close()

	db := site.NewDb(filepath.Base(args[0]), "")
	err = profileio.ImportSites(db, index, profileio.DirOpener(filepath.Dir(args[0])), rc.format,
		site.WithWorkers(cfg.Engine.Workers),
		site.WithQwlMaxDepth(cfg.Engine.QwlMaxDepth))
	if err != nil {
		return err
	}

	opts := models.ComputeOptions{Elastic: rc.elastic}.WithDefaults(cfg.Engine.Defaults)
	if err := db.RunAll(context.Background(), opts, rc.jobs); err != nil {
		return err
	}

	if rc.outDir != "" {
		if err := rc.writeSites(db); err != nil {
			return err
		}
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"depth", "count", "geo_mean", "geo_std"}); err != nil {
		return err
	}
	for _, z := range opts.VzDepths {
		st, err := db.VzStats(z)
		if err != nil {
			return err
		}
		if err := w.Write([]string{
			formatFloat(st.Depth),
			strconv.Itoa(st.Count),
			formatFloat(st.GeoMean),
			formatFloat(st.GeoStd),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (rc *RegionCmd) writeSites(db *site.Db) error {
	if err := os.MkdirAll(rc.outDir, 0o755); err != nil {
		return err
	}
	for _, s := range db.Sites() {
		f, err := os.Create(filepath.Join(rc.outDir, s.Header.ID+".csv"))
		if err != nil {
			return err
		}
		err = writeResults(f, s.Record(), models.FormatCSV)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("site %s: %w", s.Header.ID, err)
		}
	}
	return nil
}

// formatFloat rounds v to the precision of stored results.
func formatFloat(v float64) string {
	p := math.Pow10(site.Decimal)
	return strconv.FormatFloat(math.Round(v*p)/p, 'g', -1, 64)
}
