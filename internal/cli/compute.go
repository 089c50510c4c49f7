package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/srtk/internal/config"
	"github.com/RMahshie/srtk/internal/profileio"
	"github.com/RMahshie/srtk/pkg/models"
	"github.com/RMahshie/srtk/pkg/site"
)

// ComputeCmd computes every result of one profile file.
type ComputeCmd struct {
	format   string
	out      string
	export   string
	vzKey    string
	qwlKey   string
	kappaKey string
	code     string
	angle    float64
	elastic  bool
	kappaZ   float64
	refVel   float64
	refDens  float64
}

func NewComputeCmd() *cobra.Command {
	cc := &ComputeCmd{}
	cmd := &cobra.Command{
		Use:   "compute <profile>",
		Short: "Compute site-response results of a layered profile",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.format, "format", "", "Profile format: CSV, CSV-NoH, Geopsy or XLSX (detected when empty)")
	cmd.Flags().StringVarP(&cc.out, "out", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVar(&cc.export, "export", models.FormatCSV, "Output format: CSV or XLSX")
	cmd.Flags().StringVar(&cc.vzKey, "vz-key", string(models.Vs), "Velocity column averaged for Vz (Vs or Vp)")
	cmd.Flags().StringVar(&cc.qwlKey, "qwl-key", string(models.Vs), "Velocity column for quarter-wavelength and impedance amplification (Vs or Vp)")
	cmd.Flags().StringVar(&cc.kappaKey, "kappa-key", string(models.Vs), "Velocity column for Kappa0, paired with Qs or Qp (Vs or Vp)")
	cmd.Flags().StringVar(&cc.code, "code", "", "Building code for the geotechnical class")
	cmd.Flags().Float64Var(&cc.angle, "angle", 0, "Incidence angle in the half-space, degrees")
	cmd.Flags().BoolVar(&cc.elastic, "elastic", false, "Ignore material damping")
	cmd.Flags().Float64Var(&cc.kappaZ, "kappa-depth", 0, "Kappa0 integration depth in m (whole profile when 0)")
	cmd.Flags().Float64Var(&cc.refVel, "vref", 0, "Reference velocity for impedance amplification")
	cmd.Flags().Float64Var(&cc.refDens, "dref", 0, "Reference density for impedance amplification")
	addEngineFlags(cmd)

	return cmd
}

func (cc *ComputeCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper()
	if err != nil {
		return err
	}

	profile, err := profileio.ReadFile(args[0], cc.format)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	keys := make([]models.ParamKey, 3)
	for i, raw := range []string{cc.vzKey, cc.qwlKey, cc.kappaKey} {
		if keys[i], err = models.ParseParamKey(raw); err != nil {
			return err
		}
	}

	id := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	s := site.New(site.Header{ID: id}, profile,
		site.WithWorkers(cfg.Engine.Workers),
		site.WithQwlMaxDepth(cfg.Engine.QwlMaxDepth))

	opts := models.ComputeOptions{
		VzKey:          keys[0],
		QwlKey:         keys[1],
		KappaKey:       keys[2],
		Code:           cc.code,
		IncidenceAngle: cc.angle,
		Elastic:        cc.elastic,
		KappaDepth:     cc.kappaZ,
		RefVelocity:    cc.refVel,
		RefDensity:     cc.refDens,
	}.WithDefaults(cfg.Engine.Defaults)

	err = s.Run(opts, func(stage models.ResultKey, progress int) {
		log.Debug().Str("site", id).Str("stage", string(stage)).Int("progress", progress).Msg("Stage computed")
	})
	if err != nil {
		return fmt.Errorf("site %s: %w", id, err)
	}

	w := cmd.OutOrStdout()
	if cc.out != "" {
		f, err := os.Create(cc.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return writeResults(w, s.Record(), cc.export)
}

func writeResults(w io.Writer, r models.SiteResults, format string) error {
	if err := profileio.ExportResults(w, r, strings.ToUpper(format)); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}
	return nil
}
