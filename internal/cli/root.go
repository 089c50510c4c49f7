// Package cli implements the srtk command line.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RMahshie/srtk/internal/config"
)

// NewRootCmd returns the srtk command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "srtk",
		Short:         "1D seismic site-response toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults()
			viper.AutomaticEnv()
			if err := bindFlags(cmd.Flags()); err != nil {
				return err
			}

			level, err := zerolog.ParseLevel(viper.GetString("LOG_LEVEL"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		NewComputeCmd(),
		NewAxisCmd(),
		NewRegionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// flagKeys maps command flags onto configuration keys, so that a flag
// overrides the environment and the environment overrides the defaults.
var flagKeys = map[string]string{
	"log-level":     "LOG_LEVEL",
	"fmin":          "FREQ_MIN",
	"fmax":          "FREQ_MAX",
	"nf":            "FREQ_NUM",
	"log":           "FREQ_LOG",
	"vz-depths":     "VZ_DEPTHS",
	"qwl-max-depth": "QWL_MAX_DEPTH",
	"workers":       "ENGINE_WORKERS",
}

func bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// addEngineFlags registers the flags shared by every computing command.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("fmin", 0, "Lowest frequency in Hz")
	cmd.Flags().Float64("fmax", 0, "Highest frequency in Hz")
	cmd.Flags().Int("nf", 0, "Number of frequency samples")
	cmd.Flags().Bool("log", true, "Logarithmic frequency spacing")
	cmd.Flags().String("vz-depths", "", "Comma-separated depths for travel-time average velocities")
	cmd.Flags().Float64("qwl-max-depth", 0, "Quarter-wavelength search depth cap in m")
	cmd.Flags().Int("workers", 0, "Frequencies solved concurrently")
}
