package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RMahshie/srtk/internal/config"
	"github.com/RMahshie/srtk/pkg/siteresponse"
)

func NewAxisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "axis",
		Short: "Print a frequency axis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper()
			if err != nil {
				return err
			}
			d := cfg.Engine.Defaults

			freq, err := siteresponse.FrequencyAxis(d.FreqMin, d.FreqMax, d.FreqNum, *d.FreqLog)
			if err != nil {
				return err
			}
			for _, f := range freq {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(f, 'g', -1, 64)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64("fmin", 0, "Lowest frequency in Hz")
	cmd.Flags().Float64("fmax", 0, "Highest frequency in Hz")
	cmd.Flags().Int("nf", 0, "Number of frequency samples")
	cmd.Flags().Bool("log", true, "Logarithmic frequency spacing")
	return cmd
}
