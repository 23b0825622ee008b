package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vodbench/internal/bench"
	"vodbench/internal/logging"
	"vodbench/internal/util/format"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan <input>",
		Short:         "Show segments, strategies and probe budgets without encoding",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		PreRunE:       runPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := inputsFrom(cmd, args)
			if err != nil {
				return err
			}
			log := logging.New(cmd.ErrOrStderr(), in.Options.Verbose)
			pl, err := in.service(nil, log).Plan(cmd.Context())
			if err != nil {
				return exitErr(err, ExitBenchError)
			}
			printPlan(cmd.OutOrStdout(), in, pl)
			return nil
		},
	}
	// Reuse same flags; plan ignores actual encode
	bindRunFlags(cmd.Flags())
	return cmd
}

// printPlan outputs a dry-run plan of actions without executing them.
func printPlan(w io.Writer, in runInputs, pl bench.Plan) {
	src := pl.Source
	fmt.Fprintln(w, "Dry-run plan:")
	fmt.Fprintf(w, "- Input:          %s\n", src.Path)
	fmt.Fprintf(w, "- Source:         %dx%d %s, %s\n", src.Width, src.Height, src.Codec, format.Seconds(src.DurationSec))
	fmt.Fprintf(w, "- FFmpeg:         %s\n", in.FFmpegPath)
	fmt.Fprintf(w, "- Target VMAF:    %.2f (band +%.2f)\n", in.Options.TargetQuality, pl.Params.BandWidth)
	fmt.Fprintf(w, "- Mode:           %s\n", in.Options.Mode)
	if in.Options.Preprocess != "" {
		fmt.Fprintf(w, "- Preprocess:     %s\n", in.Options.Preprocess)
	}
	fmt.Fprintf(w, "- Segments:       %d\n", len(pl.Segments))
	for _, s := range pl.Segments {
		fmt.Fprintf(w, "    %s  %s\n", s, format.Seconds(s.Duration))
	}
	fmt.Fprintln(w, "- Configurations:")
	for _, c := range pl.Configs {
		st := c.Strategy
		fmt.Fprintf(w, "    %-24s %-10s %s  [%s, %s]  ≤%d probes\n",
			c.Configuration.ID(), c.Encoder.Encoder, strings.Join(c.Encoder.Args, " "),
			format.HumanizeKbps(st.MinKbps), format.HumanizeKbps(st.MaxKbps), c.MaxProbes)
	}
}
