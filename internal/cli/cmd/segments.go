package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vodbench/internal/logging"
	"vodbench/internal/source"
	"vodbench/internal/util"
	"vodbench/internal/util/format"
)

func newSegmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "segments <input>",
		Short:         "Detect scene cuts and print the resulting segments",
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
			prober := source.Prober{FFprobePath: in.FFprobePath, Runner: util.NewDefaultRunner(), Logger: log}
			info, err := prober.Probe(cmd.Context(), in.Options.Input)
			if err != nil {
				return exitErr(err, ExitBenchError)
			}
			segs, err := in.service(nil, log).Segments(cmd.Context(), in.Options.Input, info.DurationSec)
			if err != nil {
				return exitErr(err, ExitBenchError)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tSTART\tEND\tDURATION")
			for _, s := range segs {
				fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%s\n", s.Index, s.Start, s.End, format.Seconds(s.Duration))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d segments over %s (bounds %s..%s)\n", len(segs), format.Seconds(info.DurationSec),
				format.Seconds(in.Options.MinSegmentSec), format.Seconds(in.Options.MaxSegmentSec))
			return nil
		},
	}
	bindSegmentFlags(cmd.Flags())
	return cmd
}
