package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vodbench/internal/bench"
	"vodbench/internal/config"
	"vodbench/internal/model"
	"vodbench/internal/strategy"
)

func newStrategyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy [height]",
		Short: "Print the resolution tiers, or the search range for one height",
		Long: "Without arguments, prints the resolution tiers in effect. With a height, prints the tier " +
			"it maps to and the search range a segment would get after a previous decision " +
			"given by --prev-kbps and --prev-quality.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, v, err := loadOptions(cmd, nil)
			if err != nil {
				return err
			}
			table, err := config.Table(v)
			if err != nil {
				return exitErr(err, ExitCLIError)
			}
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "HEIGHT\tMIN KBPS\tMAX KBPS\tPROBES")
				for _, s := range table.Sorted() {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", s.Height, s.MinKbps, s.MaxKbps, s.MaxProbes)
				}
				return tw.Flush()
			}

			height, err := strconv.Atoi(args[0])
			if err != nil || height <= 0 {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("invalid height %q", args[0])}
			}
			params := bench.NewService(bench.WithOptions(opts)).Params()
			if err := params.Validate(); err != nil {
				return exitErr(err, ExitCLIError)
			}

			st := table.Lookup(height)
			fmt.Fprintf(w, "Tier:      %dp (requested %dp)\n", st.Height, height)
			fmt.Fprintf(w, "Base:      [%d, %d] kbps, %d probes\n", st.MinKbps, st.MaxKbps, st.MaxProbes)

			var prev *model.SegmentDecision
			prevKbps, _ := cmd.Flags().GetInt("prev-kbps")
			prevQ, _ := cmd.Flags().GetFloat64("prev-quality")
			if prevKbps > 0 {
				prev = &model.SegmentDecision{ChosenBitrateKbps: prevKbps, EstimatedQuality: prevQ}
				fmt.Fprintf(w, "Previous:  %d kbps q=%.2f\n", prevKbps, prevQ)
			}
			r := strategy.AdjustRange(st, prev, opts.TargetQuality, params)
			fmt.Fprintf(w, "Adjusted:  [%.0f, %.0f] kbps for target %.2f (accept %.2f..%.2f)\n",
				r.Min, r.Max, opts.TargetQuality, opts.TargetQuality, opts.TargetQuality+params.BandWidth)
			return nil
		},
	}
	bindSearchFlags(cmd.Flags())
	cmd.Flags().Int("prev-kbps", 0, "Bitrate chosen for the previous segment")
	cmd.Flags().Float64("prev-quality", 0, "Score reached by the previous segment")
	return cmd
}
