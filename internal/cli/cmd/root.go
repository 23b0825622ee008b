package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vodbench/internal/model"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitMissingDep  = 2
	ExitConfigError = 3
	ExitBenchError  = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitErr maps err to an ExitError: configuration errors get ExitConfigError,
// everything else the fallback code. Existing ExitErrors pass through.
func exitErr(err error, fallback int) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	if errors.Is(err, model.ErrConfiguration) {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	return &ExitError{Code: fallback, Err: err}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vodbench [input]",
		Short: "Per-segment bitrate benchmark for VOD encoding",
		Long: "vodbench splits a video at scene cuts and, for every resolution and encoder, " +
			"searches the lowest bitrate per segment that reaches a target VMAF score. " +
			"It reports the per-segment bitrate ladder, HLS playlists and estimated sizes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runExecute(cmd, args, runMode{})
		},
	}

	// Persistent flags available to all subcommands
	root.PersistentFlags().StringP("out-dir", "o", "", "Report directory (default: a new directory under the data dir)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging, including subprocess command lines")
	root.PersistentFlags().String("ffmpeg", "", "Path to ffmpeg")
	root.PersistentFlags().String("ffprobe", "", "Path to ffprobe")
	root.PersistentFlags().Int("jobs", 2, "Max configurations benchmarked concurrently")
	root.PersistentFlags().String("config", "", "Config file (default: config.{yaml,toml,json} in the config dir or working dir)")

	// `vodbench <input>` behaves like `vodbench run <input>`.
	bindRunFlags(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newSegmentsCmd())
	root.AddCommand(newStrategyCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindSegmentFlags(fs *pflag.FlagSet) {
	fs.Float64("min-segment", 2, "Minimum segment duration in seconds")
	fs.Float64("max-segment", 10, "Maximum segment duration in seconds")
	fs.Float64("scene-threshold", 0.4, "Scene change threshold passed to ffmpeg (0..1)")
	fs.Bool("no-cache", false, "Do not read or write the segmentation cache")
}

func bindSearchFlags(fs *pflag.FlagSet) {
	fs.Float64("target", 95, "Target VMAF score")
	fs.Float64("band-width", 0.5, "Width of the acceptance band above the target")
	fs.Float64("narrow-gap", 3, "Score gap under which the range is narrowed around the previous bitrate")
	fs.Float64("narrow-spread", 0.3, "Relative spread of the narrowed range")
}

func bindRunFlags(fs *pflag.FlagSet) {
	bindSegmentFlags(fs)
	bindSearchFlags(fs)
	fs.IntSlice("resolutions", []int{1080, 720}, "Output heights to benchmark")
	fs.StringSlice("variants", []string{"h264"}, "Encoders as codec[:implementation], e.g. h264, hevc:nvenc, av1:aom")
	fs.Bool("reserve-bonus-probe", false, "Allow the bonus probe beyond the tier's probe budget")
	fs.Bool("linear", false, "Probe a fixed bitrate list instead of the binary search")
	fs.IntSlice("linear-bitrates", []int{1000, 2000, 3000, 4500, 6000, 8000}, "Candidate bitrates in kbps for --linear")
	fs.String("preprocess", "", "Command run on the input first; {input} and {output} are substituted")
	fs.Duration("config-timeout", 0, "Abort a configuration after this long (0 disables)")
	fs.Bool("keep-temp", false, "Keep encoded segments and references")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func ensureDir(path string) error {
	if path == "" {
		path = "."
	}
	return os.MkdirAll(filepath.Clean(path), 0o755)
}
