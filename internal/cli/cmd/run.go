package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"vodbench/internal/bench"
	"vodbench/internal/config"
	"vodbench/internal/dirs"
	"vodbench/internal/logging"
	"vodbench/internal/model"
	"vodbench/internal/progress"
	"vodbench/internal/report"
	"vodbench/internal/scene"
	"vodbench/internal/strategy"
	"vodbench/internal/ui"
	"vodbench/internal/util/deps"
	"vodbench/internal/util/media"
)

type runMode struct {
	ForceTUI bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run <input>",
		Short:         "Benchmark every resolution and encoder on the input",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		PreRunE:       runPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

type ctxKey string

const runInputsKey ctxKey = "runInputs"

// runInputs is everything resolved before a benchmark starts.
type runInputs struct {
	Options     model.BenchOptions
	Table       strategy.Table
	FFmpegPath  string
	FFprobePath string
	CacheDir    string
	TempBase    string
}

func runPreRun(cmd *cobra.Command, args []string) error {
	in, err := assembleRunInputs(cmd, args)
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(cmd.Context(), runInputsKey, in))
	return nil
}

// loadOptions resolves options for cmd from its flags, env and config file.
func loadOptions(cmd *cobra.Command, args []string) (model.BenchOptions, *viper.Viper, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	v := viper.New()
	if err := config.Init(v, cmd.Flags(), cfgFile); err != nil {
		return model.BenchOptions{}, nil, exitErr(err, ExitCLIError)
	}
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	opts, err := config.Load(v, input)
	if err != nil {
		return opts, nil, exitErr(err, ExitCLIError)
	}
	return opts, v, nil
}

func assembleRunInputs(cmd *cobra.Command, args []string) (runInputs, error) {
	opts, v, err := loadOptions(cmd, args)
	if err != nil {
		return runInputs{}, err
	}
	table, err := config.Table(v)
	if err != nil {
		return runInputs{}, exitErr(err, ExitCLIError)
	}

	ffmpeg, err := deps.FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return runInputs{}, &ExitError{Code: ExitMissingDep, Err: err}
	}
	ffprobe, err := deps.FindFFprobe(opts.FFprobePath)
	if err != nil {
		return runInputs{}, &ExitError{Code: ExitMissingDep, Err: err}
	}

	in := runInputs{Options: opts, Table: table, FFmpegPath: ffmpeg, FFprobePath: ffprobe}
	if !opts.NoCache {
		if d, err := dirs.SceneCacheDir(); err == nil {
			in.CacheDir = d
		}
	}
	if d, err := dirs.TempBaseDir(); err == nil && dirs.Ensure(d) == nil {
		in.TempBase = d
	}
	return in, nil
}

func inputsFrom(cmd *cobra.Command, args []string) (runInputs, error) {
	if v, ok := cmd.Context().Value(runInputsKey).(runInputs); ok {
		return v, nil
	}
	return assembleRunInputs(cmd, args)
}

// service builds a benchmark service for in.
func (in runInputs) service(rep progress.Reporter, log hclog.Logger) *bench.Service {
	return bench.NewService(
		bench.WithOptions(in.Options),
		bench.WithFFmpegPath(in.FFmpegPath),
		bench.WithFFprobePath(in.FFprobePath),
		bench.WithTable(in.Table),
		bench.WithSceneCache(scene.NewCache(in.CacheDir)),
		bench.WithTempBase(in.TempBase),
		bench.WithReporter(rep),
		bench.WithLogger(log),
	)
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	in, err := inputsFrom(cmd, args)
	if err != nil {
		return err
	}

	if in.Options.OutDir == "" {
		base, err := dirs.DefaultOutputDir()
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("resolve output dir: %w", err)}
		}
		stamp := time.Now().Format("20060102-150405")
		in.Options.OutDir = filepath.Join(base, media.SourceStem(in.Options.Input)+"-"+stamp)
	}
	if err := ensureDir(in.Options.OutDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %v", err)}
	}

	useTUI := mode.ForceTUI || (!in.Options.NoUI && isTerminal())

	var res bench.Result
	if useTUI {
		res, err = runTUI(cmd.Context(), in)
	} else {
		log := logging.New(cmd.ErrOrStderr(), in.Options.Verbose)
		res, err = in.service(nil, log).Run(cmd.Context())
	}
	if err != nil {
		return exitErr(err, ExitBenchError)
	}

	printResult(cmd.OutOrStdout(), res)
	if n := res.Report.Failed(); n > 0 {
		return &ExitError{Code: ExitBenchError, Err: fmt.Errorf("%d of %d configurations failed", n, len(res.Report.Results))}
	}
	return nil
}

// runTUI runs the benchmark behind the dashboard, logging to the state dir.
func runTUI(ctx context.Context, in runInputs) (bench.Result, error) {
	log, closer := logging.NewNoop(), io.Closer(nil)
	if dir, err := dirs.StateDir(); err == nil {
		if l, c, err := logging.NewFile(dir, in.Options.Verbose); err == nil {
			log, closer = l, c
		}
	}
	if closer != nil {
		defer closer.Close()
	}

	var ids []string
	for _, c := range in.Options.Configurations() {
		ids = append(ids, c.ID())
	}
	return ui.Run(ctx, in.Options.Input, ids, func(ctx context.Context, rep progress.Reporter) (bench.Result, error) {
		return in.service(rep, log).Run(ctx)
	})
}

func printResult(w io.Writer, res bench.Result) {
	fmt.Fprint(w, report.Summary(res.Report))
	f := res.Files
	if f.JSON == "" {
		return
	}
	fmt.Fprintf(w, "\nReport:    %s\n", f.JSON)
	fmt.Fprintf(w, "Summary:   %s\n", f.Summary)
	if f.Master != "" {
		fmt.Fprintf(w, "Playlist:  %s\n", f.Master)
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
