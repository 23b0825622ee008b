// Package bench runs the bitrate decision engine across every configuration of a benchmark.
package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"vodbench/internal/encoder"
	"vodbench/internal/model"
	"vodbench/internal/progress"
	"vodbench/internal/report"
	"vodbench/internal/scene"
	"vodbench/internal/search"
	"vodbench/internal/source"
	"vodbench/internal/strategy"
	"vodbench/internal/util"
)

// CollaboratorFunc builds the encode/score collaborator of one configuration.
type CollaboratorFunc func(cfg model.Configuration, log hclog.Logger) search.Collaborator

// Service orchestrates probe → segment → decide → report.
type Service struct {
	ffmpegPath  string
	ffprobePath string
	opts        model.BenchOptions
	runner      util.CmdRunner
	reporter    progress.Reporter
	logger      hclog.Logger
	cache       *scene.Cache
	collab      CollaboratorFunc
	table       strategy.Table
	params      *strategy.Params
	tempBase    string
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) {
		s.ffprobePath = p
	}
}

// WithOptions sets the benchmark options.
func WithOptions(o model.BenchOptions) Option {
	return func(s *Service) {
		s.opts = o
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter (used by TUI). It must be safe for concurrent use.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithLogger sets the root logger; each configuration logs through a named sub-logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithSceneCache shares a segmentation cache across runs.
func WithSceneCache(c *scene.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCollaborator replaces the ffmpeg collaborator.
func WithCollaborator(f CollaboratorFunc) Option {
	return func(s *Service) {
		s.collab = f
	}
}

// WithTable replaces the built-in resolution tiers.
func WithTable(t strategy.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithParams replaces the search tuning derived from the options.
func WithParams(p strategy.Params) Option {
	return func(s *Service) {
		s.params = &p
	}
}

// WithTempBase sets the directory scratch workspaces are created under.
func WithTempBase(dir string) Option {
	return func(s *Service) {
		s.tempBase = dir
	}
}

// NewService constructs a Service with the provided options and fills in defaults.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	s.reporter = progress.OrNop(s.reporter)
	if s.cache == nil {
		s.cache = scene.NewCache("")
	}
	if len(s.table) == 0 {
		s.table = strategy.DefaultTable()
	}
	if s.collab == nil {
		s.collab = s.ffmpegCollaborator
	}
	return s
}

// Params returns the search tuning in effect: defaults overlaid with the options.
func (s *Service) Params() strategy.Params {
	if s.params != nil {
		return *s.params
	}
	p := strategy.DefaultParams()
	if s.opts.BandWidth != nil {
		p.BandWidth = *s.opts.BandWidth
	}
	if s.opts.NarrowGap != nil {
		p.NarrowGap = *s.opts.NarrowGap
	}
	if s.opts.NarrowSpread != nil {
		p.NarrowSpread = *s.opts.NarrowSpread
	}
	p.ReserveBonusProbe = s.opts.ReserveBonusProbe
	return p
}

func (s *Service) ffmpegCollaborator(cfg model.Configuration, log hclog.Logger) search.Collaborator {
	return &encoder.FFmpeg{
		Path:     s.ffmpegPath,
		Runner:   s.runner,
		Logger:   log,
		Reporter: s.reporter,
		JobID:    cfg.ID(),
	}
}

// Validate checks options that would make every configuration fail.
func (s *Service) Validate() error {
	o := s.opts
	switch {
	case o.Input == "":
		return fmt.Errorf("%w: input is required", model.ErrConfiguration)
	case o.TargetQuality <= 0 || o.TargetQuality > 100:
		return fmt.Errorf("%w: target quality %.2f not in (0, 100]", model.ErrConfiguration, o.TargetQuality)
	case len(o.Resolutions) == 0:
		return fmt.Errorf("%w: no resolutions", model.ErrConfiguration)
	case len(o.Variants) == 0:
		return fmt.Errorf("%w: no variants", model.ErrConfiguration)
	case o.Mode == model.SearchLinear && len(o.LinearBitrates) == 0:
		return fmt.Errorf("%w: linear search needs candidate bitrates", model.ErrConfiguration)
	}
	for _, h := range o.Resolutions {
		if h <= 0 {
			return fmt.Errorf("%w: resolution %d", model.ErrConfiguration, h)
		}
	}
	for _, v := range o.Variants {
		if _, err := encoder.Resolve(v); err != nil {
			return err
		}
	}
	if err := s.table.Validate(); err != nil {
		return err
	}
	return s.Params().Validate()
}

// Result is the outcome of Run.
type Result struct {
	Report report.Report
	Files  report.Files // Empty when OutDir is unset.
}

// Run executes the whole benchmark. Failures of single configurations are
// recorded in the report and do not fail Run; only setup errors do.
// It never prints; when a Reporter is present, it emits progress and a Result per configuration.
func (s *Service) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	work, err := util.MakeTempWorkdir(s.tempBase, "source")
	if err != nil {
		return Result{}, fmt.Errorf("create workspace: %w", err)
	}
	defer s.cleanup(work)

	input, err := s.preprocess(ctx, s.opts.Input, work)
	if err != nil {
		return Result{}, err
	}

	info, segs, err := s.prepare(ctx, input, s.cacheSource(input))
	if err != nil {
		return Result{}, err
	}

	rep := report.Report{
		Source:        info,
		TargetQuality: s.opts.TargetQuality,
		Mode:          s.mode(),
		Segments:      segs,
		GeneratedAt:   start.UTC(),
	}
	rep.Results = s.runConfigurations(ctx, input, segs)
	rep.Elapsed = time.Since(start)

	res := Result{Report: rep}
	if s.opts.OutDir != "" {
		files, err := report.WriteAll(s.opts.OutDir, rep)
		if err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
		res.Files = files
	}
	s.logger.Info("benchmark finished", "configurations", len(rep.Results), "failed", rep.Failed(), "elapsed", rep.Elapsed)
	return res, nil
}

func (s *Service) mode() model.SearchMode {
	if s.opts.Mode == "" {
		return model.SearchBinary
	}
	return s.opts.Mode
}

// cacheSource is what the segmentation of input is cached under. A preprocessed
// input lives in a fresh workspace each run, so it is keyed on the original
// file and the preprocess command instead.
func (s *Service) cacheSource(input string) segmentSource {
	if input == s.opts.Input {
		return segmentSource{path: input}
	}
	return segmentSource{path: s.opts.Input, derivation: "preprocess: " + s.opts.Preprocess}
}

type segmentSource struct {
	path       string
	derivation string
}

// prepare probes the source and segments it, through the cache unless disabled.
func (s *Service) prepare(ctx context.Context, input string, src segmentSource) (source.Info, []model.Segment, error) {
	prober := source.Prober{FFprobePath: s.ffprobePath, Runner: s.runner, Logger: s.logger}
	info, err := prober.Probe(ctx, input)
	if err != nil {
		return source.Info{}, nil, err
	}
	s.logger.Info("source probed", "path", input, "duration", info.DurationSec, "height", info.Height, "codec", info.Codec)

	segs, err := s.segments(ctx, input, src, info.DurationSec)
	if err != nil {
		return info, nil, err
	}
	if len(segs) == 0 {
		return info, nil, fmt.Errorf("%w: %s produced no segments", model.ErrConfiguration, input)
	}
	return info, segs, nil
}

// Segments detects scene cuts in input and builds segments of the configured length bounds.
func (s *Service) Segments(ctx context.Context, input string, duration float64) ([]model.Segment, error) {
	return s.segments(ctx, input, segmentSource{path: input}, duration)
}

func (s *Service) segments(ctx context.Context, input string, src segmentSource, duration float64) ([]model.Segment, error) {
	build := func() ([]model.Segment, error) {
		det := scene.Detector{
			FFmpegPath: s.ffmpegPath,
			Runner:     s.runner,
			Threshold:  s.opts.SceneThreshold,
			Logger:     s.logger,
		}
		cuts, err := det.Detect(ctx, input)
		if err != nil {
			return nil, err
		}
		return scene.BuildSegments(cuts, duration, s.opts.MinSegmentSec, s.opts.MaxSegmentSec)
	}
	if s.opts.NoCache {
		return build()
	}

	key, err := scene.KeyFor(src.path, s.opts.MinSegmentSec, s.opts.MaxSegmentSec, s.opts.SceneThreshold)
	if err != nil {
		return nil, err
	}
	key.Derivation = src.derivation
	segs, hit, err := s.cache.GetOrBuild(key, build)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("segments ready", "count", len(segs), "cache_hit", hit)
	return segs, nil
}

// runConfigurations runs every configuration concurrently, bounded by Jobs.
// Results keep the order of BenchOptions.Configurations.
func (s *Service) runConfigurations(ctx context.Context, input string, segs []model.Segment) []model.ConfigResult {
	cfgs := s.opts.Configurations()
	results := make([]model.ConfigResult, len(cfgs))

	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			results[i] = s.runConfiguration(ctx, input, cfg, segs)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// runConfiguration folds Decide over segs for one configuration in its own workspace.
func (s *Service) runConfiguration(ctx context.Context, input string, cfg model.Configuration, segs []model.Segment) model.ConfigResult {
	start := time.Now()
	id := cfg.ID()
	log := s.logger.Named(id)
	res := model.ConfigResult{Configuration: cfg}

	if s.opts.ConfigTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ConfigTimeout)
		defer cancel()
	}

	fail := func(err error) model.ConfigResult {
		res.Err = err
		res.Elapsed = time.Since(start)
		log.Error("configuration failed", "error", err, "decided", len(res.Decisions))
		s.reporter.Update(progress.Update{JobID: id, Stage: progress.StageError, Percent: -1, Message: err.Error()})
		s.reporter.Result(progress.Result{JobID: id, Segments: len(res.Decisions), Elapsed: res.Elapsed, Err: err})
		return res
	}

	work, err := util.MakeTempWorkdir(s.tempBase, id)
	if err != nil {
		return fail(fmt.Errorf("create workspace: %w", err))
	}
	defer s.cleanup(work)

	engine := &search.Engine{
		Input:    input,
		Variant:  cfg.Variant,
		WorkDir:  work,
		Collab:   s.collab(cfg, log),
		Table:    s.table,
		Params:   s.Params(),
		Logger:   log,
		Reporter: s.reporter,
		JobID:    id,
	}

	s.reporter.Update(progress.Update{JobID: id, Stage: progress.StageSegmenting, Percent: 0,
		Message: fmt.Sprintf("%d segments", len(segs))})
	log.Info("configuration started", "segments", len(segs), "workdir", work)

	total := len(segs)
	acc, err := Fold(segs, chain{}, func(c chain, seg model.Segment) (chain, error) {
		d, err := s.decide(ctx, engine, cfg, seg, c.prev)
		if err != nil {
			return c, fmt.Errorf("segment %d: %w", seg.Index, err)
		}
		log.Debug("segment decided", "segment", seg.Index, "kbps", d.ChosenBitrateKbps, "score", d.EstimatedQuality, "probes", d.ProbesUsed)
		c = c.push(d)
		done := len(c.decisions)
		s.reporter.Update(progress.Update{
			JobID:   id,
			Stage:   progress.StageDeciding,
			Percent: float64(done) / float64(total) * 100,
			Message: fmt.Sprintf("%d/%d segments", done, total),
		})
		return c, nil
	})
	res.Decisions = acc.decisions
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("configuration timed out after %s: %w", s.opts.ConfigTimeout, err)
		}
		return fail(err)
	}

	res.Elapsed = time.Since(start)
	mean := report.MeanKbps(res)
	log.Info("configuration finished", "mean_kbps", mean, "under_target", res.UnderTarget(), "probes", res.Probes(), "elapsed", res.Elapsed)
	s.reporter.Update(progress.Update{JobID: id, Stage: progress.StageCompleted, Percent: 100,
		Message: fmt.Sprintf("mean %d kbps, %d under target", mean, res.UnderTarget())})
	s.reporter.Result(progress.Result{JobID: id, Segments: len(res.Decisions), MeanKbps: mean,
		UnderTarget: res.UnderTarget(), Elapsed: res.Elapsed})
	return res
}

func (s *Service) decide(ctx context.Context, e *search.Engine, cfg model.Configuration, seg model.Segment, prev *model.SegmentDecision) (model.SegmentDecision, error) {
	if s.mode() == model.SearchLinear {
		return e.DecideLinear(ctx, seg, cfg.Height, s.opts.LinearBitrates, s.opts.TargetQuality)
	}
	return e.Decide(ctx, seg, cfg.Height, s.opts.TargetQuality, prev)
}

func (s *Service) cleanup(dir string) {
	if s.opts.KeepTemp {
		s.logger.Info("keeping workspace", "path", dir)
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("remove workspace", "path", filepath.Base(dir), "error", err)
	}
}
