package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"vodbench/internal/model"
	"vodbench/internal/progress"
	"vodbench/internal/search"
	"vodbench/internal/util"
	"vodbench/internal/util/media"
)

// FFmpeg implements search.Collaborator with ffmpeg subprocesses.
type FFmpeg struct {
	Path     string
	Runner   util.CmdRunner
	Logger   hclog.Logger
	Reporter progress.Reporter
	JobID    string
}

var _ search.Collaborator = (*FFmpeg)(nil)

func (f *FFmpeg) runner() util.CmdRunner {
	if f.Runner == nil {
		return util.NewDefaultRunner()
	}
	return f.Runner
}

// EncodeReference writes the near-lossless reference of the job's segment.
// An existing reference in the workspace is reused.
func (f *FFmpeg) EncodeReference(ctx context.Context, job search.Job) (search.Handle, error) {
	if err := f.check(job); err != nil {
		return search.Handle{}, err
	}
	out := filepath.Join(job.WorkDir, media.ReferenceBasename(job.Segment, job.Height))
	if fi, err := os.Stat(out); err == nil && fi.Size() > 0 {
		return search.Handle{Path: out}, nil
	}

	_, err := f.runner().Run(ctx, util.CmdSpec{
		Path:   f.Path,
		Args:   BuildReferenceArgs(job.Input, job.Segment, job.Height, out),
		Logger: f.Logger,
	})
	if err != nil {
		_ = util.RemoveIfExists(out)
		return search.Handle{}, fmt.Errorf("reference encode of segment %d: %w", job.Segment.Index, err)
	}
	return search.Handle{Path: out}, nil
}

// EncodeCandidate encodes the job's segment at kbps with the variant's encoder.
func (f *FFmpeg) EncodeCandidate(ctx context.Context, job search.Job, kbps int) (search.Handle, error) {
	if err := f.check(job); err != nil {
		return search.Handle{}, err
	}
	spec, err := Resolve(job.Variant)
	if err != nil {
		return search.Handle{}, err
	}
	cfg := model.Configuration{Height: job.Height, Variant: job.Variant}
	out := filepath.Join(job.WorkDir, media.CandidateBasename(job.Segment, cfg, kbps))

	var ps ProgressState
	seg := job.Segment.Index
	_, err = f.runner().Run(ctx, util.CmdSpec{
		Path:   f.Path,
		Args:   BuildCandidateArgs(job.Input, job.Segment, job.Height, spec, kbps, out, f.Reporter != nil),
		Logger: f.Logger,
		StdoutLine: func(line string) {
			if f.Reporter == nil {
				return
			}
			if u, ok := ps.UpdateFromLine(line, f.JobID, job.Segment.Duration); ok {
				u.Segment = &seg
				u.Kbps = &kbps
				u.Message = fmt.Sprintf("seg %d: encoding %d kbps", seg, kbps)
				f.Reporter.Update(u)
			}
		},
	})
	if err != nil {
		_ = util.RemoveIfExists(out)
		return search.Handle{}, fmt.Errorf("%s encode of segment %d at %d kbps: %w", spec.Encoder, seg, kbps, err)
	}
	return search.Handle{Path: out, BitrateKbps: kbps}, nil
}

// ScoreQuality runs libvmaf on candidate against reference. The candidate
// file is removed afterwards; only its score is kept.
func (f *FFmpeg) ScoreQuality(ctx context.Context, candidate, reference search.Handle) (float64, error) {
	if f.Path == "" {
		return 0, fmt.Errorf("%w: ffmpeg path is required", model.ErrConfiguration)
	}
	defer func() { _ = util.RemoveIfExists(candidate.Path) }()

	res, err := f.runner().Run(ctx, util.CmdSpec{
		Path:   f.Path,
		Args:   BuildScoreArgs(candidate.Path, reference.Path),
		Logger: f.Logger,
	})
	if err != nil {
		return 0, fmt.Errorf("libvmaf on %s: %w", filepath.Base(candidate.Path), err)
	}
	score, err := ParseVMAF(string(res.Stderr))
	if err != nil {
		return 0, fmt.Errorf("libvmaf on %s: %w", filepath.Base(candidate.Path), err)
	}
	if f.Logger != nil {
		f.Logger.Trace("vmaf", "candidate", filepath.Base(candidate.Path), "score", score)
	}
	return score, nil
}

func (f *FFmpeg) check(job search.Job) error {
	switch {
	case f.Path == "":
		return fmt.Errorf("%w: ffmpeg path is required", model.ErrConfiguration)
	case job.Input == "":
		return fmt.Errorf("%w: input path is required", model.ErrConfiguration)
	case job.WorkDir == "":
		return fmt.Errorf("%w: work dir is required", model.ErrConfiguration)
	}
	return nil
}
