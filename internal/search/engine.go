package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"

	"vodbench/internal/model"
	"vodbench/internal/progress"
	"vodbench/internal/strategy"
	"vodbench/internal/util/bitrate"
)

// Engine runs the per-segment bitrate search for one configuration.
// Decide is sequential; one Engine must not be used by concurrent callers
// that share a WorkDir.
type Engine struct {
	Input   string
	Variant model.Variant
	WorkDir string
	Collab  Collaborator

	Table  strategy.Table  // Defaults to strategy.DefaultTable().
	Params strategy.Params // Zero value means strategy.DefaultParams().

	Logger   hclog.Logger
	Reporter progress.Reporter
	JobID    string
}

func (e *Engine) table() strategy.Table {
	if len(e.Table) == 0 {
		return strategy.DefaultTable()
	}
	return e.Table
}

func (e *Engine) params() strategy.Params {
	if e.Params == (strategy.Params{}) {
		return strategy.DefaultParams()
	}
	return e.Params
}

func (e *Engine) logger() hclog.Logger {
	if e.Logger == nil {
		return hclog.NewNullLogger()
	}
	return e.Logger
}

func (e *Engine) job(seg model.Segment, height int) Job {
	return Job{Input: e.Input, Segment: seg, Height: height, Variant: e.Variant, WorkDir: e.WorkDir}
}

// Decide searches the adjusted range of the height's tier for the lowest
// bitrate whose score lands in [target, target+BandWidth]. prev is the
// decision of the preceding segment of the same configuration, or nil.
// Running out of probes is not an error; the decision then carries
// MetTarget=false and the best effort found.
func (e *Engine) Decide(ctx context.Context, seg model.Segment, height int, target float64, prev *model.SegmentDecision) (model.SegmentDecision, error) {
	if e.Collab == nil {
		return model.SegmentDecision{}, fmt.Errorf("%w: no collaborator", model.ErrConfiguration)
	}
	p := e.params()
	base := e.table().Lookup(height)
	if base.MaxProbes < 1 {
		return model.SegmentDecision{}, fmt.Errorf("%w: tier %dp has no probe budget", model.ErrConfiguration, base.Height)
	}

	adjusted := strategy.AdjustRange(base, prev, target, p)
	log := e.logger().With("segment", seg.Index, "height", height)
	log.Debug("search range", "min", adjusted.Min, "max", adjusted.Max, "tier", base.Height)

	job := e.job(seg, height)
	ref, err := e.reference(ctx, job)
	if err != nil {
		return model.SegmentDecision{}, err
	}

	upper := target + p.BandWidth
	lo, hi := adjusted.Min, adjusted.Max
	var probes []model.ProbeResult

	cand := candidateIn((lo+hi)/2, adjusted)
	for len(probes) < base.MaxProbes && hi-lo > p.MinRangeKbps {
		pr, err := e.probe(ctx, job, ref, cand)
		if err != nil {
			return model.SegmentDecision{}, err
		}
		probes = append(probes, pr)
		log.Debug("probe", "kbps", cand, "score", pr.Score, "lo", lo, "hi", hi)

		if pr.Score >= target && pr.Score <= upper {
			break
		}
		if pr.Score > upper {
			hi = float64(cand)
		} else {
			lo = float64(cand)
		}
		next := candidateIn((lo+hi)/2, adjusted)
		if math.Abs(float64(next-cand)) < p.ConvergeKbps {
			break
		}
		cand = next
	}

	if !reached(probes, target) && (len(probes) < base.MaxProbes || p.ReserveBonusProbe) {
		bonus := candidateIn(math.Min(adjusted.Max, math.Round(p.BonusFactor*hi)), adjusted)
		if !probed(probes, bonus) {
			pr, err := e.probe(ctx, job, ref, bonus)
			if err != nil {
				return model.SegmentDecision{}, err
			}
			probes = append(probes, pr)
			log.Debug("bonus probe", "kbps", bonus, "score", pr.Score)
		}
	}

	d, err := e.decision(seg, adjusted, probes, target, p)
	if err != nil {
		return d, err
	}
	log.Debug("decided", "kbps", d.ChosenBitrateKbps, "score", d.EstimatedQuality, "probes", d.ProbesUsed, "met", d.MetTarget)
	return d, nil
}

func (e *Engine) decision(seg model.Segment, r model.Range, probes []model.ProbeResult, target float64, p strategy.Params) (model.SegmentDecision, error) {
	best, ok := Select(probes, target, p)
	if !ok {
		return model.SegmentDecision{}, fmt.Errorf("%w: segment %d: no probe could be issued in [%.0f, %.0f]",
			model.ErrConfiguration, seg.Index, r.Min, r.Max)
	}
	var spent float64
	for _, pr := range probes {
		spent += pr.Elapsed
	}
	e.emit(progress.Update{
		Stage:   progress.StageDeciding,
		Percent: -1,
		Segment: &seg.Index,
		Kbps:    &best.BitrateKbps,
		Score:   &best.Score,
		Message: fmt.Sprintf("seg %d: %d kbps q=%.2f", seg.Index, best.BitrateKbps, best.Score),
	})
	return model.SegmentDecision{
		Segment:           seg,
		ChosenBitrateKbps: best.BitrateKbps,
		EstimatedQuality:  best.Score,
		ProbesUsed:        len(probes),
		ProbeTimeSeconds:  spent,
		MetTarget:         best.Score >= target,
		Range:             r,
		Probes:            probes,
	}, nil
}

func (e *Engine) reference(ctx context.Context, job Job) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	e.emit(progress.Update{
		Stage:   progress.StageReference,
		Percent: -1,
		Segment: &job.Segment.Index,
		Message: fmt.Sprintf("seg %d: reference", job.Segment.Index),
	})
	ref, err := e.Collab.EncodeReference(ctx, job)
	if err != nil {
		return Handle{}, opError("reference", err)
	}
	return ref, nil
}

// probe encodes the segment at kbps and scores it against ref.
func (e *Engine) probe(ctx context.Context, job Job, ref Handle, kbps int) (model.ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ProbeResult{}, err
	}
	e.emit(progress.Update{
		Stage:   progress.StageProbing,
		Percent: -1,
		Segment: &job.Segment.Index,
		Kbps:    &kbps,
		Message: fmt.Sprintf("seg %d: probing %d kbps", job.Segment.Index, kbps),
	})

	start := time.Now()
	cand, err := e.Collab.EncodeCandidate(ctx, job, kbps)
	if err != nil {
		return model.ProbeResult{}, opError("candidate", err)
	}
	score, err := e.Collab.ScoreQuality(ctx, cand, ref)
	if err != nil {
		return model.ProbeResult{}, opError("score", err)
	}
	return model.ProbeResult{
		BitrateKbps: kbps,
		Score:       score,
		Elapsed:     time.Since(start).Seconds(),
	}, nil
}

func (e *Engine) emit(u progress.Update) {
	if e.Reporter == nil {
		return
	}
	u.JobID = e.JobID
	e.Reporter.Update(u)
}

// candidateIn rounds v to whole kbps and keeps it inside r.
func candidateIn(v float64, r model.Range) int {
	lo, hi := int(math.Ceil(r.Min)), int(math.Floor(r.Max))
	if lo > hi {
		return bitrate.RoundKbps(r.Max)
	}
	return bitrate.Clamp(bitrate.RoundKbps(v), lo, hi)
}

func reached(probes []model.ProbeResult, target float64) bool {
	for _, pr := range probes {
		if pr.Score >= target {
			return true
		}
	}
	return false
}

func probed(probes []model.ProbeResult, kbps int) bool {
	for _, pr := range probes {
		if pr.BitrateKbps == kbps {
			return true
		}
	}
	return false
}
