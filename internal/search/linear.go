package search

import (
	"context"
	"fmt"
	"slices"

	"vodbench/internal/model"
)

// DecideLinear probes every candidate bitrate in ascending order and picks
// the lowest one scoring at least target, or the highest candidate when none
// does. It ignores the tier table and the previous decision.
func (e *Engine) DecideLinear(ctx context.Context, seg model.Segment, height int, candidates []int, target float64) (model.SegmentDecision, error) {
	if e.Collab == nil {
		return model.SegmentDecision{}, fmt.Errorf("%w: no collaborator", model.ErrConfiguration)
	}
	cands := slices.DeleteFunc(slices.Clone(candidates), func(k int) bool { return k <= 0 })
	slices.Sort(cands)
	cands = slices.Compact(cands)
	if len(cands) == 0 {
		return model.SegmentDecision{}, fmt.Errorf("%w: empty linear candidate list", model.ErrConfiguration)
	}

	job := e.job(seg, height)
	ref, err := e.reference(ctx, job)
	if err != nil {
		return model.SegmentDecision{}, err
	}

	probes := make([]model.ProbeResult, 0, len(cands))
	for _, k := range cands {
		pr, err := e.probe(ctx, job, ref, k)
		if err != nil {
			return model.SegmentDecision{}, err
		}
		probes = append(probes, pr)
		e.logger().Debug("linear probe", "segment", seg.Index, "kbps", k, "score", pr.Score)
	}

	best := probes[len(probes)-1]
	for _, pr := range probes {
		if pr.Score >= target {
			best = pr
			break
		}
	}

	var spent float64
	for _, pr := range probes {
		spent += pr.Elapsed
	}
	return model.SegmentDecision{
		Segment:           seg,
		ChosenBitrateKbps: best.BitrateKbps,
		EstimatedQuality:  best.Score,
		ProbesUsed:        len(probes),
		ProbeTimeSeconds:  spent,
		MetTarget:         best.Score >= target,
		Range:             model.Range{Min: float64(cands[0]), Max: float64(cands[len(cands)-1])},
		Probes:            probes,
	}, nil
}
