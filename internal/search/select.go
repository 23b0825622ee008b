package search

import (
	"vodbench/internal/model"
	"vodbench/internal/strategy"
)

// Select picks the decision among probes: the lowest bitrate inside the
// acceptance band, else the lowest bitrate at or above target, else the
// highest score with ties going to the lower bitrate. ok is false when
// probes is empty.
func Select(probes []model.ProbeResult, target float64, p strategy.Params) (best model.ProbeResult, ok bool) {
	if len(probes) == 0 {
		return model.ProbeResult{}, false
	}
	upper := target + p.BandWidth

	if r, found := lowest(probes, func(pr model.ProbeResult) bool {
		return pr.Score >= target && pr.Score <= upper
	}); found {
		return r, true
	}
	if r, found := lowest(probes, func(pr model.ProbeResult) bool {
		return pr.Score >= target
	}); found {
		return r, true
	}

	best = probes[0]
	for _, pr := range probes[1:] {
		if pr.Score > best.Score || (pr.Score == best.Score && pr.BitrateKbps < best.BitrateKbps) {
			best = pr
		}
	}
	return best, true
}

func lowest(probes []model.ProbeResult, keep func(model.ProbeResult) bool) (model.ProbeResult, bool) {
	var out model.ProbeResult
	found := false
	for _, pr := range probes {
		if !keep(pr) {
			continue
		}
		if !found || pr.BitrateKbps < out.BitrateKbps {
			out = pr
			found = true
		}
	}
	return out, found
}
