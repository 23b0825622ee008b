package strategy

import (
	"fmt"
	"math"

	"vodbench/internal/model"
	"vodbench/internal/util/bitrate"
)

// Params are the tunable constants of range adjustment and the bitrate search.
type Params struct {
	BandWidth    float64 // Acceptance band is [target, target+BandWidth].
	NarrowGap    float64 // |target - previous quality| below this narrows around the previous bitrate.
	NarrowSpread float64 // Narrow range is previous × (1 ± NarrowSpread).
	UpShift      float64 // Multiplier on the upper bound when the previous segment fell short.
	DownShift    float64 // Multiplier on the lower bound when the previous segment overshot.

	MinRangeKbps float64 // Search stops once max-min is no wider than this.
	ConvergeKbps float64 // Search stops once the next candidate moves less than this.
	BonusFactor  float64 // Bonus probe lands at BonusFactor × max, capped to the range.

	// ReserveBonusProbe lets the bonus probe run even after the budget is
	// spent, so a search that never reached target always gets one more try.
	ReserveBonusProbe bool
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		BandWidth:    0.5,
		NarrowGap:    3,
		NarrowSpread: 0.3,
		UpShift:      1.5,
		DownShift:    0.7,
		MinRangeKbps: 200,
		ConvergeKbps: 100,
		BonusFactor:  1.5,
	}
}

// Validate rejects values that would stall or invert the search.
func (p Params) Validate() error {
	switch {
	case p.BandWidth < 0:
		return fmt.Errorf("%w: band width %.3f", model.ErrConfiguration, p.BandWidth)
	case p.NarrowGap < 0:
		return fmt.Errorf("%w: narrow gap %.3f", model.ErrConfiguration, p.NarrowGap)
	case p.NarrowSpread < 0 || p.NarrowSpread >= 1:
		return fmt.Errorf("%w: narrow spread %.3f not in [0, 1)", model.ErrConfiguration, p.NarrowSpread)
	case p.UpShift <= 0 || p.DownShift <= 0 || p.BonusFactor <= 0:
		return fmt.Errorf("%w: shift factors must be positive", model.ErrConfiguration)
	case p.MinRangeKbps < 0 || p.ConvergeKbps < 0:
		return fmt.Errorf("%w: negative convergence threshold", model.ErrConfiguration)
	}
	return nil
}

// AdjustRange narrows base's interval using the previous segment's decision.
// With no previous decision the base interval is returned. The result always
// lies within [base.MinKbps, base.MaxKbps].
func AdjustRange(base model.ResolutionStrategy, prev *model.SegmentDecision, target float64, p Params) model.Range {
	lo, hi := float64(base.MinKbps), float64(base.MaxKbps)
	if prev == nil || prev.ChosenBitrateKbps <= 0 {
		return model.Range{Min: lo, Max: hi}
	}

	pb := float64(prev.ChosenBitrateKbps)
	gap := target - prev.EstimatedQuality

	var r model.Range
	switch {
	case math.Abs(gap) < p.NarrowGap:
		r = model.Range{Min: pb * (1 - p.NarrowSpread), Max: pb * (1 + p.NarrowSpread)}
	case gap > 0:
		r = model.Range{Min: math.Max(lo, pb), Max: math.Min(hi, pb*(1+gap/100)*p.UpShift)}
	default:
		r = model.Range{Min: math.Max(lo, pb*(1+gap/100)*p.DownShift), Max: pb}
	}

	r.Min = bitrate.ClampFloat(r.Min, lo, hi)
	r.Max = bitrate.ClampFloat(r.Max, lo, hi)
	if r.Min > r.Max {
		r.Min = r.Max
	}
	return r
}
