package bench

import (
	"context"

	"vodbench/internal/encoder"
	"vodbench/internal/model"
	"vodbench/internal/source"
	"vodbench/internal/strategy"
)

// PlannedConfig is what a configuration would search before any encode runs.
type PlannedConfig struct {
	Configuration model.Configuration
	Encoder       encoder.Spec
	Strategy      model.ResolutionStrategy
	MaxProbes     int // Upper bound over all segments, bonus probe included.
}

// Plan is the dry-run view of a benchmark.
type Plan struct {
	Source   source.Info
	Segments []model.Segment
	Configs  []PlannedConfig
	Params   strategy.Params
}

// Plan probes and segments the source and resolves every configuration
// without encoding anything. The preprocess hook is not run.
func (s *Service) Plan(ctx context.Context) (Plan, error) {
	if err := s.Validate(); err != nil {
		return Plan{}, err
	}
	info, segs, err := s.prepare(ctx, s.opts.Input, s.cacheSource(s.opts.Input))
	if err != nil {
		return Plan{}, err
	}

	p := s.Params()
	pl := Plan{Source: info, Segments: segs, Params: p}
	for _, cfg := range s.opts.Configurations() {
		spec, err := encoder.Resolve(cfg.Variant)
		if err != nil {
			return Plan{}, err
		}
		st := s.table.Lookup(cfg.Height)
		perSeg := st.MaxProbes
		switch {
		case s.mode() == model.SearchLinear:
			perSeg = len(s.opts.LinearBitrates)
		case p.ReserveBonusProbe:
			perSeg++
		}
		pl.Configs = append(pl.Configs, PlannedConfig{
			Configuration: cfg,
			Encoder:       spec,
			Strategy:      st,
			MaxProbes:     perSeg * len(segs),
		})
	}
	return pl, nil
}
