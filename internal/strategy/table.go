// Package strategy holds the per-resolution bitrate envelopes and the
// history-based narrowing of a segment's search range.
package strategy

import (
	"cmp"
	"fmt"
	"slices"

	"vodbench/internal/model"
)

// Table is an ordered set of resolution tiers. Treat it as read-only once built.
type Table []model.ResolutionStrategy

var defaultTable = Table{
	{Height: 2160, MinKbps: 8000, MaxKbps: 40000, MaxProbes: 8},
	{Height: 1440, MinKbps: 4000, MaxKbps: 20000, MaxProbes: 7},
	{Height: 1080, MinKbps: 1500, MaxKbps: 10000, MaxProbes: 6},
	{Height: 720, MinKbps: 800, MaxKbps: 6000, MaxProbes: 6},
	{Height: 480, MinKbps: 400, MaxKbps: 3000, MaxProbes: 5},
	{Height: 360, MinKbps: 200, MaxKbps: 1500, MaxProbes: 5},
}

// DefaultTable returns a copy of the built-in tiers.
func DefaultTable() Table {
	return slices.Clone(defaultTable)
}

// Sorted returns a copy ordered from the tallest tier down.
func (t Table) Sorted() Table {
	out := slices.Clone(t)
	slices.SortFunc(out, func(a, b model.ResolutionStrategy) int {
		return cmp.Compare(b.Height, a.Height)
	})
	return out
}

// GetStrategy looks height up in the built-in table.
func GetStrategy(height int) model.ResolutionStrategy {
	return defaultTable.Lookup(height)
}

// Lookup returns the tier with the largest height <= height, or the smallest tier
// when height is below all of them. An empty table yields the zero strategy.
func (t Table) Lookup(height int) model.ResolutionStrategy {
	var best, smallest model.ResolutionStrategy
	found := false
	for i, s := range t {
		if i == 0 || s.Height < smallest.Height {
			smallest = s
		}
		if s.Height <= height && (!found || s.Height > best.Height) {
			best = s
			found = true
		}
	}
	if found {
		return best
	}
	return smallest
}

// Validate checks every tier's envelope and budget.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty strategy table", model.ErrConfiguration)
	}
	seen := make(map[int]bool, len(t))
	for _, s := range t {
		switch {
		case s.Height <= 0:
			return fmt.Errorf("%w: tier height %d", model.ErrConfiguration, s.Height)
		case seen[s.Height]:
			return fmt.Errorf("%w: duplicate tier %dp", model.ErrConfiguration, s.Height)
		case s.MinKbps <= 0 || s.MinKbps > s.MaxKbps:
			return fmt.Errorf("%w: tier %dp range [%d, %d]", model.ErrConfiguration, s.Height, s.MinKbps, s.MaxKbps)
		case s.MaxProbes < 1:
			return fmt.Errorf("%w: tier %dp probe budget %d", model.ErrConfiguration, s.Height, s.MaxProbes)
		}
		seen[s.Height] = true
	}
	return nil
}
