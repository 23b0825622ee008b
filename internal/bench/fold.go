package bench

import "vodbench/internal/model"

// Fold threads acc through items in order. It stops at the first error and
// returns the accumulator as it stood before the failing item.
func Fold[T, A any](items []T, acc A, step func(A, T) (A, error)) (A, error) {
	for _, it := range items {
		next, err := step(acc, it)
		if err != nil {
			return acc, err
		}
		acc = next
	}
	return acc, nil
}

// chain carries the previous segment's decision into the next.
type chain struct {
	prev      *model.SegmentDecision
	decisions []model.SegmentDecision
}

func (c chain) push(d model.SegmentDecision) chain {
	c.decisions = append(c.decisions, d)
	c.prev = &d
	return c
}
