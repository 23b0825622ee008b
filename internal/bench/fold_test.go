package bench

import (
	"errors"
	"testing"

	"vodbench/internal/model"
)

func TestFold(t *testing.T) {
	sum, err := Fold([]int{1, 2, 3}, 0, func(acc, v int) (int, error) { return acc + v, nil })
	if err != nil || sum != 6 {
		t.Errorf("Fold() = %d, %v; want 6, nil", sum, err)
	}

	boom := errors.New("boom")
	partial, err := Fold([]int{1, 2, 3, 4}, 0, func(acc, v int) (int, error) {
		if v == 3 {
			return acc + 100, boom
		}
		return acc + v, nil
	})
	if !errors.Is(err, boom) || partial != 3 {
		t.Errorf("Fold() = %d, %v; want 3, boom", partial, err)
	}

	empty, err := Fold(nil, "seed", func(acc string, v int) (string, error) { return "changed", nil })
	if err != nil || empty != "seed" {
		t.Errorf("Fold(empty) = %q, %v", empty, err)
	}
}

func TestChain_Push(t *testing.T) {
	var c chain
	if c.prev != nil {
		t.Fatal("zero chain has a previous decision")
	}
	c = c.push(model.SegmentDecision{ChosenBitrateKbps: 1000})
	c = c.push(model.SegmentDecision{ChosenBitrateKbps: 2000})
	if c.prev == nil || c.prev.ChosenBitrateKbps != 2000 {
		t.Errorf("prev = %+v, want last decision", c.prev)
	}
	if len(c.decisions) != 2 || c.decisions[0].ChosenBitrateKbps != 1000 {
		t.Errorf("decisions = %+v", c.decisions)
	}
	// The previous pointer is detached from the slice.
	c.prev.ChosenBitrateKbps = 1
	if c.decisions[1].ChosenBitrateKbps != 2000 {
		t.Error("prev aliases the decisions slice")
	}
}
