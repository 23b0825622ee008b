package search

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"testing"

	"vodbench/internal/model"
	"vodbench/internal/progress"
	"vodbench/internal/strategy"
)

// oracle is a fake Collaborator whose score is a pure function of bitrate.
type oracle struct {
	score      func(kbps int) float64
	refs       int
	candidates []int

	refErr   error
	scoreErr error
}

func (o *oracle) EncodeReference(ctx context.Context, job Job) (Handle, error) {
	o.refs++
	if o.refErr != nil {
		return Handle{}, o.refErr
	}
	return Handle{Path: filepath.Join(job.WorkDir, "ref.mkv")}, nil
}

func (o *oracle) EncodeCandidate(ctx context.Context, job Job, kbps int) (Handle, error) {
	o.candidates = append(o.candidates, kbps)
	return Handle{Path: filepath.Join(job.WorkDir, strconv.Itoa(kbps)+".mkv"), BitrateKbps: kbps}, nil
}

func (o *oracle) ScoreQuality(ctx context.Context, cand, ref Handle) (float64, error) {
	if o.scoreErr != nil {
		return 0, o.scoreErr
	}
	return o.score(cand.BitrateKbps), nil
}

func linearOracle(kbps int) float64 {
	return math.Max(0, math.Min(100, float64(kbps)/100))
}

func cappedOracle(kbps int) float64 {
	return math.Min(90, linearOracle(kbps))
}

type recordingReporter struct {
	updates []progress.Update
}

func (r *recordingReporter) Update(u progress.Update) { r.updates = append(r.updates, u) }
func (r *recordingReporter) Log(progress.Log)         {}
func (r *recordingReporter) Result(progress.Result)   {}

var seg0 = model.Segment{Index: 0, Start: 0, Duration: 6, End: 6}

func newEngine(o *oracle) *Engine {
	return &Engine{
		Input:   "in.mp4",
		Variant: model.Variant{Codec: model.CodecH264, Implementation: model.ImplSoftware},
		WorkDir: "/tmp/work",
		Collab:  o,
	}
}

func TestDecide_Converges(t *testing.T) {
	tests := []struct {
		name       string
		height     int
		wantKbps   int
		wantProbes int
	}{
		{name: "1440p", height: 1440, wantKbps: 9500, wantProbes: 5},
		{name: "2160p", height: 2160, wantKbps: 9500, wantProbes: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &oracle{score: linearOracle}
			d, err := newEngine(o).Decide(context.Background(), seg0, tt.height, 95, nil)
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if d.ChosenBitrateKbps < 9400 || d.ChosenBitrateKbps > 9550 {
				t.Errorf("chosen = %d, want in [9400, 9550]", d.ChosenBitrateKbps)
			}
			if d.ChosenBitrateKbps != tt.wantKbps || d.ProbesUsed != tt.wantProbes {
				t.Errorf("got %d kbps in %d probes, want %d in %d", d.ChosenBitrateKbps, d.ProbesUsed, tt.wantKbps, tt.wantProbes)
			}
			if !d.MetTarget {
				t.Error("MetTarget = false, want true")
			}
			if max := strategy.GetStrategy(tt.height).MaxProbes; d.ProbesUsed > max {
				t.Errorf("probes = %d, exceeds budget %d", d.ProbesUsed, max)
			}
			if o.refs != 1 {
				t.Errorf("reference encodes = %d, want 1", o.refs)
			}
			if len(d.Probes) != d.ProbesUsed || len(o.candidates) != d.ProbesUsed {
				t.Errorf("probe bookkeeping mismatch: %d recorded, %d encoded, ProbesUsed=%d", len(d.Probes), len(o.candidates), d.ProbesUsed)
			}
		})
	}
}

func TestDecide_1080Bounds(t *testing.T) {
	o := &oracle{score: linearOracle}
	d, err := newEngine(o).Decide(context.Background(), seg0, 1080, 95, nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if d.ProbesUsed > 6 {
		t.Errorf("probes = %d, want <= 6", d.ProbesUsed)
	}
	for _, k := range o.candidates {
		if k < 1500 || k > 10000 {
			t.Errorf("candidate %d outside [1500, 10000]", k)
		}
	}
	if !d.MetTarget || d.EstimatedQuality < 95 {
		t.Errorf("decision %+v did not reach target", d)
	}
}

func TestDecide_CappedOracle(t *testing.T) {
	o := &oracle{score: cappedOracle}
	d, err := newEngine(o).Decide(context.Background(), seg0, 1080, 95, nil)
	if err != nil {
		t.Fatalf("Decide() error = %v, want best effort", err)
	}
	if d.MetTarget {
		t.Error("MetTarget = true, want false")
	}
	if d.EstimatedQuality != 90 {
		t.Errorf("EstimatedQuality = %.2f, want 90", d.EstimatedQuality)
	}
	if d.ChosenBitrateKbps != 9469 {
		t.Errorf("chosen = %d, want lowest bitrate scoring 90 (9469)", d.ChosenBitrateKbps)
	}
	if d.ProbesUsed != 6 {
		t.Errorf("probes = %d, want the full budget of 6", d.ProbesUsed)
	}
}

func TestDecide_ReserveBonusProbe(t *testing.T) {
	o := &oracle{score: cappedOracle}
	e := newEngine(o)
	e.Params = strategy.DefaultParams()
	e.Params.ReserveBonusProbe = true

	d, err := e.Decide(context.Background(), seg0, 1080, 95, nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if d.ProbesUsed != 7 {
		t.Fatalf("probes = %d, want budget+1 = 7", d.ProbesUsed)
	}
	if last := o.candidates[len(o.candidates)-1]; last != 10000 {
		t.Errorf("bonus probe at %d, want range max 10000", last)
	}
}

func TestDecide_BonusWithinBudget(t *testing.T) {
	// Nothing reaches target and the loop converges early, leaving budget for the bonus.
	o := &oracle{score: func(kbps int) float64 { return 50 }}
	e := newEngine(o)
	d, err := e.Decide(context.Background(), seg0, 360, 95, nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if d.ProbesUsed > 5 {
		t.Errorf("probes = %d, exceeds budget", d.ProbesUsed)
	}
	if last := o.candidates[len(o.candidates)-1]; last != 1500 {
		t.Errorf("last probe = %d, want bonus at range max 1500", last)
	}
	if d.ChosenBitrateKbps != o.candidates[0] {
		t.Errorf("chosen = %d, want lowest of equal scores %d", d.ChosenBitrateKbps, o.candidates[0])
	}
}

func TestDecide_StaysInAdjustedRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := strategy.DefaultParams()
	for i := 0; i < 300; i++ {
		base := strategy.DefaultTable()[rng.Intn(6)]
		prev := &model.SegmentDecision{
			ChosenBitrateKbps: base.MinKbps + rng.Intn(base.MaxKbps),
			EstimatedQuality:  70 + rng.Float64()*30,
		}
		target := 80 + rng.Float64()*18
		knee := 100 + rng.Float64()*400
		o := &oracle{score: func(kbps int) float64 { return math.Min(100, float64(kbps)/knee) }}
		e := newEngine(o)
		e.Params = p
		e.Params.ReserveBonusProbe = i%2 == 0

		d, err := e.Decide(context.Background(), seg0, base.Height, target, prev)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		want := strategy.AdjustRange(base, prev, target, p)
		if d.Range != want {
			t.Fatalf("decision range %+v, want %+v", d.Range, want)
		}
		for _, k := range o.candidates {
			if !want.Contains(float64(k)) {
				t.Fatalf("candidate %d outside adjusted range %+v (prev=%+v target=%.2f)", k, want, prev, target)
			}
		}
		if d.ProbesUsed > base.MaxProbes+1 {
			t.Fatalf("probes = %d, exceeds %d+1", d.ProbesUsed, base.MaxProbes)
		}
		if !e.Params.ReserveBonusProbe && d.ProbesUsed > base.MaxProbes {
			t.Fatalf("probes = %d, exceeds budget %d without reserve", d.ProbesUsed, base.MaxProbes)
		}
	}
}

func TestDecide_UsesPrevious(t *testing.T) {
	o := &oracle{score: linearOracle}
	prev := &model.SegmentDecision{ChosenBitrateKbps: 9500, EstimatedQuality: 95.0}
	d, err := newEngine(o).Decide(context.Background(), seg0, 1440, 95, prev)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if math.Abs(d.Range.Min-6650) > 1e-6 || math.Abs(d.Range.Max-12350) > 1e-6 {
		t.Errorf("range = %+v, want narrowed around 9500", d.Range)
	}
	if o.candidates[0] != 9500 {
		t.Errorf("first candidate = %d, want 9500", o.candidates[0])
	}
	if d.ProbesUsed != 1 {
		t.Errorf("probes = %d, want 1", d.ProbesUsed)
	}
}

func TestDecide_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		o      *oracle
		wantOp string
	}{
		{name: "reference", o: &oracle{score: linearOracle, refErr: boom}, wantOp: "reference"},
		{name: "score", o: &oracle{score: linearOracle, scoreErr: boom}, wantOp: "score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine(tt.o).Decide(context.Background(), seg0, 720, 95, nil)
			var oe *model.OperationError
			if !errors.As(err, &oe) {
				t.Fatalf("error = %v, want *OperationError", err)
			}
			if oe.Op != tt.wantOp || !errors.Is(err, boom) {
				t.Errorf("error = %v, want op %q wrapping boom", err, tt.wantOp)
			}
		})
	}

	t.Run("no collaborator", func(t *testing.T) {
		_, err := (&Engine{}).Decide(context.Background(), seg0, 720, 95, nil)
		if !errors.Is(err, model.ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newEngine(&oracle{score: linearOracle}).Decide(ctx, seg0, 720, 95, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestDecide_ReportsProgress(t *testing.T) {
	rep := &recordingReporter{}
	e := newEngine(&oracle{score: linearOracle})
	e.Reporter = rep
	e.JobID = "1440p-h264-software"
	if _, err := e.Decide(context.Background(), seg0, 1440, 95, nil); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if len(rep.updates) == 0 {
		t.Fatal("no updates reported")
	}
	if rep.updates[0].Stage != progress.StageReference {
		t.Errorf("first stage = %s, want reference", rep.updates[0].Stage)
	}
	last := rep.updates[len(rep.updates)-1]
	if last.Stage != progress.StageDeciding || last.Kbps == nil || *last.Kbps != 9500 {
		t.Errorf("last update = %+v, want deciding at 9500", last)
	}
	for _, u := range rep.updates {
		if u.JobID != e.JobID {
			t.Fatalf("update JobID = %q, want %q", u.JobID, e.JobID)
		}
	}
}
