package encoder

import (
	"testing"

	"vodbench/internal/progress"
)

func TestProgressState_UpdateFromLine(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string // processed in sequence
		durationSec float64
		wantOk      bool
		wantPercent float64
		wantSpeed   string
	}{
		{
			name: "mid segment",
			lines: []string{
				"out_time_us=3000000",
				"speed=1.5x",
				"progress=continue",
			},
			durationSec: 6,
			wantOk:      true,
			wantPercent: 50,
			wantSpeed:   "1.5x",
		},
		{
			name:        "legacy out_time_ms key",
			lines:       []string{"out_time_ms=1500000", "progress=continue"},
			durationSec: 6,
			wantOk:      true,
			wantPercent: 25,
		},
		{
			name:        "end marker completes",
			lines:       []string{"out_time_us=5900000", "progress=end"},
			durationSec: 6,
			wantOk:      true,
			wantPercent: 100,
		},
		{
			name:        "unknown duration",
			lines:       []string{"speed=N/A", "progress=continue"},
			wantOk:      true,
			wantPercent: -1,
		},
		{
			name:        "non-progress line",
			lines:       []string{"frame=100"},
			durationSec: 6,
			wantOk:      false,
		},
		{
			name:        "overshoot capped",
			lines:       []string{"out_time_us=9000000", "progress=continue"},
			durationSec: 6,
			wantOk:      true,
			wantPercent: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &ProgressState{}
			var u progress.Update
			var ok bool
			for _, line := range tt.lines {
				u, ok = ps.UpdateFromLine(line, "1080p-h264-software", tt.durationSec)
			}

			if ok != tt.wantOk {
				t.Fatalf("UpdateFromLine() ok = %v, want %v", ok, tt.wantOk)
			}
			if !tt.wantOk {
				return
			}
			if u.JobID != "1080p-h264-software" {
				t.Errorf("JobID = %q", u.JobID)
			}
			if u.Stage != progress.StageProbing {
				t.Errorf("Stage = %v, want %v", u.Stage, progress.StageProbing)
			}
			if u.Percent != tt.wantPercent {
				t.Errorf("Percent = %v, want %v", u.Percent, tt.wantPercent)
			}
			switch {
			case tt.wantSpeed == "" && u.Speed != nil:
				t.Errorf("Speed = %q, want nil", *u.Speed)
			case tt.wantSpeed != "" && (u.Speed == nil || *u.Speed != tt.wantSpeed):
				t.Errorf("Speed = %v, want %q", u.Speed, tt.wantSpeed)
			}
		})
	}
}
