package encoder

import (
	"errors"
	"testing"
)

func TestParseVMAF(t *testing.T) {
	tests := []struct {
		name    string
		stderr  string
		want    float64
		wantErr bool
	}{
		{
			name:   "libvmaf summary",
			stderr: "frame=  144 fps= 40 q=-0.0 Lsize=N/A\n[Parsed_libvmaf_2 @ 0x5581] VMAF score: 95.412318\n",
			want:   95.412318,
		},
		{
			name:   "integer score",
			stderr: "[libvmaf @ 0x1] VMAF score: 100\n",
			want:   100,
		},
		{
			name:   "last score wins",
			stderr: "VMAF score: 80.0\nVMAF score: 93.25\n",
			want:   93.25,
		},
		{
			name:    "missing",
			stderr:  "Error initializing filter 'libvmaf'\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVMAF(tt.stderr)
			if tt.wantErr {
				if !errors.Is(err, ErrNoScore) {
					t.Errorf("ParseVMAF() error = %v, want ErrNoScore", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVMAF() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseVMAF() = %v, want %v", got, tt.want)
			}
		})
	}
}
