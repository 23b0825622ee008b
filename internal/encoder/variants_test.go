package encoder

import (
	"errors"
	"testing"

	"vodbench/internal/model"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		variant string
		want    string
		hw      bool
		wantErr bool
	}{
		{variant: "h264", want: "libx264"},
		{variant: "h264:nvenc", want: "h264_nvenc", hw: true},
		{variant: "h264:qsv", want: "h264_qsv", hw: true},
		{variant: "hevc:software", want: "libx265"},
		{variant: "hevc:nvenc", want: "hevc_nvenc", hw: true},
		{variant: "hevc:qsv", want: "hevc_qsv", hw: true},
		{variant: "av1", want: "libsvtav1"},
		{variant: "av1:aom", want: "libaom-av1"},
		{variant: "av1:nvenc", want: "av1_nvenc", hw: true},
		{variant: "av1:qsv", wantErr: true},
		{variant: "h264:aom", wantErr: true},
		{variant: "vp9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			v, err := model.ParseVariant(tt.variant)
			if err != nil {
				t.Fatalf("ParseVariant(%q) error = %v", tt.variant, err)
			}
			spec, err := Resolve(v)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedVariant) || !errors.Is(err, model.ErrConfiguration) {
					t.Errorf("Resolve(%s) error = %v, want ErrUnsupportedVariant", v, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%s) error = %v", v, err)
			}
			if spec.Encoder != tt.want || spec.Hardware != tt.hw {
				t.Errorf("Resolve(%s) = %+v, want encoder %s hw=%v", v, spec, tt.want, tt.hw)
			}
		})
	}
}

func TestResolve_ArgsNotShared(t *testing.T) {
	v := model.Variant{Codec: model.CodecH264, Implementation: model.ImplSoftware}
	a, _ := Resolve(v)
	a.Args[1] = "placebo"
	b, _ := Resolve(v)
	if b.Args[1] != "medium" {
		t.Errorf("Resolve returned shared Args slice: %v", b.Args)
	}
}

func TestSupported(t *testing.T) {
	all := Supported()
	if len(all) != 9 {
		t.Fatalf("Supported() = %d variants, want 9", len(all))
	}
	if all[0].Codec != model.CodecAV1 {
		t.Errorf("first = %s, want av1 first in codec order", all[0])
	}
	for _, v := range all {
		if _, err := Resolve(v); err != nil {
			t.Errorf("Supported variant %s does not resolve: %v", v, err)
		}
	}
}
