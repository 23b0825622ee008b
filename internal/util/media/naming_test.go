package media

import (
	"testing"

	"vodbench/internal/model"
)

func TestSourceStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/data/Big Buck Bunny.mp4", want: "Big_Buck_Bunny"},
		{in: "clip.final.mov", want: "clip.final"},
		{in: "noext", want: "noext"},
	}
	for _, tt := range tests {
		if got := SourceStem(tt.in); got != tt.want {
			t.Errorf("SourceStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCandidateBasename(t *testing.T) {
	seg := model.Segment{Index: 3, Start: 12.5, Duration: 5.8, End: 18.3}
	cfg := model.Configuration{Height: 1080, Variant: model.Variant{Codec: model.CodecHEVC, Implementation: model.ImplNVENC}}
	got := CandidateBasename(seg, cfg, 4500)
	want := "seg_0003_1080p_hevc_nvenc_4500k.mkv"
	if got != want {
		t.Errorf("CandidateBasename() = %q, want %q", got, want)
	}
	if ref := ReferenceBasename(seg, 720); ref != "ref_0003_720p.mkv" {
		t.Errorf("ReferenceBasename() = %q", ref)
	}
	if pl := PlaylistBasename(cfg); pl != "1080p-hevc-nvenc.m3u8" {
		t.Errorf("PlaylistBasename() = %q", pl)
	}
}
