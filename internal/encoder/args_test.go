package encoder

import (
	"strings"
	"testing"

	"vodbench/internal/model"
)

var seg3 = model.Segment{Index: 3, Start: 12.5, Duration: 5.8, End: 18.3}

func TestBuildReferenceArgs(t *testing.T) {
	args := BuildReferenceArgs("/in/src.mp4", seg3, 1080, "/w/ref.mkv")
	argsStr := strings.Join(args, " ")
	for _, want := range []string{
		"-ss 12.500", "-t 5.800", "-i /in/src.mp4",
		"-an", "-vf scale=-2:1080",
		"-c:v libx264", "-preset veryfast", "-qp 0",
	} {
		if !strings.Contains(argsStr, want) {
			t.Errorf("BuildReferenceArgs() missing %q, got: %v", want, args)
		}
	}
	if args[len(args)-1] != "/w/ref.mkv" {
		t.Errorf("last arg = %v, want output path", args[len(args)-1])
	}
	// Seeking before -i keeps the seek fast.
	if strings.Index(argsStr, "-ss") > strings.Index(argsStr, "-i ") {
		t.Errorf("-ss must precede -i: %v", args)
	}
}

func TestBuildCandidateArgs(t *testing.T) {
	hevc, err := Resolve(model.Variant{Codec: model.CodecHEVC, Implementation: model.ImplNVENC})
	if err != nil {
		t.Fatal(err)
	}
	av1, err := Resolve(model.Variant{Codec: model.CodecAV1, Implementation: model.ImplAOM})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name            string
		spec            Spec
		kbps            int
		includeProgress bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:            "hevc nvenc with progress",
			spec:            hevc,
			kbps:            4500,
			includeProgress: true,
			wantContains:    []string{"-c:v hevc_nvenc", "-preset p5", "-b:v 4500k", "-maxrate 6750k", "-bufsize 9000k", "-progress pipe:1", "-nostats"},
			wantNotContains: []string{"-qp", "-crf"},
		},
		{
			name:            "aom without progress",
			spec:            av1,
			kbps:            1001,
			wantContains:    []string{"-c:v libaom-av1", "-cpu-used 6", "-row-mt 1", "-b:v 1001k", "-maxrate 1502k", "-bufsize 2002k"},
			wantNotContains: []string{"-progress"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildCandidateArgs("/in/src.mp4", seg3, 720, tt.spec, tt.kbps, "/w/out.mkv", tt.includeProgress)
			argsStr := strings.Join(args, " ")
			for _, want := range tt.wantContains {
				if !strings.Contains(argsStr, want) {
					t.Errorf("args missing %q, got: %v", want, args)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(argsStr, notWant) {
					t.Errorf("args should not contain %q, got: %v", notWant, args)
				}
			}
			if !strings.Contains(argsStr, "-vf scale=-2:720") {
				t.Errorf("args missing scale filter: %v", args)
			}
			if args[len(args)-1] != "/w/out.mkv" {
				t.Errorf("last arg = %v, want output path", args[len(args)-1])
			}
		})
	}
}

func TestBuildScoreArgs(t *testing.T) {
	args := BuildScoreArgs("/w/cand.mkv", "/w/ref.mkv")
	argsStr := strings.Join(args, " ")
	if strings.Index(argsStr, "/w/cand.mkv") > strings.Index(argsStr, "/w/ref.mkv") {
		t.Errorf("candidate must be the first input: %v", args)
	}
	if !strings.Contains(argsStr, "libvmaf") || !strings.HasSuffix(argsStr, "-f null -") {
		t.Errorf("unexpected score args: %v", args)
	}
}
