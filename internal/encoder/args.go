package encoder

import (
	"fmt"
	"strconv"

	"vodbench/internal/model"
	"vodbench/internal/util/bitrate"
)

// BuildReferenceArgs constructs the near-lossless reference encode of a segment
// scaled to height. Candidates are scored against this rendition.
func BuildReferenceArgs(input string, seg model.Segment, height int, outputPath string) []string {
	args := segmentInput(input, seg)
	args = append(args,
		"-an", "-sn",
		"-vf", scaleFilter(height),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-qp", "0",
		outputPath,
	)
	return args
}

// BuildCandidateArgs constructs a constrained-bitrate probe encode of a segment.
func BuildCandidateArgs(input string, seg model.Segment, height int, spec Spec, kbps int, outputPath string, includeProgress bool) []string {
	args := segmentInput(input, seg)
	args = append(args,
		"-an", "-sn",
		"-vf", scaleFilter(height),
		"-c:v", spec.Encoder,
	)
	args = append(args, spec.Args...)
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-b:v", fmt.Sprintf("%dk", kbps),
		"-maxrate", fmt.Sprintf("%dk", bitrate.RoundKbps(float64(kbps)*1.5)),
		"-bufsize", fmt.Sprintf("%dk", kbps*2),
	)
	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	args = append(args, outputPath)
	return args
}

// BuildScoreArgs constructs a libvmaf comparison of candidate against reference.
// The score is printed to stderr.
func BuildScoreArgs(candidatePath, referencePath string) []string {
	return []string{
		"-hide_banner", "-nostats",
		"-i", candidatePath,
		"-i", referencePath,
		"-lavfi", "[0:v]setpts=PTS-STARTPTS[d];[1:v]setpts=PTS-STARTPTS[r];[d][r]libvmaf",
		"-f", "null", "-",
	}
}

func segmentInput(input string, seg model.Segment) []string {
	return []string{
		"-y", "-hide_banner",
		"-ss", strconv.FormatFloat(seg.Start, 'f', 3, 64),
		"-t", strconv.FormatFloat(seg.Duration, 'f', 3, 64),
		"-i", input,
	}
}

func scaleFilter(height int) string {
	if height <= 0 {
		return "scale=-2:720"
	}
	return fmt.Sprintf("scale=-2:%d", height)
}
