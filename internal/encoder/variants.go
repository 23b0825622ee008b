// Package encoder drives ffmpeg for reference encodes, candidate encodes and VMAF scoring.
package encoder

import (
	"cmp"
	"fmt"
	"slices"

	"vodbench/internal/model"
)

// ErrUnsupportedVariant is returned by Resolve for pairs outside the variant table.
var ErrUnsupportedVariant = fmt.Errorf("%w: unsupported variant", model.ErrConfiguration)

// Spec is the ffmpeg encoder a variant resolves to.
type Spec struct {
	Encoder  string   // ffmpeg -c:v value
	Args     []string // Encoder-specific tuning placed after -c:v
	Hardware bool
}

var variants = map[model.Variant]Spec{
	{Codec: model.CodecH264, Implementation: model.ImplSoftware}: {Encoder: "libx264", Args: []string{"-preset", "medium"}},
	{Codec: model.CodecH264, Implementation: model.ImplNVENC}:    {Encoder: "h264_nvenc", Args: []string{"-preset", "p5"}, Hardware: true},
	{Codec: model.CodecH264, Implementation: model.ImplQSV}:      {Encoder: "h264_qsv", Args: []string{"-preset", "medium"}, Hardware: true},

	{Codec: model.CodecHEVC, Implementation: model.ImplSoftware}: {Encoder: "libx265", Args: []string{"-preset", "medium"}},
	{Codec: model.CodecHEVC, Implementation: model.ImplNVENC}:    {Encoder: "hevc_nvenc", Args: []string{"-preset", "p5"}, Hardware: true},
	{Codec: model.CodecHEVC, Implementation: model.ImplQSV}:      {Encoder: "hevc_qsv", Args: []string{"-preset", "medium"}, Hardware: true},

	{Codec: model.CodecAV1, Implementation: model.ImplSoftware}: {Encoder: "libsvtav1", Args: []string{"-preset", "8"}},
	{Codec: model.CodecAV1, Implementation: model.ImplAOM}:      {Encoder: "libaom-av1", Args: []string{"-cpu-used", "6", "-row-mt", "1"}},
	{Codec: model.CodecAV1, Implementation: model.ImplNVENC}:    {Encoder: "av1_nvenc", Args: []string{"-preset", "p5"}, Hardware: true},
}

// Resolve maps a variant to its ffmpeg encoder.
func Resolve(v model.Variant) (Spec, error) {
	s, ok := variants[v]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnsupportedVariant, v)
	}
	s.Args = slices.Clone(s.Args)
	return s, nil
}

// Supported lists every resolvable variant ordered by codec then implementation.
func Supported() []model.Variant {
	out := make([]model.Variant, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b model.Variant) int {
		if a.Codec != b.Codec {
			return cmp.Compare(a.Codec, b.Codec)
		}
		return cmp.Compare(a.Implementation, b.Implementation)
	})
	return out
}
