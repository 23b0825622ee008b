package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"vodbench/internal/model"
	"vodbench/internal/util"
)

// SourceStem returns a sanitized basename of the input file without extension.
func SourceStem(input string) string {
	base := filepath.Base(input)
	return util.SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ReferenceBasename names the near-lossless reference rendition of a segment.
func ReferenceBasename(seg model.Segment, height int) string {
	return fmt.Sprintf("ref_%04d_%dp.mkv", seg.Index, height)
}

// CandidateBasename names a probe encode of a segment at a bitrate.
func CandidateBasename(seg model.Segment, cfg model.Configuration, kbps int) string {
	parts := []string{
		fmt.Sprintf("seg_%04d", seg.Index),
		fmt.Sprintf("%dp", cfg.Height),
		string(cfg.Variant.Codec),
		string(cfg.Variant.Implementation),
		fmt.Sprintf("%dk", kbps),
	}
	return strings.Join(parts, "_") + ".mkv"
}

// PlaylistBasename names the HLS media playlist of a configuration's decided plan.
func PlaylistBasename(cfg model.Configuration) string {
	return util.SanitizeFilename(cfg.ID()) + ".m3u8"
}
