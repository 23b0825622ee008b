package model

import (
	"fmt"
	"strings"
)

// Codec names a video coding format.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecHEVC Codec = "hevc"
	CodecAV1  Codec = "av1"
)

// Implementation names the encoder implementation used for a codec.
type Implementation string

const (
	ImplSoftware Implementation = "software"
	ImplNVENC    Implementation = "nvenc"
	ImplQSV      Implementation = "qsv"
	ImplAOM      Implementation = "aom"
)

// Variant is a (codec, implementation) pair.
type Variant struct {
	Codec          Codec          `json:"codec"`
	Implementation Implementation `json:"implementation"`
}

// String renders the variant as "codec:implementation".
func (v Variant) String() string {
	return string(v.Codec) + ":" + string(v.Implementation)
}

// ParseVariant parses "codec:implementation". A bare codec selects the software implementation.
// It does not check that the pair is supported; see encoder.Resolve.
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Variant{}, fmt.Errorf("%w: empty variant", ErrConfiguration)
	}
	codec, impl, found := strings.Cut(s, ":")
	if !found || impl == "" {
		impl = string(ImplSoftware)
	}
	if codec == "" {
		return Variant{}, fmt.Errorf("%w: variant %q has no codec", ErrConfiguration, s)
	}
	return Variant{Codec: Codec(codec), Implementation: Implementation(impl)}, nil
}

// Configuration is one benchmarked (resolution, codec, implementation) combination.
type Configuration struct {
	Height  int     `json:"height"`
	Variant Variant `json:"variant"`
}

// ID returns a filesystem- and log-friendly identifier, e.g. "1080p-h264-software".
func (c Configuration) ID() string {
	return fmt.Sprintf("%dp-%s-%s", c.Height, c.Variant.Codec, c.Variant.Implementation)
}
