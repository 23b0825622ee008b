package encoder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var reVMAF = regexp.MustCompile(`VMAF score[:=]\s*([0-9]+(?:\.[0-9]+)?)`)

// ErrNoScore means libvmaf output carried no score line.
var ErrNoScore = errors.New("no VMAF score in ffmpeg output")

// ParseVMAF returns the last "VMAF score: X" value found in stderr.
func ParseVMAF(stderr string) (float64, error) {
	all := reVMAF.FindAllStringSubmatch(stderr, -1)
	if len(all) == 0 {
		return 0, ErrNoScore
	}
	v, err := strconv.ParseFloat(all[len(all)-1][1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse VMAF score: %w", err)
	}
	return v, nil
}
