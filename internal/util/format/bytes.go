package format

import (
	"strconv"
	"time"
)

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < 4; n /= unit {
		div *= unit
		exp++
	}
	var buf [20]byte
	s := strconv.AppendFloat(buf[:0], float64(b)/float64(div), 'f', 1, 64)
	return string(s) + " " + []string{"KB", "MB", "GB", "TB", "PB"}[exp]
}

// HumanizeKbps renders a bitrate as "850 kbps" or "9.50 Mbps".
func HumanizeKbps(kbps int) string {
	if kbps < 1000 {
		return strconv.Itoa(kbps) + " kbps"
	}
	return strconv.FormatFloat(float64(kbps)/1000, 'f', 2, 64) + " Mbps"
}

// Seconds renders fractional seconds as a rounded duration, e.g. "1m2.5s".
func Seconds(sec float64) string {
	return (time.Duration(sec*float64(time.Second)) / time.Millisecond * time.Millisecond).String()
}
