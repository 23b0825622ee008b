package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"vodbench/internal/util"
)

// FindFFmpeg returns the path to ffmpeg.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindFFmpeg(customPath string) (string, error) {
	return find("ffmpeg", customPath)
}

// FindFFprobe returns the path to ffprobe.
func FindFFprobe(customPath string) (string, error) {
	return find("ffprobe", customPath)
}

func find(name, customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find %s at %q", name, customPath)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find %s in PATH. Please install ffmpeg", name)
}

// HasFilter reports whether the ffmpeg build lists the named filter (e.g. "libvmaf").
func HasFilter(ctx context.Context, runner util.CmdRunner, ffmpegPath, filter string) (bool, error) {
	res, err := runner.Run(ctx, util.CmdSpec{
		Path:          ffmpegPath,
		Args:          []string{"-hide_banner", "-filters"},
		CaptureStdout: true,
	})
	if err != nil {
		return false, fmt.Errorf("list ffmpeg filters: %w", err)
	}
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == filter {
			return true, nil
		}
	}
	return false, nil
}
