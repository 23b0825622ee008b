package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vodbench/internal/encoder"
	"vodbench/internal/util"
	"vodbench/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe, libvmaf)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, _, err := loadOptions(cmd, nil)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			ff, ferr := deps.FindFFmpeg(opts.FFmpegPath)
			if ferr != nil {
				return &ExitError{Code: ExitMissingDep, Err: ferr}
			}
			fp, perr := deps.FindFFprobe(opts.FFprobePath)
			if perr != nil {
				return &ExitError{Code: ExitMissingDep, Err: perr}
			}
			fmt.Fprintf(w, "FFmpeg:    %s\n", ff)
			fmt.Fprintf(w, "FFprobe:   %s\n", fp)

			ok, err := deps.HasFilter(cmd.Context(), util.NewDefaultRunner(), ff, "libvmaf")
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			if !ok {
				return &ExitError{Code: ExitMissingDep, Err: errors.New("ffmpeg was built without the libvmaf filter")}
			}
			fmt.Fprintln(w, "libvmaf:   available")
			fmt.Fprintf(w, "Encoders:  %v\n", encoder.Supported())
			return nil
		},
	}
}
