package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vodbench/internal/model"
	"vodbench/internal/util"
	"vodbench/internal/util/media"
)

// Placeholders substituted in the preprocess command.
const (
	inputPlaceholder  = "{input}"
	outputPlaceholder = "{output}"
)

// preprocess runs the external preprocess command on input and returns the
// path the benchmark should use instead. With no command input is returned.
func (s *Service) preprocess(ctx context.Context, input, workDir string) (string, error) {
	tmpl := strings.Fields(s.opts.Preprocess)
	if len(tmpl) == 0 {
		return input, nil
	}
	if _, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("%w: preprocess input %q: %v", model.ErrConfiguration, input, err)
	}

	output := filepath.Join(workDir, media.SourceStem(input)+".pre"+filepath.Ext(input))
	if same(input, output) {
		s.logger.Info("preprocess skipped, output equals input", "path", input)
		return input, nil
	}

	args := make([]string, 0, len(tmpl)-1)
	for _, a := range tmpl[1:] {
		a = strings.ReplaceAll(a, inputPlaceholder, input)
		a = strings.ReplaceAll(a, outputPlaceholder, output)
		args = append(args, a)
	}
	s.logger.Info("preprocessing source", "cmd", tmpl[0], "output", output)
	if _, err := s.runner.Run(ctx, util.CmdSpec{Path: tmpl[0], Args: args, Logger: s.logger}); err != nil {
		return "", &model.OperationError{Op: "preprocess", Err: err}
	}
	if fi, err := os.Stat(output); err != nil || fi.Size() == 0 {
		return "", &model.OperationError{Op: "preprocess", Err: fmt.Errorf("no output at %s", output)}
	}
	return output, nil
}

func same(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
