// Package toolkit runs the external Moses and fast_align binaries and reads
// their alignment output.
package toolkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/smtalign/internal/align"
	"github.com/valpere/smtalign/internal/logging"
)

// ToolkitError reports a failed external command.
type ToolkitError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ToolkitError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return fmt.Sprintf("command failed (%d): %s: %s", e.ExitCode, strings.Join(e.Command, " "), msg)
	}
	return fmt.Sprintf("command failed (%d): %s", e.ExitCode, strings.Join(e.Command, " "))
}

func (e *ToolkitError) Unwrap() error {
	return e.Err
}

// Run executes name with args, optionally feeding stdin, and returns stdout.
// A non-zero exit or a failure to start yields a *ToolkitError.
func Run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	start := time.Now()
	err := cmd.Run()
	logging.L().Named("toolkit").Debug("command finished",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return stdout.String(), &ToolkitError{
			Command:  append([]string{name}, args...),
			ExitCode: code,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.String(), nil
}

// MosesDecode translates one sentence with a Moses binary and its moses.ini
// and returns the first output line.
func MosesDecode(ctx context.Context, mosesBin, mosesIni, sentence string) (string, error) {
	out, err := Run(ctx, sentence+"\n", mosesBin, "-f", mosesIni)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(line), nil
}

// FastAlignBidirectional aligns a "source ||| target" corpus in both
// directions and symmetrizes the result with grow-diag-final-and.
func FastAlignBidirectional(ctx context.Context, fastAlignBin, atoolsBin, corpusPath, outForward, outReverse, outSym string) error {
	steps := []struct {
		out  string
		name string
		args []string
	}{
		{outForward, fastAlignBin, []string{"-i", corpusPath, "-d", "-o", "-v"}},
		{outReverse, fastAlignBin, []string{"-i", corpusPath, "-d", "-o", "-v", "-r"}},
		{outSym, atoolsBin, []string{"-i", outForward, "-j", outReverse, "-c", "grow-diag-final-and"}},
	}

	for _, s := range steps {
		out, err := Run(ctx, "", s.name, s.args...)
		if err != nil {
			return err
		}
		if err := os.WriteFile(s.out, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.out, err)
		}
	}
	return nil
}

// ParseGiza reads a "s-t s-t ..." alignment line. The result is sorted and
// free of duplicates.
func ParseGiza(line string) ([]align.Point, error) {
	seen := make(map[align.Point]bool)
	points := []align.Point{}
	for _, field := range strings.Fields(line) {
		s, t, ok := strings.Cut(field, "-")
		if !ok {
			return nil, fmt.Errorf("invalid alignment link %q", field)
		}
		si, err := strconv.Atoi(s)
		if err != nil || si < 0 {
			return nil, fmt.Errorf("invalid source index in %q", field)
		}
		ti, err := strconv.Atoi(t)
		if err != nil || ti < 0 {
			return nil, fmt.Errorf("invalid target index in %q", field)
		}
		p := align.Point{Src: si, Tgt: ti}
		if !seen[p] {
			seen[p] = true
			points = append(points, p)
		}
	}
	align.SortPoints(points)
	return points, nil
}
