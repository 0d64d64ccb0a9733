package toolkit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/valpere/smtalign/internal/align"
)

// writeScript creates an executable shell script standing in for a toolkit
// binary.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestRun_Success(t *testing.T) {
	bin := writeScript(t, "echo", `echo "args: $*"`)

	out, err := Run(context.Background(), "", bin, "-a", "b")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(out) != "args: -a b" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_Failure(t *testing.T) {
	bin := writeScript(t, "fail", `echo partial; echo boom >&2; exit 3`)

	_, err := Run(context.Background(), "", bin)
	var tkErr *ToolkitError
	if !errors.As(err, &tkErr) {
		t.Fatalf("expected *ToolkitError, got %v", err)
	}
	if tkErr.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", tkErr.ExitCode)
	}
	if strings.TrimSpace(tkErr.Stdout) != "partial" {
		t.Errorf("unexpected stdout %q", tkErr.Stdout)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should include stderr, got %q", err.Error())
	}
}

func TestRun_MissingBinary(t *testing.T) {
	_, err := Run(context.Background(), "", filepath.Join(t.TempDir(), "missing"))
	var tkErr *ToolkitError
	if !errors.As(err, &tkErr) {
		t.Fatalf("expected *ToolkitError, got %v", err)
	}
	if tkErr.ExitCode != -1 {
		t.Errorf("expected exit code -1 for start failure, got %d", tkErr.ExitCode)
	}
}

func TestMosesDecode(t *testing.T) {
	// Fake decoder: checks the -f flag and upper-cases stdin.
	bin := writeScript(t, "moses", `[ "$1" = "-f" ] || exit 2
tr 'a-z' 'A-Z'
echo trailing`)

	got, err := MosesDecode(context.Background(), bin, "moses.ini", "hello world")
	if err != nil {
		t.Fatalf("MosesDecode failed: %v", err)
	}
	if got != "HELLO WORLD" {
		t.Errorf("MosesDecode = %q, want %q", got, "HELLO WORLD")
	}
}

func TestMosesDecode_Failure(t *testing.T) {
	bin := writeScript(t, "moses", `echo "no model" >&2; exit 1`)

	if _, err := MosesDecode(context.Background(), bin, "moses.ini", "x"); err == nil {
		t.Error("expected error from failing decoder")
	}
}

func TestFastAlignBidirectional(t *testing.T) {
	fastAlign := writeScript(t, "fast_align", `case "$*" in
*-r*) echo "0-1 1-0" ;;
*) echo "0-0 1-1" ;;
esac`)
	atools := writeScript(t, "atools", `echo "sym $2 $4 $6"`)

	dir := t.TempDir()
	fwd := filepath.Join(dir, "forward.align")
	rev := filepath.Join(dir, "reverse.align")
	sym := filepath.Join(dir, "sym.align")

	if err := FastAlignBidirectional(context.Background(), fastAlign, atools, "corpus.txt", fwd, rev, sym); err != nil {
		t.Fatalf("FastAlignBidirectional failed: %v", err)
	}

	read := func(path string) string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", path, err)
		}
		return strings.TrimSpace(string(data))
	}

	if got := read(fwd); got != "0-0 1-1" {
		t.Errorf("forward = %q", got)
	}
	if got := read(rev); got != "0-1 1-0" {
		t.Errorf("reverse = %q", got)
	}
	if got := read(sym); got != "sym "+fwd+" "+rev+" grow-diag-final-and" {
		t.Errorf("sym = %q", got)
	}
}

func TestParseGiza(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []align.Point
		wantErr bool
	}{
		{"empty", "  ", []align.Point{}, false},
		{"sorted", "0-0 1-1", []align.Point{{Src: 0, Tgt: 0}, {Src: 1, Tgt: 1}}, false},
		{"unsorted with duplicates", "2-1 0-3 2-1 0-0", []align.Point{{Src: 0, Tgt: 0}, {Src: 0, Tgt: 3}, {Src: 2, Tgt: 1}}, false},
		{"missing dash", "0-0 11", nil, true},
		{"not a number", "a-1", nil, true},
		{"negative", "0--1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGiza(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGiza() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseGiza() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseGiza_RoundTrip(t *testing.T) {
	points := []align.Point{{Src: 0, Tgt: 1}, {Src: 1, Tgt: 0}, {Src: 2, Tgt: 2}}
	got, err := ParseGiza(align.GizaString(points))
	if err != nil {
		t.Fatalf("ParseGiza failed: %v", err)
	}
	if !reflect.DeepEqual(got, points) {
		t.Errorf("round trip = %v, want %v", got, points)
	}
}
