package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/loader"
	"github.com/erwinbonsma/2lrunner/pkg/runner"
)

func TestPrintShare(t *testing.T) {
	p, err := loader.ParseWebString(defaultProgram)
	if err != nil {
		t.Fatalf("ParseWebString() failed: %v", err)
	}

	var buf bytes.Buffer
	printShare(&buf, p)
	out := buf.String()

	for _, want := range []string{
		"web:         " + defaultProgram,
		"base27:      55ta_u_omb_",
		"share:       " + loader.ShareToken(p),
		"fingerprint: " + loader.FingerprintOf(p).String(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printShare() output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &runner.Result{
		Status:   types.StatusError,
		Steps:    3,
		MaxValue: 1,
		Tape:     []int{1, 0},
		Fault:    "tape capacity exceeded",
	})

	want := "status = error, steps = 3, minValue = 0, maxValue = 1, dataSize = 2\nerror = tape capacity exceeded\n"
	if buf.String() != want {
		t.Errorf("printSummary() = %q, want %q", buf.String(), want)
	}
}

func TestExitCode(t *testing.T) {
	done := &runner.Result{Status: types.StatusDone}
	failed := &runner.Result{Status: types.StatusError}

	tests := []struct {
		result *runner.Result
		err    error
		want   int
	}{
		{done, nil, 0},
		{failed, nil, 1},
		{done, context.Canceled, 130},
		{done, fmt.Errorf("%w: 10 steps", runner.ErrStepBudgetExceeded), 2},
		{done, fmt.Errorf("disk full"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.result, tt.err); got != tt.want {
			t.Errorf("exitCode(%s, %v) = %d, want %d", tt.result.Status, tt.err, got, tt.want)
		}
	}
}

func TestColorProfile(t *testing.T) {
	if got := colorProfile("always"); got != termenv.TrueColor {
		t.Errorf("colorProfile(always) = %v, want TrueColor", got)
	}
	if got := colorProfile("never"); got != termenv.Ascii {
		t.Errorf("colorProfile(never) = %v, want Ascii", got)
	}
}
