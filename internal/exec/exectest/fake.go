// Package exectest provides a scripted exec.Runner for tests.
package exectest

import (
	"context"
	"strings"
	"sync"

	"github.com/mxcd/image-tag-updater/internal/exec"
)

// Result is a scripted response for Runner
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

type fakeRule struct {
	prefix  string
	results []Result
}

// Runner records commands instead of executing them. Responses are scripted
// per command-line prefix; the last scripted result of a rule repeats once the
// others are used up. Unmatched commands succeed with empty output.
type Runner struct {
	mu    sync.Mutex
	rules []*fakeRule
	calls []exec.Command
}

func NewRunner() *Runner {
	return &Runner{}
}

// On scripts the results for commands whose full command line starts with prefix
func (f *Runner) On(prefix string, results ...Result) *Runner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &fakeRule{prefix: prefix, results: results})
	return f
}

func (f *Runner) Run(_ context.Context, cmd exec.Command) (*exec.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmd)

	line := cmd.Line()
	for _, rule := range f.rules {
		if !strings.HasPrefix(line, rule.prefix) || len(rule.results) == 0 {
			continue
		}
		res := rule.results[0]
		if len(rule.results) > 1 {
			rule.results = rule.results[1:]
		}
		result := &exec.Result{Stdout: res.Stdout, Stderr: res.Stderr}
		if res.Err != nil {
			result.ExitCode = 1
			return result, &exec.CommandError{
				Command:  cmd.String(),
				ExitCode: 1,
				Stderr:   res.Stderr,
				Err:      res.Err,
			}
		}
		return result, nil
	}

	return &exec.Result{}, nil
}

// Calls returns the recorded commands in execution order
func (f *Runner) Calls() []exec.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]exec.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines returns the recorded command lines without masking secrets
func (f *Runner) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.Line())
	}
	return lines
}

// Count returns how many recorded commands start with prefix
func (f *Runner) Count(prefix string) int {
	n := 0
	for _, line := range f.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
