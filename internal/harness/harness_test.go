package harness

import (
	"context"
	"testing"
	"time"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// scriptedExecutor fakes the sandbox: one canned result per stdin value.
type scriptedExecutor struct {
	results map[string]model.ExecutionResult
	delays  map[string]time.Duration
}

func (s *scriptedExecutor) Execute(_ context.Context, req model.ExecutionRequest) model.ExecutionResult {
	if d, ok := s.delays[req.Stdin]; ok {
		time.Sleep(d)
	}
	if res, ok := s.results[req.Stdin]; ok {
		return res
	}
	return model.ExecutionResult{Error: "unscripted input"}
}

func ok(stdout string) model.ExecutionResult {
	code := 0
	return model.ExecutionResult{Stdout: stdout, ExitCode: &code}
}

func TestRunTestsScoring(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]model.ExecutionResult{
		"a": ok("a\n"),
		"b": ok("b\n"),
	}}
	h := New(exec, 1)

	res := h.RunTests(context.Background(), "print(input())", "python", []model.TestCase{
		{Input: "a", ExpectedOutput: "a"},
		{Input: "b", ExpectedOutput: "c"},
	}, Options{})

	if res.TotalCount != 2 || res.PassedCount != 1 {
		t.Fatalf("passed/total = %d/%d, want 1/2", res.PassedCount, res.TotalCount)
	}
	if res.ScorePercent != 50 {
		t.Fatalf("score = %v, want 50", res.ScorePercent)
	}
	if !res.Cases[0].Passed || res.Cases[1].Passed {
		t.Fatalf("case outcomes = %v/%v, want pass/fail", res.Cases[0].Passed, res.Cases[1].Passed)
	}
}

func TestRunTestsPreservesOrderUnderConcurrency(t *testing.T) {
	exec := &scriptedExecutor{
		results: map[string]model.ExecutionResult{
			"1": ok("1"), "2": ok("2"), "3": ok("3"), "4": ok("4"),
		},
		// First case finishes last.
		delays: map[string]time.Duration{"1": 50 * time.Millisecond},
	}
	h := New(exec, 4)

	cases := []model.TestCase{
		{Input: "1", ExpectedOutput: "1"},
		{Input: "2", ExpectedOutput: "2"},
		{Input: "3", ExpectedOutput: "3"},
		{Input: "4", ExpectedOutput: "4"},
	}
	res := h.RunTests(context.Background(), "code", "python", cases, Options{})

	if res.TotalCount != 4 || res.PassedCount != 4 {
		t.Fatalf("passed/total = %d/%d, want 4/4", res.PassedCount, res.TotalCount)
	}
	for i, c := range res.Cases {
		if c.Input != cases[i].Input {
			t.Fatalf("case %d input = %q, want %q", i, c.Input, cases[i].Input)
		}
	}
}

func TestRunTestsIsolatesCaseFaults(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]model.ExecutionResult{
		"1": ok("x"),
		"2": {Error: "create workspace: permission denied"},
		"3": ok("z"),
	}}
	h := New(exec, 2)

	res := h.RunTests(context.Background(), "code", "python", []model.TestCase{
		{Input: "1", ExpectedOutput: "x"},
		{Input: "2", ExpectedOutput: "y"},
		{Input: "3", ExpectedOutput: "z"},
	}, Options{})

	if res.TotalCount != 3 {
		t.Fatalf("TotalCount = %d, want 3", res.TotalCount)
	}
	if res.PassedCount != 2 {
		t.Fatalf("PassedCount = %d, want 2", res.PassedCount)
	}
	if res.Cases[1].Passed {
		t.Fatal("faulted case reported as passed")
	}
	if res.Cases[1].Error == "" {
		t.Fatal("faulted case lost its error")
	}
}

func TestRunTestsTrimComparison(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]model.ExecutionResult{
		"edges":    ok("2\n"),
		"internal": ok("2 3"),
	}}
	h := New(exec, 1)

	res := h.RunTests(context.Background(), "code", "python", []model.TestCase{
		{Input: "edges", ExpectedOutput: "2"},
		{Input: "internal", ExpectedOutput: "23"},
	}, Options{})

	if !res.Cases[0].Passed {
		t.Fatal("trailing newline should not fail the comparison")
	}
	if res.Cases[1].Passed {
		t.Fatal("internal whitespace must stay significant")
	}
}

func TestRunTestsRequiresCleanExit(t *testing.T) {
	crashCode := 1
	exec := &scriptedExecutor{results: map[string]model.ExecutionResult{
		"crash":  {Stdout: "ok", ExitCode: &crashCode, Error: "Traceback"},
		"killed": {Stdout: "ok", TimedOut: true},
	}}
	h := New(exec, 1)

	res := h.RunTests(context.Background(), "code", "python", []model.TestCase{
		{Input: "crash", ExpectedOutput: "ok"},
		{Input: "killed", ExpectedOutput: "ok"},
	}, Options{})

	if res.PassedCount != 0 {
		t.Fatalf("PassedCount = %d, want 0: matching output cannot pass without exit 0", res.PassedCount)
	}
	if res.Cases[1].Error != "execution timed out" {
		t.Fatalf("timed-out case error = %q", res.Cases[1].Error)
	}
}

func TestRunTestsEmptyBatch(t *testing.T) {
	h := New(&scriptedExecutor{}, 1)

	res := h.RunTests(context.Background(), "code", "python", nil, Options{})
	if res.TotalCount != 0 || res.PassedCount != 0 || res.ScorePercent != 0 {
		t.Fatalf("empty batch = %+v, want zeroes", res)
	}
	if len(res.Cases) != 0 {
		t.Fatalf("Cases = %v, want empty", res.Cases)
	}
}
