// Package harness drives one code submission against an ordered sequence
// of test cases and aggregates a pass/fail score.
package harness

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// Executor runs one request in isolation. It never fails: faults are
// absorbed into the result.
type Executor interface {
	Execute(ctx context.Context, req model.ExecutionRequest) model.ExecutionResult
}

// Options are shared by every case in one batch.
type Options struct {
	Timeout     time.Duration
	MemoryLimit int64
}

type Harness struct {
	exec        Executor
	concurrency int
}

// New builds a harness running up to concurrency cases of one batch in
// parallel. Non-positive concurrency picks a small CPU-bound default.
func New(exec Executor, concurrency int) *Harness {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
		if concurrency > 4 {
			concurrency = 4
		}
	}
	return &Harness{exec: exec, concurrency: concurrency}
}

// RunTests executes code against every case. Cases run in their own
// sandbox instances and are independent: one case's failure, timeout or
// internal fault never aborts the rest. Results are re-sequenced by
// original index regardless of completion order.
func (h *Harness) RunTests(ctx context.Context, code, language string, cases []model.TestCase, opts Options) model.TestBatchResult {
	results := make([]model.TestCaseResult, len(cases))
	sem := make(chan struct{}, h.concurrency)
	var wg sync.WaitGroup
	for i, tc := range cases {
		wg.Add(1)
		go func(i int, tc model.TestCase) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = h.runCase(ctx, code, language, tc, opts)
		}(i, tc)
	}
	wg.Wait()

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	score := 0.0
	if len(results) > 0 {
		score = float64(passed) / float64(len(results)) * 100
	}
	return model.TestBatchResult{
		ScorePercent: score,
		PassedCount:  passed,
		TotalCount:   len(results),
		Cases:        results,
	}
}

func (h *Harness) runCase(ctx context.Context, code, language string, tc model.TestCase, opts Options) model.TestCaseResult {
	res := h.exec.Execute(ctx, model.ExecutionRequest{
		Code:        code,
		Language:    language,
		Stdin:       tc.Input,
		Timeout:     opts.Timeout,
		MemoryLimit: opts.MemoryLimit,
	})

	out := model.TestCaseResult{
		Input:           tc.Input,
		ExpectedOutput:  tc.ExpectedOutput,
		ActualOutput:    res.Stdout,
		Error:           res.Error,
		ExecutionTimeMs: res.ExecutionTimeMs,
	}
	if out.Error == "" {
		switch {
		case res.TimedOut:
			out.Error = "execution timed out"
		case res.MemoryExceeded:
			out.Error = "memory limit exceeded"
		}
	}
	// A case passes only on matching output AND a clean exit; a crashing
	// program cannot pass on matching partial output.
	out.Passed = res.ExitCode != nil && *res.ExitCode == 0 &&
		strings.TrimSpace(res.Stdout) == strings.TrimSpace(tc.ExpectedOutput)
	return out
}
