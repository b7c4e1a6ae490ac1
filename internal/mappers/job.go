// Package mappers converts between the AMQP wire formats and the engine's
// request/result types.
package mappers

import (
	"context"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/engine"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// FixtureReader resolves fixture object names into their contents.
type FixtureReader interface {
	ReadString(ctx context.Context, filename string) (string, error)
}

func JobToExecuteParams(job *model.Job) engine.ExecuteParams {
	code := ""
	if job.Code != nil {
		code = *job.Code
	}
	return engine.ExecuteParams{
		Code:      code,
		Language:  job.Language,
		Input:     job.Stdin,
		TimeoutMs: job.TimeoutMs,
		MaxMemory: job.MaxMemory,
	}
}

func JobToTestOptions(job *model.Job) engine.TestOptions {
	return engine.TestOptions{
		TimeoutMs: job.TimeoutMs,
		MaxMemory: job.MaxMemory,
	}
}

// ResolveTestCases materializes the job's test cases, fetching any
// fixture-backed fields from storage. Referenced objects win over inline
// values; order is preserved.
func ResolveTestCases(ctx context.Context, store FixtureReader, refs []model.JobTestCase) ([]model.TestCase, error) {
	cases := make([]model.TestCase, 0, len(refs))
	for _, ref := range refs {
		tc := model.TestCase{
			Input:          ref.Input,
			ExpectedOutput: ref.ExpectedOutput,
			Description:    ref.Description,
		}
		if ref.InputFile != "" {
			data, err := store.ReadString(ctx, ref.InputFile)
			if err != nil {
				return nil, err
			}
			tc.Input = data
		}
		if ref.ExpectedOutputFile != "" {
			data, err := store.ReadString(ctx, ref.ExpectedOutputFile)
			if err != nil {
				return nil, err
			}
			tc.ExpectedOutput = data
		}
		cases = append(cases, tc)
	}
	return cases, nil
}
