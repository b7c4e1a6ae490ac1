// Package engine is the entrypoint the surrounding exam backend calls
// into: single ad-hoc runs, static syntax checks and batch test scoring.
// Caller-input errors are rejected here, before any process is spawned.
package engine

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/gate"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/harness"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/lang"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/sandbox"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/validate"
)

// Config wires deployment parameters into the engine.
type Config struct {
	// MaxConcurrent caps in-flight sandboxed executions process-wide.
	MaxConcurrent int
	// TestConcurrency caps parallel cases within one batch.
	TestConcurrency int
	PythonBin       string
	NodeBin         string
	WorkRoot        string
	EnableCgroup    bool
	CgroupParent    string
}

type Engine struct {
	registry  *lang.Registry
	exec      harness.Executor
	validator *validate.Validator
	harness   *harness.Harness
	gate      *gate.Gate
}

func New(cfg Config) *Engine {
	registry := lang.NewRegistry(cfg.PythonBin, cfg.NodeBin)
	sb := sandbox.New(sandbox.Config{
		WorkRoot:     cfg.WorkRoot,
		EnableCgroup: cfg.EnableCgroup,
		CgroupParent: cfg.CgroupParent,
	}, registry)
	g := gate.New(cfg.MaxConcurrent)
	exec := gatedExecutor{gate: g, inner: sb}
	return &Engine{
		registry:  registry,
		exec:      exec,
		validator: validate.New(registry),
		harness:   harness.New(exec, cfg.TestConcurrency),
		gate:      g,
	}
}

// ExecuteParams is one ad-hoc run as received from the caller.
type ExecuteParams struct {
	Code     string
	Language string
	Input    string
	// TimeoutMs <= 0 means the default budget.
	TimeoutMs int
	// MaxMemory is a human-readable size token such as "128m" or "1g";
	// empty means the default budget.
	MaxMemory string
}

// TestOptions are the batch-level knobs shared by all cases.
type TestOptions struct {
	TimeoutMs int
	MaxMemory string
}

// ExecuteCode runs one program. The returned error is always a
// caller-input error; everything that happens after spawn is reported
// inside the result.
func (e *Engine) ExecuteCode(ctx context.Context, p ExecuteParams) (model.ExecutionResult, error) {
	req, err := e.buildRequest(p)
	if err != nil {
		return model.ExecutionResult{}, err
	}
	return e.exec.Execute(ctx, req), nil
}

// ValidateSyntax statically checks code without executing it.
func (e *Engine) ValidateSyntax(ctx context.Context, code, language string) (model.ValidationResult, error) {
	return e.validator.Validate(ctx, code, language)
}

// RunTests scores code against the ordered cases. Per-case failures are
// recorded in the batch result, never returned as errors.
func (e *Engine) RunTests(ctx context.Context, code, language string, cases []model.TestCase, opts TestOptions) (model.TestBatchResult, error) {
	if _, err := e.registry.Get(language); err != nil {
		return model.TestBatchResult{}, err
	}
	memLimit, err := parseMemory(opts.MaxMemory)
	if err != nil {
		return model.TestBatchResult{}, err
	}
	return e.harness.RunTests(ctx, code, language, cases, harness.Options{
		Timeout:     time.Duration(opts.TimeoutMs) * time.Millisecond,
		MemoryLimit: memLimit,
	}), nil
}

// Languages lists the supported language identifiers.
func (e *Engine) Languages() []string {
	return e.registry.Supported()
}

func (e *Engine) buildRequest(p ExecuteParams) (model.ExecutionRequest, error) {
	if _, err := e.registry.Get(p.Language); err != nil {
		return model.ExecutionRequest{}, err
	}
	memLimit, err := parseMemory(p.MaxMemory)
	if err != nil {
		return model.ExecutionRequest{}, err
	}
	return model.ExecutionRequest{
		Code:        p.Code,
		Language:    p.Language,
		Stdin:       p.Input,
		Timeout:     time.Duration(p.TimeoutMs) * time.Millisecond,
		MemoryLimit: memLimit,
	}.WithDefaults(), nil
}

// parseMemory interprets the human-readable budget token. Zero means
// "use the default".
func parseMemory(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	b, err := humanize.ParseBytes(token)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid maxMemory %q", token)
	}
	return int64(b), nil
}

// gatedExecutor acquires an admission slot around every spawn so host
// capacity stays bounded under load.
type gatedExecutor struct {
	gate  *gate.Gate
	inner harness.Executor
}

func (g gatedExecutor) Execute(ctx context.Context, req model.ExecutionRequest) model.ExecutionResult {
	if err := g.gate.Acquire(ctx); err != nil {
		return model.ExecutionResult{Error: errors.Wrap(err, "admission gate").Error()}
	}
	defer g.gate.Release()
	return g.inner.Execute(ctx, req)
}
