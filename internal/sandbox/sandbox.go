// Package sandbox runs one untrusted program to completion or forced
// termination under isolation. Execute never fails: every run-time fault
// is absorbed into the returned ExecutionResult.
package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/lang"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// Config controls sandbox behavior. Zero value is usable.
type Config struct {
	// WorkRoot is where per-run workspaces are created. Defaults to the
	// system temp directory.
	WorkRoot string
	// EnableCgroup turns on cgroup-backed memory enforcement. Requires a
	// writable cgroup v2 hierarchy; when it cannot be set up the sandbox
	// falls back to unenforced limits with rusage accounting.
	EnableCgroup bool
	// CgroupParent names the cgroup created under the root controller.
	CgroupParent string
}

type Sandbox struct {
	cfg      Config
	registry *lang.Registry
}

func New(cfg Config, registry *lang.Registry) *Sandbox {
	if cfg.CgroupParent == "" {
		cfg.CgroupParent = "simuladores"
	}
	return &Sandbox{cfg: cfg, registry: registry}
}

// Execute runs req to completion, timeout or kill and always returns a
// well-formed result. The workspace and the process tree are torn down on
// every path before this returns.
func (s *Sandbox) Execute(ctx context.Context, req model.ExecutionRequest) model.ExecutionResult {
	req = req.WithDefaults()
	start := time.Now()

	runner, err := s.registry.Get(req.Language)
	if err != nil {
		return faultResult(start, err)
	}

	dir, cleanup, err := s.newWorkspace()
	if err != nil {
		return faultResult(start, errors.Wrap(err, "create workspace"))
	}
	defer cleanup()

	entry := filepath.Join(dir, runner.EntryFile)
	if err := os.WriteFile(entry, []byte(req.Code), 0o600); err != nil {
		return faultResult(start, errors.Wrap(err, "write entry file"))
	}

	return s.run(ctx, req, runner, dir, entry, start)
}

// faultResult maps an engine-internal fault to a result instead of an
// error, keeping the one-request-one-result invariant.
func faultResult(start time.Time, err error) model.ExecutionResult {
	return model.ExecutionResult{
		Error:           err.Error(),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
}
