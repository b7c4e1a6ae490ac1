//go:build !linux

package sandbox

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/lang"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// Sandboxed execution relies on process groups and cgroups.
func (s *Sandbox) run(_ context.Context, _ model.ExecutionRequest, _ lang.Runner, _, _ string, start time.Time) model.ExecutionResult {
	return faultResult(start, errors.New("sandboxed execution is only supported on linux"))
}
