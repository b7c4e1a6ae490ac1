package sandbox

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// newWorkspace creates an exclusive, freshly created directory for one run.
// No two concurrent executions ever share filesystem state.
func (s *Sandbox) newWorkspace() (string, func(), error) {
	root := s.cfg.WorkRoot
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "simuladores-run-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", nil, err
	}
	cleanup := func() {
		_ = os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}
