// Package validate answers whether source code parses, without running it.
// It shells out to the language's own parser front end in check-only mode.
package validate

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/lang"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// checkTimeout bounds the parse pass so a pathological input cannot hang
// the validator.
const checkTimeout = 5 * time.Second

type Validator struct {
	registry *lang.Registry
}

func New(registry *lang.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate parses code with the language's check command. It returns an
// error only for caller-input problems or internal faults; a failed parse
// is a normal result with Valid=false and diagnostics.
func (v *Validator) Validate(ctx context.Context, code, language string) (model.ValidationResult, error) {
	runner, err := v.registry.Get(language)
	if err != nil {
		return model.ValidationResult{}, err
	}

	dir, err := os.MkdirTemp("", "simuladores-check-")
	if err != nil {
		return model.ValidationResult{}, errors.Wrap(err, "create check dir")
	}
	defer os.RemoveAll(dir)

	entry := filepath.Join(dir, runner.EntryFile)
	if err := os.WriteFile(entry, []byte(code), 0o600); err != nil {
		return model.ValidationResult{}, errors.Wrap(err, "write entry file")
	}

	cctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	argv := runner.CheckCommand(entry)
	cmd := exec.CommandContext(cctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	if runErr == nil {
		return model.ValidationResult{Valid: true, Errors: []string{}}, nil
	}
	if cctx.Err() != nil {
		return model.ValidationResult{Valid: false, Errors: []string{"syntax check timed out"}}, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return model.ValidationResult{}, errors.Wrap(runErr, "run syntax check")
	}
	return model.ValidationResult{Valid: false, Errors: diagnostics(out.String(), dir)}, nil
}

// diagnostics splits the parser output into ordered, non-empty lines and
// strips the throwaway workspace path so messages stay readable.
func diagnostics(out, dir string) []string {
	lines := strings.Split(out, "\n")
	diags := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(strings.ReplaceAll(line, dir+string(os.PathSeparator), ""), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		diags = append(diags, line)
	}
	if len(diags) == 0 {
		diags = append(diags, "syntax error")
	}
	return diags
}
