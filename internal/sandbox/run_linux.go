//go:build linux

package sandbox

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/lang"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// killGracePeriod is how long a process group gets to react to SIGTERM
// before the non-ignorable SIGKILL.
const killGracePeriod = 500 * time.Millisecond

func (s *Sandbox) run(ctx context.Context, req model.ExecutionRequest, runner lang.Runner, dir, entry string, start time.Time) model.ExecutionResult {
	argv := runner.RunCommand(entry)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(req.Stdin)
	stdout := newLimitedBuffer(req.MaxOutputSize)
	stderr := newLimitedBuffer(req.MaxOutputSize)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = []string{"PATH=/usr/local/bin:/usr/bin:/bin", "PYTHONDONTWRITEBYTECODE=1"}
	// A dedicated process group so forking interpreters are killed as a
	// tree, and Pdeathsig so orphans die with the host process.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pdeathsig: unix.SIGKILL}
	// Don't let an orphan grandchild holding the output pipe stall Wait.
	cmd.WaitDelay = killGracePeriod

	lim, err := s.newLimiter(req.MemoryLimit)
	if err != nil {
		warnUnenforced(err)
		lim = rusageLimiter{}
	}
	defer lim.Close()

	if err := cmd.Start(); err != nil {
		return faultResult(start, errors.Wrap(err, "start interpreter"))
	}
	pid := cmd.Process.Pid
	if err := lim.Attach(pid); err != nil {
		slog.Warn("attach process to limiter", "pid", pid, "error", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(req.Timeout)
	defer timer.Stop()

	var waitErr error
	var timedOut bool
	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		waitErr = terminateGroup(pid, done)
	case <-ctx.Done():
		waitErr = terminateGroup(pid, done)
	}
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		// The process itself exited cleanly; only the pipes lingered.
		waitErr = nil
	}

	res := model.ExecutionResult{
		Stdout:          stdout.String(),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		TimedOut:        timedOut,
		OutputTruncated: stdout.Truncated() || stderr.Truncated(),
	}
	u := lim.Usage(cmd.ProcessState)
	res.CPUTimeMs = u.cpuTime.Milliseconds()
	res.MemoryPeakBytes = u.peakBytes

	if waitErr == nil {
		code := 0
		res.ExitCode = &code
		return res
	}

	stderrText := stderr.String()
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			// Killed before exiting: ExitCode stays nil.
			if !timedOut && oomKilled(ws, req.MemoryLimit, u.peakBytes) {
				res.MemoryExceeded = true
			}
			res.Error = stderrText
			if res.Error == "" {
				switch {
				case timedOut:
					res.Error = "execution timed out"
				case res.MemoryExceeded:
					res.Error = "memory limit exceeded"
				default:
					res.Error = "killed: " + ws.Signal().String()
				}
			}
			return res
		}
		code := exitErr.ExitCode()
		res.ExitCode = &code
		res.Error = stderrText
		return res
	}

	// Wait failed for an engine-internal reason (pipe setup and the like).
	res.Error = waitErr.Error()
	return res
}

// oomKilled attributes a SIGKILL to the memory limiter. With cgroup
// enforcement memory.peak lands at the configured ceiling when the kernel
// kills the group, so a peak at (or within a sliver of) the limit
// identifies the breach.
func oomKilled(ws syscall.WaitStatus, limit, peak int64) bool {
	if ws.Signal() != unix.SIGKILL || limit <= 0 || peak <= 0 {
		return false
	}
	return peak >= limit-limit/16
}

// terminateGroup tears down the whole process tree: a soft SIGTERM first,
// then SIGKILL once the grace period elapses without the group exiting.
func terminateGroup(pid int, done <-chan error) error {
	_ = unix.Kill(-pid, unix.SIGTERM)
	grace := time.NewTimer(killGracePeriod)
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
	}
	_ = unix.Kill(-pid, unix.SIGKILL)
	return <-done
}
