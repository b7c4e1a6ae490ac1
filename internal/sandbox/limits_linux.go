//go:build linux

package sandbox

import (
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/criyle/go-sandbox/pkg/cgroup"
	"github.com/pkg/errors"
)

// usage aggregates post-run resource accounting for one process tree.
type usage struct {
	cpuTime   time.Duration
	peakBytes int64
}

// limiter enforces and accounts one run's resource budget. It is
// language-agnostic: it only knows the pid tree and the byte budget.
type limiter interface {
	// Attach places pid and all its future descendants under the limiter.
	Attach(pid int) error
	// Usage reports consumption after the process has been waited on.
	Usage(state *os.ProcessState) usage
	Close()
}

var (
	rootOnce sync.Once
	rootCG   cgroup.Cgroup
	rootErr  error
	warnOnce sync.Once
)

// warnUnenforced reports the missing-cgroup condition once per process;
// every run after the first falls back silently.
func warnUnenforced(err error) {
	warnOnce.Do(func() {
		slog.Warn("cgroup unavailable, memory limits unenforced", "error", err)
	})
}

func initRootCgroup(name string) {
	if cgroup.DetectType() == cgroup.TypeV2 {
		cgroup.EnableV2Nesting()
	}
	ct, err := cgroup.GetAvailableController()
	if err != nil {
		rootErr = errors.Wrap(err, "detect cgroup controllers")
		return
	}
	rootCG, rootErr = cgroup.New(name, ct)
}

// newLimiter builds a cgroup-backed limiter when enabled and available and
// falls back to rusage-only accounting otherwise. Memory must be enforced
// at the OS level: untrusted code cannot be trusted to self-report.
func (s *Sandbox) newLimiter(memLimit int64) (limiter, error) {
	if !s.cfg.EnableCgroup {
		return rusageLimiter{}, nil
	}
	rootOnce.Do(func() { initRootCgroup(s.cfg.CgroupParent) })
	if rootErr != nil {
		return rusageLimiter{}, rootErr
	}
	cg, err := rootCG.Random("run")
	if err != nil {
		return rusageLimiter{}, errors.Wrap(err, "create run cgroup")
	}
	if memLimit > 0 {
		if err := cg.SetMemoryLimit(uint64(memLimit)); err != nil {
			_ = cg.Destroy()
			return rusageLimiter{}, errors.Wrap(err, "set memory limit")
		}
	}
	return &cgroupLimiter{cg: cg}, nil
}

type cgroupLimiter struct {
	cg cgroup.Cgroup
}

func (l *cgroupLimiter) Attach(pid int) error { return l.cg.AddProc(pid) }

func (l *cgroupLimiter) Usage(state *os.ProcessState) usage {
	u := rusageLimiter{}.Usage(state)
	if cpu, err := l.cg.CPUUsage(); err == nil && cpu > 0 {
		u.cpuTime = time.Duration(cpu)
	}
	if mem, err := l.cg.MemoryMaxUsage(); err == nil && int64(mem) > u.peakBytes {
		u.peakBytes = int64(mem)
	}
	return u
}

func (l *cgroupLimiter) Close() { _ = l.cg.Destroy() }

// rusageLimiter enforces nothing; it reports what the kernel already
// accounted for the direct child.
type rusageLimiter struct{}

func (rusageLimiter) Attach(int) error { return nil }

func (rusageLimiter) Usage(state *os.ProcessState) usage {
	var u usage
	if state == nil {
		return u
	}
	u.cpuTime = state.UserTime() + state.SystemTime()
	if ru, ok := state.SysUsage().(*syscall.Rusage); ok {
		// Maxrss is in kilobytes on linux.
		u.peakBytes = ru.Maxrss * 1024
	}
	return u
}

func (rusageLimiter) Close() {}
