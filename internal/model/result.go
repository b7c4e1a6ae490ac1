package model

// ExecutionResult is produced exactly once per ExecutionRequest, on every
// code path including timeouts, kills and engine-internal faults.
type ExecutionResult struct {
	Stdout string `json:"stdout"`
	// Error carries captured stderr for runtime failures, or the fault
	// description for engine-internal failures. Empty on clean runs.
	Error string `json:"error,omitempty"`
	// ExitCode is nil when the process was killed before exiting.
	ExitCode        *int  `json:"exitCode"`
	ExecutionTimeMs int64 `json:"executionTimeMs"`
	// CPUTimeMs and MemoryPeakBytes are best-effort, populated when the
	// run was tracked by a cgroup.
	CPUTimeMs       int64 `json:"cpuTimeMs,omitempty"`
	MemoryPeakBytes int64 `json:"memoryPeakBytes,omitempty"`
	TimedOut        bool  `json:"timedOut"`
	MemoryExceeded  bool  `json:"memoryExceeded"`
	OutputTruncated bool  `json:"outputTruncated,omitempty"`
}

// TestCase is one input/expected-output pair. Order of a supplied sequence
// is preserved in reporting but carries no other meaning.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	Description    string `json:"description,omitempty"`
}

type TestCaseResult struct {
	Input           string `json:"input"`
	ExpectedOutput  string `json:"expectedOutput"`
	ActualOutput    string `json:"actualOutput"`
	Passed          bool   `json:"passed"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

type TestBatchResult struct {
	ScorePercent float64          `json:"score"`
	PassedCount  int              `json:"passedTests"`
	TotalCount   int              `json:"totalTests"`
	Cases        []TestCaseResult `json:"testResults"`
}

type ValidationResult struct {
	Valid bool `json:"valid"`
	// Errors holds human-readable diagnostics, empty when Valid.
	Errors []string `json:"errors"`
}
