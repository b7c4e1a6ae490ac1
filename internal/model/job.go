package model

// JobKind selects which engine operation an AMQP job invokes.
type JobKind string

const (
	JobExecute  JobKind = "execute"
	JobValidate JobKind = "validate"
	JobTest     JobKind = "test"
)

// Job is the wire format consumed from the request queue.
type Job struct {
	ID       string  `json:"id"`
	Kind     JobKind `json:"kind"`
	Language string  `json:"language"`
	// Code is a pointer so a job missing the field entirely can be told
	// apart from one submitting an empty program.
	Code      *string `json:"code"`
	Stdin     string  `json:"stdin,omitempty"`
	TimeoutMs int     `json:"timeout,omitempty"`
	// MaxMemory is a human-readable size token ("64m", "1g", "262144").
	MaxMemory string        `json:"max_memory,omitempty"`
	TestCases []JobTestCase `json:"test_cases,omitempty"`
}

// JobTestCase inlines a test case or references fixture objects by name.
// A non-empty *File field wins over its inline counterpart.
type JobTestCase struct {
	Input              string `json:"input,omitempty"`
	InputFile          string `json:"input_file,omitempty"`
	ExpectedOutput     string `json:"expected_output,omitempty"`
	ExpectedOutputFile string `json:"expected_output_file,omitempty"`
	Description        string `json:"description,omitempty"`
}

// JobResponse is the wire format published to the response queue. Exactly
// one of the payload pointers is set on success; Error is set when the job
// was rejected before reaching the engine.
type JobResponse struct {
	ID         string            `json:"id"`
	Kind       JobKind           `json:"kind"`
	Error      string            `json:"error,omitempty"`
	Execution  *ExecutionResult  `json:"execution,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Tests      *TestBatchResult  `json:"tests,omitempty"`
}
