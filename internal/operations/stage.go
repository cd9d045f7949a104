package operations

import "time"

// Step names, in execution order
const (
	StepLoad        = "load"
	StepInspect     = "inspect"
	StepSnapshot    = "snapshot"
	StepClean       = "clean"
	StepInterpolate = "interpolate"
	StepDerive      = "derive"
	StepSummarize   = "summarize"
	StepExport      = "export"
	StepRender      = "render"
)

// Steps lists every step in the order Run executes them
var Steps = []string{
	StepLoad, StepInspect, StepSnapshot, StepClean, StepInterpolate,
	StepDerive, StepSummarize, StepExport, StepRender,
}

// StepStatus represents the current status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState is the outcome of one step
type StepState struct {
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewStepState creates a pending step
func NewStepState(name string) *StepState {
	return &StepState{Name: name, Status: StepStatusPending}
}

// Start marks the step as active
func (s *StepState) Start() {
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step as completed
func (s *StepState) Complete() {
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the step as failed with err
func (s *StepState) Fail(err error) {
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err.Error()
}

// Skip marks the step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	now := time.Now()
	s.StartTime = &now
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// Duration returns how long the step ran
func (s *StepState) Duration() time.Duration {
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
