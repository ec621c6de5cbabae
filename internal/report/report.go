package report

import "time"

// StepResult represents the outcome of a single deployment step (e.g. archive, upload).
type StepResult struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Passed   bool          `json:"passed"`
	// Details is a short, human-readable description of what the step produced.
	Details string `json:"details,omitempty"`
	// Error contains the failure reason, if any.
	Error string `json:"error,omitempty"`
}

// Reporter is the interface for deployment step reporting.
type Reporter interface {
	// Add adds the StepResult to the reporter. StepResults added this way can then be rendered out by calling Render().
	Add(s StepResult)
	// Render renders the step results. The destination depends on the implementation.
	Render()
	// Reset resets the state of the reporter (e.g. remove any previously reported StepResults).
	Reset()
}
