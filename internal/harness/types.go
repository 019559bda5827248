package harness

// Outcome status values.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Outcome is what happened to one case.
type Outcome struct {
	Case   string `json:"case"`
	Entity string `json:"entity"`
	Op     string `json:"op"`

	// Status is "ok" when the input validated, "rejected" when validation
	// failed, and "failed" when the store could not execute an accepted input.
	Status string `json:"status"`

	// Kind, Path and Message describe a rejection.
	Kind    string `json:"kind,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`

	// Normalized is the wire form of the accepted input.
	Normalized any `json:"normalized,omitempty"`

	// IDs and Count are filled when the case was executed against the store.
	IDs   []string `json:"ids,omitempty"`
	Count *int64   `json:"count,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case met its expectation.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per case, in file order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutcome records the outcome of one case.
func (r *Result) AddOutcome(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}
