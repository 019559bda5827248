package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an outcome does not meet its expectation.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Case     string  // Case name
	Expected string  // Human-readable expected outcome
	Actual   string  // Human-readable actual outcome
	Outcome  Outcome // Full outcome for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Case failed: %s\n", e.Case)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Outcome.Message != "" {
		fmt.Fprintf(&buf, "  Message: %s\n", e.Outcome.Message)
	}

	return buf.String()
}

// checkOutcome compares one outcome with the expectation of its case.
func checkOutcome(c Case, o Outcome) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Case: c.Name, Expected: expected, Actual: actual, Outcome: o}
	}
	e := c.Expect

	if e.OK {
		if o.Status != StatusOK {
			return fail("input accepted", describeOutcome(o))
		}
		if e.IDs != nil && !slices.Equal(e.IDs, o.IDs) {
			return fail(fmt.Sprintf("ids %v", e.IDs), fmt.Sprintf("ids %v", o.IDs))
		}
		if e.Count != nil && (o.Count == nil || *o.Count != *e.Count) {
			return fail(fmt.Sprintf("count %d", *e.Count), describeCount(o.Count))
		}
		return nil
	}

	if o.Status != StatusRejected || o.Kind != e.Error {
		return fail(fmt.Sprintf("%s error", e.Error), describeOutcome(o))
	}
	if e.Path != nil && o.Path != *e.Path {
		return fail(fmt.Sprintf("%s at %q", e.Error, *e.Path), fmt.Sprintf("%s at %q", o.Kind, o.Path))
	}
	if e.Message != "" && !strings.Contains(o.Message, e.Message) {
		return fail(fmt.Sprintf("message containing %q", e.Message), fmt.Sprintf("message %q", o.Message))
	}
	return nil
}

func describeOutcome(o Outcome) string {
	switch o.Status {
	case StatusOK:
		return "input accepted"
	case StatusRejected:
		if o.Kind == "" {
			return "rejected: " + o.Message
		}
		return fmt.Sprintf("%s at %q", o.Kind, o.Path)
	default:
		return "execution failed: " + o.Message
	}
}

func describeCount(n *int64) string {
	if n == nil {
		return "no count"
	}
	return fmt.Sprintf("count %d", *n)
}
