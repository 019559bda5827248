package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestCheckOutcome(t *testing.T) {
	rejected := Outcome{Case: "c", Status: StatusRejected, Kind: "SHAPE_MISMATCH", Path: "where.titel", Message: `unknown field "titel"`}
	accepted := Outcome{Case: "c", Status: StatusOK, IDs: []string{"b1", "b2"}, Count: int64Ptr(2)}

	tests := []struct {
		name    string
		expect  Expect
		outcome Outcome
		wantErr string
	}{
		{"accepted", Expect{OK: true}, accepted, ""},
		{"ids match", Expect{OK: true, IDs: []string{"b1", "b2"}}, accepted, ""},
		{"ids order matters", Expect{OK: true, IDs: []string{"b2", "b1"}}, accepted, "ids [b2 b1]"},
		{"count mismatch", Expect{OK: true, Count: int64Ptr(3)}, accepted, "Actual: count 2"},
		{"count missing", Expect{OK: true, Count: int64Ptr(3)}, Outcome{Status: StatusOK}, "Actual: no count"},
		{"expected ok got rejection", Expect{OK: true}, rejected, `Actual: SHAPE_MISMATCH at "where.titel"`},
		{"kind only", Expect{Error: "SHAPE_MISMATCH"}, rejected, ""},
		{"kind and path", Expect{Error: "SHAPE_MISMATCH", Path: strPtr("where.titel")}, rejected, ""},
		{"message substring", Expect{Error: "SHAPE_MISMATCH", Message: "titel"}, rejected, ""},
		{"wrong kind", Expect{Error: "AMBIGUOUS_IDENTITY"}, rejected, "Expected: AMBIGUOUS_IDENTITY error"},
		{"wrong path", Expect{Error: "SHAPE_MISMATCH", Path: strPtr("where")}, rejected, `Actual: SHAPE_MISMATCH at "where.titel"`},
		{"wrong message", Expect{Error: "SHAPE_MISMATCH", Message: "nope"}, rejected, `message containing "nope"`},
		{"expected error got ok", Expect{Error: "SHAPE_MISMATCH"}, accepted, "Actual: input accepted"},
		{"execution failure", Expect{OK: true}, Outcome{Status: StatusFailed, Message: "boom"}, "Actual: execution failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOutcome(Case{Name: "c", Expect: tt.expect}, tt.outcome)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "c", ae.Case)
		})
	}
}
