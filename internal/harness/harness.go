package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/store"
	"github.com/roach88/querygate/internal/testutil"
	"github.com/roach88/querygate/internal/validator"
	"github.com/roach88/querygate/internal/verror"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and id sequence.
type Harness struct {
	registry  *schema.Registry
	validator *validator.Validator
	logger    *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used to report case outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a harness for the entities of reg.
func New(reg *schema.Registry, opts ...Option) *Harness {
	h := &Harness{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.validator = validator.New(reg, validator.WithLogger(h.logger))
	return h
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database with deterministic clock and ids
// 2. Create the setup rows
// 3. Validate each case, executing it when the expectation needs rows
// 4. Compare each outcome with its expectation
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", h.registry,
		store.WithClock(testutil.NewDeterministicClock().Now),
		store.WithIDGenerator(testutil.NewSequentialIDs("id").Next),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := h.executeSetup(ctx, st, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		o := h.executeCase(ctx, st, c)
		result.AddOutcome(o)
		if err := checkOutcome(c, o); err != nil {
			result.AddError(err.Error())
		}
		h.logger.Info("case completed",
			"scenario", scenario.Name,
			"case", c.Name,
			"status", o.Status,
			"kind", o.Kind,
			"path", o.Path,
		)
	}
	return result, nil
}

// executeSetup creates the setup rows in order.
func (h *Harness) executeSetup(ctx context.Context, st *store.Store, setup []SetupStep) error {
	for i, step := range setup {
		data, err := normalizeInput(step.Data)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		args, err := h.validator.Create(step.Entity, map[string]any{"data": data})
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		row, err := st.Create(ctx, step.Entity, args.(*queryir.CreateArgs).Data)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		h.logger.Debug("setup row created", "step", i, "entity", step.Entity, "id", row["id"])
	}
	return nil
}

// executeCase validates one case and, when its expectation names rows or
// a count, runs it against the store.
func (h *Harness) executeCase(ctx context.Context, st *store.Store, c Case) Outcome {
	o := Outcome{Case: c.Name, Entity: c.Entity, Op: c.Op}

	input, err := normalizeInput(c.Input)
	if err != nil {
		o.Status = StatusFailed
		o.Message = err.Error()
		return o
	}

	args, err := h.validator.Validate(c.Entity, c.Op, input)
	if err != nil {
		o.Status = StatusRejected
		o.Message = err.Error()
		var verr *verror.Error
		if errors.As(err, &verr) {
			o.Kind = string(verr.Kind)
			o.Path = verr.Path.String()
			o.Message = verr.Message
		}
		return o
	}
	o.Status = StatusOK
	o.Normalized = args.Wire()

	if c.Expect.IDs == nil && c.Expect.Count == nil {
		return o
	}
	if err := execute(ctx, st, c.Entity, args, &o); err != nil {
		o.Status = StatusFailed
		o.Message = err.Error()
	}
	return o
}

// execute runs validated arguments against the store and records the
// returned ids or count on o.
func execute(ctx context.Context, st *store.Store, entity string, args queryir.Args, o *Outcome) error {
	switch a := args.(type) {
	case *queryir.FindArgs:
		if o.Op == queryir.OpFindFirst {
			row, err := st.FindFirst(ctx, entity, a)
			if err != nil {
				return err
			}
			o.IDs = []string{}
			if row != nil {
				o.IDs = rowIDs([]store.Row{row})
			}
			return nil
		}
		rows, err := st.FindMany(ctx, entity, a)
		if err != nil {
			return err
		}
		o.IDs = rowIDs(rows)
	case *queryir.CreateArgs:
		row, err := st.Create(ctx, entity, a.Data)
		if err != nil {
			return err
		}
		o.IDs = rowIDs([]store.Row{row})
	case *queryir.CountArgs:
		n, err := st.Count(ctx, entity, a)
		if err != nil {
			return err
		}
		o.Count = &n
	case *queryir.DeleteManyArgs:
		n, err := st.DeleteMany(ctx, entity, a)
		if err != nil {
			return err
		}
		o.Count = &n
	default:
		return fmt.Errorf("%s cannot be executed against the store", o.Op)
	}
	return nil
}

// rowIDs returns the id column of rows, rendered as text.
func rowIDs(rows []store.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprint(r.Wire()["id"])
	}
	return out
}
