package vm

import (
	"context"
	"time"
)

// Budget bounds a single Solve/NextSolution call so that a runaway or
// pathologically backtracking program cannot hang the embedding process
// (spec.md §9 Open Question: step/time budget).
type Budget struct {
	MaxSteps int           // 0 means unlimited
	MaxTime  time.Duration // 0 means unlimited

	steps   int
	deadline time.Time
}

// DefaultBudget is the budget NewMachine gives every new Machine: generous enough for interactive use, tight enough to bound
// a runaway query.
var DefaultBudget = Budget{MaxSteps: 10_000_000, MaxTime: 10 * time.Second}

func (b *Budget) start() {
	if b.MaxTime > 0 {
		b.deadline = time.Now().Add(b.MaxTime)
	}
	b.steps = 0
}

// tick increments the step counter and reports whether the budget is
// exhausted; called once per rule-predicate call (callPredicate). Calls a
// clause body makes straight to a primop or table are not counted.
func (b *Budget) tick(ctx context.Context) *Error {
	b.steps++
	if b.MaxSteps > 0 && b.steps > b.MaxSteps {
		return newError(ErrBudget, Indicator{}, "exceeded max steps (%d)", b.MaxSteps)
	}
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		return newError(ErrBudget, Indicator{}, "exceeded time budget (%s)", b.MaxTime)
	}
	if ctx != nil {
		select {
		case <-ctx.Done():
			return newError(ErrBudget, Indicator{}, "context cancelled: %v", ctx.Err())
		default:
		}
	}
	return nil
}
