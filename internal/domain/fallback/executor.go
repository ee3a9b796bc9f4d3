package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrExhausted is matched by errors.Is when every candidate has failed.
var ErrExhausted = errors.New("all fallback candidates failed")

// Candidate is one named alternative way of achieving the same effect.
type Candidate[A any] struct {
	// Name identifies the candidate in diagnostics, e.g. "radio-info-settings".
	Name string
	// Action is passed to the attempt function.
	Action A
}

// Failure records why a single candidate did not succeed.
type Failure struct {
	// Candidate is the name of the failed candidate.
	Candidate string
	// Reason is the error returned by the attempt.
	Reason error
}

// String renders the failure as "name: reason".
func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Candidate, f.Reason)
}

// Outcome is the result of a successful run.
type Outcome[A any] struct {
	// Selected is the candidate that succeeded.
	Selected Candidate[A]
	// Failures lists the candidates that failed before Selected, in attempt order.
	Failures []Failure
}

// ExhaustedError is returned when no candidate succeeded.
type ExhaustedError struct {
	// Failures lists every attempted candidate in order.
	Failures []Failure
}

// Error joins every candidate failure into one message.
func (e *ExhaustedError) Error() string {
	if len(e.Failures) == 0 {
		return ErrExhausted.Error() + ": no candidates configured"
	}

	return ErrExhausted.Error() + ": " + trail(e.Failures)
}

// Is makes errors.Is(err, ErrExhausted) hold.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// Unwrap exposes the individual reasons to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	reasons := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.Reason)
	}

	return reasons
}

// AttemptFunc performs one candidate action. A nil error means success.
type AttemptFunc[A any] func(ctx context.Context, action A) error

// Observer is told about every attempt result; err is nil on success.
type Observer func(ctx context.Context, candidate string, err error)

// Execute tries candidates in order and stops at the first success.
// Every candidate is attempted at most once. If the context is canceled
// between attempts, the remaining candidates are skipped and the context
// error is returned wrapped with the failures collected so far; this is not
// an exhaustion.
func Execute[A any](
	ctx context.Context,
	candidates []Candidate[A],
	attempt AttemptFunc[A],
	observers ...Observer,
) (*Outcome[A], error) {
	failures := make([]Failure, 0, len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			if len(failures) == 0 {
				return nil, fmt.Errorf("stopped before %q: %w", candidate.Name, err)
			}

			return nil, fmt.Errorf("stopped before %q after %s: %w", candidate.Name, trail(failures), err)
		}

		err := attempt(ctx, candidate.Action)
		for _, observe := range observers {
			observe(ctx, candidate.Name, err)
		}

		if err == nil {
			return &Outcome[A]{
				Selected: candidate,
				Failures: failures,
			}, nil
		}

		failures = append(failures, Failure{
			Candidate: candidate.Name,
			Reason:    err,
		})
	}

	return nil, &ExhaustedError{Failures: failures}
}

// trail renders failures as "a: reason; b: reason".
func trail(failures []Failure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, f.String())
	}

	return strings.Join(parts, "; ")
}
