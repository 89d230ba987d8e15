package errutil

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds used across the menu engine. Callers classify with errors.Is.
var (
	// ErrNotFound reports a referenced menu, option, item, restriction or
	// message that does not exist. No side effect has taken place.
	ErrNotFound = errors.New("not found")

	// ErrNotPermitted reports a restriction check failure. No side effect has
	// taken place.
	ErrNotPermitted = errors.New("not permitted")

	// ErrPlatformUnreachable reports a Discord-side operation that could not
	// be completed. Batch operations log it and continue with remaining items.
	ErrPlatformUnreachable = errors.New("platform unreachable")

	// ErrCorruptReference reports a stored record pointing at a Discord
	// object that no longer exists. Treated as ErrNotFound at the point of
	// use; the record itself is left in place.
	ErrCorruptReference = fmt.Errorf("corrupt reference: %w", ErrNotFound)
)

// NotFoundf wraps ErrNotFound with a formatted description.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// NotPermittedf wraps ErrNotPermitted with a formatted description.
func NotPermittedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotPermitted)...)
}

// Unreachablef wraps ErrPlatformUnreachable with a formatted description and
// the underlying cause.
func Unreachablef(cause error, format string, args ...any) error {
	return fmt.Errorf(format+": %w: %w", append(args, ErrPlatformUnreachable, cause)...)
}

// ItemOutcome records the result of one grant/revoke against Discord.
type ItemOutcome struct {
	Action string // "grant" or "revoke"
	Target string // role or channel ID
	Err    error  // nil on success
}

// ApplyReport accumulates per-item outcomes of a best-effort batch. Partial
// failures are recorded and reported, never dropped, and never abort the
// remaining items.
type ApplyReport struct {
	Outcomes []ItemOutcome
}

// Record appends one outcome.
func (r *ApplyReport) Record(action, target string, err error) {
	r.Outcomes = append(r.Outcomes, ItemOutcome{Action: action, Target: target, Err: err})
}

// Failed returns the outcomes that carry an error.
func (r *ApplyReport) Failed() []ItemOutcome {
	var failed []ItemOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// AllFailed reports whether every attempted outcome failed. An empty report
// returns false.
func (r *ApplyReport) AllFailed() bool {
	if len(r.Outcomes) == 0 {
		return false
	}
	return len(r.Failed()) == len(r.Outcomes)
}

// Summary renders a short human-readable result, suitable for an ephemeral
// interaction reply.
func (r *ApplyReport) Summary() string {
	failed := r.Failed()
	if len(failed) == 0 {
		return fmt.Sprintf("%d change(s) applied", len(r.Outcomes))
	}
	parts := make([]string, 0, len(failed))
	for _, o := range failed {
		parts = append(parts, fmt.Sprintf("%s %s: %v", o.Action, o.Target, o.Err))
	}
	return fmt.Sprintf("%d of %d change(s) applied; failures: %s",
		len(r.Outcomes)-len(failed), len(r.Outcomes), strings.Join(parts, "; "))
}
