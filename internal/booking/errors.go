package booking

import "errors"

// ErrNotFound is returned when a move or cancel criterion matches no existing
// event under exact case-insensitive title comparison.
var ErrNotFound = errors.New("no matching event found")

// ValidationError reports an intent record that is structurally insufficient
// to build an event. It is raised before any network call is attempted and is
// never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid intent: " + e.Reason
}
