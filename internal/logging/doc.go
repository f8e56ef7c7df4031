// Package logging assembles structured slog loggers and formatting helpers used
// across musictaste.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (component, event type, error
// hint, impact) so warnings carry a cause, a consequence, and a next step. A
// session handler stamps every record of one CLI run with a shared session_id.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
