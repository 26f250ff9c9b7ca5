package standard

import "errors"

// Sentinel errors returned by the registry. Callers match them with
// errors.Is; HTTP handlers map them to status codes.
var (
	// ErrNotFound indicates an unknown natural key was referenced.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a natural-key collision on create.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidState indicates an approve/reject on a change-log entry
	// that does not exist or is no longer pending.
	ErrInvalidState = errors.New("invalid state")

	// ErrIntegrityViolation indicates a write that would orphan a junction
	// row. It is rejected before commit.
	ErrIntegrityViolation = errors.New("integrity violation")
)

// ErrorKind returns a stable machine-readable kind for a registry error,
// used in bulk-approval outcomes and API error payloads.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrIntegrityViolation):
		return "integrity_violation"
	default:
		return "internal"
	}
}
