package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
//   - ErrNotFound: no application or customer with the requested id
//   - ErrConflict: an entity with the same identity already exists
//   - ErrUnavailable: backing store or broker temporarily unavailable
//
// Validation failures are never reported through these; the registration
// cascade returns them as values.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
