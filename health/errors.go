package health

import "errors"

var (
	// ErrDuplicateName indicates a check with the same name is already registered.
	ErrDuplicateName = errors.New("health: duplicate check name")

	// ErrInvalidCheck indicates a registration with an empty name, nil probe or negative timeout.
	ErrInvalidCheck = errors.New("health: invalid check")

	// ErrRegistrySealed indicates a registration after the registry was sealed.
	ErrRegistrySealed = errors.New("health: registry is sealed")

	// ErrCheckNotFound indicates a check was not found.
	ErrCheckNotFound = errors.New("health: check not found")

	// ErrProbeFailure indicates a probe returned an error or panicked.
	ErrProbeFailure = errors.New("health: probe failed")

	// ErrProbeTimeout indicates a probe did not finish within its timeout.
	ErrProbeTimeout = errors.New("health: probe timeout")

	// ErrRouteConflict indicates two routes share a pattern.
	ErrRouteConflict = errors.New("health: conflicting routes")

	// ErrBind indicates the HTTP listener could not be bound.
	ErrBind = errors.New("health: bind failed")
)
