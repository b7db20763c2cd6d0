package pool

import "errors"

var (
	// ErrEntryNotFound is returned by operator actions targeting a
	// (family, uuid) pair that does not exist in the pool.
	ErrEntryNotFound = errors.New("pool: entry not found")

	// ErrFamilyNotFound is returned when a family has never been loaded
	// or created, e.g. from GetPoolSnapshot.
	ErrFamilyNotFound = errors.New("pool: family not found")

	// ErrNoAdapterFactory is returned by health-probe operations when the
	// manager was constructed without an AdapterFactory.
	ErrNoAdapterFactory = errors.New("pool: no adapter factory configured")
)
