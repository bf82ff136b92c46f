package checks

import "errors"

// Probe-layer errors. Both are recovered locally into an UNKNOWN result
// and never abort the remaining checks.
var (
	// ErrProbeUnavailable means the queried OS facility is absent or
	// blocked (missing utility, denied registry key, non-Windows host).
	ErrProbeUnavailable = errors.New("probe unavailable")

	// ErrProbeAmbiguous means the probe output was read but could not be
	// interpreted conclusively.
	ErrProbeAmbiguous = errors.New("probe output ambiguous")
)
