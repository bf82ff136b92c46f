//go:build !windows

package checks

import (
	"context"
	"fmt"
)

// Non-Windows hosts have none of the queried facilities; every probe
// reports unavailable and classifies UNKNOWN.

func collectFirewall(_ context.Context) (FirewallFindings, error) {
	return FirewallFindings{}, fmt.Errorf("firewall query requires Windows: %w", ErrProbeUnavailable)
}

func collectRDP(_ context.Context) (RDPFindings, error) {
	return RDPFindings{}, fmt.Errorf("rdp query requires Windows: %w", ErrProbeUnavailable)
}

func collectDefender(_ context.Context) (DefenderFindings, error) {
	return DefenderFindings{}, fmt.Errorf("defender query requires Windows: %w", ErrProbeUnavailable)
}

func collectLocalAdmins(_ context.Context) (LocalAdminsFindings, error) {
	return LocalAdminsFindings{}, fmt.Errorf("local admins query requires Windows: %w", ErrProbeUnavailable)
}

func collectScreenLock(_ context.Context) (ScreenLockFindings, error) {
	return ScreenLockFindings{}, fmt.Errorf("screen lock query requires Windows: %w", ErrProbeUnavailable)
}
