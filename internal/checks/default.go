package checks

import (
	"fmt"

	"github.com/guarddog-sec/guarddog/internal/config"
)

// DefaultRegistry builds the registry with all five baseline checks in
// their fixed report order.
func DefaultRegistry(cfg *config.Config) (*CheckRegistry, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	registry := NewCheckRegistry()
	all := []SecurityCheck{
		&FirewallCheck{Timeout: cfg.ProbeTimeout},
		&RDPCheck{Timeout: cfg.ProbeTimeout},
		&DefenderCheck{Timeout: cfg.ProbeTimeout},
		&LocalAdminsCheck{Timeout: cfg.ProbeTimeout},
		&ScreenLockCheck{
			Timeout:     cfg.ProbeTimeout,
			OKTimeout:   cfg.ScreenLockOKTimeout,
			WarnTimeout: cfg.ScreenLockWarnTimeout,
		},
	}
	for _, check := range all {
		if err := registry.Register(check); err != nil {
			return nil, fmt.Errorf("failed to register %s check: %w", check.ID(), err)
		}
	}
	return registry, nil
}
