package checks

import "fmt"

// CheckRegistry holds the ordered set of registered security checks.
// Registration order is the execution order and the report order.
type CheckRegistry struct {
	checks []SecurityCheck
	byID   map[string]struct{}
}

// NewCheckRegistry creates an empty registry.
func NewCheckRegistry() *CheckRegistry {
	return &CheckRegistry{
		byID: make(map[string]struct{}),
	}
}

// Register adds a check to the registry. A check with an empty or duplicate
// ID is rejected.
func (r *CheckRegistry) Register(check SecurityCheck) error {
	if check == nil {
		return fmt.Errorf("cannot register nil check")
	}
	id := check.ID()
	if id == "" {
		return fmt.Errorf("cannot register check with empty ID")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("check already registered: %s", id)
	}
	r.byID[id] = struct{}{}
	r.checks = append(r.checks, check)
	return nil
}

// Checks returns the registered checks in registration order.
func (r *CheckRegistry) Checks() []SecurityCheck {
	out := make([]SecurityCheck, len(r.checks))
	copy(out, r.checks)
	return out
}

// Count returns the number of registered checks.
func (r *CheckRegistry) Count() int {
	return len(r.checks)
}
