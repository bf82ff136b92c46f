package checks

import "context"

// Status classifies the outcome of a security check.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarn    Status = "WARN"
	StatusHigh    Status = "HIGH"
	StatusUnknown Status = "UNKNOWN"
)

// severity orders statuses for the overall-status computation:
// HIGH > WARN > UNKNOWN > OK.
func (s Status) severity() int {
	switch s {
	case StatusHigh:
		return 3
	case StatusWarn:
		return 2
	case StatusUnknown:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two statuses.
func (s Status) Worse(other Status) Status {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// SecurityCheck defines the interface for all baseline security checks.
// Implementations are read-only: they query OS state and never modify it.
type SecurityCheck interface {
	ID() string
	Title() string
	Execute(ctx context.Context) CheckResult
}

// CheckResult represents the result of a security check. It is created
// once at classification time and never recomputed.
type CheckResult struct {
	ID          string   `json:"check_id"`
	Title       string   `json:"title"`
	Status      Status   `json:"status"`
	Summary     string   `json:"summary"`
	Details     []string `json:"details,omitempty"`
	Remediation []string `json:"remediation,omitempty"`
}
