package checks

import (
	"context"
	"time"
)

// RDP registry locations (Windows 10/11).
//
//	fDenyTSConnections: 0 = allow connections (RDP enabled), 1 = deny
//	UserAuthentication: 1 = NLA required, 0 = not required
const (
	rdpKeyPath     = `SYSTEM\CurrentControlSet\Control\Terminal Server`
	rdpTCPKeyPath  = `SYSTEM\CurrentControlSet\Control\Terminal Server\WinStations\RDP-Tcp`
	rdpDenyValue   = "fDenyTSConnections"
	rdpNLAValue    = "UserAuthentication"
)

// RDPFindings is the raw probe output for the Remote Desktop check.
// Nil means the corresponding registry value could not be read.
type RDPFindings struct {
	Enabled     *bool
	NLARequired *bool
}

// RDPCheck inspects whether Remote Desktop is enabled and, if so, whether
// Network Level Authentication is required.
type RDPCheck struct {
	Query   func(ctx context.Context) (RDPFindings, error)
	Timeout time.Duration
}

func (c *RDPCheck) ID() string    { return "rdp" }
func (c *RDPCheck) Title() string { return "Remote Desktop (RDP)" }

// Execute runs the RDP probe and classifies its findings.
func (c *RDPCheck) Execute(ctx context.Context) CheckResult {
	query := c.Query
	if query == nil {
		query = collectRDP
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	findings, err := query(ctx)
	if err != nil {
		return unknownResult(c.ID(), c.Title(),
			"GuardDog could not read the Remote Desktop settings.", err,
			rdpRemediation(StatusUnknown))
	}
	return classifyRDP(findings)
}

// classifyRDP maps RDP findings to a check result. RDP off is OK whatever
// the NLA value says; RDP on requires NLA to be explicitly required for
// OK; an explicitly missing NLA requirement is HIGH; anything ambiguous
// is UNKNOWN.
func classifyRDP(findings RDPFindings) CheckResult {
	details := []string{
		"Remote Desktop connections: " +
			boolLabel(findings.Enabled, "ENABLED", "DISABLED", "UNKNOWN"),
		"Network Level Authentication (NLA): " +
			boolLabel(findings.NLARequired, "REQUIRED", "NOT required", "UNKNOWN"),
	}

	var status Status
	var summary string
	switch {
	case findings.Enabled != nil && !*findings.Enabled:
		status = StatusOK
		summary = "Remote Desktop is turned OFF. This reduces the risk of remote logins to this computer."
	case findings.Enabled != nil && findings.NLARequired != nil && *findings.NLARequired:
		status = StatusOK
		summary = "Remote Desktop is turned ON, and Network Level Authentication (NLA) is required."
	case findings.Enabled != nil && findings.NLARequired != nil && !*findings.NLARequired:
		status = StatusHigh
		summary = "Remote Desktop is ON and Network Level Authentication (NLA) is NOT required. " +
			"This makes it easier for attackers to try to sign in remotely."
	default:
		status = StatusUnknown
		summary = "GuardDog could not determine the Remote Desktop settings from the registry."
	}

	return CheckResult{
		ID:          "rdp",
		Title:       "Remote Desktop (RDP)",
		Status:      status,
		Summary:     summary,
		Details:     details,
		Remediation: rdpRemediation(status),
	}
}

func rdpRemediation(status Status) []string {
	switch status {
	case StatusOK:
		return []string{
			"No urgent action needed. If you do not need Remote Desktop at all, you can turn it off " +
				"in Settings > System > Remote Desktop.",
		}
	case StatusHigh:
		return []string{
			"Open Settings > System > Remote Desktop.",
			"If you do not need Remote Desktop, turn it off.",
			"If you do need it, ensure that 'Require devices to use Network Level Authentication' is turned ON.",
		}
	default:
		return []string{
			"GuardDog could not reliably read the Remote Desktop settings.",
			"You can manually open Settings > System > Remote Desktop to check whether Remote Desktop " +
				"is enabled, and whether Network Level Authentication is required.",
		}
	}
}
