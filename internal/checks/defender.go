package checks

import (
	"context"
	"encoding/json"
	"time"
)

// Defender registry locations for the DisableRealtimeMonitoring fallback.
// The registry flags are a heuristic on modern Windows; the PowerShell
// Get-MpComputerStatus result is preferred when available.
const (
	defenderBaseKeyPath   = `SOFTWARE\Microsoft\Windows Defender\Real-Time Protection`
	defenderPolicyKeyPath = `SOFTWARE\Policies\Microsoft\Windows Defender\Real-Time Protection`
	defenderDisableValue  = "DisableRealtimeMonitoring"
)

// DefenderFindings is the raw probe output for the Defender check.
// Nil fields mean the corresponding signal could not be read.
type DefenderFindings struct {
	// DisabledLocal reports whether real-time protection is disabled per
	// local settings (or per Get-MpComputerStatus when that was used).
	DisabledLocal *bool

	// DisabledPolicy reports whether real-time protection is disabled by
	// group policy.
	DisabledPolicy *bool

	// Source names where the data came from: "powershell", "registry",
	// or "none".
	Source string
}

// mpComputerStatus is the subset of Get-MpComputerStatus fields GuardDog
// consumes, as serialized by ConvertTo-Json.
type mpComputerStatus struct {
	AMServiceEnabled          *bool `json:"AMServiceEnabled"`
	AntivirusEnabled          *bool `json:"AntivirusEnabled"`
	RealTimeProtectionEnabled *bool `json:"RealTimeProtectionEnabled"`
}

// parseDefenderStatus interprets the JSON emitted by Get-MpComputerStatus.
// ConvertTo-Json may wrap a single object in an array.
func parseDefenderStatus(raw []byte) (DefenderFindings, bool) {
	var status mpComputerStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		var list []mpComputerStatus
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return DefenderFindings{Source: "none"}, false
		}
		status = list[0]
	}

	findings := DefenderFindings{Source: "powershell"}
	if status.RealTimeProtectionEnabled != nil {
		disabled := !*status.RealTimeProtectionEnabled
		findings.DisabledLocal = &disabled
	}
	return findings, true
}

// DefenderCheck inspects Microsoft Defender real-time protection.
type DefenderCheck struct {
	Query   func(ctx context.Context) (DefenderFindings, error)
	Timeout time.Duration
}

func (c *DefenderCheck) ID() string    { return "defender" }
func (c *DefenderCheck) Title() string { return "Microsoft Defender" }

// Execute runs the Defender probe and classifies its findings.
func (c *DefenderCheck) Execute(ctx context.Context) CheckResult {
	query := c.Query
	if query == nil {
		query = collectDefender
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	findings, err := query(ctx)
	if err != nil {
		return unknownResult(c.ID(), c.Title(),
			"GuardDog could not read the Microsoft Defender settings.", err,
			defenderRemediation(StatusUnknown))
	}
	return classifyDefender(findings)
}

// classifyDefender maps Defender findings to a check result: HIGH when
// real-time protection is explicitly disabled in local or policy settings,
// OK when at least one signal confirms it is not disabled, and UNKNOWN
// when nothing conclusive could be read (for example when a third-party
// antivirus product is the primary one).
func classifyDefender(findings DefenderFindings) CheckResult {
	details := []string{
		"Local setting: real-time protection " +
			boolLabel(findings.DisabledLocal, "is DISABLED", "is NOT disabled", "status is UNKNOWN"),
		"Policy: real-time protection " +
			boolLabel(findings.DisabledPolicy, "is DISABLED by policy", "is NOT disabled by policy", "policy status is UNKNOWN"),
	}
	if findings.Source != "" {
		details = append(details, "Data source: "+findings.Source)
	}

	anyDisabled := (findings.DisabledLocal != nil && *findings.DisabledLocal) ||
		(findings.DisabledPolicy != nil && *findings.DisabledPolicy)
	anyEnabledHint := (findings.DisabledLocal != nil && !*findings.DisabledLocal) ||
		(findings.DisabledPolicy != nil && !*findings.DisabledPolicy)

	var status Status
	var summary string
	switch {
	case anyDisabled:
		status = StatusHigh
		summary = "Microsoft Defender real-time protection appears to be turned OFF. " +
			"This makes it easier for malware to run without being noticed."
	case anyEnabledHint:
		status = StatusOK
		summary = "Microsoft Defender real-time protection appears to be turned ON " +
			"(it is not marked as disabled in local or policy settings)."
	default:
		status = StatusUnknown
		summary = "GuardDog could not find clear settings for Microsoft Defender real-time protection. " +
			"This can happen if another antivirus product is managing protection, or if this " +
			"Windows version stores these settings differently."
	}

	return CheckResult{
		ID:          "defender",
		Title:       "Microsoft Defender",
		Status:      status,
		Summary:     summary,
		Details:     details,
		Remediation: defenderRemediation(status),
	}
}

func defenderRemediation(status Status) []string {
	switch status {
	case StatusOK:
		return []string{
			"No action needed. You can confirm this in Windows Security > 'Virus & threat protection'.",
		}
	case StatusHigh:
		return []string{
			"Open Windows Security > 'Virus & threat protection' > 'Manage settings' and turn real-time protection ON.",
			"If you use another antivirus product, confirm it is active and up to date.",
		}
	default:
		return []string{
			"GuardDog could not clearly read Defender's status.",
			"Open Windows Security > 'Virus & threat protection' and confirm real-time protection " +
				"(or another antivirus product) is active.",
		}
	}
}
