package checks

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ProfileState is the firewall state of one network profile.
type ProfileState string

const (
	ProfileOn      ProfileState = "ON"
	ProfileOff     ProfileState = "OFF"
	ProfileUnknown ProfileState = "UNKNOWN"
)

// Firewall registry locations. The policy path represents enforced
// settings on managed systems; the operational path is the fallback.
// StandardProfile corresponds to "Private" historically.
const (
	firewallPolicyKeyBase = `SOFTWARE\Policies\Microsoft\WindowsFirewall`
	firewallOpsKeyBase    = `SYSTEM\CurrentControlSet\Services\SharedAccess\Parameters\FirewallPolicy`
)

// FirewallFindings is the raw probe output for the firewall check.
type FirewallFindings struct {
	Domain  ProfileState
	Private ProfileState
	Public  ProfileState

	// Note carries non-fatal probe diagnostics, e.g. that netsh parsing
	// failed and the registry fallback was used.
	Note string
}

// parseNetshProfiles extracts per-profile firewall states from the output
// of `netsh advfirewall show allprofiles` (English output only). The
// second return value reports whether any profile state was found.
func parseNetshProfiles(output string) (FirewallFindings, bool) {
	findings := FirewallFindings{
		Domain:  ProfileUnknown,
		Private: ProfileUnknown,
		Public:  ProfileUnknown,
	}

	var current *ProfileState
	found := false

	for _, rawLine := range strings.Split(output, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "domain profile settings"):
			current = &findings.Domain
			continue
		case strings.Contains(lower, "private profile settings"):
			current = &findings.Private
			continue
		case strings.Contains(lower, "public profile settings"):
			current = &findings.Public
			continue
		}

		if current == nil || !strings.HasPrefix(lower, "state") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 2 {
			switch strings.ToUpper(fields[len(fields)-1]) {
			case "ON":
				*current = ProfileOn
				found = true
			case "OFF":
				*current = ProfileOff
				found = true
			}
		}
	}

	return findings, found
}

// FirewallCheck inspects the Windows Defender Firewall state per profile.
type FirewallCheck struct {
	// Query overrides the platform probe; used in tests.
	Query func(ctx context.Context) (FirewallFindings, error)

	// Timeout bounds the probe's external calls.
	Timeout time.Duration
}

func (c *FirewallCheck) ID() string    { return "firewall" }
func (c *FirewallCheck) Title() string { return "Windows Firewall" }

// Execute runs the firewall probe and classifies its findings.
func (c *FirewallCheck) Execute(ctx context.Context) CheckResult {
	query := c.Query
	if query == nil {
		query = collectFirewall
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	findings, err := query(ctx)
	if err != nil {
		return unknownResult(c.ID(), c.Title(),
			"GuardDog could not read the firewall status.", err,
			firewallRemediation(StatusUnknown))
	}
	return classifyFirewall(findings)
}

// classifyFirewall maps firewall findings to a check result: OK when every
// profile is ON, HIGH when any profile is OFF, UNKNOWN otherwise.
func classifyFirewall(findings FirewallFindings) CheckResult {
	states := []struct {
		name  string
		state ProfileState
	}{
		{"Domain", findings.Domain},
		{"Private", findings.Private},
		{"Public", findings.Public},
	}

	details := make([]string, 0, len(states)+1)
	anyOff := false
	allOn := true
	for _, s := range states {
		state := s.state
		if state == "" {
			state = ProfileUnknown
		}
		details = append(details, fmt.Sprintf("%s profile: %s", s.name, state))
		if state == ProfileOff {
			anyOff = true
		}
		if state != ProfileOn {
			allOn = false
		}
	}
	if findings.Note != "" {
		details = append(details, findings.Note)
	}

	var status Status
	var summary string
	switch {
	case anyOff:
		status = StatusHigh
		summary = "Windows Firewall is turned OFF for at least one network profile."
	case allOn:
		status = StatusOK
		summary = "Windows Firewall is turned ON for all network profiles."
	default:
		status = StatusUnknown
		summary = "GuardDog could not verify the firewall state for every profile."
	}

	return CheckResult{
		ID:          "firewall",
		Title:       "Windows Firewall",
		Status:      status,
		Summary:     summary,
		Details:     details,
		Remediation: firewallRemediation(status),
	}
}

func firewallRemediation(status Status) []string {
	if status == StatusOK {
		return []string{
			"No action needed. Windows Firewall appears to be ON for all profiles.",
		}
	}
	return []string{
		"Open the Windows Security app and go to 'Firewall & network protection'.",
		"Make sure the firewall is ON for Domain, Private, and Public networks.",
	}
}
