//go:build windows

package checks

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/windows/registry"
)

// collectFirewall queries netsh first (locale-dependent but rich when it
// works), then falls back to locale-agnostic registry reads.
func collectFirewall(ctx context.Context) (FirewallFindings, error) {
	var netshNote string

	out, err := runCommand(ctx, system32Path("netsh.exe"),
		"advfirewall", "show", "allprofiles")
	if err == nil {
		if findings, ok := parseNetshProfiles(string(out)); ok {
			return findings, nil
		}
		netshNote = "Note: netsh output could not be parsed; used registry fallback."
	} else {
		netshNote = fmt.Sprintf("Note: netsh query failed (%v); used registry fallback.", err)
	}

	findings := FirewallFindings{
		Domain:  registryFirewallState("DomainProfile", "DomainProfile"),
		Private: registryFirewallState("PrivateProfile", "StandardProfile"),
		Public:  registryFirewallState("PublicProfile", "PublicProfile"),
		Note:    netshNote,
	}
	return findings, nil
}

// registryFirewallState reads EnableFirewall for one profile, preferring
// the policy key over the operational key.
func registryFirewallState(policyProfile, opsProfile string) ProfileState {
	enabled := readRegistryDword(registry.LOCAL_MACHINE,
		firewallPolicyKeyBase+`\`+policyProfile, "EnableFirewall")
	if enabled == nil {
		enabled = readRegistryDword(registry.LOCAL_MACHINE,
			firewallOpsKeyBase+`\`+opsProfile, "EnableFirewall")
	}
	switch {
	case enabled == nil:
		return ProfileUnknown
	case *enabled == 1:
		return ProfileOn
	case *enabled == 0:
		return ProfileOff
	default:
		return ProfileUnknown
	}
}

// collectRDP reads the Terminal Server registry values.
func collectRDP(_ context.Context) (RDPFindings, error) {
	var findings RDPFindings

	if deny := readRegistryDword(registry.LOCAL_MACHINE, rdpKeyPath, rdpDenyValue); deny != nil {
		enabled := *deny == 0
		findings.Enabled = &enabled
	}
	if auth := readRegistryDword(registry.LOCAL_MACHINE, rdpTCPKeyPath, rdpNLAValue); auth != nil {
		required := *auth == 1
		findings.NLARequired = &required
	}
	return findings, nil
}

// collectDefender prefers Get-MpComputerStatus, falling back to the
// DisableRealtimeMonitoring registry heuristic.
func collectDefender(ctx context.Context) (DefenderFindings, error) {
	out, err := runPowerShellJSON(ctx,
		"Get-MpComputerStatus | Select-Object -Property "+
			"AMServiceEnabled,AntivirusEnabled,RealTimeProtectionEnabled | "+
			"ConvertTo-Json -Compress")
	if err == nil {
		if findings, ok := parseDefenderStatus(out); ok {
			return findings, nil
		}
	}

	findings := DefenderFindings{Source: "registry"}
	if v := readRegistryDword(registry.LOCAL_MACHINE, defenderBaseKeyPath, defenderDisableValue); v != nil {
		disabled := *v == 1
		findings.DisabledLocal = &disabled
	}
	if v := readRegistryDword(registry.LOCAL_MACHINE, defenderPolicyKeyPath, defenderDisableValue); v != nil {
		disabled := *v == 1
		findings.DisabledPolicy = &disabled
	}
	if findings.DisabledLocal == nil && findings.DisabledPolicy == nil {
		findings.Source = "none"
	}
	return findings, nil
}

// adsiAdminMembersScript enumerates Administrators group members via the
// WinNT provider, which often works when the LocalAccounts module does not.
const adsiAdminMembersScript = `$group = [ADSI]"WinNT://./Administrators,group"
$members = @($group.psbase.Invoke("Members"))
$out = @()
foreach ($m in $members) {
  $name  = $m.GetType().InvokeMember("Name",'GetProperty',$null,$m,$null)
  $class = $m.GetType().InvokeMember("Class",'GetProperty',$null,$m,$null)
  $out += [PSCustomObject]@{ Name = [string]$name; ObjectClass = [string]$class }
}
$out | ConvertTo-Json -Compress`

// collectLocalAdmins queries Get-LocalGroupMember, then the ADSI WinNT
// provider as a fallback.
func collectLocalAdmins(ctx context.Context) (LocalAdminsFindings, error) {
	source := "powershell"
	out, err := runPowerShellJSON(ctx,
		"Get-LocalGroupMember -Group 'Administrators' | "+
			"Select-Object -Property Name,ObjectClass | ConvertTo-Json -Compress")

	var members []string
	if err == nil {
		members = parseGroupMemberNames(out)
	}
	if len(members) == 0 {
		source = "adsi"
		out, err = runPowerShellJSON(ctx, adsiAdminMembersScript)
		if err == nil {
			members = parseGroupMemberNames(out)
		}
	}
	if len(members) == 0 {
		return LocalAdminsFindings{Source: "none"}, nil
	}

	localAccounts, extras := partitionAdmins(members, os.Getenv("COMPUTERNAME"))
	return LocalAdminsFindings{
		Members:          members,
		LocalAccounts:    localAccounts,
		ExtraLocalAdmins: extras,
		Source:           source,
	}, nil
}

// collectScreenLock reads the current user's desktop registry values.
func collectScreenLock(_ context.Context) (ScreenLockFindings, error) {
	var findings ScreenLockFindings

	if v := readRegistryString(registry.CURRENT_USER, desktopKeyPath, screenSaveActiveValue); v != nil {
		active := *v == "1"
		findings.Active = &active
	}
	if v := readRegistryString(registry.CURRENT_USER, desktopKeyPath, screenSaverSecureValue); v != nil {
		secure := *v == "1"
		findings.Secure = &secure
	}
	if v := readRegistryString(registry.CURRENT_USER, desktopKeyPath, screenSaveTimeoutValue); v != nil {
		if seconds, err := strconv.Atoi(*v); err == nil && seconds > 0 {
			timeout := time.Duration(seconds) * time.Second
			findings.Timeout = &timeout
		}
	}
	return findings, nil
}
