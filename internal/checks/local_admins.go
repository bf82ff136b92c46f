package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalAdminsFindings is the raw probe output for the local
// administrators check.
type LocalAdminsFindings struct {
	// Members lists every member of the local Administrators group, as
	// "MACHINE\Name" or "DOMAIN\Name".
	Members []string

	// LocalAccounts is the subset of Members that are accounts local to
	// this machine.
	LocalAccounts []string

	// ExtraLocalAdmins is the subset of LocalAccounts beyond the built-in
	// Administrator account.
	ExtraLocalAdmins []string

	// Source names where the data came from: "powershell", "adsi", or
	// "none".
	Source string
}

// groupMember is one entry of the Get-LocalGroupMember JSON output.
type groupMember struct {
	Name        string `json:"Name"`
	ObjectClass string `json:"ObjectClass"`
}

// parseGroupMemberNames extracts member names from ConvertTo-Json output,
// which may be a single object or an array.
func parseGroupMemberNames(raw []byte) []string {
	var members []groupMember
	if err := json.Unmarshal(raw, &members); err != nil {
		var single groupMember
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		members = []groupMember{single}
	}

	var names []string
	for _, m := range members {
		if name := strings.TrimSpace(m.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// partitionAdmins splits the member list into machine-local accounts and
// the local accounts beyond the built-in Administrator, keyed off this
// machine's name prefix.
func partitionAdmins(members []string, computerName string) (localAccounts, extras []string) {
	computerName = strings.TrimSpace(computerName)
	if computerName == "" {
		return nil, nil
	}
	prefix := strings.ToUpper(computerName) + `\`
	builtin := prefix + "ADMINISTRATOR"

	for _, name := range members {
		upper := strings.ToUpper(name)
		if !strings.HasPrefix(upper, prefix) {
			continue
		}
		localAccounts = append(localAccounts, name)
		if upper != builtin {
			extras = append(extras, name)
		}
	}
	return localAccounts, extras
}

// LocalAdminsCheck inspects the membership of the local Administrators
// group.
type LocalAdminsCheck struct {
	Query   func(ctx context.Context) (LocalAdminsFindings, error)
	Timeout time.Duration
}

func (c *LocalAdminsCheck) ID() string    { return "local_admins" }
func (c *LocalAdminsCheck) Title() string { return "Local Administrators" }

// Execute runs the local admins probe and classifies its findings.
func (c *LocalAdminsCheck) Execute(ctx context.Context) CheckResult {
	query := c.Query
	if query == nil {
		query = collectLocalAdmins
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	findings, err := query(ctx)
	if err != nil {
		return unknownResult(c.ID(), c.Title(),
			"GuardDog could not read the list of administrator accounts.", err,
			localAdminsRemediation(StatusUnknown))
	}
	return classifyLocalAdmins(findings)
}

// classifyLocalAdmins maps group membership to a check result: WARN when
// local user accounts beyond the built-in Administrator hold admin
// rights, OK when only built-in or domain accounts do, and UNKNOWN when
// the membership could not be read.
func classifyLocalAdmins(findings LocalAdminsFindings) CheckResult {
	if len(findings.Members) == 0 {
		details := []string{"No members were returned for the local Administrators group."}
		if findings.Source != "" {
			details = append(details, "Data source: "+findings.Source)
		}
		return CheckResult{
			ID:          "local_admins",
			Title:       "Local Administrators",
			Status:      StatusUnknown,
			Summary:     "GuardDog could not read the list of administrator accounts.",
			Details:     details,
			Remediation: localAdminsRemediation(StatusUnknown),
		}
	}

	extras := make(map[string]struct{}, len(findings.ExtraLocalAdmins))
	for _, name := range findings.ExtraLocalAdmins {
		extras[strings.ToUpper(name)] = struct{}{}
	}
	locals := make(map[string]struct{}, len(findings.LocalAccounts))
	for _, name := range findings.LocalAccounts {
		locals[strings.ToUpper(name)] = struct{}{}
	}

	details := []string{"The following accounts have administrator rights on this computer:"}
	for _, name := range findings.Members {
		upper := strings.ToUpper(name)
		switch {
		case hasKey(extras, upper):
			details = append(details, fmt.Sprintf("%s (local user account)", name))
		case hasKey(locals, upper):
			details = append(details, fmt.Sprintf("%s (built-in local account)", name))
		default:
			details = append(details, name)
		}
	}
	if findings.Source != "" {
		details = append(details, "Data source: "+findings.Source)
	}

	status := StatusOK
	summary := "Only built-in or domain accounts were found in the local Administrators group."
	if len(findings.ExtraLocalAdmins) > 0 {
		status = StatusWarn
		summary = "One or more local user accounts have administrator rights on this computer."
	}

	return CheckResult{
		ID:          "local_admins",
		Title:       "Local Administrators",
		Status:      status,
		Summary:     summary,
		Details:     details,
		Remediation: localAdminsRemediation(status),
	}
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func localAdminsRemediation(status Status) []string {
	switch status {
	case StatusOK:
		return []string{
			"No urgent action needed. If you are not sure who should have administrator rights, " +
				"review the list and remove admin rights from everyday accounts when possible.",
		}
	case StatusWarn:
		return []string{
			"Review the local user accounts listed here that have administrator rights.",
			"If you do not recognize an account, or if a day-to-day account has admin rights, " +
				"consider removing those rights.",
			"It is safer to use a standard (non-admin) account for everyday work and a separate " +
				"admin account only when needed.",
		}
	default:
		return []string{
			"GuardDog could not clearly read the local administrator accounts.",
			"You can manually check: Computer Management > Local Users and Groups > Groups > Administrators.",
		}
	}
}
