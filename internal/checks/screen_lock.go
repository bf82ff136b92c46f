package checks

import (
	"context"
	"fmt"
	"time"
)

// Screen lock settings live under the current user's desktop key. The
// values are strings: "1"/"0" flags and a timeout in seconds. They are an
// approximation of the effective lock behavior, but a useful signal for
// basic screen lock hygiene.
const (
	desktopKeyPath         = `Control Panel\Desktop`
	screenSaveActiveValue  = "ScreenSaveActive"
	screenSaverSecureValue = "ScreenSaverIsSecure"
	screenSaveTimeoutValue = "ScreenSaveTimeOut"
)

// ScreenLockFindings is the raw probe output for the screen lock check.
// Nil fields mean the corresponding value could not be read.
type ScreenLockFindings struct {
	Active  *bool
	Secure  *bool
	Timeout *time.Duration
}

// ScreenLockCheck inspects the automatic screen lock configuration of the
// current user.
type ScreenLockCheck struct {
	Query   func(ctx context.Context) (ScreenLockFindings, error)
	Timeout time.Duration

	// OKTimeout and WarnTimeout are the classification thresholds. Zero
	// values fall back to 15 and 30 minutes.
	OKTimeout   time.Duration
	WarnTimeout time.Duration
}

func (c *ScreenLockCheck) ID() string    { return "screen_lock" }
func (c *ScreenLockCheck) Title() string { return "Screen Lock" }

// Execute runs the screen lock probe and classifies its findings.
func (c *ScreenLockCheck) Execute(ctx context.Context) CheckResult {
	query := c.Query
	if query == nil {
		query = collectScreenLock
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	findings, err := query(ctx)
	if err != nil {
		return unknownResult(c.ID(), c.Title(),
			"GuardDog could not read the screen lock settings.", err,
			screenLockRemediation(StatusUnknown))
	}
	return c.classify(findings)
}

// classify maps screen lock findings to a check result: HIGH when the
// lock is disabled, OK when it is enabled with a password on resume and a
// short timeout, WARN when it is enabled but the timeout is long or the
// password requirement is unconfirmed, and UNKNOWN when nothing could be
// read.
func (c *ScreenLockCheck) classify(findings ScreenLockFindings) CheckResult {
	okTimeout := c.OKTimeout
	if okTimeout <= 0 {
		okTimeout = 15 * time.Minute
	}
	warnTimeout := c.WarnTimeout
	if warnTimeout <= 0 {
		warnTimeout = 30 * time.Minute
	}

	details := []string{
		"Automatic screen lock: " +
			boolLabel(findings.Active, "ENABLED (screen saver active)", "DISABLED (no screen saver)", "UNKNOWN (setting not found)"),
		"Require password on resume: " +
			boolLabel(findings.Secure, "ENABLED", "DISABLED", "UNKNOWN"),
	}
	if findings.Timeout != nil {
		details = append(details, fmt.Sprintf("Idle timeout before lock: approximately %d seconds.",
			int(findings.Timeout.Seconds())))
	} else {
		details = append(details, "Idle timeout before lock: UNKNOWN (could not read a valid timeout).")
	}

	var status Status
	var summary string
	switch {
	case findings.Active != nil && !*findings.Active:
		status = StatusHigh
		summary = "Automatic screen lock appears to be turned OFF. If you walk away from this computer, " +
			"someone could use it without signing in."
	case findings.Active != nil:
		switch {
		case findings.Timeout != nil && *findings.Timeout <= okTimeout &&
			findings.Secure != nil && *findings.Secure:
			status = StatusOK
			summary = "Automatic screen lock is enabled with a reasonable timeout, and a password is required on resume."
		case findings.Timeout != nil && *findings.Timeout > warnTimeout:
			status = StatusWarn
			summary = "Automatic screen lock is enabled, but the timeout is quite long. It may stay unlocked for an " +
				"extended period if you forget to lock it manually."
		case findings.Secure != nil && !*findings.Secure:
			status = StatusWarn
			summary = "Automatic screen lock is enabled, but a password does NOT appear to be required when it resumes."
		default:
			status = StatusWarn
			summary = "Automatic screen lock appears to be enabled, but some details (timeout or password requirement) " +
				"could not be confirmed."
		}
	default:
		status = StatusUnknown
		summary = "GuardDog could not determine the automatic screen lock settings from the current user profile."
	}

	return CheckResult{
		ID:          "screen_lock",
		Title:       "Screen Lock",
		Status:      status,
		Summary:     summary,
		Details:     details,
		Remediation: screenLockRemediation(status),
	}
}

func screenLockRemediation(status Status) []string {
	switch status {
	case StatusOK:
		return []string{
			"No urgent action needed. Your screen should lock automatically after a reasonable period of inactivity, " +
				"and a password is required to unlock it.",
		}
	case StatusHigh:
		return []string{
			"Turn on automatic locking so that this computer requires a sign-in if you leave it unattended.",
			"On Windows 10/11, open Settings > Accounts > Sign-in options (or 'Lock screen' settings) and set a " +
				"short timeout before the screen locks, with a password required to sign back in.",
		}
	case StatusWarn:
		return []string{
			"Consider shortening the idle time before the screen locks, and make sure a password is required when " +
				"you wake it.",
			"On Windows 10/11, open Settings > Accounts > Sign-in options (or 'Lock screen' settings) and look for " +
				"options related to when Windows should require you to sign in again.",
		}
	default:
		return []string{
			"GuardDog could not clearly read the screen lock settings.",
			"You can manually open Settings > Accounts > Sign-in options (or 'Lock screen' settings) and review " +
				"how and when the screen locks after inactivity.",
		}
	}
}
