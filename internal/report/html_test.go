package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarddog-sec/guarddog/internal/checks"
	"github.com/guarddog-sec/guarddog/internal/integrity"
)

func passSummary() *checks.RunSummary {
	return &checks.RunSummary{
		Verdict: integrity.Verdict{Outcome: integrity.OutcomePass},
		Results: []checks.CheckResult{
			{
				ID:          "firewall",
				Title:       "Windows Firewall",
				Status:      checks.StatusOK,
				Summary:     "Windows Firewall is turned ON for all network profiles.",
				Details:     []string{"Domain profile: ON", "Private profile: ON", "Public profile: ON"},
				Remediation: []string{"No action needed."},
			},
			{
				ID:      "rdp",
				Title:   "Remote Desktop (RDP)",
				Status:  checks.StatusHigh,
				Summary: "Remote Desktop is ON and NLA is NOT required.",
			},
		},
		Overall:   checks.StatusHigh,
		Timestamp: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		Host:      "DESKTOP-AB12",
	}
}

func TestRenderCompleteRun(t *testing.T) {
	html, err := Render(passSummary())
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "GuardDog Security Check Report")
	assert.Contains(t, out, "DESKTOP-AB12")
	assert.Contains(t, out, "Windows Firewall")
	assert.Contains(t, out, "Remote Desktop (RDP)")
	assert.Contains(t, out, "status-badge-HIGH")
	assert.Contains(t, out, "summary-HIGH")
	assert.Contains(t, out, "Domain profile: ON")
	assert.Contains(t, out, "important security issues")
	assert.NotContains(t, out, "gate-failure")
}

func TestRenderGateFailure(t *testing.T) {
	summary := &checks.RunSummary{
		Verdict: integrity.Verdict{
			Outcome: integrity.OutcomeFail,
			Reason:  integrity.ReasonHashMismatch,
			Path:    "guarddog.exe",
		},
		Overall:   checks.StatusHigh,
		Timestamp: time.Now(),
		Host:      "DESKTOP-AB12",
	}

	html, err := Render(summary)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "gate-failure")
	assert.Contains(t, out, "Integrity verification failed")
	assert.Contains(t, out, "hash_mismatch")
	assert.Contains(t, out, "guarddog.exe")
	assert.Contains(t, out, "tampered")
	// A failed gate renders no check sections.
	assert.NotContains(t, out, "<section")
}

func TestRenderEscapesEvidence(t *testing.T) {
	summary := passSummary()
	summary.Results[0].Details = []string{`<script>alert("x")</script>`}
	summary.Results[0].Summary = `account "bob & alice" <local>`

	html, err := Render(summary)
	require.NoError(t, err)

	out := string(html)
	assert.NotContains(t, out, `<script>alert`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "bob &amp; alice")
}

func TestWriteCreatesReportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "report.html")

	require.NoError(t, Write(passSummary(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "GuardDog Security Check Report")
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 55, 0, time.UTC)
	path := DefaultPath("/media/usb/GuardDog", "reports", now)
	assert.Equal(t,
		filepath.Join("/media/usb/GuardDog", "reports", "GuardDog_Report_20260828_103055.html"),
		path)
}
