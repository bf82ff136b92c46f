// Package report renders a RunSummary into a self-contained HTML document.
// It is the only component that writes outside the verified root: exactly
// one report file per run, and only for a terminal pipeline state.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/guarddog-sec/guarddog/internal/checks"
)

// overallMessage maps the overall status to the report banner text.
func overallMessage(summary *checks.RunSummary) string {
	if !summary.Verdict.Passed() {
		return "GuardDog could not verify its own files and refused to run any checks. " +
			"The tool may have been tampered with; download a fresh copy from a trusted source."
	}
	switch summary.Overall {
	case checks.StatusHigh:
		return "GuardDog found some important security issues that you should fix soon."
	case checks.StatusWarn:
		return "GuardDog found some things that could be improved to make this computer safer."
	case checks.StatusOK:
		return "GuardDog did not find any obvious high-risk issues in the checks it ran."
	default:
		return "GuardDog could not verify everything. Some checks were blocked or unclear."
	}
}

type reportData struct {
	GeneratedAt    string
	Host           string
	Overall        checks.Status
	OverallMessage string
	GateFailed     bool
	GateReason     string
	GatePath       string
	Results        []checks.CheckResult
}

// Render builds the complete HTML document for one run summary. The
// output is self-contained: inline CSS, no external scripts or styles.
func Render(summary *checks.RunSummary) ([]byte, error) {
	data := reportData{
		GeneratedAt:    summary.Timestamp.Format("2006-01-02 15:04:05"),
		Host:           summary.Host,
		Overall:        summary.Overall,
		OverallMessage: overallMessage(summary),
		GateFailed:     !summary.Verdict.Passed(),
		GateReason:     string(summary.Verdict.Reason),
		GatePath:       summary.Verdict.Path,
		Results:        summary.Results,
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the summary and writes it to path, creating the parent
// directory as needed.
func Write(summary *checks.RunSummary, path string) error {
	html, err := Render(summary)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// BaseDir detects the directory GuardDog is running from (the USB stick in
// the portable case), falling back to the working directory.
func BaseDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			return filepath.Dir(resolved)
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// DefaultPath returns the timestamped report path under baseDir/reportDir.
func DefaultPath(baseDir, reportDir string, now time.Time) string {
	filename := fmt.Sprintf("GuardDog_Report_%s.html", now.Format("20060102_150405"))
	return filepath.Join(baseDir, reportDir, filename)
}

// OpenBrowser opens the report in the default browser, best effort.
func OpenBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>GuardDog Security Check Report</title>
  <style>
    body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
           margin: 2rem; background: #fdfdfd; color: #222; }
    h1 { margin-bottom: 0.25rem; }
    .meta { color: #666; font-size: 0.9rem; margin-bottom: 1.5rem; }
    .summary { margin-bottom: 1.5rem; padding: 1rem; border-radius: 0.5rem; }
    .summary-OK { background: #e8f5e9; border: 1px solid #c8e6c9; }
    .summary-WARN { background: #fff8e1; border: 1px solid #ffe082; }
    .summary-HIGH { background: #ffebee; border: 1px solid #ef9a9a; }
    .summary-UNKNOWN { background: #eceff1; border: 1px solid #cfd8dc; }
    .gate-failure { padding: 1rem; border-radius: 0.5rem; background: #ffebee;
                    border: 2px solid #c62828; margin-bottom: 1.5rem; }
    .checks { display: flex; flex-direction: column; gap: 1rem; }
    .check { padding: 1rem; border-radius: 0.5rem; border: 1px solid #ddd; background: #fff; }
    .check h2 { margin-top: 0; margin-bottom: 0.25rem; }
    .check-status { font-size: 0.85rem; text-transform: uppercase; letter-spacing: 0.05em; }
    .status-badge-OK { color: #2e7d32; }
    .status-badge-WARN { color: #f9a825; }
    .status-badge-HIGH { color: #c62828; }
    .status-badge-UNKNOWN { color: #455a64; }
    .check-summary { margin: 0.5rem 0; }
    .check-section-title { font-weight: 600; margin-top: 0.75rem; margin-bottom: 0.25rem; }
    ul.evidence, ol.steps { margin-top: 0.25rem; }
    ul.evidence {
      background: #f7f7f7; border: 1px solid #e0e0e0; padding: 0.75rem 0.75rem 0.75rem 2rem;
      border-radius: 0.5rem;
      font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, "Liberation Mono", monospace;
      font-size: 0.9rem; list-style: none;
    }
  </style>
</head>
<body>
  <h1>GuardDog Security Check Report</h1>
  <div class="meta">Generated at {{.GeneratedAt}} on {{.Host}}</div>
{{- if .GateFailed}}
  <div class="gate-failure">
    <p><strong>Integrity verification failed ({{.GateReason}}{{if .GatePath}}: {{.GatePath}}{{end}}).</strong></p>
    <p>{{.OverallMessage}}</p>
  </div>
{{- else}}
  <div class="summary summary-{{.Overall}}">
    <p>{{.OverallMessage}}</p>
  </div>
{{- end}}
  <div class="checks">
{{- range .Results}}
    <section class="check">
      <h2>{{.Title}}</h2>
      <div class="check-status status-badge-{{.Status}}">Status: {{.Status}}</div>
{{- if .Summary}}
      <p class="check-summary">{{.Summary}}</p>
{{- end}}
{{- if .Details}}
      <div class="check-section-title">Details</div>
      <ul class="evidence">
{{- range .Details}}
        <li>{{.}}</li>
{{- end}}
      </ul>
{{- end}}
{{- if .Remediation}}
      <div class="check-section-title">What you can do</div>
      <ol class="steps">
{{- range .Remediation}}
        <li>{{.}}</li>
{{- end}}
      </ol>
{{- end}}
    </section>
{{- end}}
  </div>
</body>
</html>
`))
