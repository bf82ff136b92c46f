package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/guarddog-sec/guarddog/internal/checks"
	"github.com/guarddog-sec/guarddog/internal/config"
	"github.com/guarddog-sec/guarddog/internal/integrity"
	"github.com/guarddog-sec/guarddog/internal/report"
	"github.com/guarddog-sec/guarddog/internal/utils"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI flags
var (
	configFile   string
	logLevel     string
	logFormat    string
	verbose      bool
	outputFormat string
	manifestPath string
	sigPath      string
	reportPath   string
	openReport   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "guarddog",
		Short: "GuardDog offline Windows security auditor",
		Long: `A USB-portable, offline auditor that inspects a small set of baseline
Windows security settings without elevation or system modification, then
renders a self-contained HTML report.

Before any check runs, GuardDog verifies its own distribution against a
signed file manifest. If that verification fails, no checks execute.

Examples:
  guarddog audit E:\GuardDog
  guarddog audit E:\GuardDog --format json --open
  guarddog verify E:\GuardDog`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loggerConfig := utils.LoggerConfig{
				Level:  utils.LogLevel(logLevel),
				Format: utils.LogFormat(logFormat),
			}
			if verbose {
				loggerConfig.Level = utils.LogLevelDebug
			}
			logger := utils.NewLogger(loggerConfig)

			cmd.SetContext(utils.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is guarddog.yaml next to the executable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Set log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (equivalent to --log-level debug)")

	rootCmd.AddCommand(newAuditCommand())
	rootCmd.AddCommand(newVerifyCommand())

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		cmd.Help()
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newAuditCommand creates the audit subcommand
func newAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [root]",
		Short: "Verify the distribution, run all checks, and write the HTML report",
		Long: `Verify the signed file manifest under the given distribution root, run
the baseline security checks, and write a self-contained HTML report.

If manifest verification fails the command stops immediately: no checks
run, a gate-failure report is written, and the exit code identifies the
failure reason. The root defaults to the directory GuardDog runs from.

Exit codes:
  0  verification passed, checks ran, report written
  2  signature invalid or manifest malformed
  3  manifest or signature file unreadable
  4  a manifest-listed file is missing
  5  a manifest-listed file's content changed`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAuditCommand,
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format for the run summary (json, text)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest path (default <root>/"+integrity.DefaultManifestName+")")
	cmd.Flags().StringVar(&sigPath, "signature", "", "Detached signature path (default <root>/"+integrity.DefaultSignatureName+")")
	cmd.Flags().StringVarP(&reportPath, "output", "o", "", "Report file path (default <base>/reports/GuardDog_Report_<timestamp>.html)")
	cmd.Flags().BoolVar(&openReport, "open", false, "Open the report in the default browser")

	return cmd
}

// newVerifyCommand creates the verify subcommand
func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [root]",
		Short: "Verify the signed manifest only, without running any checks",
		Long: `Validate the distribution root against its signed file manifest and
print a machine-readable JSON verdict. The exit code distinguishes each
failure kind so a calling process can branch without parsing text.

Exit codes:
  0  pass
  2  signature invalid or manifest malformed
  3  manifest or signature file unreadable
  4  a manifest-listed file is missing
  5  a manifest-listed file's content changed`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVerifyCommand,
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest path (default <root>/"+integrity.DefaultManifestName+")")
	cmd.Flags().StringVar(&sigPath, "signature", "", "Detached signature path (default <root>/"+integrity.DefaultSignatureName+")")

	return cmd
}

// resolvePaths fills in the root, manifest, and signature paths from the
// command arguments and flags.
func resolvePaths(args []string) (root, manifest, sig string, err error) {
	root = report.BaseDir()
	if len(args) == 1 {
		root = args[0]
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to resolve root path: %w", err)
	}

	manifest = manifestPath
	if manifest == "" {
		manifest = filepath.Join(root, integrity.DefaultManifestName)
	}
	sig = sigPath
	if sig == "" {
		sig = filepath.Join(root, integrity.DefaultSignatureName)
	}
	return root, manifest, sig, nil
}

// newGate builds the verification gate for the given paths. A build
// without an embedded public key fails closed.
func newGate(logger *utils.Logger, root, manifest, sig string) checks.Gate {
	return checks.GateFunc(func() integrity.Verdict {
		sigVerifier, err := integrity.DefaultSignatureVerifier()
		if err != nil {
			logger.WithComponent("verify").Errorf("Trust anchor unavailable: %v", err)
			return integrity.Verdict{
				Outcome: integrity.OutcomeFail,
				Reason:  integrity.ReasonSignatureInvalid,
			}
		}
		return integrity.NewManifestVerifier(sigVerifier).Verify(root, manifest, sig)
	})
}

// runVerifyCommand executes the verify command
func runVerifyCommand(cmd *cobra.Command, args []string) error {
	logger := utils.LoggerFromContext(cmd.Context())
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}

	root, manifest, sig, err := resolvePaths(args)
	if err != nil {
		return err
	}

	logger.WithComponent("verify").Infof("Verifying distribution root: %s", root)
	verdict := newGate(logger, root, manifest, sig).Verify()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(verdict); err != nil {
		return fmt.Errorf("failed to output verdict: %w", err)
	}

	if !verdict.Passed() {
		logger.WithComponent("verify").Warnf("Verification failed: %s", verdict)
		os.Exit(verdict.ExitCode())
	}
	logger.WithComponent("verify").Info("Verification passed")
	return nil
}

// runAuditCommand executes the audit command
func runAuditCommand(cmd *cobra.Command, args []string) error {
	logger := utils.LoggerFromContext(cmd.Context())
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}

	if !isValidOutputFormat(outputFormat) {
		return fmt.Errorf("invalid output format: %s (supported: json, text)", outputFormat)
	}

	root, manifest, sig, err := resolvePaths(args)
	if err != nil {
		return err
	}

	cfgFile := configFile
	if cfgFile == "" {
		candidate := filepath.Join(report.BaseDir(), "guarddog.yaml")
		if _, statErr := os.Stat(candidate); statErr == nil {
			cfgFile = candidate
		}
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	registry, err := checks.DefaultRegistry(cfg)
	if err != nil {
		return fmt.Errorf("failed to register checks: %w", err)
	}
	logger.WithComponent("audit").Debugf("Registered %d security checks", registry.Count())
	logger.WithComponent("audit").Infof("Auditing distribution root: %s", root)

	pipeline := checks.NewPipeline(newGate(logger, root, manifest, sig), registry, logger)
	summary, err := pipeline.Run(cmd.Context())
	if err != nil {
		// Cancelled mid-run: no summary exists and no report is written.
		return fmt.Errorf("audit aborted: %w", err)
	}

	if err := outputSummary(summary, outputFormat); err != nil {
		return fmt.Errorf("failed to output run summary: %w", err)
	}

	target := reportPath
	if target == "" {
		target = report.DefaultPath(report.BaseDir(), cfg.ReportDir, summary.Timestamp)
	}
	if err := report.Write(summary, target); err != nil {
		return err
	}
	logger.WithComponent("audit").Infof("Report written to: %s", target)

	if openReport {
		if err := report.OpenBrowser(target); err != nil {
			logger.WithComponent("audit").Warnf("Could not open browser: %v", err)
		}
	}

	if !summary.Verdict.Passed() {
		logger.WithComponent("audit").Warnf("Verification failed, no checks were run: %s", summary.Verdict)
		os.Exit(summary.Verdict.ExitCode())
	}

	logger.WithComponent("audit").Infof("Completed %d checks, overall status: %s",
		len(summary.Results), summary.Overall)
	return nil
}

// isValidOutputFormat checks if the output format is supported
func isValidOutputFormat(format string) bool {
	switch strings.ToLower(format) {
	case "json", "text":
		return true
	default:
		return false
	}
}

// outputSummary outputs the run summary in the specified format
func outputSummary(summary *checks.RunSummary, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	case "text":
		return outputTextSummary(summary)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// outputTextSummary outputs the run summary in human-readable text format
func outputTextSummary(summary *checks.RunSummary) error {
	fmt.Printf("GuardDog Security Check Report\n")
	fmt.Printf("==============================\n\n")

	fmt.Printf("Host: %s\n", summary.Host)
	fmt.Printf("Timestamp: %s\n", summary.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Verification: %s\n", summary.Verdict)
	fmt.Printf("Overall status: %s\n\n", summary.Overall)

	if !summary.Verdict.Passed() {
		fmt.Printf("Integrity verification failed; no checks were run.\n")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CHECK ID\tSTATUS\tSUMMARY\n")
	fmt.Fprintf(w, "--------\t------\t-------\n")
	for _, result := range summary.Results {
		text := result.Summary
		if len(text) > 70 {
			text = text[:67] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", result.ID, result.Status, text)
	}
	w.Flush()

	return nil
}
