package checks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/guarddog-sec/guarddog/internal/integrity"
	"github.com/guarddog-sec/guarddog/internal/utils"
)

// PipelineState tracks the verification-gated run through its lifecycle.
type PipelineState string

const (
	StateIdle               PipelineState = "idle"
	StateVerifying          PipelineState = "verifying"
	StateVerificationFailed PipelineState = "verification_failed"
	StateChecking           PipelineState = "checking"
	StateComplete           PipelineState = "complete"
)

// Gate is the verification step that must pass before any check runs.
type Gate interface {
	Verify() integrity.Verdict
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func() integrity.Verdict

// Verify calls the wrapped function.
func (f GateFunc) Verify() integrity.Verdict { return f() }

// RunSummary is the aggregate, ordered result of one complete pipeline
// execution. Result order equals registry order. A summary with a failed
// verification verdict contains zero check results.
type RunSummary struct {
	Verdict   integrity.Verdict `json:"verification"`
	Results   []CheckResult     `json:"checks"`
	Overall   Status            `json:"overall_status"`
	Timestamp time.Time         `json:"timestamp"`
	Host      string            `json:"host"`
}

// Pipeline orchestrates verification-then-checks. Transitions:
//
//	Idle → Verifying → VerificationFailed        (terminal, no checks run)
//	               └─→ Checking → Complete       (terminal)
type Pipeline struct {
	gate     Gate
	registry *CheckRegistry
	logger   *utils.Logger

	state PipelineState
	now   func() time.Time
	host  func() string
}

// NewPipeline creates a pipeline over the given gate and registry.
func NewPipeline(gate Gate, registry *CheckRegistry, logger *utils.Logger) *Pipeline {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Pipeline{
		gate:     gate,
		registry: registry,
		logger:   logger,
		state:    StateIdle,
		now:      time.Now,
		host:     hostname,
	}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() PipelineState {
	return p.state
}

// Run executes one verification-gated run. It returns a RunSummary only
// from a terminal state (VerificationFailed or Complete); a cancelled run
// returns the context error and no summary, so no partial report can ever
// be rendered.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	if p.state != StateIdle {
		return nil, fmt.Errorf("pipeline already ran (state %s)", p.state)
	}
	log := p.logger.WithComponent("pipeline")

	p.state = StateVerifying
	log.Debug("Verifying distribution integrity")
	verdict := p.gate.Verify()

	if !verdict.Passed() {
		p.state = StateVerificationFailed
		log.Warnf("Verification failed: %s", verdict)
		return &RunSummary{
			Verdict: verdict,
			// Tampering with the tool itself outranks any check finding.
			Overall:   StatusHigh,
			Timestamp: p.now(),
			Host:      p.host(),
		}, nil
	}
	log.Debug("Verification passed")

	p.state = StateChecking
	results := make([]CheckResult, 0, p.registry.Count())
	for _, check := range p.registry.Checks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := p.runCheck(ctx, check)
		log.Debugf("Check %s finished with status %s", result.ID, result.Status)
		results = append(results, result)
	}

	p.state = StateComplete
	return &RunSummary{
		Verdict:   verdict,
		Results:   results,
		Overall:   overallStatus(results),
		Timestamp: p.now(),
		Host:      p.host(),
	}, nil
}

// runCheck executes one check and converts any panic into an UNKNOWN
// result so a single broken probe never aborts the remaining checks.
func (p *Pipeline) runCheck(ctx context.Context, check SecurityCheck) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithComponent("pipeline").Errorf("Check %s panicked: %v", check.ID(), r)
			result = CheckResult{
				ID:      check.ID(),
				Title:   check.Title(),
				Status:  StatusUnknown,
				Summary: "This check failed to run due to an internal error.",
				Details: []string{fmt.Sprintf("Error: %v", r)},
				Remediation: []string{
					"You can ignore this for now or try a newer version of GuardDog later.",
				},
			}
		}
	}()
	return check.Execute(ctx)
}

// overallStatus is the worst status among the results. With no results at
// all there is nothing verified, so the overall status is UNKNOWN.
func overallStatus(results []CheckResult) Status {
	if len(results) == 0 {
		return StatusUnknown
	}
	overall := StatusOK
	for _, r := range results {
		overall = overall.Worse(r.Status)
	}
	return overall
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	return host
}
