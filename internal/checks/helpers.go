package checks

import "fmt"

// unknownResult builds the UNKNOWN result used when a probe could not be
// completed. The summary states that explicitly so the report can render
// it distinct from WARN and HIGH findings.
func unknownResult(id, title, summary string, err error, remediation []string) CheckResult {
	var details []string
	if err != nil {
		details = []string{fmt.Sprintf("Error: %v", err)}
	}
	return CheckResult{
		ID:          id,
		Title:       title,
		Status:      StatusUnknown,
		Summary:     summary,
		Details:     details,
		Remediation: remediation,
	}
}

func boolLabel(v *bool, whenTrue, whenFalse, whenNil string) string {
	switch {
	case v == nil:
		return whenNil
	case *v:
		return whenTrue
	default:
		return whenFalse
	}
}
