package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func durationP(d time.Duration) *time.Duration { return &d }

func TestClassifyScreenLock(t *testing.T) {
	yes := true
	no := false

	tests := []struct {
		name     string
		findings ScreenLockFindings
		want     Status
	}{
		{
			name:     "lock disabled",
			findings: ScreenLockFindings{Active: &no},
			want:     StatusHigh,
		},
		{
			name:     "secure with short timeout",
			findings: ScreenLockFindings{Active: &yes, Secure: &yes, Timeout: durationP(10 * time.Minute)},
			want:     StatusOK,
		},
		{
			name:     "timeout exactly at threshold",
			findings: ScreenLockFindings{Active: &yes, Secure: &yes, Timeout: durationP(15 * time.Minute)},
			want:     StatusOK,
		},
		{
			name:     "long timeout",
			findings: ScreenLockFindings{Active: &yes, Secure: &yes, Timeout: durationP(45 * time.Minute)},
			want:     StatusWarn,
		},
		{
			name:     "password not required",
			findings: ScreenLockFindings{Active: &yes, Secure: &no, Timeout: durationP(10 * time.Minute)},
			want:     StatusWarn,
		},
		{
			name:     "password requirement unconfirmed",
			findings: ScreenLockFindings{Active: &yes, Timeout: durationP(10 * time.Minute)},
			want:     StatusWarn,
		},
		{
			name:     "all values unreadable",
			findings: ScreenLockFindings{},
			want:     StatusUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &ScreenLockCheck{}
			result := check.classify(tt.findings)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, "screen_lock", result.ID)
			assert.NotEmpty(t, result.Remediation)
		})
	}
}

// The thresholds are configurable; a stricter OK timeout must reclassify
// a previously acceptable configuration.
func TestClassifyScreenLockConfigurableThresholds(t *testing.T) {
	yes := true
	findings := ScreenLockFindings{Active: &yes, Secure: &yes, Timeout: durationP(10 * time.Minute)}

	strict := &ScreenLockCheck{OKTimeout: 5 * time.Minute, WarnTimeout: 8 * time.Minute}
	assert.Equal(t, StatusWarn, strict.classify(findings).Status)

	lenient := &ScreenLockCheck{OKTimeout: 15 * time.Minute, WarnTimeout: 30 * time.Minute}
	assert.Equal(t, StatusOK, lenient.classify(findings).Status)
}

func TestScreenLockExecuteProbeFailure(t *testing.T) {
	check := &ScreenLockCheck{
		Query: func(context.Context) (ScreenLockFindings, error) {
			return ScreenLockFindings{}, errors.New("hkcu unreadable")
		},
	}
	result := check.Execute(context.Background())
	assert.Equal(t, StatusUnknown, result.Status)
}
