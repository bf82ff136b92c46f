package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefender(t *testing.T) {
	yes := true
	no := false

	tests := []struct {
		name     string
		findings DefenderFindings
		want     Status
	}{
		{"disabled locally", DefenderFindings{DisabledLocal: &yes}, StatusHigh},
		{"disabled by policy", DefenderFindings{DisabledPolicy: &yes}, StatusHigh},
		{"disabled by policy only", DefenderFindings{DisabledLocal: &no, DisabledPolicy: &yes}, StatusHigh},
		{"not disabled locally", DefenderFindings{DisabledLocal: &no}, StatusOK},
		{"not disabled by policy", DefenderFindings{DisabledPolicy: &no}, StatusOK},
		{"no data at all", DefenderFindings{Source: "none"}, StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyDefender(tt.findings)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, "defender", result.ID)
		})
	}
}

func TestClassifyDefenderThirdPartyAVMentioned(t *testing.T) {
	result := classifyDefender(DefenderFindings{Source: "none"})
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Contains(t, result.Summary, "another antivirus product")
}

func TestParseDefenderStatus(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantOK       bool
		wantDisabled *bool
	}{
		{
			name:         "rtp enabled",
			raw:          `{"AMServiceEnabled":true,"AntivirusEnabled":true,"RealTimeProtectionEnabled":true}`,
			wantOK:       true,
			wantDisabled: boolP(false),
		},
		{
			name:         "rtp disabled",
			raw:          `{"RealTimeProtectionEnabled":false}`,
			wantOK:       true,
			wantDisabled: boolP(true),
		},
		{
			name:         "array wrapper",
			raw:          `[{"RealTimeProtectionEnabled":true}]`,
			wantOK:       true,
			wantDisabled: boolP(false),
		},
		{
			name:         "field missing",
			raw:          `{"AMServiceEnabled":true}`,
			wantOK:       true,
			wantDisabled: nil,
		},
		{name: "not json", raw: `Get-MpComputerStatus : not recognized`, wantOK: false},
		{name: "empty array", raw: `[]`, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, ok := parseDefenderStatus([]byte(tt.raw))
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, "powershell", findings.Source)
			if tt.wantDisabled == nil {
				assert.Nil(t, findings.DisabledLocal)
			} else {
				require.NotNil(t, findings.DisabledLocal)
				assert.Equal(t, *tt.wantDisabled, *findings.DisabledLocal)
			}
		})
	}
}

func boolP(v bool) *bool { return &v }
