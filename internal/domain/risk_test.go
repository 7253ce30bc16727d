package domain

import "testing"

func TestRiskLevelFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0.0, RiskLevelLow},
		{0.29, RiskLevelLow},
		{0.3, RiskLevelMedium},
		{0.49, RiskLevelMedium},
		{0.5, RiskLevelHigh},
		{0.69, RiskLevelHigh},
		{0.7, RiskLevelCritical},
		{1.0, RiskLevelCritical},
	}

	for _, tc := range cases {
		if got := RiskLevelFromScore(tc.score); got != tc.want {
			t.Errorf("RiskLevelFromScore(%.2f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
