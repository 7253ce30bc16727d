package domain

import "time"

// Severity represents the severity of a detection or violation
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// RiskLevel represents the categorical risk bucket of a fraud report
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskLevelFromScore converts a continuous risk score into a risk level.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= 0.7:
		return RiskLevelCritical
	case score >= 0.5:
		return RiskLevelHigh
	case score >= 0.3:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// Detection represents a single detector finding. Detections are created by
// detectors, consumed by the aggregator and never mutated afterwards.
type Detection struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
}

// RiskFactor represents one additive contribution to a vendor risk score.
type RiskFactor struct {
	Factor           string  `json:"factor"`
	Description      string  `json:"description"`
	RiskContribution float64 `json:"risk_contribution"`
}

// FraudReport is the immutable result of one fraud analysis call. A non-empty
// Error marks a degraded report; callers must not treat it as a clean
// low-risk result.
type FraudReport struct {
	InvoiceID     string        `json:"invoice_id"`
	AnalysisID    string        `json:"analysis_id"`
	FraudDetected bool          `json:"fraud_detected"`
	RiskScore     float64       `json:"risk_score"`
	RiskLevel     RiskLevel     `json:"risk_level"`
	Detections    []Detection   `json:"detections"`
	Warnings      []Detection   `json:"warnings"`
	Details       ReportDetails `json:"details"`
	Error         string        `json:"error,omitempty"`
	AnalyzedAt    time.Time     `json:"analyzed_at"`
}

// ReportDetails carries the per-detector sub-results for explainability.
type ReportDetails struct {
	DuplicateCheck  interface{} `json:"duplicate_check,omitempty"`
	AmountCheck     interface{} `json:"amount_check,omitempty"`
	VendorRisk      interface{} `json:"vendor_risk,omitempty"`
	PatternAnalysis interface{} `json:"pattern_analysis,omitempty"`
	LineItemCheck   interface{} `json:"line_item_check,omitempty"`
	RiskFactors     interface{} `json:"risk_factors,omitempty"`
	Backend         string      `json:"backend,omitempty"`
}
