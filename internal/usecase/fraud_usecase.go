package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auditlens/auditlens/internal/detector"
	"github.com/auditlens/auditlens/internal/domain"
	"github.com/auditlens/auditlens/internal/ports"
	"github.com/auditlens/auditlens/internal/service/logger"
)

// FraudUseCase runs the rule-based fraud analysis pipeline: five independent
// detectors over one history snapshot, merged in a fixed order so report
// contents are reproducible. It is the default ports.RiskBackend.
type FraudUseCase struct {
	history    ports.InvoiceHistory
	duplicates *detector.DuplicateDetector
	amounts    *detector.AmountAnomalyDetector
	vendors    *detector.VendorRiskAssessor
	patterns   *detector.PatternFraudDetector
	lineItems  *detector.LineItemAuditor
	scorer     ports.SimilarityScorer
	log        logger.Logger
}

// FraudConfig carries the tunable detector thresholds.
type FraudConfig struct {
	SimilarityThreshold float64
	ZScoreThreshold     float64
}

// NewFraudUseCase creates the fraud pipeline. scorer may be nil to disable
// fuzzy duplicate matching.
func NewFraudUseCase(history ports.InvoiceHistory, scorer ports.SimilarityScorer, cfg FraudConfig, log logger.Logger) *FraudUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &FraudUseCase{
		history:    history,
		duplicates: detector.NewDuplicateDetector(scorer, cfg.SimilarityThreshold),
		amounts:    detector.NewAmountAnomalyDetector(cfg.ZScoreThreshold),
		vendors:    detector.NewVendorRiskAssessor(),
		patterns:   detector.NewPatternFraudDetector(),
		lineItems:  detector.NewLineItemAuditor(),
		scorer:     scorer,
		log:        log,
	}
}

// AnalyzeInvoice scores an invoice for fraud against the current history
// snapshot and appends its fingerprint to history afterwards, so an invoice
// never matches itself. Malformed optional fields disable the checks that
// need them; an unexpected failure yields a degraded low-risk report with the
// Error field populated instead of propagating.
func (uc *FraudUseCase) AnalyzeInvoice(ctx context.Context, invoice *domain.InvoiceRecord, invoiceID string) (report *domain.FraudReport) {
	report = &domain.FraudReport{
		InvoiceID:  invoiceID,
		AnalysisID: uuid.NewString(),
		RiskLevel:  domain.RiskLevelLow,
		AnalyzedAt: time.Now().UTC(),
	}
	report.Details.Backend = "rules"

	defer func() {
		if r := recover(); r != nil {
			uc.log.Error(ctx, "fraud analysis failed", fmt.Errorf("%v", r), map[string]interface{}{
				"invoice_id": invoiceID,
			})
			report.FraudDetected = false
			report.RiskScore = 0
			report.RiskLevel = domain.RiskLevelLow
			report.Error = fmt.Sprintf("%v", r)
		}
	}()

	if invoice == nil {
		report.Error = "no invoice supplied"
		return report
	}

	snapshot := uc.history.Snapshot()

	duplicate := uc.duplicates.Detect(invoice, snapshot)
	if duplicate.IsDuplicate {
		report.Detections = append(report.Detections, domain.Detection{
			Type:        "DUPLICATE_INVOICE",
			Severity:    domain.SeverityHigh,
			Description: duplicate.Message,
			Confidence:  duplicate.Confidence,
		})
		report.FraudDetected = true
	}
	report.Details.DuplicateCheck = duplicate

	anomaly := uc.amounts.Detect(invoice, snapshot)
	if anomaly.IsAnomaly {
		report.Detections = append(report.Detections, domain.Detection{
			Type:        "AMOUNT_ANOMALY",
			Severity:    anomaly.Severity,
			Description: anomaly.Message,
			Confidence:  anomaly.Confidence,
		})
		if anomaly.Severity == domain.SeverityHigh {
			report.FraudDetected = true
		}
	}
	report.Details.AmountCheck = anomaly

	vendorRisk := uc.vendors.Assess(invoice, snapshot)
	if vendorRisk.IsHighRisk {
		report.Warnings = append(report.Warnings, domain.Detection{
			Type:        "VENDOR_RISK",
			Severity:    domain.SeverityMedium,
			Description: vendorRisk.Message,
			Confidence:  vendorRisk.Confidence,
		})
	}
	report.Details.VendorRisk = vendorRisk

	patterns := uc.patterns.Detect(invoice, snapshot)
	if patterns.Err != nil {
		uc.log.Warn(ctx, "pattern detector degraded", map[string]interface{}{
			"invoice_id": invoiceID,
			"reason":     patterns.Err.Error(),
		})
	}
	for _, pattern := range patterns.SuspiciousPatterns {
		report.Warnings = append(report.Warnings, domain.Detection{
			Type:        "SUSPICIOUS_PATTERN",
			Severity:    pattern.Severity,
			Description: pattern.Description,
			Confidence:  pattern.Confidence,
		})
		if pattern.Severity == domain.SeverityHigh {
			report.FraudDetected = true
		}
	}
	report.Details.PatternAnalysis = patterns

	lineItems := uc.lineItems.Audit(invoice)
	if lineItems.Suspicious {
		report.Warnings = append(report.Warnings, domain.Detection{
			Type:        "LINE_ITEM_FRAUD",
			Severity:    domain.SeverityMedium,
			Description: lineItems.Message,
			Confidence:  lineItems.Confidence,
		})
	}
	report.Details.LineItemCheck = lineItems

	report.RiskScore = aggregateRiskScore(report)
	report.RiskLevel = domain.RiskLevelFromScore(report.RiskScore)

	uc.history.Append(domain.NewHistoryEntry(invoice, invoiceID))

	uc.log.Info(ctx, "fraud analysis completed", map[string]interface{}{
		"invoice_id": invoiceID,
		"risk_level": report.RiskLevel,
		"risk_score": report.RiskScore,
	})

	return report
}

// aggregateRiskScore combines detector outputs into one score:
// 0.3 per HIGH or CRITICAL detection, 0.15 per MEDIUM detection, 0.1 per
// warning, 0.4 for the fraud flag, clamped to [0, 1].
func aggregateRiskScore(report *domain.FraudReport) float64 {
	score := 0.0
	for _, d := range report.Detections {
		switch d.Severity {
		case domain.SeverityHigh, domain.SeverityCritical:
			score += 0.3
		case domain.SeverityMedium:
			score += 0.15
		}
	}
	score += float64(len(report.Warnings)) * 0.1
	if report.FraudDetected {
		score += 0.4
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Statistics summarizes what the pipeline has seen so far.
type Statistics struct {
	TotalInvoicesAnalyzed int  `json:"total_invoices_analyzed"`
	UniqueVendors         int  `json:"unique_vendors"`
	FuzzyMatchAvailable   bool `json:"fuzzy_match_available"`
}

// Statistics reports pipeline counters derived from the history store.
func (uc *FraudUseCase) Statistics() Statistics {
	vendors := make(map[string]struct{})
	entries := uc.history.Snapshot()
	for _, entry := range entries {
		if entry.VendorName != "" {
			vendors[strings.ToLower(entry.VendorName)] = struct{}{}
		}
	}
	return Statistics{
		TotalInvoicesAnalyzed: len(entries),
		UniqueVendors:         len(vendors),
		FuzzyMatchAvailable:   uc.scorer != nil,
	}
}
