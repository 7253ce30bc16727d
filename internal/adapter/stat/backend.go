// Package stat implements a statistical risk backend that scores invoices
// against robust vendor and global baselines instead of per-check rules. It
// satisfies the same contract as the rule pipeline and maintains the same
// history, so callers can swap backends without changing their flow.
package stat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auditlens/auditlens/internal/domain"
	"github.com/auditlens/auditlens/internal/ports"
	"github.com/auditlens/auditlens/internal/service/logger"
)

const (
	// madScale converts a median absolute deviation into a stddev-comparable
	// unit for normally distributed data.
	madScale = 1.4826

	// minVendorSamples is the vendor history size below which the robust
	// deviation check is skipped.
	minVendorSamples = 4

	// anomalyCap bounds the contribution of the deviation check so one wild
	// amount cannot saturate the score on its own.
	anomalyCap = 0.4
)

// features is the deterministic numeric profile extracted from one invoice.
type features struct {
	TotalAmount     float64 `json:"total_amount"`
	LineItemCount   int     `json:"line_item_count"`
	AvgItemAmount   float64 `json:"avg_item_amount"`
	MaxItemAmount   float64 `json:"max_item_amount"`
	VendorSamples   int     `json:"vendor_samples"`
	VendorMedian    float64 `json:"vendor_median"`
	VendorDeviation float64 `json:"vendor_deviation"`
	IsWeekend       bool    `json:"is_weekend"`
	RoundAmount     bool    `json:"round_amount"`
	MissingNumber   bool    `json:"missing_number"`
}

// Backend scores invoices with robust statistics over the shared invoice
// history. It implements ports.RiskBackend.
type Backend struct {
	history   ports.InvoiceHistory
	deviation float64
	log       logger.Logger
}

// NewBackend creates a statistical risk backend. deviationThreshold is the
// robust z-score above which a vendor amount counts as anomalous; zero means
// the default of 3.
func NewBackend(history ports.InvoiceHistory, deviationThreshold float64, log logger.Logger) *Backend {
	if deviationThreshold <= 0 {
		deviationThreshold = 3.0
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Backend{history: history, deviation: deviationThreshold, log: log}
}

// AnalyzeInvoice profiles the invoice, short-circuits on exact duplicates,
// and otherwise accumulates capped risk contributions from the deviation,
// vendor, and pattern checks. The invoice is appended to history afterwards.
func (b *Backend) AnalyzeInvoice(ctx context.Context, invoice *domain.InvoiceRecord, invoiceID string) (report *domain.FraudReport) {
	report = &domain.FraudReport{
		InvoiceID:  invoiceID,
		AnalysisID: uuid.NewString(),
		RiskLevel:  domain.RiskLevelLow,
		AnalyzedAt: time.Now().UTC(),
	}
	report.Details.Backend = "statistical"

	defer func() {
		if r := recover(); r != nil {
			b.log.Error(ctx, "statistical analysis failed", fmt.Errorf("%v", r), map[string]interface{}{
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

	snapshot := b.history.Snapshot()

	if dup := findExactDuplicate(invoice, snapshot); dup != nil {
		report.FraudDetected = true
		report.RiskScore = 1.0
		report.RiskLevel = domain.RiskLevelCritical
		report.Detections = append(report.Detections, domain.Detection{
			Type:        "DUPLICATE_INVOICE",
			Severity:    domain.SeverityCritical,
			Description: fmt.Sprintf("Exact match with previously analyzed invoice %s", dup.ID),
			Confidence:  1.0,
		})
		report.Details.RiskFactors = []domain.RiskFactor{{
			Factor:           "DUPLICATE_INVOICE",
			Description:      fmt.Sprintf("Exact match with previously analyzed invoice %s", dup.ID),
			RiskContribution: 1.0,
		}}
		b.history.Append(domain.NewHistoryEntry(invoice, invoiceID))
		return report
	}

	feats := b.extract(invoice, snapshot)
	factors := b.assess(feats, invoice, snapshot)

	score := 0.0
	for _, factor := range factors {
		score += factor.contribution
		detection := domain.Detection{
			Type:        factor.name,
			Severity:    factor.severity,
			Description: factor.description,
			Confidence:  factor.confidence,
		}
		if factor.severity == domain.SeverityHigh || factor.severity == domain.SeverityCritical {
			report.Detections = append(report.Detections, detection)
		} else {
			report.Warnings = append(report.Warnings, detection)
		}
	}
	if score > 1 {
		score = 1
	}

	report.RiskScore = score
	report.RiskLevel = domain.RiskLevelFromScore(score)
	report.FraudDetected = score >= 0.5
	report.Details.AmountCheck = feats
	report.Details.RiskFactors = riskFactorList(factors)

	b.history.Append(domain.NewHistoryEntry(invoice, invoiceID))

	b.log.Info(ctx, "statistical analysis completed", map[string]interface{}{
		"invoice_id": invoiceID,
		"risk_level": report.RiskLevel,
		"risk_score": report.RiskScore,
	})

	return report
}

// riskFactor is an internal scored finding before it is split into the
// report's detections and warnings.
type riskFactor struct {
	name         string
	description  string
	severity     domain.Severity
	confidence   float64
	contribution float64
}

func riskFactorList(factors []riskFactor) []domain.RiskFactor {
	out := make([]domain.RiskFactor, 0, len(factors))
	for _, f := range factors {
		out = append(out, domain.RiskFactor{
			Factor:           f.name,
			Description:      f.description,
			RiskContribution: f.contribution,
		})
	}
	return out
}

// extract builds the deterministic feature profile for an invoice against the
// history snapshot.
func (b *Backend) extract(invoice *domain.InvoiceRecord, snapshot []*domain.HistoryEntry) features {
	feats := features{}

	if invoice.TotalAmount != nil {
		feats.TotalAmount = *invoice.TotalAmount
	}
	feats.LineItemCount = len(invoice.LineItems)

	if feats.LineItemCount > 0 {
		sum, max := 0.0, 0.0
		for _, item := range invoice.LineItems {
			amount := 0.0
			if item.Amount != nil {
				amount = *item.Amount
			}
			sum += amount
			if amount > max {
				max = amount
			}
		}
		feats.AvgItemAmount = sum / float64(feats.LineItemCount)
		feats.MaxItemAmount = max
	}

	amounts := vendorAmounts(invoice, snapshot)
	feats.VendorSamples = len(amounts)
	if len(amounts) >= minVendorSamples && invoice.TotalAmount != nil {
		med := median(amounts)
		feats.VendorMedian = med
		feats.VendorDeviation = robustZ(*invoice.TotalAmount, amounts, med)
	}

	if invoice.InvoiceDate != nil {
		if parsed, err := parseDate(*invoice.InvoiceDate); err == nil {
			weekday := parsed.Weekday()
			feats.IsWeekend = weekday == time.Saturday || weekday == time.Sunday
		}
	}
	if invoice.TotalAmount != nil {
		amount := *invoice.TotalAmount
		feats.RoundAmount = amount >= 10000 && math.Mod(amount, 1000) == 0
	}
	feats.MissingNumber = invoice.InvoiceNumber == nil || strings.TrimSpace(*invoice.InvoiceNumber) == ""

	return feats
}

// assess converts the feature profile into capped risk contributions.
func (b *Backend) assess(feats features, invoice *domain.InvoiceRecord, snapshot []*domain.HistoryEntry) []riskFactor {
	var factors []riskFactor

	if feats.VendorDeviation > b.deviation {
		contribution := math.Min(feats.VendorDeviation/5.0, anomalyCap)
		severity := domain.SeverityMedium
		if contribution > 0.3 {
			severity = domain.SeverityHigh
		}
		factors = append(factors, riskFactor{
			name:         "STATISTICAL_ANOMALY",
			description:  fmt.Sprintf("Amount deviates %.1fx the robust spread from the vendor median %.2f", feats.VendorDeviation, feats.VendorMedian),
			severity:     severity,
			confidence:   math.Min(feats.VendorDeviation/10.0, 1.0),
			contribution: contribution,
		})
	}

	if invoice.VendorName != nil && strings.TrimSpace(*invoice.VendorName) != "" && feats.VendorSamples == 0 {
		factors = append(factors, riskFactor{
			name:         "NEW_VENDOR",
			description:  fmt.Sprintf("First invoice observed from vendor %q", *invoice.VendorName),
			severity:     domain.SeverityHigh,
			confidence:   1.0,
			contribution: 0.6,
		})
	}

	if outlier := globalOutlier(feats.TotalAmount, invoice.TotalAmount != nil, snapshot, b.deviation); outlier {
		factors = append(factors, riskFactor{
			name:         "OUTLIER_PATTERN",
			description:  "Amount does not match the profile of previously analyzed invoices",
			severity:     domain.SeverityMedium,
			confidence:   0.7,
			contribution: 0.2,
		})
	}

	if probability := patternProbability(feats); probability > 0.3 {
		severity := domain.SeverityMedium
		if probability > 0.7 {
			severity = domain.SeverityHigh
		}
		factors = append(factors, riskFactor{
			name:         "FRAUD_PATTERN_DETECTED",
			description:  fmt.Sprintf("Suspicious pattern indicators present (probability %.0f%%)", probability*100),
			severity:     severity,
			confidence:   probability,
			contribution: probability * 0.6,
		})
	}

	return factors
}

// patternProbability is the fraction of fired binary pattern indicators.
func patternProbability(feats features) float64 {
	indicators := []bool{
		feats.IsWeekend,
		feats.RoundAmount,
		feats.MissingNumber,
		feats.LineItemCount == 0,
	}
	fired := 0
	for _, on := range indicators {
		if on {
			fired++
		}
	}
	return float64(fired) / float64(len(indicators))
}

// globalOutlier reports whether the amount is a robust outlier against the
// whole history, regardless of vendor.
func globalOutlier(amount float64, hasAmount bool, snapshot []*domain.HistoryEntry, threshold float64) bool {
	if !hasAmount {
		return false
	}
	var amounts []float64
	for _, entry := range snapshot {
		if entry.HasAmount {
			amounts = append(amounts, entry.TotalAmount)
		}
	}
	if len(amounts) < minVendorSamples {
		return false
	}
	return robustZ(amount, amounts, median(amounts)) > threshold
}

func findExactDuplicate(invoice *domain.InvoiceRecord, snapshot []*domain.HistoryEntry) *domain.HistoryEntry {
	if invoice.VendorName == nil || invoice.InvoiceNumber == nil || invoice.TotalAmount == nil {
		return nil
	}
	for _, entry := range snapshot {
		if strings.EqualFold(entry.VendorName, *invoice.VendorName) &&
			entry.InvoiceNumber == *invoice.InvoiceNumber &&
			math.Abs(entry.TotalAmount-*invoice.TotalAmount) < 0.01 {
			return entry
		}
	}
	return nil
}

func vendorAmounts(invoice *domain.InvoiceRecord, snapshot []*domain.HistoryEntry) []float64 {
	if invoice.VendorName == nil || strings.TrimSpace(*invoice.VendorName) == "" {
		return nil
	}
	var amounts []float64
	for _, entry := range snapshot {
		if strings.EqualFold(entry.VendorName, *invoice.VendorName) && entry.HasAmount {
			amounts = append(amounts, entry.TotalAmount)
		}
	}
	return amounts
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// robustZ is |amount - median| over the scaled median absolute deviation.
// A zero MAD with a deviating amount reports an effectively unbounded z,
// clamped so the value stays finite.
func robustZ(amount float64, values []float64, med float64) float64 {
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - med)
	}
	mad := median(deviations)
	diff := math.Abs(amount - med)
	if mad == 0 {
		if diff == 0 {
			return 0
		}
		return 1000
	}
	return diff / (madScale * mad)
}

func parseDate(value string) (time.Time, error) {
	normalized := strings.ReplaceAll(value, "/", "-")
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, normalized)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
