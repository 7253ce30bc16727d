package detector

import (
	"fmt"
	"strings"
	"time"

	"github.com/auditlens/auditlens/internal/domain"
)

// approvalThresholds are common approval limits; amounts just below one of
// them suggest split billing.
var approvalThresholds = []float64{1000, 5000, 10000, 25000, 50000}

// recentNumberWindow is how many of the most recent history entries are
// searched for a reused invoice number.
const recentNumberWindow = 10

// SuspiciousPattern is one heuristic red flag found on an invoice.
type SuspiciousPattern struct {
	Pattern     string          `json:"pattern"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Confidence  float64         `json:"confidence"`
}

// PatternResult is the pattern fraud detector's finding.
type PatternResult struct {
	SuspiciousPatterns []SuspiciousPattern `json:"suspicious_patterns,omitempty"`
	PatternCount       int                 `json:"pattern_count"`
	Err                error               `json:"-"`
}

// PatternFraudDetector runs independent heuristic checks, each producing at
// most one pattern entry. A malformed date disables the calendar checks
// without failing the detector; the parse error is surfaced in Err.
type PatternFraudDetector struct{}

// NewPatternFraudDetector creates a pattern fraud detector.
func NewPatternFraudDetector() *PatternFraudDetector {
	return &PatternFraudDetector{}
}

// Detect returns every triggered pattern in a fixed order: split billing,
// weekend, holiday period, missing invoice number, duplicate invoice number.
func (d *PatternFraudDetector) Detect(invoice *domain.InvoiceRecord, history []*domain.HistoryEntry) PatternResult {
	result := PatternResult{}

	if invoice.TotalAmount != nil {
		amount := *invoice.TotalAmount
		for _, threshold := range approvalThresholds {
			if amount >= threshold*0.9 && amount < threshold {
				result.SuspiciousPatterns = append(result.SuspiciousPatterns, SuspiciousPattern{
					Pattern:     "SPLIT_BILLING",
					Description: fmt.Sprintf("Amount %.2f is just below %.2f threshold", amount, threshold),
					Severity:    domain.SeverityMedium,
					Confidence:  0.6,
				})
				break
			}
		}
	}

	if invoice.InvoiceDate != nil {
		date, err := parseInvoiceDate(*invoice.InvoiceDate)
		if err != nil {
			result.Err = fmt.Errorf("invoice date %q: %w", *invoice.InvoiceDate, err)
		} else {
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				result.SuspiciousPatterns = append(result.SuspiciousPatterns, SuspiciousPattern{
					Pattern:     "WEEKEND_TRANSACTION",
					Description: "Invoice dated on weekend",
					Severity:    domain.SeverityLow,
					Confidence:  0.4,
				})
			}
			if date.Month() == time.December && date.Day() >= 24 {
				result.SuspiciousPatterns = append(result.SuspiciousPatterns, SuspiciousPattern{
					Pattern:     "HOLIDAY_TRANSACTION",
					Description: "Invoice dated during holiday period",
					Severity:    domain.SeverityLow,
					Confidence:  0.4,
				})
			}
		}
	}

	if invoice.InvoiceNumber == nil || *invoice.InvoiceNumber == "" {
		result.SuspiciousPatterns = append(result.SuspiciousPatterns, SuspiciousPattern{
			Pattern:     "MISSING_INVOICE_NUMBER",
			Description: "Invoice number not provided",
			Severity:    domain.SeverityMedium,
			Confidence:  0.7,
		})
	} else if numberSeenRecently(*invoice.InvoiceNumber, history) {
		result.SuspiciousPatterns = append(result.SuspiciousPatterns, SuspiciousPattern{
			Pattern:     "DUPLICATE_INVOICE_NUMBER",
			Description: fmt.Sprintf("Invoice number %s already exists", *invoice.InvoiceNumber),
			Severity:    domain.SeverityHigh,
			Confidence:  1.0,
		})
	}

	result.PatternCount = len(result.SuspiciousPatterns)
	return result
}

func numberSeenRecently(invoiceNumber string, history []*domain.HistoryEntry) bool {
	start := len(history) - recentNumberWindow
	if start < 0 {
		start = 0
	}
	for _, entry := range history[start:] {
		if entry.InvoiceNumber == invoiceNumber {
			return true
		}
	}
	return false
}

var invoiceDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseInvoiceDate parses an ISO-8601 date, tolerating slash separators.
func parseInvoiceDate(value string) (time.Time, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), "/", "-")
	var lastErr error
	for _, layout := range invoiceDateLayouts {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
