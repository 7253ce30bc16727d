package detector

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/auditlens/auditlens/internal/domain"
)

// DefaultZScoreThreshold is the z-score above which an amount is anomalous.
const DefaultZScoreThreshold = 3.0

// minVendorSamples is the number of historical amounts required before
// statistical checks run.
const minVendorSamples = 4

// AmountAnomalyDetails retains the statistics behind a finding for
// explainability.
type AmountAnomalyDetails struct {
	ZScore      *float64    `json:"z_score,omitempty"`
	VendorAvg   *float64    `json:"vendor_avg,omitempty"`
	IQRBounds   *[2]float64 `json:"iqr_bounds,omitempty"`
	RoundNumber bool        `json:"round_number,omitempty"`
}

// AmountAnomalyResult is the amount anomaly detector's finding.
type AmountAnomalyResult struct {
	IsAnomaly  bool                 `json:"is_anomaly"`
	Confidence float64              `json:"confidence"`
	Severity   domain.Severity      `json:"severity"`
	Message    string               `json:"message"`
	Details    AmountAnomalyDetails `json:"details"`
}

// AmountAnomalyDetector flags statistically unusual total amounts for a
// vendor using z-score, IQR fence, and round-number checks. The three checks
// are independent and unioned; confidence is the max across triggered checks.
type AmountAnomalyDetector struct {
	zThreshold float64
}

// NewAmountAnomalyDetector creates an amount anomaly detector.
func NewAmountAnomalyDetector(zThreshold float64) *AmountAnomalyDetector {
	if zThreshold <= 0 {
		zThreshold = DefaultZScoreThreshold
	}
	return &AmountAnomalyDetector{zThreshold: zThreshold}
}

// Detect reports whether the invoice's total amount is anomalous relative to
// the vendor's history. Fewer than four historical amounts for the vendor
// means no statistical finding; the round-number heuristic still applies.
func (d *AmountAnomalyDetector) Detect(invoice *domain.InvoiceRecord, history []*domain.HistoryEntry) AmountAnomalyResult {
	result := AmountAnomalyResult{Severity: domain.SeverityLow}

	if invoice.TotalAmount == nil {
		return result
	}
	amount := *invoice.TotalAmount

	amounts := vendorAmounts(invoice.VendorName, history)
	if len(amounts) >= minVendorSamples {
		mean := meanOf(amounts)
		std := stddevOf(amounts, mean)

		if std > 0 {
			z := math.Abs(amount-mean) / std
			if z > d.zThreshold {
				result.IsAnomaly = true
				result.Confidence = math.Min(z/10.0, 1.0)
				result.Severity = domain.SeverityMedium
				if z > 5 {
					result.Severity = domain.SeverityHigh
				}
				result.Message = fmt.Sprintf("Amount %.2f is %.1f standard deviations from vendor average %.2f", amount, z, mean)
				result.Details.ZScore = &z
				result.Details.VendorAvg = &mean
			}
		} else if amount != mean {
			// Zero spread in history makes any deviation an unbounded
			// z-score. Report the strongest finding without putting a
			// non-finite number into the details.
			result.IsAnomaly = true
			result.Confidence = 1.0
			result.Severity = domain.SeverityHigh
			result.Message = fmt.Sprintf("Amount %.2f deviates from constant vendor amount %.2f", amount, mean)
			result.Details.VendorAvg = &mean
		}

		q1 := percentile(amounts, 25)
		q3 := percentile(amounts, 75)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr
		if amount < lower || amount > upper {
			result.IsAnomaly = true
			result.Confidence = math.Max(result.Confidence, 0.7)
			result.Message = fmt.Sprintf("Amount %.2f outside typical range (%.2f - %.2f)", amount, lower, upper)
			bounds := [2]float64{lower, upper}
			result.Details.IQRBounds = &bounds
		}
	}

	if math.Mod(amount, 1000) == 0 && amount >= 10000 {
		result.IsAnomaly = true
		result.Confidence = math.Max(result.Confidence, 0.5)
		result.Severity = domain.SeverityMedium
		result.Message = fmt.Sprintf("Suspiciously round amount: %.2f", amount)
		result.Details.RoundNumber = true
	}

	return result
}

func vendorAmounts(vendorName *string, history []*domain.HistoryEntry) []float64 {
	if vendorName == nil || *vendorName == "" {
		return nil
	}
	var amounts []float64
	for _, entry := range history {
		if strings.EqualFold(entry.VendorName, *vendorName) && entry.HasAmount {
			amounts = append(amounts, entry.TotalAmount)
		}
	}
	return amounts
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddevOf is the population standard deviation.
func stddevOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// percentile computes the p-th percentile with linear interpolation between
// closest ranks.
func percentile(xs []float64, p float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
