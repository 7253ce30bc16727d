package detector

import (
	"fmt"
	"math"
	"strings"

	"github.com/auditlens/auditlens/internal/domain"
)

// subtotalTolerance is the allowed difference between the line-item sum and
// the stated subtotal.
const subtotalTolerance = 0.02

// vagueKeywords flag line-item descriptions too generic to audit.
var vagueKeywords = []string{"miscellaneous", "various", "other", "services", "expenses"}

// LineItemResult is the line-item auditor's finding.
type LineItemResult struct {
	Suspicious bool     `json:"suspicious"`
	Confidence float64  `json:"confidence"`
	Message    string   `json:"message"`
	Issues     []string `json:"issues,omitempty"`
}

// LineItemAuditor checks line-item presence, subtotal reconciliation, vague
// descriptions, and quantity/rate anomalies. Triggered issues accumulate in
// order; confidence is the running maximum.
type LineItemAuditor struct{}

// NewLineItemAuditor creates a line-item auditor.
func NewLineItemAuditor() *LineItemAuditor {
	return &LineItemAuditor{}
}

// Audit inspects the invoice's line items. Missing line items short-circuit
// the remaining checks.
func (a *LineItemAuditor) Audit(invoice *domain.InvoiceRecord) LineItemResult {
	result := LineItemResult{}

	if len(invoice.LineItems) == 0 {
		result.Suspicious = true
		result.Confidence = 0.5
		result.Message = "Missing line item details"
		result.Issues = append(result.Issues, "No line items provided")
		return result
	}

	if invoice.Subtotal != nil {
		sum := 0.0
		for _, item := range invoice.LineItems {
			if item.Amount != nil {
				sum += *item.Amount
			}
		}
		if math.Abs(sum-*invoice.Subtotal) > subtotalTolerance {
			result.Suspicious = true
			result.Confidence = 0.8
			result.Issues = append(result.Issues,
				fmt.Sprintf("Line items total %.2f doesn't match subtotal %.2f", sum, *invoice.Subtotal))
		}
	}

	for _, item := range invoice.LineItems {
		if hasVagueDescription(item.Description) {
			result.Suspicious = true
			result.Confidence = math.Max(result.Confidence, 0.4)
			result.Issues = append(result.Issues,
				fmt.Sprintf("Vague line item description: %q", item.Description))
		}
	}

	for _, item := range invoice.LineItems {
		if item.Quantity != nil && item.UnitPrice != nil && *item.Quantity > 100 && *item.UnitPrice < 1 {
			result.Suspicious = true
			result.Confidence = math.Max(result.Confidence, 0.5)
			result.Issues = append(result.Issues,
				fmt.Sprintf("Unusual quantity/rate combination: %g x %g", *item.Quantity, *item.UnitPrice))
		}
	}

	if len(result.Issues) > 0 {
		result.Message = fmt.Sprintf("%d issue(s) found in line items", len(result.Issues))
	}

	return result
}

func hasVagueDescription(description string) bool {
	lower := strings.ToLower(description)
	for _, keyword := range vagueKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
