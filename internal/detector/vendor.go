package detector

import (
	"fmt"
	"math"
	"strings"

	"github.com/auditlens/auditlens/internal/domain"
)

// highRiskVendorThreshold marks a vendor high risk once the summed factor
// contributions exceed it.
const highRiskVendorThreshold = 0.6

// consumerEmailDomains are webmail providers that flag a vendor using a
// personal address instead of a business domain.
var consumerEmailDomains = []string{"gmail", "yahoo", "hotmail", "outlook"}

// VendorRiskResult is the vendor risk assessor's finding.
type VendorRiskResult struct {
	IsHighRisk  bool                `json:"is_high_risk"`
	Confidence  float64             `json:"confidence"`
	Message     string              `json:"message"`
	RiskFactors []domain.RiskFactor `json:"risk_factors,omitempty"`
}

// VendorRiskAssessor scores vendor metadata completeness with a fixed
// additive model on a 0-1 scale.
type VendorRiskAssessor struct{}

// NewVendorRiskAssessor creates a vendor risk assessor.
func NewVendorRiskAssessor() *VendorRiskAssessor {
	return &VendorRiskAssessor{}
}

// Assess accumulates risk factors from missing or suspicious vendor metadata.
// An invoice without a vendor name produces no finding.
func (a *VendorRiskAssessor) Assess(invoice *domain.InvoiceRecord, history []*domain.HistoryEntry) VendorRiskResult {
	result := VendorRiskResult{}

	if invoice.VendorName == nil || *invoice.VendorName == "" {
		return result
	}

	if vendorEntryCount(*invoice.VendorName, history) == 0 {
		result.RiskFactors = append(result.RiskFactors, domain.RiskFactor{
			Factor:           "NEW_VENDOR",
			Description:      "First transaction with this vendor",
			RiskContribution: 0.3,
		})
	}

	if invoice.VendorAddress == nil || *invoice.VendorAddress == "" {
		result.RiskFactors = append(result.RiskFactors, domain.RiskFactor{
			Factor:           "MISSING_ADDRESS",
			Description:      "Vendor address not provided (ghost vendor indicator)",
			RiskContribution: 0.5,
		})
	}

	if invoice.VendorEmail == nil && invoice.VendorPhone == nil {
		result.RiskFactors = append(result.RiskFactors, domain.RiskFactor{
			Factor:           "NO_CONTACT_INFO",
			Description:      "No email or phone number provided",
			RiskContribution: 0.4,
		})
	}

	if invoice.VendorEmail != nil && isConsumerEmail(*invoice.VendorEmail) {
		result.RiskFactors = append(result.RiskFactors, domain.RiskFactor{
			Factor:           "PERSONAL_EMAIL",
			Description:      "Using personal email domain instead of business domain",
			RiskContribution: 0.3,
		})
	}

	if len(result.RiskFactors) > 0 {
		total := 0.0
		for _, factor := range result.RiskFactors {
			total += factor.RiskContribution
		}
		result.Confidence = math.Min(total, 1.0)
		result.IsHighRisk = total > highRiskVendorThreshold
		result.Message = fmt.Sprintf("Vendor has %d risk factor(s)", len(result.RiskFactors))
	}

	return result
}

func vendorEntryCount(vendorName string, history []*domain.HistoryEntry) int {
	count := 0
	for _, entry := range history {
		if strings.EqualFold(entry.VendorName, vendorName) {
			count++
		}
	}
	return count
}

func isConsumerEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, domainName := range consumerEmailDomains {
		if strings.Contains(lower, domainName) {
			return true
		}
	}
	return false
}
