package compliance

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/auditlens/auditlens/internal/domain"
)

// piiFieldNames is the fixed set of personal data fields checked under GDPR.
var piiFieldNames = []string{"email", "phone", "address", "ssn", "tax_id"}

// dualApprovalThreshold is the amount above which SOX requires a second
// approver. Exactly this amount does not.
const dualApprovalThreshold = 10000.0

// Engine evaluates records against named compliance standards. It is
// stateless: every result is purely a function of the input record.
type Engine struct {
	now func() time.Time
}

// NewEngine creates a compliance rule engine.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// CheckSOX verifies segregation of duties, authorization, audit trail
// presence, and the dual-approval amount threshold.
func (e *Engine) CheckSOX(tx domain.Transaction) domain.ComplianceResult {
	var violations []domain.Violation

	if tx.CreatedBy != "" && tx.CreatedBy == tx.ApprovedBy {
		violations = append(violations, domain.Violation{
			RuleID:         "SOX-001",
			Description:    "Same user created and approved transaction",
			Severity:       domain.SeverityHigh,
			Recommendation: "Require different users for creation and approval",
		})
	}

	if tx.ApprovedBy == "" {
		violations = append(violations, domain.Violation{
			RuleID:         "SOX-002",
			Description:    "Transaction not approved",
			Severity:       domain.SeverityMedium,
			Recommendation: "Require management approval for financial transactions",
		})
	}

	if tx.AuditTrailRef == "" {
		violations = append(violations, domain.Violation{
			RuleID:         "SOX-003",
			Description:    "Missing audit trail",
			Severity:       domain.SeverityCritical,
			Recommendation: "Maintain complete audit trail for all transactions",
		})
	}

	if tx.Amount > dualApprovalThreshold && !tx.DualApproval {
		violations = append(violations, domain.Violation{
			RuleID:         "SOX-004",
			Description:    fmt.Sprintf("Transaction amount %.2f requires dual approval", tx.Amount),
			Severity:       domain.SeverityHigh,
			Recommendation: "Implement dual approval for transactions over $10,000",
		})
	}

	return e.result(domain.StandardSOX, violations)
}

// CheckPCIDSS verifies that present payment card fields are encrypted, card
// numbers are masked to the last 4 digits, and storage is flagged encrypted.
func (e *Engine) CheckPCIDSS(data domain.PaymentData) domain.ComplianceResult {
	var violations []domain.Violation

	sensitiveFields := []struct {
		name  string
		value *string
	}{
		{"card_number", data.CardNumber},
		{"cvv", data.CVV},
		{"card_holder", data.CardHolder},
		{"account_number", data.AccountNumber},
	}
	for _, field := range sensitiveFields {
		if field.value != nil && !looksEncrypted(*field.value) {
			violations = append(violations, domain.Violation{
				RuleID:         "PCI-001",
				Description:    fmt.Sprintf("Sensitive field %q is not encrypted", field.name),
				Severity:       domain.SeverityCritical,
				Recommendation: "Encrypt all payment card data with an authenticated cipher",
			})
		}
	}

	if data.CardNumber != nil && len(*data.CardNumber) > 4 {
		violations = append(violations, domain.Violation{
			RuleID:         "PCI-002",
			Description:    "Card number not properly masked",
			Severity:       domain.SeverityHigh,
			Recommendation: "Mask all but last 4 digits of card numbers",
		})
	}

	if !data.EncryptedStorage {
		violations = append(violations, domain.Violation{
			RuleID:         "PCI-003",
			Description:    "Payment data not in encrypted storage",
			Severity:       domain.SeverityCritical,
			Recommendation: "Store payment data only in PCI-compliant encrypted systems",
		})
	}

	return e.result(domain.StandardPCIDSS, violations)
}

// CheckGDPR verifies consent, per-field anonymization, retention policy,
// deletion capability, and breach detection.
func (e *Engine) CheckGDPR(record domain.DataProcessingRecord) domain.ComplianceResult {
	var violations []domain.Violation

	if !record.UserConsent {
		violations = append(violations, domain.Violation{
			RuleID:         "GDPR-001",
			Description:    "No user consent for data processing",
			Severity:       domain.SeverityCritical,
			Recommendation: "Obtain explicit consent before processing personal data",
		})
	}

	for _, field := range piiFieldNames {
		pii, ok := record.PII[field]
		if ok && !pii.Anonymized {
			violations = append(violations, domain.Violation{
				RuleID:         "GDPR-002",
				Description:    fmt.Sprintf("PII field %q not anonymized for analytics", field),
				Severity:       domain.SeverityMedium,
				Recommendation: "Anonymize or pseudonymize PII when possible",
			})
		}
	}

	if !record.RetentionPolicy {
		violations = append(violations, domain.Violation{
			RuleID:         "GDPR-003",
			Description:    "No data retention policy defined",
			Severity:       domain.SeverityMedium,
			Recommendation: "Define and implement data retention policies",
		})
	}

	if !record.DeletionSupport {
		violations = append(violations, domain.Violation{
			RuleID:         "GDPR-004",
			Description:    "Right to deletion not implemented",
			Severity:       domain.SeverityHigh,
			Recommendation: "Implement user data deletion functionality",
		})
	}

	if !record.BreachDetection {
		violations = append(violations, domain.Violation{
			RuleID:         "GDPR-005",
			Description:    "No data breach detection mechanism",
			Severity:       domain.SeverityHigh,
			Recommendation: "Implement automated breach detection and 72-hour notification",
		})
	}

	return e.result(domain.StandardGDPR, violations)
}

func (e *Engine) result(standard domain.ComplianceStandard, violations []domain.Violation) domain.ComplianceResult {
	return domain.ComplianceResult{
		Compliant:  len(violations) == 0,
		Standard:   standard,
		Violations: violations,
		CheckedAt:  e.now().UTC(),
	}
}

// looksEncrypted is a heuristic: ciphertexts produced by the encryption
// manager are base64 and longer than typical raw card data.
func looksEncrypted(value string) bool {
	if len(value) <= 20 {
		return false
	}
	if _, err := base64.URLEncoding.DecodeString(value); err == nil {
		return true
	}
	_, err := base64.StdEncoding.DecodeString(value)
	return err == nil
}
