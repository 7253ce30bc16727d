package domain

import "time"

// Violation represents one compliance rule violation. Violations are data,
// not errors: they are always returned as a list regardless of severity and
// are not persisted by this subsystem.
type Violation struct {
	RuleID         string   `json:"rule_id"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation"`
}

// ComplianceResult represents the outcome of checking a record against one
// compliance standard.
type ComplianceResult struct {
	Compliant  bool               `json:"compliant"`
	Standard   ComplianceStandard `json:"standard"`
	Violations []Violation        `json:"violations"`
	CheckedAt  time.Time          `json:"checked_at"`
}

// Transaction represents a financial transaction checked for SOX compliance.
// Empty string fields mean the corresponding control is missing.
type Transaction struct {
	CreatedBy     string  `json:"created_by"`
	ApprovedBy    string  `json:"approved_by"`
	AuditTrailRef string  `json:"audit_trail_ref"`
	Amount        float64 `json:"amount"`
	DualApproval  bool    `json:"dual_approval"`
}

// PaymentData represents payment card data checked for PCI-DSS compliance.
// Nil pointer fields are absent and skip the per-field checks.
type PaymentData struct {
	CardNumber       *string `json:"card_number,omitempty"`
	CVV              *string `json:"cvv,omitempty"`
	CardHolder       *string `json:"card_holder,omitempty"`
	AccountNumber    *string `json:"account_number,omitempty"`
	EncryptedStorage bool    `json:"encrypted_storage"`
}

// PIIField represents one personal data field inside a processing record.
type PIIField struct {
	Value      string `json:"value"`
	Anonymized bool   `json:"anonymized"`
}

// DataProcessingRecord represents a personal-data processing activity checked
// for GDPR compliance. PII is keyed by canonical field name (email, phone,
// address, ssn, tax_id).
type DataProcessingRecord struct {
	UserConsent     bool                `json:"user_consent"`
	PII             map[string]PIIField `json:"pii,omitempty"`
	RetentionPolicy bool                `json:"retention_policy"`
	DeletionSupport bool                `json:"deletion_supported"`
	BreachDetection bool                `json:"breach_detection"`
}
