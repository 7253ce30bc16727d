package domain

import "time"

// AuditAction represents the type of action recorded in the audit chain
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionRead         AuditAction = "READ"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionLogout       AuditAction = "LOGOUT"
	AuditActionExport       AuditAction = "EXPORT"
	AuditActionApprove      AuditAction = "APPROVE"
	AuditActionReject       AuditAction = "REJECT"
	AuditActionAccessDenied AuditAction = "ACCESS_DENIED"
)

// SensitivityLevel represents the data sensitivity of an audited resource
type SensitivityLevel string

const (
	SensitivityPublic       SensitivityLevel = "PUBLIC"
	SensitivityInternal     SensitivityLevel = "INTERNAL"
	SensitivityConfidential SensitivityLevel = "CONFIDENTIAL"
	SensitivityRestricted   SensitivityLevel = "RESTRICTED"
)

// ComplianceStandard represents a named compliance standard
type ComplianceStandard string

const (
	StandardSOX    ComplianceStandard = "SOX"
	StandardPCIDSS ComplianceStandard = "PCI-DSS"
	StandardGDPR   ComplianceStandard = "GDPR"
)

// AuditEntry is one record in the hash-linked audit chain. Entries are
// append-only: Hash covers every field except Hash and Signature,
// PreviousHash equals the Hash of the immediately preceding entry (or the
// genesis value for the first entry), and Signature is an HMAC over the
// hashed entry. Entries are never mutated or deleted.
type AuditEntry struct {
	ID             string               `json:"id"`
	Timestamp      time.Time            `json:"timestamp"`
	Action         AuditAction          `json:"action"`
	ActorID        string               `json:"actor_id"`
	ResourceType   string               `json:"resource_type"`
	ResourceID     string               `json:"resource_id"`
	Details        map[string]string    `json:"details"`
	OriginAddress  string               `json:"origin_address,omitempty"`
	Sensitivity    SensitivityLevel     `json:"sensitivity"`
	ComplianceTags []ComplianceStandard `json:"compliance_tags"`
	PreviousHash   string               `json:"previous_hash"`
	Hash           string               `json:"hash"`
	Signature      string               `json:"signature"`
}
