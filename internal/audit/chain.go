package audit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/auditlens/auditlens/internal/domain"
	"github.com/auditlens/auditlens/internal/service/logger"
	"github.com/auditlens/auditlens/pkg/apperror"
)

// GenesisHash is the previous_hash of the first chain entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ErrNoSigningSecret is returned when a chain is constructed without a
// secret. Key provisioning and rotation are the caller's concern; there is
// no built-in default.
var ErrNoSigningSecret = errors.New("audit: signing secret is required")

// ChainError describes one integrity failure found during verification.
type ChainError struct {
	EntryID  string `json:"entry_id"`
	Reason   string `json:"reason"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// VerificationResult is the outcome of a full chain verification. Failures
// are reported, never repaired: a broken chain is a security incident, not a
// retryable error.
type VerificationResult struct {
	Valid        bool         `json:"valid"`
	TotalEntries int          `json:"total_entries"`
	Errors       []ChainError `json:"errors,omitempty"`
}

// AppendRequest carries the optional fields of an audit append.
type AppendRequest struct {
	Details        map[string]string
	OriginAddress  string
	Sensitivity    domain.SensitivityLevel
	ComplianceTags []domain.ComplianceStandard
}

// Chain is a hash-linked, HMAC-signed, append-only log of system actions.
// Appends are serialized by a mutex; entries only ever move from appended to
// (optionally) verified, never updated or deleted. The chain owns its
// entries exclusively.
type Chain struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry
	tip     string
	lastTS  time.Time
	secret  []byte
	now     func() time.Time
	log     logger.Logger
}

// NewChain creates an audit chain signing with the supplied secret.
func NewChain(secret []byte, log logger.Logger) (*Chain, error) {
	if len(secret) == 0 {
		return nil, ErrNoSigningSecret
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Chain{
		tip:    GenesisHash,
		secret: append([]byte(nil), secret...),
		now:    time.Now,
		log:    log,
	}, nil
}

// Append builds, hashes, signs, and links a new entry, then advances the
// chain tip. Timestamps are UTC and monotonically non-decreasing across the
// chain.
func (c *Chain) Append(ctx context.Context, action domain.AuditAction, actorID, resourceType, resourceID string, req AppendRequest) (*domain.AuditEntry, error) {
	if action == "" || actorID == "" {
		return nil, apperror.NewInvalidInput("audit: action and actor id are required")
	}
	if req.Sensitivity == "" {
		req.Sensitivity = domain.SensitivityInternal
	}
	if req.Details == nil {
		req.Details = map[string]string{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UTC()
	if ts.Before(c.lastTS) {
		ts = c.lastTS
	}

	entry := &domain.AuditEntry{
		ID:             entryID(ts, actorID, action),
		Timestamp:      ts,
		Action:         action,
		ActorID:        actorID,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Details:        copyDetails(req.Details),
		OriginAddress:  req.OriginAddress,
		Sensitivity:    req.Sensitivity,
		ComplianceTags: append([]domain.ComplianceStandard(nil), req.ComplianceTags...),
		PreviousHash:   c.tip,
	}
	entry.Hash = entryHash(entry)
	entry.Signature = c.sign(entry)

	c.entries = append(c.entries, entry)
	c.tip = entry.Hash
	c.lastTS = ts

	c.log.Info(ctx, "audit entry appended", map[string]interface{}{
		"audit_id":      entry.ID,
		"action":        entry.Action,
		"actor_id":      entry.ActorID,
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
	})

	return entrySnapshot(entry), nil
}

// Verify recomputes every entry's hash, checks hash-chain linkage, and
// re-derives signatures. Mismatches are collected per entry id; the chain is
// never mutated.
func (c *Chain) Verify() VerificationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := VerificationResult{Valid: true, TotalEntries: len(c.entries)}

	previousHash := GenesisHash
	for _, entry := range c.entries {
		if calculated := entryHash(entry); calculated != entry.Hash {
			result.Errors = append(result.Errors, ChainError{
				EntryID:  entry.ID,
				Reason:   "hash mismatch",
				Expected: entry.Hash,
				Actual:   calculated,
			})
		}
		if entry.PreviousHash != previousHash {
			result.Errors = append(result.Errors, ChainError{
				EntryID:  entry.ID,
				Reason:   "chain broken",
				Expected: previousHash,
				Actual:   entry.PreviousHash,
			})
		}
		if signature := c.sign(entry); signature != entry.Signature {
			result.Errors = append(result.Errors, ChainError{
				EntryID: entry.ID,
				Reason:  "signature mismatch",
			})
		}
		previousHash = entry.Hash
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// TrailForActor returns the entries recorded for an actor, in append order,
// optionally bounded by an inclusive time range.
func (c *Chain) TrailForActor(actorID string, from, to *time.Time) []*domain.AuditEntry {
	return c.filter(func(e *domain.AuditEntry) bool {
		if e.ActorID != actorID {
			return false
		}
		return inRange(e.Timestamp, from, to)
	})
}

// TrailForResource returns the complete trail for one resource in append
// order.
func (c *Chain) TrailForResource(resourceType, resourceID string) []*domain.AuditEntry {
	return c.filter(func(e *domain.AuditEntry) bool {
		return e.ResourceType == resourceType && e.ResourceID == resourceID
	})
}

// Entries returns the whole chain in append order.
func (c *Chain) Entries() []*domain.AuditEntry {
	return c.filter(func(*domain.AuditEntry) bool { return true })
}

// Len returns the number of entries in the chain.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Chain) filter(keep func(*domain.AuditEntry) bool) []*domain.AuditEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*domain.AuditEntry
	for _, entry := range c.entries {
		if keep(entry) {
			out = append(out, entrySnapshot(entry))
		}
	}
	return out
}

func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}

// entryID derives a stable 16-hex-char id from the entry's timestamp, actor,
// and action.
func entryID(ts time.Time, actorID string, action domain.AuditAction) string {
	sum := sha256.Sum256([]byte(ts.Format(time.RFC3339Nano) + actorID + string(action)))
	return hex.EncodeToString(sum[:])[:16]
}

// canonicalFields flattens an entry into a map so encoding/json emits keys in
// sorted order. includeHash controls whether the stored hash participates
// (it must for signatures, must not for the hash itself). The signature
// never participates.
func canonicalFields(entry *domain.AuditEntry, includeHash bool) map[string]interface{} {
	tags := make([]string, 0, len(entry.ComplianceTags))
	for _, tag := range entry.ComplianceTags {
		tags = append(tags, string(tag))
	}
	fields := map[string]interface{}{
		"id":              entry.ID,
		"timestamp":       entry.Timestamp.UTC().Format(time.RFC3339Nano),
		"action":          string(entry.Action),
		"actor_id":        entry.ActorID,
		"resource_type":   entry.ResourceType,
		"resource_id":     entry.ResourceID,
		"details":         entry.Details,
		"origin_address":  entry.OriginAddress,
		"sensitivity":     string(entry.Sensitivity),
		"compliance_tags": tags,
		"previous_hash":   entry.PreviousHash,
	}
	if includeHash {
		fields["hash"] = entry.Hash
	}
	return fields
}

func entryHash(entry *domain.AuditEntry) string {
	data, _ := json.Marshal(canonicalFields(entry, false))
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Chain) sign(entry *domain.AuditEntry) string {
	data, _ := json.Marshal(canonicalFields(entry, true))
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func copyDetails(details map[string]string) map[string]string {
	out := make(map[string]string, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}

// entrySnapshot returns a defensive copy so callers cannot reach the chain's
// own entry.
func entrySnapshot(entry *domain.AuditEntry) *domain.AuditEntry {
	cp := *entry
	cp.Details = copyDetails(entry.Details)
	cp.ComplianceTags = append([]domain.ComplianceStandard(nil), entry.ComplianceTags...)
	return &cp
}
