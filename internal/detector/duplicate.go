package detector

import (
	"fmt"
	"math"
	"strings"

	"github.com/auditlens/auditlens/internal/domain"
	"github.com/auditlens/auditlens/internal/ports"
)

// DefaultSimilarityThreshold is the fuzzy-match cutoff for duplicate
// detection.
const DefaultSimilarityThreshold = 0.85

// DuplicateMatch describes one matched history entry.
type DuplicateMatch struct {
	Type       string  `json:"type"`
	MatchedID  string  `json:"matched_id"`
	Similarity float64 `json:"similarity"`
}

// DuplicateResult is the duplicate detector's finding, or its zero value when
// no duplicate was found.
type DuplicateResult struct {
	IsDuplicate bool             `json:"is_duplicate"`
	Confidence  float64          `json:"confidence"`
	Message     string           `json:"message"`
	Matches     []DuplicateMatch `json:"matches,omitempty"`
}

// DuplicateDetector matches a candidate invoice against the history snapshot
// using exact fingerprint, fuzzy text, and key-field techniques.
type DuplicateDetector struct {
	scorer    ports.SimilarityScorer
	threshold float64
}

// NewDuplicateDetector creates a duplicate detector. scorer may be nil, in
// which case fuzzy matching is skipped without failing the detector.
func NewDuplicateDetector(scorer ports.SimilarityScorer, threshold float64) *DuplicateDetector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &DuplicateDetector{scorer: scorer, threshold: threshold}
}

// Detect runs the matching techniques in priority order and returns on the
// first hit: exact fingerprint (confidence 1.0), fuzzy similarity above the
// threshold (confidence = similarity), then key fields (confidence 0.9).
func (d *DuplicateDetector) Detect(invoice *domain.InvoiceRecord, history []*domain.HistoryEntry) DuplicateResult {
	fingerprint := invoice.Fingerprint()

	for _, entry := range history {
		if entry.Fingerprint == fingerprint {
			return DuplicateResult{
				IsDuplicate: true,
				Confidence:  1.0,
				Message:     fmt.Sprintf("Exact duplicate of invoice %s", entry.ID),
				Matches: []DuplicateMatch{
					{Type: "exact", MatchedID: entry.ID, Similarity: 1.0},
				},
			}
		}
	}

	if d.scorer != nil {
		candidate := textSurrogate(derefStr(invoice.VendorName), derefStr(invoice.InvoiceNumber), invoice.TotalAmount)
		for _, entry := range history {
			var amount *float64
			if entry.HasAmount {
				amount = &entry.TotalAmount
			}
			similarity := d.scorer.Score(candidate, textSurrogate(entry.VendorName, entry.InvoiceNumber, amount))
			if similarity > d.threshold {
				return DuplicateResult{
					IsDuplicate: true,
					Confidence:  similarity,
					Message:     fmt.Sprintf("Similar to invoice %s (similarity: %.0f%%)", entry.ID, similarity*100),
					Matches: []DuplicateMatch{
						{Type: "fuzzy", MatchedID: entry.ID, Similarity: similarity},
					},
				}
			}
		}
	}

	for _, entry := range history {
		if keyFieldsMatch(invoice, entry) {
			return DuplicateResult{
				IsDuplicate: true,
				Confidence:  0.9,
				Message:     "Duplicate: same vendor, amount, and date",
				Matches: []DuplicateMatch{
					{Type: "key_fields", MatchedID: entry.ID, Similarity: 0.9},
				},
			}
		}
	}

	return DuplicateResult{}
}

func keyFieldsMatch(invoice *domain.InvoiceRecord, entry *domain.HistoryEntry) bool {
	if invoice.VendorName == nil || invoice.TotalAmount == nil || invoice.InvoiceDate == nil {
		return false
	}
	return strings.EqualFold(*invoice.VendorName, entry.VendorName) &&
		math.Abs(*invoice.TotalAmount-entry.TotalAmount) < 0.01 &&
		*invoice.InvoiceDate == entry.InvoiceDate
}

// textSurrogate builds the short text representation used for fuzzy matching.
func textSurrogate(vendor, invoiceNumber string, amount *float64) string {
	parts := []string{vendor, invoiceNumber}
	if amount != nil {
		parts = append(parts, fmt.Sprintf("%g", *amount))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
