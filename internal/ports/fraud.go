package ports

import (
	"context"

	"github.com/auditlens/auditlens/internal/domain"
)

// InvoiceHistory defines the interface for the bounded invoice history store.
// Append is the single writer path; Snapshot returns the history as of the
// start of an analysis call so an invoice never matches itself.
type InvoiceHistory interface {
	// Append records an immutable history entry
	Append(entry *domain.HistoryEntry)

	// Snapshot returns all entries oldest-first as an owned copy
	Snapshot() []*domain.HistoryEntry

	// Len returns the current number of entries
	Len() int
}

// SimilarityScorer scores the textual similarity of two invoice surrogates
// in [0, 1]. It is an optional capability: a nil scorer disables fuzzy
// duplicate matching without failing the detector.
type SimilarityScorer interface {
	Score(a, b string) float64
}

// RiskBackend is the risk-scoring contract shared by the rule-based pipeline
// and the statistical backend. Callers pick a backend up front; backends
// never fall back to one another mid-call. Failures are reported in-band via
// the report's Error field, never by panicking.
type RiskBackend interface {
	AnalyzeInvoice(ctx context.Context, invoice *domain.InvoiceRecord, invoiceID string) *domain.FraudReport
}
