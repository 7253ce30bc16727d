package detector

import (
	"testing"

	"github.com/auditlens/auditlens/internal/domain"
)

func sampleInvoice() *domain.InvoiceRecord {
	return &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		InvoiceNumber: domain.StringPtr("INV-1001"),
		InvoiceDate:   domain.StringPtr("2025-06-11"),
		TotalAmount:   domain.FloatPtr(3500),
	}
}

func TestDuplicateDetector_ExactFingerprint(t *testing.T) {
	inv := sampleInvoice()
	history := []*domain.HistoryEntry{domain.NewHistoryEntry(inv, "inv-1")}

	d := NewDuplicateDetector(nil, 0.85)
	result := d.Detect(inv, history)

	if !result.IsDuplicate {
		t.Fatal("Expected exact duplicate to be detected")
	}
	if result.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", result.Confidence)
	}
	if len(result.Matches) != 1 || result.Matches[0].Type != "exact" {
		t.Errorf("Expected one exact match, got %+v", result.Matches)
	}
}

func TestDuplicateDetector_KeyFields(t *testing.T) {
	inv := sampleInvoice()
	// Same vendor, amount, and date but a different invoice number, so the
	// fingerprints differ.
	prior := sampleInvoice()
	prior.InvoiceNumber = domain.StringPtr("INV-0999")
	history := []*domain.HistoryEntry{domain.NewHistoryEntry(prior, "inv-1")}

	d := NewDuplicateDetector(nil, 0.85)
	result := d.Detect(inv, history)

	if !result.IsDuplicate {
		t.Fatal("Expected key-fields duplicate to be detected")
	}
	if result.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %f", result.Confidence)
	}
	if result.Matches[0].Type != "key_fields" {
		t.Errorf("Expected key_fields match, got %s", result.Matches[0].Type)
	}
}

func TestDuplicateDetector_FuzzyBeatsKeyFields(t *testing.T) {
	inv := sampleInvoice()
	prior := sampleInvoice()
	prior.InvoiceNumber = domain.StringPtr("INV-0999")
	history := []*domain.HistoryEntry{domain.NewHistoryEntry(prior, "inv-1")}

	d := NewDuplicateDetector(NewTFIDFScorer(), 0.5)
	result := d.Detect(inv, history)

	if !result.IsDuplicate {
		t.Fatal("Expected fuzzy duplicate to be detected")
	}
	if result.Matches[0].Type != "fuzzy" {
		t.Errorf("Expected fuzzy match to win over key fields, got %s", result.Matches[0].Type)
	}
	if result.Confidence <= 0.5 {
		t.Errorf("Expected confidence above threshold, got %f", result.Confidence)
	}
}

func TestDuplicateDetector_NoMatch(t *testing.T) {
	inv := sampleInvoice()
	prior := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Beta LLC"),
		InvoiceNumber: domain.StringPtr("B-42"),
		InvoiceDate:   domain.StringPtr("2025-01-15"),
		TotalAmount:   domain.FloatPtr(120.5),
	}
	history := []*domain.HistoryEntry{domain.NewHistoryEntry(prior, "inv-1")}

	d := NewDuplicateDetector(NewTFIDFScorer(), 0.85)
	result := d.Detect(inv, history)

	if result.IsDuplicate {
		t.Errorf("Expected no duplicate, got %+v", result)
	}
}

func TestDuplicateDetector_EmptyHistory(t *testing.T) {
	d := NewDuplicateDetector(NewTFIDFScorer(), 0.85)
	result := d.Detect(sampleInvoice(), nil)

	if result.IsDuplicate {
		t.Error("Expected no duplicate against empty history")
	}
}
