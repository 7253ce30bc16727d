package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// LineItem represents a single invoice line item. Absent numeric fields are
// nil, never zero, so downstream "field missing" checks stay unambiguous.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// InvoiceRecord is the canonical invoice shape consumed by every detector.
// All optional fields are pointers; date fields hold ISO-8601 strings.
type InvoiceRecord struct {
	VendorName    *string    `json:"vendor_name,omitempty"`
	VendorAddress *string    `json:"vendor_address,omitempty"`
	VendorEmail   *string    `json:"vendor_email,omitempty"`
	VendorPhone   *string    `json:"vendor_phone,omitempty"`
	InvoiceNumber *string    `json:"invoice_number,omitempty"`
	InvoiceDate   *string    `json:"invoice_date,omitempty"`
	DueDate       *string    `json:"due_date,omitempty"`
	Subtotal      *float64   `json:"subtotal,omitempty"`
	Tax           *float64   `json:"tax,omitempty"`
	TotalAmount   *float64   `json:"total_amount,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
	LineItems     []LineItem `json:"line_items,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// fingerprintFields is marshalled with keys in sorted order; the struct field
// order below must stay alphabetical by JSON key.
type fingerprintFields struct {
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	InvoiceNumber string  `json:"invoice_number"`
	Vendor        string  `json:"vendor"`
}

// Fingerprint returns a deterministic SHA-256 hex digest over the invoice's
// key identifying fields (vendor, invoice number, total amount, date).
// Identical canonical invoices always hash identically.
func (inv *InvoiceRecord) Fingerprint() string {
	fields := fingerprintFields{
		Amount:        derefFloat(inv.TotalAmount),
		Date:          derefString(inv.InvoiceDate),
		InvoiceNumber: derefString(inv.InvoiceNumber),
		Vendor:        derefString(inv.VendorName),
	}
	data, _ := json.Marshal(fields)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HistoryEntry is an immutable snapshot of an analyzed invoice, created at the
// end of a successful fraud analysis and never mutated afterwards.
type HistoryEntry struct {
	ID            string    `json:"id"`
	VendorName    string    `json:"vendor_name"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   string    `json:"invoice_date"`
	TotalAmount   float64   `json:"total_amount"`
	HasAmount     bool      `json:"has_amount"`
	Fingerprint   string    `json:"fingerprint"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// NewHistoryEntry snapshots the canonical invoice fields for future duplicate
// and vendor-statistics lookups.
func NewHistoryEntry(inv *InvoiceRecord, id string) *HistoryEntry {
	return &HistoryEntry{
		ID:            id,
		VendorName:    derefString(inv.VendorName),
		InvoiceNumber: derefString(inv.InvoiceNumber),
		InvoiceDate:   derefString(inv.InvoiceDate),
		TotalAmount:   derefFloat(inv.TotalAmount),
		HasAmount:     inv.TotalAmount != nil,
		Fingerprint:   inv.Fingerprint(),
		RecordedAt:    time.Now().UTC(),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// StringPtr returns a pointer to s. Convenience for building records in
// callers and tests.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
