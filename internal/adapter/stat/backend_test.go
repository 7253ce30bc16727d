package stat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditlens/auditlens/internal/adapter/memory"
	"github.com/auditlens/auditlens/internal/domain"
)

func seedVendorHistory(store *memory.HistoryStore, vendor string, amounts ...float64) {
	for i, amount := range amounts {
		store.Append(&domain.HistoryEntry{
			ID:            fmt.Sprintf("%s-%d", vendor, i),
			VendorName:    vendor,
			InvoiceNumber: fmt.Sprintf("N-%s-%d", vendor, i),
			TotalAmount:   amount,
			HasAmount:     true,
		})
	}
}

func detectionTypes(report *domain.FraudReport) []string {
	var types []string
	for _, d := range report.Detections {
		types = append(types, d.Type)
	}
	for _, w := range report.Warnings {
		types = append(types, w.Type)
	}
	return types
}

func TestStatBackend_NewVendor(t *testing.T) {
	store := memory.NewHistoryStore(100)
	b := NewBackend(store, 3.0, nil)

	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		InvoiceNumber: domain.StringPtr("INV-1001"),
		InvoiceDate:   domain.StringPtr("2025-06-11"),
		TotalAmount:   domain.FloatPtr(3500),
		LineItems: []domain.LineItem{
			{Description: "Consulting", Amount: domain.FloatPtr(3500)},
		},
	}

	report := b.AnalyzeInvoice(context.Background(), inv, "inv-1")

	require.NotNil(t, report)
	assert.Equal(t, "statistical", report.Details.Backend)
	assert.Contains(t, detectionTypes(report), "NEW_VENDOR")
	assert.True(t, report.FraudDetected, "a lone 0.6 contribution crosses the fraud threshold")
	assert.Equal(t, domain.RiskLevelHigh, report.RiskLevel)
	assert.Equal(t, 1, store.Len())
}

func TestStatBackend_ExactDuplicateShortCircuit(t *testing.T) {
	store := memory.NewHistoryStore(100)
	b := NewBackend(store, 3.0, nil)
	ctx := context.Background()

	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		InvoiceNumber: domain.StringPtr("INV-1001"),
		InvoiceDate:   domain.StringPtr("2025-06-11"),
		TotalAmount:   domain.FloatPtr(3500),
	}

	b.AnalyzeInvoice(ctx, inv, "inv-1")
	report := b.AnalyzeInvoice(ctx, inv, "inv-2")

	assert.True(t, report.FraudDetected)
	assert.Equal(t, 1.0, report.RiskScore)
	assert.Equal(t, domain.RiskLevelCritical, report.RiskLevel)
	require.Len(t, report.Detections, 1)
	assert.Equal(t, "DUPLICATE_INVOICE", report.Detections[0].Type)
	assert.Equal(t, domain.SeverityCritical, report.Detections[0].Severity)
	assert.Equal(t, 2, store.Len(), "duplicates are still recorded in history")
}

func TestStatBackend_RobustAnomaly(t *testing.T) {
	store := memory.NewHistoryStore(100)
	seedVendorHistory(store, "Acme", 100, 101, 102, 103, 99)
	b := NewBackend(store, 3.0, nil)

	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme"),
		InvoiceNumber: domain.StringPtr("INV-9999"),
		InvoiceDate:   domain.StringPtr("2025-06-11"),
		TotalAmount:   domain.FloatPtr(1000),
		LineItems: []domain.LineItem{
			{Description: "Consulting", Amount: domain.FloatPtr(1000)},
		},
	}

	report := b.AnalyzeInvoice(context.Background(), inv, "inv-x")

	assert.Contains(t, detectionTypes(report), "STATISTICAL_ANOMALY")
	assert.Contains(t, detectionTypes(report), "OUTLIER_PATTERN")
	assert.Greater(t, report.RiskScore, 0.0)
}

func TestStatBackend_TypicalAmountPasses(t *testing.T) {
	store := memory.NewHistoryStore(100)
	seedVendorHistory(store, "Acme", 100, 101, 102, 103, 99)
	b := NewBackend(store, 3.0, nil)

	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme"),
		InvoiceNumber: domain.StringPtr("INV-9999"),
		InvoiceDate:   domain.StringPtr("2025-06-11"),
		TotalAmount:   domain.FloatPtr(101),
		LineItems: []domain.LineItem{
			{Description: "Consulting", Amount: domain.FloatPtr(101)},
		},
	}

	report := b.AnalyzeInvoice(context.Background(), inv, "inv-x")

	assert.False(t, report.FraudDetected)
	assert.Equal(t, domain.RiskLevelLow, report.RiskLevel)
}

func TestStatBackend_PatternProbability(t *testing.T) {
	store := memory.NewHistoryStore(100)
	seedVendorHistory(store, "Acme", 20000, 20000, 20000, 20000)
	b := NewBackend(store, 3.0, nil)

	// Weekend, round amount, no invoice number, no line items: all four
	// indicators fire.
	inv := &domain.InvoiceRecord{
		VendorName:  domain.StringPtr("Acme"),
		InvoiceDate: domain.StringPtr("2025-06-14"),
		TotalAmount: domain.FloatPtr(20000),
	}

	report := b.AnalyzeInvoice(context.Background(), inv, "inv-x")

	assert.Contains(t, detectionTypes(report), "FRAUD_PATTERN_DETECTED")
	assert.True(t, report.FraudDetected)
}

func TestStatBackend_NilInvoice(t *testing.T) {
	store := memory.NewHistoryStore(100)
	b := NewBackend(store, 3.0, nil)

	report := b.AnalyzeInvoice(context.Background(), nil, "inv-1")

	require.NotNil(t, report)
	assert.NotEmpty(t, report.Error)
	assert.Equal(t, domain.RiskLevelLow, report.RiskLevel)
	assert.Equal(t, 0, store.Len())
}
