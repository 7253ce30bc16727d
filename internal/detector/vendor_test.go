package detector

import (
	"testing"

	"github.com/auditlens/auditlens/internal/domain"
)

func TestVendorRisk_CompleteKnownVendor(t *testing.T) {
	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		VendorAddress: domain.StringPtr("1 Main St"),
		VendorEmail:   domain.StringPtr("billing@acme.example"),
		VendorPhone:   domain.StringPtr("555-0100"),
	}
	history := []*domain.HistoryEntry{{ID: "inv-1", VendorName: "Acme Corp"}}

	result := NewVendorRiskAssessor().Assess(inv, history)

	if result.IsHighRisk {
		t.Errorf("Expected no risk for complete known vendor, got %+v", result)
	}
	if len(result.RiskFactors) != 0 {
		t.Errorf("Expected no risk factors, got %v", result.RiskFactors)
	}
}

func TestVendorRisk_NewVendorAlone(t *testing.T) {
	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		VendorAddress: domain.StringPtr("1 Main St"),
		VendorEmail:   domain.StringPtr("billing@acme.example"),
	}

	result := NewVendorRiskAssessor().Assess(inv, nil)

	if result.IsHighRisk {
		t.Error("Expected a single 0.3 factor to stay below the high-risk threshold")
	}
	if len(result.RiskFactors) != 1 || result.RiskFactors[0].Factor != "NEW_VENDOR" {
		t.Errorf("Expected exactly the NEW_VENDOR factor, got %v", result.RiskFactors)
	}
	if result.Confidence != 0.3 {
		t.Errorf("Expected confidence 0.3, got %f", result.Confidence)
	}
}

func TestVendorRisk_GhostVendor(t *testing.T) {
	// New vendor, no address, no contact info: 0.3 + 0.5 + 0.4 = 1.2, capped.
	inv := &domain.InvoiceRecord{VendorName: domain.StringPtr("Shadow LLC")}

	result := NewVendorRiskAssessor().Assess(inv, nil)

	if !result.IsHighRisk {
		t.Fatal("Expected high risk for ghost vendor")
	}
	if result.Confidence != 1.0 {
		t.Errorf("Expected confidence capped at 1.0, got %f", result.Confidence)
	}
	if len(result.RiskFactors) != 3 {
		t.Errorf("Expected 3 risk factors, got %d", len(result.RiskFactors))
	}
}

func TestVendorRisk_ConsumerEmail(t *testing.T) {
	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		VendorAddress: domain.StringPtr("1 Main St"),
		VendorEmail:   domain.StringPtr("acme.billing@gmail.com"),
	}
	history := []*domain.HistoryEntry{{ID: "inv-1", VendorName: "acme corp"}}

	result := NewVendorRiskAssessor().Assess(inv, history)

	if len(result.RiskFactors) != 1 || result.RiskFactors[0].Factor != "PERSONAL_EMAIL" {
		t.Errorf("Expected exactly the PERSONAL_EMAIL factor, got %v", result.RiskFactors)
	}
}

func TestVendorRisk_NoVendorName(t *testing.T) {
	result := NewVendorRiskAssessor().Assess(&domain.InvoiceRecord{}, nil)

	if result.IsHighRisk || len(result.RiskFactors) != 0 {
		t.Errorf("Expected no finding without a vendor name, got %+v", result)
	}
}
