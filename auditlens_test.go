package auditlens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditlens/auditlens/internal/config"
	"github.com/auditlens/auditlens/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		Fraud: config.FraudConfig{
			SimilarityThreshold: 0.85,
			ZScoreThreshold:     3.0,
			HighRiskThreshold:   0.7,
			HistoryCapacity:     100,
			EnableFuzzyMatch:    true,
		},
		Audit:      config.AuditConfig{SigningSecret: "test-secret"},
		Encryption: config.EncryptionConfig{Enabled: true},
		Logging:    config.LoggingConfig{Level: "error", Format: "json"},
	}
}

func TestNew_WiresEverything(t *testing.T) {
	sys, err := New(testConfig())
	require.NoError(t, err)

	assert.NotNil(t, sys.Fraud)
	assert.NotNil(t, sys.Statistical)
	assert.NotNil(t, sys.AuditChain)
	assert.NotNil(t, sys.Encryption)
	assert.NotNil(t, sys.Compliance)
	assert.True(t, sys.Encryption.Enabled())
}

func TestNew_NoSigningSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.SigningSecret = ""

	sys, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, sys.AuditChain, "audit chain requires a caller-provisioned secret")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Fraud.SimilarityThreshold = 2

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestSystem_BackendsShareHistory(t *testing.T) {
	sys, err := New(testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	inv := &domain.InvoiceRecord{
		VendorName:    domain.StringPtr("Acme Corp"),
		InvoiceNumber: domain.StringPtr("INV-1001"),
		InvoiceDate:   domain.StringPtr("2025-06-11"),
		TotalAmount:   domain.FloatPtr(3500),
		LineItems: []domain.LineItem{
			{Description: "Consulting", Amount: domain.FloatPtr(3500)},
		},
	}

	first := sys.Fraud.AnalyzeInvoice(ctx, inv, "inv-1")
	require.False(t, first.FraudDetected)

	// The statistical backend sees the rule pipeline's history entry.
	second := sys.Statistical.AnalyzeInvoice(ctx, inv, "inv-2")
	assert.True(t, second.FraudDetected)
	assert.Equal(t, domain.RiskLevelCritical, second.RiskLevel)
}
