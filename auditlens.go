// Package auditlens assembles the fraud-risk scoring and tamper-evident
// audit subsystem from configuration. Callers embed the returned components
// into their own invoice pipeline; there is no server or CLI here.
package auditlens

import (
	"github.com/auditlens/auditlens/internal/adapter/memory"
	"github.com/auditlens/auditlens/internal/adapter/stat"
	"github.com/auditlens/auditlens/internal/audit"
	"github.com/auditlens/auditlens/internal/compliance"
	"github.com/auditlens/auditlens/internal/config"
	"github.com/auditlens/auditlens/internal/detector"
	"github.com/auditlens/auditlens/internal/ports"
	"github.com/auditlens/auditlens/internal/service/crypto"
	"github.com/auditlens/auditlens/internal/service/logger"
	"github.com/auditlens/auditlens/internal/usecase"
)

// System holds the assembled subsystem components. Fraud is the default
// rule-based backend; Statistical is the alternate backend over the same
// history. AuditChain is nil when no signing secret is configured.
type System struct {
	Config      *config.Config
	Logger      logger.Logger
	History     ports.InvoiceHistory
	Fraud       *usecase.FraudUseCase
	Statistical ports.RiskBackend
	AuditChain  *audit.Chain
	Encryption  *crypto.EncryptionManager
	Compliance  *compliance.Engine
}

// New validates the configuration and wires every component from it.
func New(cfg *config.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "auditlens",
	})

	history := memory.NewHistoryStore(cfg.Fraud.HistoryCapacity)

	var scorer ports.SimilarityScorer
	if cfg.Fraud.EnableFuzzyMatch {
		scorer = detector.NewTFIDFScorer()
	}

	fraud := usecase.NewFraudUseCase(history, scorer, usecase.FraudConfig{
		SimilarityThreshold: cfg.Fraud.SimilarityThreshold,
		ZScoreThreshold:     cfg.Fraud.ZScoreThreshold,
	}, log)

	statistical := stat.NewBackend(history, cfg.Fraud.ZScoreThreshold, log)

	var chain *audit.Chain
	if cfg.Audit.SigningSecret != "" {
		var err error
		chain, err = audit.NewChain([]byte(cfg.Audit.SigningSecret), log)
		if err != nil {
			return nil, err
		}
	}

	encryption, err := crypto.NewEncryptionManager(crypto.Options{
		Enabled:   cfg.Encryption.Enabled,
		MasterKey: cfg.Encryption.MasterKey,
	})
	if err != nil {
		return nil, err
	}

	return &System{
		Config:      cfg,
		Logger:      log,
		History:     history,
		Fraud:       fraud,
		Statistical: statistical,
		AuditChain:  chain,
		Encryption:  encryption,
		Compliance:  compliance.NewEngine(),
	}, nil
}
