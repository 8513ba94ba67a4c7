package detection

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Alert codes raised by crypto risk analysis
const (
	AlertCryptoMixer       = "CRYPTO_MIXER"
	AlertDarknetConnection = "DARKNET_CONNECTION"
	AlertNewWallet         = "NEW_WALLET"
)

const (
	mixerScore     = 40
	darknetScore   = 40
	newWalletScore = 20
)

// AssetTypeCrypto is the transaction asset type that activates crypto analysis.
const AssetTypeCrypto = "CRYPTO"

// CryptoStage analyzes cryptocurrency-specific risk. It only applies when the
// transaction carries crypto or darknet indicators; otherwise the router
// skip-marks it without execution.
type CryptoStage struct {
	logger         *zap.SugaredLogger
	darknetMarkets []string
	newWalletDays  int
}

// NewCryptoStage creates the crypto risk stage.
func NewCryptoStage(cfg *aml.Config, logger *zap.SugaredLogger) *CryptoStage {
	return &CryptoStage{
		logger:         logger,
		darknetMarkets: cfg.DarknetMarkets,
		newWalletDays:  cfg.Behavior.NewWalletAgeDays,
	}
}

func (c *CryptoStage) Name() aml.StageName { return aml.StageCryptoRisk }

// Applicable reports whether the case carries any crypto or darknet indicator.
func (c *CryptoStage) Applicable(cs *aml.CaseState) bool {
	tx := cs.Transaction
	if strings.EqualFold(tx.AssetType, AssetTypeCrypto) || tx.CryptoDetails != nil {
		return true
	}
	if c.darknetReference(tx) != "" {
		return true
	}
	return false
}

func (c *CryptoStage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	finding := &aml.Finding{Stage: c.Name()}
	tx := cs.Transaction

	if details := tx.CryptoDetails; details != nil {
		if details.MixerUsed {
			finding.RiskContribution += mixerScore
			finding.AddAlert(AlertCryptoMixer)
		}
		if details.DarknetMarket != "" && c.isDarknetMarket(details.DarknetMarket) {
			finding.RiskContribution += darknetScore
			finding.AddAlert(AlertDarknetConnection)
			finding.Detail = fmt.Sprintf("darknet market %q referenced", details.DarknetMarket)
		}
		if details.WalletAgeDays < c.newWalletDays {
			finding.RiskContribution += newWalletScore
			finding.AddAlert(AlertNewWallet)
		}
	}

	if ref := c.darknetReference(tx); ref != "" && !hasAlert(finding, AlertDarknetConnection) {
		finding.RiskContribution += darknetScore
		finding.AddAlert(AlertDarknetConnection)
		finding.Detail = fmt.Sprintf("darknet market %q referenced", ref)
	}

	if finding.RiskContribution > 100 {
		finding.RiskContribution = 100
	}

	if len(finding.TriggeredAlerts) > 0 {
		c.logger.Infow("crypto indicators detected",
			"case_id", cs.CaseID,
			"alerts", finding.TriggeredAlerts,
		)
	}

	return finding
}

// darknetReference returns the first darknet market named in the parties or
// metadata, or the empty string.
func (c *CryptoStage) darknetReference(tx *aml.Transaction) string {
	for _, market := range c.darknetMarkets {
		lower := strings.ToLower(market)
		for _, party := range tx.Parties {
			if strings.Contains(strings.ToLower(party), lower) {
				return market
			}
		}
		for _, v := range tx.Metadata {
			if strings.Contains(strings.ToLower(v), lower) {
				return market
			}
		}
	}
	return ""
}

func hasAlert(f *aml.Finding, code string) bool {
	for _, a := range f.TriggeredAlerts {
		if a == code {
			return true
		}
	}
	return false
}

func (c *CryptoStage) isDarknetMarket(name string) bool {
	for _, market := range c.darknetMarkets {
		if strings.EqualFold(market, name) {
			return true
		}
	}
	return false
}
