package entity

import "time"

// NamedTokenTotal accumulates the designated governance token across wallets.
type NamedTokenTotal struct {
	Amount float64 `json:"amount"`
	Value  float64 `json:"value"`
}

// AggregateSnapshot is the full output of one refresh cycle. It is built once,
// stored whole, and never mutated afterwards; the presentation layer reads the
// latest stored snapshot while a new refresh may be in flight.
//
// TotalValue is the sum of the upstream per-wallet balance figures, not the sum
// of classified holdings. The two can diverge (unclassified dust, excluded
// tokens); that gap is expected and left unreconciled.
type AggregateSnapshot struct {
	TotalValue        float64         `json:"totalValue"`
	TotalDefiValue    float64         `json:"totalDefiValue"`
	TotalEthExposure  float64         `json:"totalEthExposure"`
	GovernanceTotal   NamedTokenTotal `json:"governanceTotal"`
	PureTreasuryValue float64         `json:"pureTreasuryValue"`
	WalletValue       float64         `json:"walletValue"`
	UniqueTokenCount  int             `json:"uniqueTokenCount"`
	Holdings          []Holding       `json:"holdings"`
	Protocols         []ProtocolValue `json:"protocols"`
	Wallets           []WalletSummary `json:"wallets"`
	Strategies        StrategySet     `json:"strategies"`
	Errors            []WalletError   `json:"errors,omitempty"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}

// TopProtocol returns the highest-value protocol, if any.
func (s *AggregateSnapshot) TopProtocol() (ProtocolValue, bool) {
	if len(s.Protocols) == 0 {
		return ProtocolValue{}, false
	}
	return s.Protocols[0], true
}
