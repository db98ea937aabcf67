package service

import (
	"sort"
	"time"

	"treasury_dashboard/internal/domain/entity"
)

// Aggregator folds per-wallet raw results into one AggregateSnapshot. It is a
// single-use value: feed every wallet of a refresh cycle, then call Build.
type Aggregator struct {
	rules        *RuleSet
	tokens       *tokenFold
	protocols    *protocolFold
	wallets      []entity.WalletSummary
	results      []entity.WalletResult
	errors       []entity.WalletError
	totalBalance float64
}

// NewAggregator creates an empty Aggregator over the given rule set.
func NewAggregator(rules *RuleSet) *Aggregator {
	return &Aggregator{
		rules:     rules,
		tokens:    newTokenFold(rules),
		protocols: newProtocolFold(rules),
	}
}

// AddWallet folds one fetched wallet into the aggregate. The wallet-level
// balance figure is taken as reported by the balance endpoint, never recomputed
// from token values.
func (a *Aggregator) AddWallet(w entity.WalletResult) {
	a.totalBalance += w.TotalBalance
	a.wallets = append(a.wallets, entity.WalletSummary{
		Address:      w.Address,
		Name:         w.Name,
		Emoji:        w.Emoji,
		TotalBalance: w.TotalBalance,
	})
	a.results = append(a.results, w)

	for _, t := range w.Tokens {
		a.tokens.add(t)
	}
	for _, p := range w.Protocols {
		a.protocols.add(p)
	}
}

// AddStaticWallet folds a configured non-API wallet. Its synthetic tokens
// count toward the unique-token set and total value but are not ranked as
// holdings; classification treats the whole entry as semi-liquid.
func (a *Aggregator) AddStaticWallet(sw entity.StaticWallet) {
	a.totalBalance += sw.TotalBalance
	a.wallets = append(a.wallets, entity.WalletSummary{
		Address:      sw.Address,
		Name:         sw.Name,
		Emoji:        sw.Emoji,
		TotalBalance: sw.TotalBalance,
		IsStatic:     true,
	})
	a.results = append(a.results, entity.WalletResult{
		WalletSpec:   sw.WalletSpec,
		TotalBalance: sw.TotalBalance,
		Tokens:       sw.Tokens,
		IsStatic:     true,
	})
	for _, t := range sw.Tokens {
		symbol := t.Symbol
		if symbol == "" {
			symbol = t.ID
		}
		a.tokens.unique[a.rules.DisplayName(symbol)] = struct{}{}
	}
}

// AddError records a per-wallet fetch failure; the wallet is simply absent
// from this cycle's totals.
func (a *Aggregator) AddError(e entity.WalletError) {
	a.errors = append(a.errors, e)
}

// Build assembles the final snapshot. Given identical inputs the output is
// identical except for the lastUpdated timestamp.
func (a *Aggregator) Build(now time.Time) *entity.AggregateSnapshot {
	holdings := make([]entity.Holding, 0, len(a.tokens.order)+len(a.protocols.posOrder))
	for _, name := range a.tokens.order {
		holdings = append(holdings, *a.tokens.holdings[name])
	}
	for _, key := range a.protocols.posOrder {
		holdings = append(holdings, *a.protocols.positions[key])
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].USDValue > holdings[j].USDValue
	})

	protocols := make([]entity.ProtocolValue, 0, len(a.protocols.protoOrder))
	for _, name := range a.protocols.protoOrder {
		protocols = append(protocols, entity.ProtocolValue{Name: name, Value: a.protocols.protocols[name]})
	}
	sort.SliceStable(protocols, func(i, j int) bool {
		return protocols[i].Value > protocols[j].Value
	})

	wallets := make([]entity.WalletSummary, len(a.wallets))
	copy(wallets, a.wallets)
	sort.SliceStable(wallets, func(i, j int) bool {
		return wallets[i].TotalBalance > wallets[j].TotalBalance
	})

	ethExposure := a.tokens.ethExposure + a.protocols.ethExposure

	return &entity.AggregateSnapshot{
		TotalValue:        a.totalBalance,
		TotalDefiValue:    a.protocols.defiValue,
		TotalEthExposure:  ethExposure,
		GovernanceTotal:   a.tokens.governance,
		PureTreasuryValue: a.totalBalance - a.tokens.governance.Value,
		WalletValue:       a.totalBalance - a.protocols.defiValue,
		UniqueTokenCount:  len(a.tokens.unique),
		Holdings:          holdings,
		Protocols:         protocols,
		Wallets:           wallets,
		Strategies:        Classify(a.rules, a.results),
		Errors:            a.errors,
		LastUpdated:       now,
	}
}
