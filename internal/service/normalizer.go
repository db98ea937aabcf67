package service

import (
	"fmt"

	"treasury_dashboard/internal/domain/entity"
)

// tokenFold accumulates admissible wallet tokens across wallets. The same
// display name seen twice merges amount and USD value; price is kept from the
// first occurrence and never re-derived from the merged amount.
type tokenFold struct {
	rules       *RuleSet
	holdings    map[string]*entity.Holding
	order       []string
	unique      map[string]struct{}
	governance  entity.NamedTokenTotal
	ethExposure float64
}

func newTokenFold(rules *RuleSet) *tokenFold {
	return &tokenFold{
		rules:    rules,
		holdings: make(map[string]*entity.Holding),
		unique:   make(map[string]struct{}),
	}
}

// admit reports whether a raw token participates in aggregation at all.
// Zero/negative amount or price is dust, not an error.
func (f *tokenFold) admit(t entity.RawToken) bool {
	if f.rules.IsBlacklisted(t.Symbol) || f.rules.IsReceiptToken(t.Symbol) {
		return false
	}
	return t.Amount > 0 && t.Price > 0
}

func (f *tokenFold) add(t entity.RawToken) {
	if !f.admit(t) {
		return
	}

	usdValue := t.Amount * t.Price
	symbol := t.Symbol
	if symbol == "" {
		symbol = t.ID
	}
	displayName := f.rules.DisplayName(symbol)
	f.unique[displayName] = struct{}{}

	if existing, ok := f.holdings[displayName]; ok {
		existing.Amount += t.Amount
		existing.USDValue += usdValue
	} else {
		name := t.Name
		if name == "" {
			name = displayName
		}
		f.holdings[displayName] = &entity.Holding{
			Symbol:   displayName,
			Name:     name,
			Amount:   t.Amount,
			Price:    t.Price,
			USDValue: usdValue,
			LogoURL:  t.LogoURL,
			Source:   entity.SourceWallet,
		}
		f.order = append(f.order, displayName)
	}

	if f.rules.IsGovernance(t.Symbol) {
		f.governance.Amount += t.Amount
		f.governance.Value += usdValue
	}
	if f.rules.IsEthExposure(t.Symbol) {
		f.ethExposure += usdValue
	}
}

// protocolFold accumulates admitted protocol positions. Positions are keyed
// "protocol: position" to preserve position granularity in the ranked list,
// while protocol-level totals are tracked separately by protocol name.
type protocolFold struct {
	rules       *RuleSet
	positions   map[string]*entity.Holding
	posOrder    []string
	protocols   map[string]float64
	protoOrder  []string
	defiValue   float64
	ethExposure float64
}

func newProtocolFold(rules *RuleSet) *protocolFold {
	return &protocolFold{
		rules:     rules,
		positions: make(map[string]*entity.Holding),
		protocols: make(map[string]float64),
	}
}

func (f *protocolFold) add(p entity.RawProtocol) {
	protocolName := p.Name
	if protocolName == "" {
		protocolName = "Unknown"
	}
	if f.rules.ShouldSkipProtocol(protocolName) {
		return
	}

	for _, item := range p.PortfolioItems {
		netValue := item.Stats.NetUSDValue
		if netValue <= 0 {
			// Fully borrowed-out positions exist structurally but carry no value.
			continue
		}

		f.defiValue += netValue
		if _, ok := f.protocols[protocolName]; !ok {
			f.protoOrder = append(f.protoOrder, protocolName)
		}
		f.protocols[protocolName] += netValue

		positionName := item.Name
		if positionName == "" {
			positionName = protocolName
		}
		key := fmt.Sprintf("%s: %s", protocolName, positionName)
		if existing, ok := f.positions[key]; ok {
			existing.USDValue += netValue
		} else {
			f.positions[key] = &entity.Holding{
				Symbol:   positionName,
				Name:     fmt.Sprintf("%s - %s", protocolName, positionName),
				Amount:   1,
				Price:    netValue,
				USDValue: netValue,
				LogoURL:  p.LogoURL,
				Source:   entity.SourceProtocol,
				Protocol: protocolName,
			}
			f.posOrder = append(f.posOrder, key)
		}

		// Net directional exposure: supply legs add, borrow legs subtract, so a
		// leveraged position borrowing ETH against stables nets out correctly.
		for _, leg := range item.Detail.SupplyTokens {
			if f.rules.IsEthExposure(leg.Symbol) {
				f.ethExposure += leg.Amount * leg.Price
			}
		}
		for _, leg := range item.Detail.BorrowTokens {
			if f.rules.IsEthExposure(leg.Symbol) {
				f.ethExposure -= leg.Amount * leg.Price
			}
		}
	}
}
