package service

import (
	"math"
	"testing"

	"treasury_dashboard/internal/domain/entity"
)

func TestClassifyPartitionsEveryAdmittedValue(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	wallets := []entity.WalletResult{
		walletResult("a", 0, []entity.RawToken{
			{Symbol: "WETH", Amount: 2, Price: 2000},  // directional
			{Symbol: "USDC", Amount: 1000, Price: 1},  // liquid
			{Symbol: "ETHG", Amount: 9999, Price: 10}, // blacklisted, nowhere
		}, []entity.RawProtocol{
			{Name: "Arrakis V2", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 500}},
			}},
			{Name: "Aave V3", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 300}},
			}},
			{Name: "Lido", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 10000}}, // skipped, nowhere
			}},
		}),
	}

	set := Classify(rules, wallets)

	admitted := 2*2000.0 + 1000 + 500 + 300
	if math.Abs(set.ClassifiedTotal()-admitted) > 1e-9 {
		t.Errorf("classified total = %v, want %v (every admitted value in exactly one bucket)", set.ClassifiedTotal(), admitted)
	}
	if set.Directional.Total != 4500 {
		t.Errorf("directional = %v, want WETH + Arrakis", set.Directional.Total)
	}
	if set.SemiLiquid.Total != 300 {
		t.Errorf("semi-liquid = %v, want Aave", set.SemiLiquid.Total)
	}
	if set.Liquid.Total != 1000 {
		t.Errorf("liquid = %v, want USDC", set.Liquid.Total)
	}
}

func TestClassifyProtocolNetsNegativeItemsBeforeSkip(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	wallets := []entity.WalletResult{
		walletResult("a", 0, nil, []entity.RawProtocol{
			// Items net to -100: the protocol as a whole is dropped.
			{Name: "Morpho", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 400}},
				{Stats: entity.RawPositionStats{NetUSDValue: -500}},
			}},
			// Items net to +100 even though one leg is negative.
			{Name: "Euler", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 600}},
				{Stats: entity.RawPositionStats{NetUSDValue: -500}},
			}},
		}),
	}

	set := Classify(rules, wallets)
	if set.Liquid.Total != 100 {
		t.Errorf("liquid = %v, want netted Euler value only", set.Liquid.Total)
	}
	if len(set.Liquid.Items) != 1 || set.Liquid.Items[0].Name != "Euler" {
		t.Errorf("items = %v", set.Liquid.Items)
	}
}

func TestClassifyMergesTokensKeepsProtocolsDistinct(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	wallets := []entity.WalletResult{
		walletResult("a", 0, []entity.RawToken{
			{Symbol: "USDC", Amount: 100, Price: 1},
		}, []entity.RawProtocol{
			{Name: "Morpho", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 50}},
			}},
		}),
		walletResult("b", 0, []entity.RawToken{
			{Symbol: "USDC", Amount: 200, Price: 1},
		}, []entity.RawProtocol{
			{Name: "Morpho", PortfolioItems: []entity.RawPortfolioItem{
				{Stats: entity.RawPositionStats{NetUSDValue: 70}},
			}},
		}),
	}

	set := Classify(rules, wallets)

	var usdcEntries, morphoEntries int
	for _, item := range set.Liquid.Items {
		switch item.Name {
		case "USDC":
			usdcEntries++
			if item.Value != 300 {
				t.Errorf("USDC merged value = %v, want 300", item.Value)
			}
		case "Morpho":
			morphoEntries++
		}
	}
	if usdcEntries != 1 {
		t.Errorf("USDC entries = %d, want tokens merged across wallets", usdcEntries)
	}
	if morphoEntries != 2 {
		t.Errorf("Morpho entries = %d, want per-wallet protocol entries kept distinct", morphoEntries)
	}
}

func TestClassifyStaticWalletIsSemiLiquid(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	wallets := []entity.WalletResult{
		{
			WalletSpec:   entity.WalletSpec{Address: "0xstatic", Name: "DAO COLLATERAL"},
			TotalBalance: 2801733,
			Tokens: []entity.RawToken{
				{Symbol: "Overcollateralization", Amount: 1, Price: 2801733},
			},
			IsStatic: true,
		},
	}

	set := Classify(rules, wallets)
	if set.SemiLiquid.Total != 2801733 {
		t.Errorf("semi-liquid = %v, want full static balance", set.SemiLiquid.Total)
	}
	if len(set.SemiLiquid.Items) != 1 || set.SemiLiquid.Items[0].Name != "Overcollateralization" {
		t.Errorf("items = %v, want the synthetic token name", set.SemiLiquid.Items)
	}
}

func TestClassifyBucketsRankedByValue(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	wallets := []entity.WalletResult{
		walletResult("a", 0, []entity.RawToken{
			{Symbol: "USDC", Amount: 10, Price: 1},
			{Symbol: "DAI", Amount: 999, Price: 1},
			{Symbol: "USDT", Amount: 100, Price: 1},
		}, nil),
	}

	set := Classify(rules, wallets)
	items := set.Liquid.Items
	for i := 1; i < len(items); i++ {
		if items[i-1].Value < items[i].Value {
			t.Fatalf("bucket items not ranked: %v", items)
		}
	}
}
