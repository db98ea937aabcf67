package service

import (
	"testing"

	"treasury_dashboard/internal/config"
)

func testRulesConfig() config.RulesConfig {
	return config.RulesConfig{
		BlacklistedTokens:    []string{"ETHG", "AICC", "TBA", "TAIKO0", "MALLY"},
		ReceiptTokens:        []string{"aHorRwaUSCC", "U0R", "Fira", "MC_USD0"},
		SkipProtocols:        []string{"Lido", "Hashnote"},
		EthExposureSymbols:   []string{"ETH", "WETH", "STETH", "WSTETH", "ETH0"},
		GovernanceSymbols:    []string{"USUAL", "USUALX"},
		DirectionalTokens:    []string{"ETH", "WETH", "ETH0", "USUAL", "USUALX", "STETH", "WSTETH"},
		DirectionalProtocols: []string{"Arrakis"},
		SemiLiquidProtocols:  []string{"Fira", "Aave"},
		DisplayNames: map[string]string{
			"MC_USD0":     "Morpho MEV USD0",
			"U0R":         "Fira",
			"aHorRwaUSCC": "Aave Horizon RWA USCC",
		},
	}
}

func TestRuleSetBlacklistIsCaseInsensitive(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	for _, symbol := range []string{"ETHG", "ethg", "Ethg"} {
		if !rules.IsBlacklisted(symbol) {
			t.Errorf("expected %q to be blacklisted", symbol)
		}
	}
	if rules.IsBlacklisted("USDC") {
		t.Error("USDC must not be blacklisted")
	}
	if rules.IsBlacklisted("") {
		t.Error("empty symbol must not be blacklisted")
	}
}

func TestRuleSetReceiptTokens(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	if !rules.IsReceiptToken("ahorrwauscc") {
		t.Error("expected aHorRwaUSCC to match case-insensitively")
	}
	if rules.IsReceiptToken("USD0") {
		t.Error("USD0 is not a receipt token")
	}
}

func TestRuleSetSkipProtocolMatchesSubstring(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	if !rules.ShouldSkipProtocol("Lido Staked ETH") {
		t.Error("expected substring match on Lido")
	}
	if !rules.ShouldSkipProtocol("hashnote usyc") {
		t.Error("expected case-insensitive substring match on Hashnote")
	}
	if rules.ShouldSkipProtocol("Morpho") {
		t.Error("Morpho must not be skipped")
	}
}

func TestRuleSetDisplayName(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	if got := rules.DisplayName("MC_USD0"); got != "Morpho MEV USD0" {
		t.Errorf("DisplayName(MC_USD0) = %q", got)
	}
	if got := rules.DisplayName("mc_usd0"); got != "Morpho MEV USD0" {
		t.Errorf("DisplayName must be case-insensitive, got %q", got)
	}
	if got := rules.DisplayName("USDC"); got != "USDC" {
		t.Errorf("unmapped symbol must pass through, got %q", got)
	}
}

func TestRuleSetTokenBucketIsBinary(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	if got := rules.TokenBucket("wsteth"); got != BucketDirectional {
		t.Errorf("wstETH should be directional, got %v", got)
	}
	if got := rules.TokenBucket("USDC"); got != BucketLiquid {
		t.Errorf("USDC should be liquid, got %v", got)
	}
}

func TestRuleSetProtocolBucketPrecedence(t *testing.T) {
	rules := NewRuleSet(testRulesConfig())

	if got := rules.ProtocolBucket("Arrakis V2"); got != BucketDirectional {
		t.Errorf("Arrakis should be directional, got %v", got)
	}
	if got := rules.ProtocolBucket("Aave V3"); got != BucketSemiLiquid {
		t.Errorf("Aave should be semi-liquid, got %v", got)
	}
	if got := rules.ProtocolBucket("Morpho"); got != BucketLiquid {
		t.Errorf("Morpho should be liquid, got %v", got)
	}
}
