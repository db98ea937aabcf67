package service

import (
	"strings"

	"treasury_dashboard/internal/config"
)

// Bucket is a strategy classification target.
type Bucket int

const (
	BucketDirectional Bucket = iota
	BucketSemiLiquid
	BucketLiquid
)

// RuleSet is the compiled form of the configured exclusion and classification
// rules. All symbol matching is case-insensitive; protocol matching is by
// case-insensitive substring.
type RuleSet struct {
	blacklist            map[string]struct{}
	receiptTokens        map[string]struct{}
	skipProtocols        []string
	ethExposureSymbols   map[string]struct{}
	governanceSymbols    map[string]struct{}
	directionalTokens    map[string]struct{}
	directionalProtocols []string
	semiLiquidProtocols  []string
	displayNames         map[string]string
}

// NewRuleSet compiles the configured rules into lookup form.
func NewRuleSet(cfg config.RulesConfig) *RuleSet {
	r := &RuleSet{
		blacklist:            lowerSet(cfg.BlacklistedTokens),
		receiptTokens:        lowerSet(cfg.ReceiptTokens),
		skipProtocols:        lowerAll(cfg.SkipProtocols),
		ethExposureSymbols:   upperSet(cfg.EthExposureSymbols),
		governanceSymbols:    upperSet(cfg.GovernanceSymbols),
		directionalTokens:    upperSet(cfg.DirectionalTokens),
		directionalProtocols: lowerAll(cfg.DirectionalProtocols),
		semiLiquidProtocols:  lowerAll(cfg.SemiLiquidProtocols),
		displayNames:         make(map[string]string, len(cfg.DisplayNames)),
	}
	for raw, display := range cfg.DisplayNames {
		r.displayNames[strings.ToLower(raw)] = display
	}
	return r
}

// IsBlacklisted reports whether a raw token symbol is on the scam/spam blacklist.
func (r *RuleSet) IsBlacklisted(symbol string) bool {
	if symbol == "" {
		return false
	}
	_, ok := r.blacklist[strings.ToLower(symbol)]
	return ok
}

// IsReceiptToken reports whether a symbol is a protocol receipt token whose
// value is already captured through protocol positions.
func (r *RuleSet) IsReceiptToken(symbol string) bool {
	if symbol == "" {
		return false
	}
	_, ok := r.receiptTokens[strings.ToLower(symbol)]
	return ok
}

// ShouldSkipProtocol reports whether a protocol is excluded from DeFi accounting.
func (r *RuleSet) ShouldSkipProtocol(name string) bool {
	lower := strings.ToLower(name)
	for _, skip := range r.skipProtocols {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

// DisplayName canonicalizes a raw symbol; unmapped symbols pass through unchanged.
func (r *RuleSet) DisplayName(symbol string) string {
	if display, ok := r.displayNames[strings.ToLower(symbol)]; ok {
		return display
	}
	return symbol
}

// IsEthExposure reports whether a symbol counts toward ETH exposure.
func (r *RuleSet) IsEthExposure(symbol string) bool {
	_, ok := r.ethExposureSymbols[strings.ToUpper(symbol)]
	return ok
}

// IsGovernance reports whether a symbol is the designated governance token.
func (r *RuleSet) IsGovernance(symbol string) bool {
	_, ok := r.governanceSymbols[strings.ToUpper(symbol)]
	return ok
}

// TokenBucket classifies a wallet token. Tokens are binary classified: there
// is no semi-liquid token rule.
func (r *RuleSet) TokenBucket(symbol string) Bucket {
	if _, ok := r.directionalTokens[strings.ToUpper(symbol)]; ok {
		return BucketDirectional
	}
	return BucketLiquid
}

// ProtocolBucket classifies a protocol by name. Directional takes precedence
// over semi-liquid; everything else is liquid.
func (r *RuleSet) ProtocolBucket(name string) Bucket {
	lower := strings.ToLower(name)
	for _, p := range r.directionalProtocols {
		if strings.Contains(lower, p) {
			return BucketDirectional
		}
	}
	for _, p := range r.semiLiquidProtocols {
		if strings.Contains(lower, p) {
			return BucketSemiLiquid
		}
	}
	return BucketLiquid
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

func upperSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = struct{}{}
	}
	return set
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
