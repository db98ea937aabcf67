package service

import (
	"sort"

	"treasury_dashboard/internal/domain/entity"
)

// bucketAcc collects one strategy bucket while classifying.
type bucketAcc struct {
	total float64
	items []entity.StrategyItem
	index map[string]int
}

func newBucketAcc() *bucketAcc {
	return &bucketAcc{index: make(map[string]int)}
}

// addMerged accumulates a value under a name, merging repeats (wallet tokens
// with the same display name across wallets).
func (b *bucketAcc) addMerged(name string, value float64) {
	b.total += value
	if i, ok := b.index[name]; ok {
		b.items[i].Value += value
		return
	}
	b.index[name] = len(b.items)
	b.items = append(b.items, entity.StrategyItem{Name: name, Value: value})
}

// add appends a value without merging (protocol entries stay distinct).
func (b *bucketAcc) add(name string, value float64) {
	b.total += value
	b.items = append(b.items, entity.StrategyItem{Name: name, Value: value})
}

func (b *bucketAcc) bucket() entity.StrategyBucket {
	sort.SliceStable(b.items, func(i, j int) bool {
		return b.items[i].Value > b.items[j].Value
	})
	return entity.StrategyBucket{Total: b.total, Items: b.items}
}

// Classify partitions every admitted token and protocol position value into
// exactly one of the directional, semi-liquid and liquid buckets. Blacklisted
// tokens and skipped protocols are in none of them; a static wallet's whole
// balance is semi-liquid by policy.
func Classify(rules *RuleSet, wallets []entity.WalletResult) entity.StrategySet {
	directional := newBucketAcc()
	semiLiquid := newBucketAcc()
	liquid := newBucketAcc()

	pick := func(b Bucket) *bucketAcc {
		switch b {
		case BucketDirectional:
			return directional
		case BucketSemiLiquid:
			return semiLiquid
		default:
			return liquid
		}
	}

	for _, wallet := range wallets {
		if wallet.IsStatic {
			semiLiquid.add(staticHoldingName(rules, wallet), wallet.TotalBalance)
			continue
		}

		for _, t := range wallet.Tokens {
			if rules.IsBlacklisted(t.Symbol) || rules.IsReceiptToken(t.Symbol) {
				continue
			}
			if t.Amount <= 0 || t.Price <= 0 {
				continue
			}
			value := t.Amount * t.Price
			pick(rules.TokenBucket(t.Symbol)).addMerged(rules.DisplayName(t.Symbol), value)
		}

		for _, p := range wallet.Protocols {
			if rules.ShouldSkipProtocol(p.Name) {
				continue
			}
			var protocolValue float64
			for _, item := range p.PortfolioItems {
				protocolValue += item.Stats.NetUSDValue
			}
			if protocolValue <= 0 {
				continue
			}
			pick(rules.ProtocolBucket(p.Name)).add(p.Name, protocolValue)
		}
	}

	return entity.StrategySet{
		Directional: directional.bucket(),
		SemiLiquid:  semiLiquid.bucket(),
		Liquid:      liquid.bucket(),
	}
}

// staticHoldingName labels a static wallet's synthetic entry in the bucket:
// the display name of its first synthetic token, or the wallet name.
func staticHoldingName(rules *RuleSet, wallet entity.WalletResult) string {
	if len(wallet.Tokens) > 0 {
		symbol := wallet.Tokens[0].Symbol
		if symbol == "" {
			symbol = wallet.Tokens[0].ID
		}
		return rules.DisplayName(symbol)
	}
	return wallet.Name
}
