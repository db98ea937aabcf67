package entity

// StrategyItem is one named value inside a strategy bucket.
type StrategyItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StrategyBucket groups holdings of one liquidity class, items ranked by value.
type StrategyBucket struct {
	Total float64        `json:"total"`
	Items []StrategyItem `json:"items"`
}

// StrategySet partitions every admitted token and protocol position into
// exactly one of the three buckets. Excluded (blacklisted/skipped) value is in
// none of them.
type StrategySet struct {
	Directional StrategyBucket `json:"directional"`
	SemiLiquid  StrategyBucket `json:"semiLiquid"`
	Liquid      StrategyBucket `json:"liquid"`
}

// ClassifiedTotal is the sum over all three buckets.
func (s StrategySet) ClassifiedTotal() float64 {
	return s.Directional.Total + s.SemiLiquid.Total + s.Liquid.Total
}
