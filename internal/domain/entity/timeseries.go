package entity

// SeriesPoint is one calendar-day observation of a yield asset. Date is the
// normalized day in "2006-01-02" form; lexical order equals chronological order.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Rate  float64 `json:"rate"`
}

// ROIPoint is a SeriesPoint with price rebased to 100 at the window start.
type ROIPoint struct {
	SeriesPoint
	ROI float64 `json:"roi"`
}

// AssetSeries is the cleaned, date-ascending series for one yield asset.
// Live distinguishes upstream data from the synthetic preview fallback.
type AssetSeries struct {
	Asset  string        `json:"asset"`
	Live   bool          `json:"live"`
	Points []SeriesPoint `json:"points"`
}

// AlignedRatePoint carries the per-asset rates for one date across all assets;
// assets without an observation on that date are simply absent from Rates.
type AlignedRatePoint struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// DatedValue is a (day, value) pair used by the protocol stat series.
type DatedValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// TVLPoint is one day of the protocol TVL series, split by product.
type TVLPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	USD0  float64 `json:"usd0"`
	ETH0  float64 `json:"eth0"`
	EUR0  float64 `json:"eur0"`
}

// NamedValue is a (label, value) pair used by distribution breakdowns.
type NamedValue struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent,omitempty"`
}

// SupplyStats summarizes the governance token supply query.
type SupplyStats struct {
	Price     float64 `json:"price"`
	FDV       float64 `json:"fdv"`
	MarketCap float64 `json:"marketCap"`
	Supply    float64 `json:"supply"`
}

// StakingStats summarizes the staking query.
type StakingStats struct {
	StakedPercent float64 `json:"stakedPercent"`
	StakedSupply  float64 `json:"stakedSupply"`
}

// CollateralStats summarizes the stablecoin collateralization query.
type CollateralStats struct {
	Ratio  float64 `json:"ratio"`
	Supply float64 `json:"supply"`
	Total  float64 `json:"total"`
}

// TVLBreakdown is the protocol TVL split by product.
type TVLBreakdown struct {
	TVL  float64 `json:"tvl"`
	USD0 float64 `json:"usd0"`
	ETH0 float64 `json:"eth0"`
	EUR0 float64 `json:"eur0"`
}

// APYStats carries the per-product APY figures.
type APYStats struct {
	USD0PP   float64 `json:"usd0pp"`
	USD0LP   float64 `json:"usd0Lp"`
	ETH0     float64 `json:"eth0"`
	USD0PPLP float64 `json:"usd0ppLp"`
}

// StakingYield carries the staking APY/APR pair.
type StakingYield struct {
	APY float64 `json:"apy"`
	APR float64 `json:"apr"`
}

// BuybackStats summarizes the buyback query.
type BuybackStats struct {
	Total  float64 `json:"total"`
	Staked float64 `json:"staked"`
}

// UserStats summarizes the holder-count query.
type UserStats struct {
	Total float64 `json:"total"`
	Delta float64 `json:"delta"`
}

// ProtocolStats is the protocol-wide analytics snapshot assembled from the
// configured query set. Sections missing upstream stay nil/empty.
type ProtocolStats struct {
	PriceSeries         []DatedValue     `json:"priceSeries"`
	TVLSeries           []TVLPoint       `json:"tvlSeries"`
	Supply              *SupplyStats     `json:"supply,omitempty"`
	Staking             *StakingStats    `json:"staking,omitempty"`
	Collateral          *CollateralStats `json:"collateral,omitempty"`
	TVL                 *TVLBreakdown    `json:"tvl,omitempty"`
	APY                 *APYStats        `json:"apy,omitempty"`
	StakingYield        *StakingYield    `json:"stakingYield,omitempty"`
	Buybacks            *BuybackStats    `json:"buybacks,omitempty"`
	Users               *UserStats       `json:"users,omitempty"`
	WalletDistribution  []NamedValue     `json:"walletDistribution"`
	LockupDuration      []NamedValue     `json:"lockupDuration"`
	CollateralBreakdown []NamedValue     `json:"collateralBreakdown"`
}
