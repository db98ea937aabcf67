package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"treasury_dashboard/internal/client"
	"treasury_dashboard/internal/config"
	"treasury_dashboard/internal/domain/entity"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// YieldOverview is the served view of the yield pipeline for one trailing
// window: the windowed series per asset plus the cross-asset chart inputs.
type YieldOverview struct {
	RangeDays    int                          `json:"rangeDays"`
	Assets       []entity.AssetSeries         `json:"assets"`
	AlignedRates []entity.AlignedRatePoint    `json:"alignedRates"`
	ROI          map[string][]entity.ROIPoint `json:"roi"`
}

// YieldService owns the yield asset series and the protocol-wide analytics.
// Upstream results are cached; a missing API key or a failed query falls back
// to a synthetic preview series flagged Live=false rather than an error.
type YieldService struct {
	duneClient  client.DuneClient
	cache       *gocache.Cache
	yieldCfg    config.YieldConfig
	statsCfg    config.ProtocolStatsConfig
	configured  bool
	maxInFlight int
	logger      *zap.Logger
	now         func() time.Time
}

// NewYieldService creates a YieldService. configured reports whether a Dune
// API key is available; without one every asset is served from mocks.
func NewYieldService(
	duneClient client.DuneClient,
	cache *gocache.Cache,
	yieldCfg config.YieldConfig,
	statsCfg config.ProtocolStatsConfig,
	configured bool,
	maxInFlight int,
	logger *zap.Logger,
) *YieldService {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &YieldService{
		duneClient:  duneClient,
		cache:       cache,
		yieldCfg:    yieldCfg,
		statsCfg:    statsCfg,
		configured:  configured,
		maxInFlight: maxInFlight,
		logger:      logger.Named("YieldService"),
		now:         time.Now,
	}
}

// ValidRange reports whether days is one of the configured window lengths.
func (s *YieldService) ValidRange(days int) bool {
	for _, r := range s.yieldCfg.Ranges {
		if r == days {
			return true
		}
	}
	return false
}

// DefaultRange returns the window length used when the caller names none.
func (s *YieldService) DefaultRange() int {
	if len(s.yieldCfg.Ranges) == 0 {
		return 30
	}
	return s.yieldCfg.Ranges[0]
}

// AssetSeries assembles the yield overview for the trailing window of the
// given length. Each asset is fetched (or served from cache) independently;
// a failed asset degrades to its mock series instead of failing the overview.
func (s *YieldService) AssetSeries(ctx context.Context, rangeDays int) YieldOverview {
	assets := make([]string, 0, len(s.yieldCfg.Queries))
	for asset := range s.yieldCfg.Queries {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	var mu sync.Mutex
	full := make(map[string]entity.AssetSeries, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)
	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			series := s.fetchAssetSeries(gctx, asset)
			mu.Lock()
			full[asset] = series
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	now := s.now()
	windowed := make(map[string]entity.AssetSeries, len(full))
	roi := make(map[string][]entity.ROIPoint, len(full))
	ordered := make([]entity.AssetSeries, 0, len(assets))
	for _, asset := range assets {
		series := full[asset]
		points := FilterRange(series.Points, rangeDays, now)
		points = AnnualizeWindow(points, s.yieldCfg.WindowBand)
		series.Points = points
		windowed[asset] = series
		roi[asset] = ROISeries(points)
		ordered = append(ordered, series)
	}

	return YieldOverview{
		RangeDays:    rangeDays,
		Assets:       ordered,
		AlignedRates: AlignRates(windowed),
		ROI:          roi,
	}
}

// fetchAssetSeries returns the full cleaned series for one asset, consulting
// the cache first and degrading to the mock series on any upstream failure.
func (s *YieldService) fetchAssetSeries(ctx context.Context, asset string) entity.AssetSeries {
	cacheKey := "yield:" + asset
	if cached, found := s.cache.Get(cacheKey); found {
		if series, ok := cached.(entity.AssetSeries); ok {
			return series
		}
	}

	if !s.configured {
		return s.mockAssetSeries(asset)
	}

	queryID := s.yieldCfg.Queries[asset]
	rows, err := s.duneClient.GetQueryRows(ctx, queryID)
	if err != nil {
		s.logger.Warn("Falling back to synthetic series after upstream failure",
			zap.String("asset", asset),
			zap.Int64("queryID", queryID),
			zap.Error(err))
		return s.mockAssetSeries(asset)
	}

	points := TransformRows(s.logger, rows, s.yieldCfg.IngestBand)
	if limit := s.yieldCfg.SeriesLimit; limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	if len(points) == 0 {
		s.logger.Warn("Upstream returned no usable rows, falling back to synthetic series",
			zap.String("asset", asset),
			zap.Int64("queryID", queryID))
		return s.mockAssetSeries(asset)
	}

	series := entity.AssetSeries{Asset: asset, Live: true, Points: points}
	s.cache.Set(cacheKey, series, gocache.DefaultExpiration)
	return series
}

func (s *YieldService) mockAssetSeries(asset string) entity.AssetSeries {
	mock, ok := s.yieldCfg.MockAssets[asset]
	if !ok {
		mock = config.MockAssetConfig{BasePrice: 1.0, BaseRate: 4.0}
	}
	return entity.AssetSeries{
		Asset:  asset,
		Live:   false,
		Points: MockSeries(mock.BasePrice, mock.BaseRate, s.yieldCfg.MockDays, s.now()),
	}
}

// ProtocolStats assembles the protocol-wide analytics snapshot from the
// configured query set. Sections whose query fails are logged and left empty;
// the snapshot itself is always served.
func (s *YieldService) ProtocolStats(ctx context.Context) (entity.ProtocolStats, error) {
	const cacheKey = "protocolStats"
	if cached, found := s.cache.Get(cacheKey); found {
		if stats, ok := cached.(entity.ProtocolStats); ok {
			return stats, nil
		}
	}
	if !s.configured {
		return entity.ProtocolStats{}, ErrNotConfigured
	}

	rowsBySection := s.fetchSections(ctx)

	stats := entity.ProtocolStats{
		PriceSeries:         priceSeries(rowsBySection["price"], s.yieldCfg.SeriesLimit),
		TVLSeries:           tvlSeries(rowsBySection["tvlByProduct"], s.yieldCfg.SeriesLimit),
		WalletDistribution:  walletDistribution(rowsBySection["walletDistribution"]),
		LockupDuration:      lockupDuration(rowsBySection["lockupDuration"]),
		CollateralBreakdown: collateralBreakdown(rowsBySection["collateralBreakdown"]),
	}
	// Headline TVL is the latest day of the per-product series.
	if len(stats.TVLSeries) > 0 {
		latest := stats.TVLSeries[len(stats.TVLSeries)-1]
		stats.TVL = &entity.TVLBreakdown{
			TVL:  latest.Total,
			USD0: latest.USD0,
			ETH0: latest.ETH0,
			EUR0: latest.EUR0,
		}
	}
	if row, ok := firstRow(rowsBySection["supply"]); ok {
		stats.Supply = &entity.SupplyStats{
			Price:     firstNumber(row, "close_price"),
			FDV:       firstNumber(row, "fdv"),
			MarketCap: firstNumber(row, "market_cap"),
			Supply:    firstNumber(row, "supply"),
		}
	}
	if row, ok := firstRow(rowsBySection["staked"]); ok {
		stats.Staking = &entity.StakingStats{
			StakedPercent: firstNumber(row, "_col0"),
			StakedSupply:  firstNumber(row, "usualx_supply"),
		}
	}
	if row, ok := firstRow(rowsBySection["collateral"]); ok {
		stats.Collateral = &entity.CollateralStats{
			Ratio:  firstNumber(row, "collateral_factor"),
			Supply: firstNumber(row, "supply"),
			Total:  firstNumber(row, "balance_usd"),
		}
	}
	if row, ok := firstRow(rowsBySection["apys"]); ok {
		stats.APY = &entity.APYStats{
			USD0PP:   firstNumber(row, "usd0_pp_apy"),
			USD0LP:   firstNumber(row, "usd0_lp_apy"),
			ETH0:     firstNumber(row, "eth0_apy"),
			USD0PPLP: firstNumber(row, "usd0_pp_lp_apy"),
		}
	}
	if row, ok := firstRow(rowsBySection["usualxApy"]); ok {
		stats.StakingYield = &entity.StakingYield{
			APY: firstNumber(row, "usualx_apy_pct"),
			APR: firstNumber(row, "usualx_apr_pct"),
		}
	}
	if row, ok := firstRow(rowsBySection["buybacks"]); ok {
		stats.Buybacks = &entity.BuybackStats{
			Total:  firstNumber(row, "buyback"),
			Staked: firstNumber(row, "buybackx"),
		}
	}
	if row, ok := firstRow(rowsBySection["users"]); ok {
		stats.Users = &entity.UserStats{
			Total: firstNumber(row, "unique_addresses"),
			Delta: firstNumber(row, "delta"),
		}
	}

	s.cache.Set(cacheKey, stats, gocache.DefaultExpiration)
	return stats, nil
}

// fetchSections pulls every configured analytics query concurrently. A failed
// section ends up absent from the result map.
func (s *YieldService) fetchSections(ctx context.Context) map[string][]map[string]interface{} {
	var mu sync.Mutex
	rowsBySection := make(map[string][]map[string]interface{}, len(s.statsCfg.Queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)
	for section, queryID := range s.statsCfg.Queries {
		section, queryID := section, queryID
		g.Go(func() error {
			rows, err := s.duneClient.GetQueryRows(gctx, queryID)
			if err != nil {
				s.logger.Warn("Protocol stats section query failed, leaving section empty",
					zap.String("section", section),
					zap.Int64("queryID", queryID),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			rowsBySection[section] = rows
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rowsBySection
}

func firstRow(rows []map[string]interface{}) (map[string]interface{}, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}

func firstString(row map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func priceSeries(rows []map[string]interface{}, limit int) []entity.DatedValue {
	out := make([]entity.DatedValue, 0, len(rows))
	for _, row := range rows {
		day, ok := extractDay(row)
		if !ok {
			continue
		}
		out = append(out, entity.DatedValue{Date: day, Value: firstNumber(row, "close_price")})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func tvlSeries(rows []map[string]interface{}, limit int) []entity.TVLPoint {
	out := make([]entity.TVLPoint, 0, len(rows))
	for _, row := range rows {
		day, ok := extractDay(row)
		if !ok {
			continue
		}
		out = append(out, entity.TVLPoint{
			Date:  day,
			Total: firstNumber(row, "protocol_tvl"),
			USD0:  firstNumber(row, "usd0_tvl"),
			ETH0:  firstNumber(row, "eth0_tvl"),
			EUR0:  firstNumber(row, "eur0_tvl"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func walletDistribution(rows []map[string]interface{}) []entity.NamedValue {
	out := make([]entity.NamedValue, 0, len(rows))
	for _, row := range rows {
		if firstString(row, "token") != "USD0" {
			continue
		}
		out = append(out, entity.NamedValue{
			Name:    firstString(row, "tranche"),
			Value:   firstNumber(row, "portefeuille_count"),
			Percent: firstNumber(row, "pourcentage") * 100,
		})
	}
	return out
}

func lockupDuration(rows []map[string]interface{}) []entity.NamedValue {
	out := make([]entity.NamedValue, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.NamedValue{
			Name:  firstString(row, "bucket"),
			Value: firstNumber(row, "nb_tokens"),
		})
	}
	return out
}

func collateralBreakdown(rows []map[string]interface{}) []entity.NamedValue {
	out := make([]entity.NamedValue, 0, len(rows))
	for _, row := range rows {
		value := firstNumber(row, "value")
		if value <= 0 {
			continue
		}
		out = append(out, entity.NamedValue{
			Name:  firstString(row, "collateral"),
			Value: value,
		})
	}
	return out
}
