package service

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"treasury_dashboard/internal/config"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/pkg/metrics"

	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// Analytics rows come from arbitrary SQL, so the timestamp can hide under any
// of these keys; the first one that parses wins.
var timestampKeys = []string{"timestamp", "date", "time", "block_time", "day"}

// Epoch values at or above this threshold are taken as milliseconds.
const epochMillisThreshold = 1e12

// TransformRows converts raw analytics rows into a clean, date-ascending
// series. Rows with unparseable timestamps or non-positive prices are dropped,
// not errored. The rate is the row's explicit rate/apr/yield field when
// non-zero, otherwise the annualized daily delta; a derived rate outside the
// band is reset to zero with a warning.
func TransformRows(logger *zap.Logger, rows []map[string]interface{}, band config.RateBand) []entity.SeriesPoint {
	points := make([]entity.SeriesPoint, 0, len(rows))
	for _, row := range rows {
		day, ok := extractDay(row)
		if !ok {
			continue
		}
		price := firstNumber(row, "price", "close_price", "value")
		if price <= 0 {
			continue
		}
		delta := firstNumber(row, "delta")

		rate := firstNumber(row, "rate", "apr", "yield")
		if rate == 0 {
			rate = delta * 365 * 100
		}
		if rate < band.Min || rate > band.Max {
			logger.Warn("Computed annualized rate outside sanity band, resetting to zero",
				zap.String("date", day),
				zap.Float64("rate", rate),
				zap.Float64("bandMin", band.Min),
				zap.Float64("bandMax", band.Max))
			metrics.OutOfBandRates.Inc()
			rate = 0
		}

		points = append(points, entity.SeriesPoint{
			Date:  day,
			Price: price,
			Delta: delta,
			Rate:  rate,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// AnnualizeWindow recomputes each point's rate as the return since the first
// point of the window projected to a 365-day basis, clamped to the band.
// Days elapsed is floored at 1 so same-day points do not blow up the division.
func AnnualizeWindow(points []entity.SeriesPoint, band config.RateBand) []entity.SeriesPoint {
	if len(points) < 2 {
		return points
	}
	startDate, err := time.Parse(dayLayout, points[0].Date)
	if err != nil {
		return points
	}
	startPrice := points[0].Price

	out := make([]entity.SeriesPoint, len(points))
	copy(out, points)
	for i := range out {
		currDate, err := time.Parse(dayLayout, out[i].Date)
		if err != nil {
			continue
		}
		daysElapsed := math.Max(1, currDate.Sub(startDate).Hours()/24)

		var rate float64
		if startPrice > 0 {
			totalReturn := (out[i].Price - startPrice) / startPrice
			rate = totalReturn / daysElapsed * 365 * 100
			rate = math.Max(band.Min, math.Min(band.Max, rate))
		}
		out[i].Rate = rate
	}
	return out
}

// FilterRange keeps the points of the trailing window of the given length.
func FilterRange(points []entity.SeriesPoint, days int, now time.Time) []entity.SeriesPoint {
	cutoff := now.AddDate(0, 0, -days).UTC().Format(dayLayout)
	filtered := make([]entity.SeriesPoint, 0, len(points))
	for _, p := range points {
		if p.Date >= cutoff {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// ROISeries rebases prices to 100 at the first point of the window.
func ROISeries(points []entity.SeriesPoint) []entity.ROIPoint {
	if len(points) == 0 || points[0].Price <= 0 {
		return nil
	}
	basePrice := points[0].Price
	out := make([]entity.ROIPoint, len(points))
	for i, p := range points {
		out[i] = entity.ROIPoint{SeriesPoint: p, ROI: p.Price / basePrice * 100}
	}
	return out
}

// AlignRates merges per-asset series onto the union of their dates so the
// presentation layer can chart them on one axis. An asset with no observation
// on a date is absent from that point's rate map.
func AlignRates(series map[string]entity.AssetSeries) []entity.AlignedRatePoint {
	dates := make(map[string]struct{})
	for _, s := range series {
		for _, p := range s.Points {
			dates[p.Date] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	lookups := make(map[string]map[string]float64, len(series))
	for asset, s := range series {
		byDate := make(map[string]float64, len(s.Points))
		for _, p := range s.Points {
			byDate[p.Date] = p.Rate
		}
		lookups[asset] = byDate
	}

	out := make([]entity.AlignedRatePoint, len(sorted))
	for i, date := range sorted {
		rates := make(map[string]float64)
		for asset, byDate := range lookups {
			if rate, ok := byDate[date]; ok {
				rates[asset] = rate
			}
		}
		out[i] = entity.AlignedRatePoint{Date: date, Rates: rates}
	}
	return out
}

// MockSeries generates a synthetic preview series from a base price and rate.
// It is random, not seeded; consumers must treat it as non-live data.
func MockSeries(basePrice, baseRate float64, days int, now time.Time) []entity.SeriesPoint {
	points := make([]entity.SeriesPoint, 0, days+1)
	dailyYield := baseRate / 100 / 365

	for i := days; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		elapsed := float64(days - i)
		accumulated := basePrice * dailyYield * elapsed
		price := basePrice + accumulated + (rand.Float64()-0.5)*0.002*basePrice
		rate := baseRate + (rand.Float64()-0.5)*0.5
		delta := dailyYield + (rand.Float64()-0.5)*0.001

		points = append(points, entity.SeriesPoint{
			Date:  date.UTC().Format(dayLayout),
			Price: roundTo(price, 6),
			Delta: roundTo(delta, 6),
			Rate:  roundTo(rate, 2),
		})
	}
	return points
}

// extractDay pulls the first parseable timestamp field out of a raw row and
// truncates it to the calendar day.
func extractDay(row map[string]interface{}) (string, bool) {
	for _, key := range timestampKeys {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if day, ok := parseDay(v); ok {
			return day, true
		}
	}
	return "", false
}

func parseDay(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		s := t
		if i := strings.IndexAny(s, " T"); i > 0 {
			s = s[:i]
		}
		if _, err := time.Parse(dayLayout, s); err == nil {
			return s, true
		}
		return "", false
	case float64:
		return epochDay(t), true
	case int64:
		return epochDay(float64(t)), true
	case int:
		return epochDay(float64(t)), true
	default:
		return "", false
	}
}

// epochDay disambiguates seconds vs. milliseconds by magnitude.
func epochDay(epoch float64) string {
	if epoch >= epochMillisThreshold {
		epoch = epoch / 1000
	}
	return time.Unix(int64(epoch), 0).UTC().Format(dayLayout)
}

// firstNumber returns the first present key coerced to float64, or zero.
func firstNumber(row map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case int64:
			return float64(t)
		case int:
			return float64(t)
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(v*factor) / factor
}
