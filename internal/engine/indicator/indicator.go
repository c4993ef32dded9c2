package indicator

import (
	"fmt"
	"math"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// Rolling windows of the derived indicators.
const (
	EMAShortWindow = 20
	EMAMidWindow   = 50
	EMALongWindow  = 200
	RSIWindow      = 14
	ATRWindow      = 14

	// MinBars is the minimum trailing history a snapshot row requires.
	MinBars = EMALongWindow
)

// Compute derives the feature snapshot series from an ordered per-symbol bar
// series. The first MinBars-1 rows carry insufficient trailing history and
// are dropped, never defaulted to zero.
func Compute(bars []entity.PriceBar) ([]entity.FeatureSnapshot, error) {
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", dto.ErrMissingColumns, b.Symbol, b.Date.Format("2006-01-02"), err)
		}
	}
	if len(bars) < MinBars {
		return nil, fmt.Errorf("%w: got %d bars, need %d", dto.ErrInsufficientHistory, len(bars), MinBars)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	ema20 := EMA(closes, EMAShortWindow)
	ema50 := EMA(closes, EMAMidWindow)
	ema200 := EMA(closes, EMALongWindow)
	rsi := RSI(closes, RSIWindow)
	atr := ATR(bars, ATRWindow)

	snapshots := make([]entity.FeatureSnapshot, 0, len(bars)-MinBars+1)
	for i := MinBars - 1; i < len(bars); i++ {
		snap := entity.FeatureSnapshot{
			Symbol: bars[i].Symbol,
			Date:   bars[i].Date,
			Close:  bars[i].Close,
			EMA20:  ema20[i],
			EMA50:  ema50[i],
			EMA200: ema200[i],
			ATR14:  atr[i],
			Trend:  TrendRegime(ema20[i], ema50[i], ema200[i]),
		}
		if !math.IsNaN(rsi[i]) {
			v := rsi[i]
			snap.RSI14 = &v
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// EMA computes the exponential moving average with smoothing 2/(period+1),
// seeded by the first value.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI computes the relative strength index over a simple rolling window of
// signed price deltas. Rows without a full window, and rows where the average
// loss is zero, are NaN (undefined, not infinity).
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := period; i < len(closes); i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			continue
		}
		avgGain := gainSum / float64(period)
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// ATR computes the average true range as a simple rolling mean of the true
// range. The first bar's true range falls back to high-low since no previous
// close exists. Rows without a full window are NaN.
func ATR(bars []entity.PriceBar, period int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(bars) < period {
		return out
	}

	tr := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			tr[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}

	for i := period - 1; i < len(bars); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += tr[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// TrendRegime classifies the EMA stack into a categorical trend state.
func TrendRegime(ema20, ema50, ema200 float64) string {
	switch {
	case ema20 > ema50 && ema50 > ema200:
		return entity.TrendUp
	case ema20 < ema50 && ema50 < ema200:
		return entity.TrendDown
	default:
		return entity.TrendSideways
	}
}
