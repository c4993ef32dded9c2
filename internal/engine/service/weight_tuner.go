package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
)

// WeightTuner re-derives the relative importance of the score features from
// realized outcomes over a trailing window of signal history.
type WeightTuner interface {
	Tune(ctx context.Context, asOf time.Time) (*entity.WeightVector, error)
}

// NewWeightTuner creates a new weight tuner.
func NewWeightTuner(cfg *config.Config, log *logger.Logger, signalRepo repository.SignalRepository, weightRepo repository.WeightRepository) WeightTuner {
	return &weightTuner{cfg: cfg, log: log, signalRepo: signalRepo, weightRepo: weightRepo}
}

type weightTuner struct {
	cfg        *config.Config
	log        *logger.Logger
	signalRepo repository.SignalRepository
	weightRepo repository.WeightRepository
}

// Tune correlates each feature's raw value with the realized 5-session
// forward return over the trailing window, floors anti-correlated features
// at zero, normalizes, clamps into the configured bands and renormalizes.
// The ema feature is proxied by the composite score, which already embeds
// the EMA spread.
func (t *weightTuner) Tune(ctx context.Context, asOf time.Time) (*entity.WeightVector, error) {
	latest, err := t.signalRepo.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	if latest.IsZero() {
		return nil, fmt.Errorf("%w: signal log is empty", dto.ErrInsufficientData)
	}

	cutoff := latest.AddDate(0, 0, -t.cfg.Engine.TuneWindowDays)
	records, err := t.signalRepo.FindSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(records) < t.cfg.Engine.MinTuneRows {
		return nil, fmt.Errorf("%w: got %d rows, need %d", dto.ErrInsufficientData, len(records), t.cfg.Engine.MinTuneRows)
	}

	n := len(records)
	emaProxy := make([]float64, n)
	rsi := make([]float64, n)
	atr := make([]float64, n)
	trend := make([]float64, n)
	returns := make([]float64, n)
	for i, rec := range records {
		emaProxy[i] = rec.SignalScore
		rsi[i] = rec.RSI
		atr[i] = rec.ATR
		if rec.Trend == entity.TrendUp {
			trend[i] = 1
		}
		returns[i] = rec.ForwardReturn5D
	}

	score := func(feature []float64) float64 {
		c := stat.Correlation(feature, returns, nil)
		if math.IsNaN(c) || c < 0 {
			return 0
		}
		return c
	}

	scores := map[string]float64{
		"ema":   score(emaProxy),
		"rsi":   score(rsi),
		"atr":   score(atr),
		"trend": score(trend),
	}

	total := scores["ema"] + scores["rsi"] + scores["atr"] + scores["trend"]
	if total == 0 {
		return nil, fmt.Errorf("%w: no feature correlates positively with outcome", dto.ErrZeroSignal)
	}

	bands := t.cfg.Engine.WeightBands
	ema := clip(round(scores["ema"]/total, 3), bands.EMA.Min, bands.EMA.Max)
	rsiW := clip(round(scores["rsi"]/total, 3), bands.RSI.Min, bands.RSI.Max)
	atrW := clip(round(scores["atr"]/total, 3), bands.ATR.Min, bands.ATR.Max)
	trendW := clip(round(scores["trend"]/total, 3), bands.Trend.Min, bands.Trend.Max)

	norm := ema + rsiW + atrW + trendW
	vector := &entity.WeightVector{
		Date:        asOf,
		WeightEMA:   round(ema/norm, 3),
		WeightRSI:   round(rsiW/norm, 3),
		WeightATR:   round(atrW/norm, 3),
		WeightTrend: round(trendW/norm, 3),
	}

	if err := t.weightRepo.Append(ctx, vector); err != nil {
		return nil, err
	}

	t.log.Info("Model weights updated",
		logger.Float64Field("ema", vector.WeightEMA),
		logger.Float64Field("rsi", vector.WeightRSI),
		logger.Float64Field("atr", vector.WeightATR),
		logger.Float64Field("trend", vector.WeightTrend))
	return vector, nil
}
