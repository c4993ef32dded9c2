package service

import (
	"context"
	"fmt"
	"math"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
)

// ForwardReturnSessions is the labeling horizon: a signal is scored on the
// bar this many sessions before the newest one, so its forward return is
// already observable in history.
const ForwardReturnSessions = 5

// Component maxima of the composite score; the four clips sum to 100.
const (
	maxEMAComponent   = 30.0
	maxRSIComponent   = 25.0
	maxATRComponent   = 25.0
	trendScoreHeld    = 20.0
	trendScoreRecent  = 12.0
	rsiSweetSpot      = 55.0
	atrPctSweetSpot   = 0.03
	minGateRSI        = 45.0
	maxGateRSI        = 65.0
	trendHoldSessions = 3
)

// SignalScorer gates and scores the latest labelable snapshot per symbol and
// appends qualifying results to the append-only signal log.
type SignalScorer interface {
	Evaluate(snapshots []entity.FeatureSnapshot, barCount int) (*entity.SignalRecord, error)
	ScoreAndRecord(ctx context.Context, symbol string, snapshots []entity.FeatureSnapshot, barCount int) (*entity.SignalRecord, error)
}

// NewSignalScorer creates a new signal scorer.
func NewSignalScorer(cfg *config.Config, log *logger.Logger, signalRepo repository.SignalRepository) SignalScorer {
	return &signalScorer{cfg: cfg, log: log, signalRepo: signalRepo}
}

type signalScorer struct {
	cfg        *config.Config
	log        *logger.Logger
	signalRepo repository.SignalRepository
}

// Evaluate applies the qualification gate and composite score to the
// snapshot five sessions before the newest bar. It returns (nil, nil) when
// the gate does not hold: no record is emitted for that symbol and day.
func (s *signalScorer) Evaluate(snapshots []entity.FeatureSnapshot, barCount int) (*entity.SignalRecord, error) {
	if barCount < s.cfg.Engine.MinSignalBars {
		return nil, fmt.Errorf("%w: got %d bars, need %d", dto.ErrInsufficientHistory, barCount, s.cfg.Engine.MinSignalBars)
	}
	if len(snapshots) < ForwardReturnSessions+trendHoldSessions {
		return nil, fmt.Errorf("%w: got %d snapshots", dto.ErrInsufficientHistory, len(snapshots))
	}

	t := len(snapshots) - 1 - ForwardReturnSessions
	snap := snapshots[t]
	prev1 := snapshots[t-1]
	prev2 := snapshots[t-2]

	emaStackOK := snap.EMA20 > snap.EMA50 && snap.EMA50 > snap.EMA200
	rsiOK := snap.RSI14 != nil && *snap.RSI14 >= minGateRSI && *snap.RSI14 <= maxGateRSI
	atrPct := snap.ATRPct()
	atrOK := atrPct >= s.cfg.Engine.MinATRPct && atrPct <= s.cfg.Engine.MaxATRPct
	trendOK := snap.Trend == entity.TrendUp && prev1.Trend == entity.TrendUp

	if !(emaStackOK && rsiOK && atrOK && trendOK) {
		return nil, nil
	}

	emaScore := clip((snap.EMA20-snap.EMA200)/snap.EMA200*300, 0, maxEMAComponent)
	rsiScore := clip(maxRSIComponent-math.Abs(*snap.RSI14-rsiSweetSpot)*1.25, 0, maxRSIComponent)
	atrScore := clip(maxATRComponent-math.Abs(atrPct-atrPctSweetSpot)*500, 0, maxATRComponent)
	trendScore := trendScoreRecent
	if prev2.Trend == entity.TrendUp {
		trendScore = trendScoreHeld
	}

	forwardReturn := (snapshots[len(snapshots)-1].Close - snap.Close) / snap.Close

	return &entity.SignalRecord{
		Date:            snap.Date,
		Symbol:          snap.Symbol,
		SignalScore:     round(emaScore+rsiScore+atrScore+trendScore, 1),
		ForwardReturn5D: forwardReturn,
		Win:             forwardReturn > 0,
		RSI:             *snap.RSI14,
		ATR:             snap.ATR14,
		Trend:           snap.Trend,
	}, nil
}

// ScoreAndRecord evaluates the symbol and appends the record when the gate
// holds. Appending an already-present (symbol, date) row is a no-op.
func (s *signalScorer) ScoreAndRecord(ctx context.Context, symbol string, snapshots []entity.FeatureSnapshot, barCount int) (*entity.SignalRecord, error) {
	record, err := s.Evaluate(snapshots, barCount)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if err := s.signalRepo.Append(ctx, []entity.SignalRecord{*record}); err != nil {
		return nil, err
	}
	s.log.Debug("Signal recorded",
		logger.StringField("symbol", symbol),
		logger.Float64Field("score", record.SignalScore))
	return record, nil
}
