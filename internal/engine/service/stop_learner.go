package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/indicator"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
)

// LearnResult is the outcome of one stop-distance grid search.
type LearnResult struct {
	BestMultiplier    float64
	AverageR          float64
	CandidateAverages map[string]float64
}

// StopLearner chooses the ATR risk multiplier that historically maximized
// average reward-to-risk per symbol and maintains the daily trailing stop.
type StopLearner interface {
	Refresh(ctx context.Context, symbol string, bars []entity.PriceBar, asOf time.Time) (float64, error)
	Learn(bars []entity.PriceBar) (*LearnResult, error)
	ApplyTrailingStop(ctx context.Context, symbol string, bars []entity.PriceBar, multiplier float64) (*entity.StopLossRecord, error)
}

// NewStopLearner creates a new stop-distance learner.
func NewStopLearner(cfg *config.Config, log *logger.Logger, stateRepo repository.StopStateRepository, stopLossRepo repository.StopLossRepository) StopLearner {
	return &stopLearner{
		cfg:          cfg,
		log:          log,
		stateRepo:    stateRepo,
		stopLossRepo: stopLossRepo,
	}
}

type stopLearner struct {
	cfg          *config.Config
	log          *logger.Logger
	stateRepo    repository.StopStateRepository
	stopLossRepo repository.StopLossRepository
}

// Refresh returns the multiplier to use for a symbol, re-running the grid
// search only when no learned state exists or the persisted state is at
// least the refresh cadence old. The grid search is expensive; the cadence
// amortizes it.
func (s *stopLearner) Refresh(ctx context.Context, symbol string, bars []entity.PriceBar, asOf time.Time) (float64, error) {
	state, err := s.stateRepo.Get(ctx, symbol)
	if err != nil {
		s.log.Warn("Unreadable learned stop state, resetting",
			logger.StringField("symbol", symbol), logger.ErrorField(fmt.Errorf("%w: %v", dto.ErrCorruptState, err)))
		state = nil
	}

	refreshAge := time.Duration(s.cfg.Engine.LearnRefreshDays) * 24 * time.Hour
	if state != nil && asOf.Sub(state.LastLearnedDate) < refreshAge {
		return state.BestATRMultiplier, nil
	}

	result, err := s.Learn(bars)
	if errors.Is(err, dto.ErrInsufficientData) {
		s.log.Warn("Insufficient data for stop learning, using fallback multiplier",
			logger.StringField("symbol", symbol))
		if state != nil {
			return state.BestATRMultiplier, nil
		}
		return s.cfg.Engine.DefaultATRMultiplier, nil
	}
	if err != nil {
		return s.cfg.Engine.DefaultATRMultiplier, err
	}

	data, err := json.Marshal(result.CandidateAverages)
	if err != nil {
		return result.BestMultiplier, err
	}
	newState := &entity.LearnedStopState{
		Symbol:            symbol,
		BestATRMultiplier: round(result.BestMultiplier, 2),
		AverageR:          round(result.AverageR, 4),
		LastLearnedDate:   asOf,
		Data:              data,
	}
	if err := s.stateRepo.Save(ctx, newState); err != nil {
		return result.BestMultiplier, fmt.Errorf("failed to persist learned stop state: %w", err)
	}

	s.log.Debug("Learned ATR multiplier",
		logger.StringField("symbol", symbol),
		logger.Float64Field("multiplier", newState.BestATRMultiplier),
		logger.Float64Field("average_r", newState.AverageR))
	return newState.BestATRMultiplier, nil
}

// Learn grid-searches the configured multiplier candidates over the bar
// series. For each bar the realized move is divided by the risked amount
// (ATR × multiplier); the candidate with the highest average R wins. Ties
// keep the first-enumerated candidate: comparison is strictly greater.
func (s *stopLearner) Learn(bars []entity.PriceBar) (*LearnResult, error) {
	if len(bars) < s.cfg.Engine.MinLearnBars {
		return nil, fmt.Errorf("%w: got %d bars, need %d", dto.ErrInsufficientData, len(bars), s.cfg.Engine.MinLearnBars)
	}

	atr := indicator.ATR(bars, indicator.ATRWindow)

	bestR := math.Inf(-1)
	bestM := 0.0
	averages := make(map[string]float64, len(s.cfg.Engine.ATRMultipliers))

	for _, m := range s.cfg.Engine.ATRMultipliers {
		var sum float64
		var n int
		for i := 1; i < len(bars); i++ {
			if math.IsNaN(atr[i]) {
				continue
			}
			risk := atr[i] * m
			if risk <= 0 {
				continue
			}
			sum += (bars[i].Close - bars[i-1].Close) / risk
			n++
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		averages[strconv.FormatFloat(m, 'f', -1, 64)] = avg
		if avg > bestR {
			bestR = avg
			bestM = m
		}
	}

	if bestM == 0 {
		return nil, fmt.Errorf("%w: no valid reward-to-risk samples", dto.ErrInsufficientData)
	}
	return &LearnResult{BestMultiplier: bestM, AverageR: bestR, CandidateAverages: averages}, nil
}

// ApplyTrailingStop appends today's trailing stop row for a symbol. The
// stoploss is a ratchet: the fresh candidate never undercuts the previously
// persisted value.
func (s *stopLearner) ApplyTrailingStop(ctx context.Context, symbol string, bars []entity.PriceBar, multiplier float64) (*entity.StopLossRecord, error) {
	if len(bars) < indicator.ATRWindow {
		return nil, fmt.Errorf("%w: got %d bars, need %d", dto.ErrInsufficientHistory, len(bars), indicator.ATRWindow)
	}

	atr := indicator.ATR(bars, indicator.ATRWindow)
	last := bars[len(bars)-1]

	closePrice := round(last.Close, 2)
	atrValue := round(atr[len(bars)-1], 2)
	stopLoss := round(closePrice-atrValue*multiplier, 2)

	prev, err := s.stopLossRepo.Last(ctx, symbol)
	if err != nil {
		s.log.Warn("Unreadable stop loss history, resetting",
			logger.StringField("symbol", symbol), logger.ErrorField(fmt.Errorf("%w: %v", dto.ErrCorruptState, err)))
		prev = nil
	}
	if prev != nil && prev.StopLoss > stopLoss {
		stopLoss = prev.StopLoss
	}

	record := &entity.StopLossRecord{
		Symbol:        symbol,
		Date:          last.Date,
		ClosePrice:    closePrice,
		ATR:           atrValue,
		ATRMultiplier: multiplier,
		StopLoss:      stopLoss,
	}
	if err := s.stopLossRepo.Append(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
