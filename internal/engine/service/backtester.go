package service

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
)

// entrySessionsBack is how many sessions before the newest bar the entry is
// taken; the shortlist is assumed to be evaluated about one trading week
// after generation.
const entrySessionsBack = 6

// Backtester evaluates a previously produced shortlist against subsequent
// price action.
type Backtester interface {
	Run(ctx context.Context, weekID string) (*dto.BacktestReport, error)
}

// NewBacktester creates a new backtester.
func NewBacktester(cfg *config.Config, log *logger.Logger, pickRepo repository.PickRepository, featureRepo repository.FeatureRepository, backtestRepo repository.BacktestRepository) Backtester {
	return &backtester{
		cfg:          cfg,
		log:          log,
		pickRepo:     pickRepo,
		featureRepo:  featureRepo,
		backtestRepo: backtestRepo,
	}
}

type backtester struct {
	cfg          *config.Config
	log          *logger.Logger
	pickRepo     repository.PickRepository
	featureRepo  repository.FeatureRepository
	backtestRepo repository.BacktestRepository
}

// Run evaluates the shortlist of the given week (the most recent one when
// weekID is empty). An empty result set is reported, not an error per
// symbol: symbols with too little history are skipped.
func (b *backtester) Run(ctx context.Context, weekID string) (*dto.BacktestReport, error) {
	if weekID == "" {
		latest, err := b.pickRepo.LatestWeekID(ctx)
		if err != nil {
			return nil, err
		}
		if latest == "" {
			return nil, fmt.Errorf("%w: no weekly picks exist", dto.ErrEmptyResult)
		}
		weekID = latest
	}

	picks, err := b.pickRepo.FindByWeek(ctx, weekID)
	if err != nil {
		return nil, err
	}

	var trades []entity.BacktestTrade
	var returnsPct []float64
	wins := 0

	for _, pick := range picks {
		snapshots, err := b.featureRepo.FindBySymbol(ctx, pick.Symbol)
		if err != nil {
			b.log.Warn("Failed to load feature history, skipping symbol",
				logger.StringField("symbol", pick.Symbol), logger.ErrorField(err))
			continue
		}
		if len(snapshots) < b.cfg.Engine.MinBacktestBars || len(snapshots) < entrySessionsBack {
			continue
		}

		entry := snapshots[len(snapshots)-entrySessionsBack].Close
		exit := snapshots[len(snapshots)-1].Close
		ret := (exit - entry) / entry

		trade := entity.BacktestTrade{
			WeekID:     weekID,
			Symbol:     pick.Symbol,
			EntryPrice: entry,
			ExitPrice:  exit,
			ReturnPct:  round(ret*100, 2),
			Win:        ret > 0,
		}
		trades = append(trades, trade)
		returnsPct = append(returnsPct, trade.ReturnPct)
		if trade.Win {
			wins++
		}
	}

	if len(trades) == 0 {
		return nil, fmt.Errorf("%w: no backtest rows generated", dto.ErrEmptyResult)
	}

	summary := entity.BacktestSummary{
		WeekID:       weekID,
		Total:        len(trades),
		WinRatePct:   round(float64(wins)/float64(len(trades))*100, 1),
		AvgReturnPct: round(stat.Mean(returnsPct, nil), 2),
		BestPct:      floats.Max(returnsPct),
		WorstPct:     floats.Min(returnsPct),
	}

	if err := b.backtestRepo.Save(ctx, trades, &summary); err != nil {
		return nil, err
	}

	b.log.Info("Weekly backtest complete",
		logger.StringField("week", weekID),
		logger.IntField("trades", summary.Total),
		logger.Float64Field("win_rate_pct", summary.WinRatePct))
	return &dto.BacktestReport{WeekID: weekID, Trades: trades, Summary: summary}, nil
}
