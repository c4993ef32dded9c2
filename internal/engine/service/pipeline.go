package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/indicator"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/common"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
	"github.com/abhishekk536-cpu/market-ai/pkg/telegram"
	"github.com/abhishekk536-cpu/market-ai/pkg/utils"
)

// Pipeline orchestrates the daily screening run and the weekly selection.
type Pipeline interface {
	RunDaily(ctx context.Context, opts dto.RunOptions) (*dto.RunSummary, error)
	RunWeekly(ctx context.Context, asOf time.Time, force bool) ([]entity.WeeklyPick, error)
}

// NewPipeline creates a new pipeline service.
func NewPipeline(
	cfg *config.Config,
	log *logger.Logger,
	stocksRepo repository.StocksRepository,
	provider repository.MarketDataProvider,
	featureRepo repository.FeatureRepository,
	stopLearner StopLearner,
	scorer SignalScorer,
	tuner WeightTuner,
	selector CandidateSelector,
	lockRepo repository.RunLockRepository,
	notifier telegram.Notifier,
) Pipeline {
	return &pipeline{
		cfg:         cfg,
		log:         log,
		stocksRepo:  stocksRepo,
		provider:    provider,
		featureRepo: featureRepo,
		stopLearner: stopLearner,
		scorer:      scorer,
		tuner:       tuner,
		selector:    selector,
		lockRepo:    lockRepo,
		notifier:    notifier,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Engine.MaxSymbolsPerMinute)), cfg.Engine.MaxConcurrentSymbols),
	}
}

type pipeline struct {
	cfg         *config.Config
	log         *logger.Logger
	stocksRepo  repository.StocksRepository
	provider    repository.MarketDataProvider
	featureRepo repository.FeatureRepository
	stopLearner StopLearner
	scorer      SignalScorer
	tuner       WeightTuner
	selector    CandidateSelector
	lockRepo    repository.RunLockRepository
	notifier    telegram.Notifier
	limiter     *rate.Limiter
}

// RunDaily processes the full universe for one day. Symbols are independent
// and processed concurrently; one symbol's failure never aborts the rest.
// The run is guarded by a per-day lock unless forced.
func (p *pipeline) RunDaily(ctx context.Context, opts dto.RunOptions) (*dto.RunSummary, error) {
	day := utils.TruncateDay(opts.Date)
	summary := &dto.RunSummary{RunDate: day}

	if !opts.Force {
		acquired, err := p.lockRepo.Acquire(ctx, common.RedisKeyDailyRunLock, day)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire daily run lock: %w", err)
		}
		if !acquired {
			p.log.Info("Already ran today, skipping", logger.StringField("date", utils.DayKey(day)))
			summary.AlreadyRan = true
			return summary, nil
		}
	}

	stocks, err := p.stocksRepo.GetStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	if len(stocks) == 0 {
		return nil, errors.New("universe is empty")
	}

	p.log.Info("Daily pipeline started",
		logger.StringField("date", utils.DayKey(day)),
		logger.IntField("universe", len(stocks)))

	from := day.AddDate(-p.cfg.Engine.LearnLookbackYears, 0, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Engine.MaxConcurrentSymbols)
	var mu sync.Mutex

	for _, stock := range stocks {
		symbol := stock.Symbol
		g.Go(func() error {
			result := p.processSymbol(gctx, symbol, from, day)
			mu.Lock()
			summary.Results = append(summary.Results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	p.log.Info("Daily pipeline symbol stage completed",
		logger.IntField("processed", summary.Processed()),
		logger.IntField("failed", summary.Failed()),
		logger.IntField("signals", summary.Signals()))

	if _, err := p.tuner.Tune(ctx, day); err != nil {
		if errors.Is(err, dto.ErrInsufficientData) || errors.Is(err, dto.ErrZeroSignal) {
			p.log.Info("Weight tuning skipped", logger.ErrorField(err))
		} else {
			p.log.Error("Weight tuning failed", logger.ErrorField(err))
		}
	}

	if opts.Weekly || utils.IsFriday(day) {
		if _, err := p.RunWeekly(ctx, day, opts.Force); err != nil && !errors.Is(err, dto.ErrEmptyResult) {
			p.log.Error("Weekly selection failed", logger.ErrorField(err))
		}
	}

	return summary, nil
}

func (p *pipeline) processSymbol(ctx context.Context, symbol string, from, day time.Time) dto.SymbolResult {
	result := dto.SymbolResult{Symbol: symbol}

	fail := func(err error) dto.SymbolResult {
		p.log.Warn("Symbol processing failed",
			logger.StringField("symbol", symbol), logger.ErrorField(err))
		result.Err = err
		return result
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fail(err)
	}

	bars, err := p.provider.GetDailyBars(ctx, symbol, from)
	if err != nil {
		return fail(fmt.Errorf("failed to get daily bars: %w", err))
	}

	snapshots, err := indicator.Compute(bars)
	if err != nil {
		return fail(err)
	}
	if err := p.featureRepo.Replace(ctx, symbol, snapshots); err != nil {
		return fail(fmt.Errorf("failed to persist features: %w", err))
	}

	multiplier, err := p.stopLearner.Refresh(ctx, symbol, bars, day)
	if err != nil {
		return fail(err)
	}
	if _, err := p.stopLearner.ApplyTrailingStop(ctx, symbol, bars, multiplier); err != nil {
		return fail(err)
	}

	record, err := p.scorer.ScoreAndRecord(ctx, symbol, snapshots, len(bars))
	if err != nil {
		return fail(err)
	}
	result.SignalEmitted = record != nil
	return result
}

// RunWeekly produces and announces the weekly shortlist, guarded by its own
// per-day lock unless forced.
func (p *pipeline) RunWeekly(ctx context.Context, asOf time.Time, force bool) ([]entity.WeeklyPick, error) {
	day := utils.TruncateDay(asOf)

	if !force {
		acquired, err := p.lockRepo.Acquire(ctx, common.RedisKeyWeeklyRunLock, day)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire weekly run lock: %w", err)
		}
		if !acquired {
			p.log.Info("Weekly selection already ran today, skipping", logger.StringField("date", utils.DayKey(day)))
			return nil, nil
		}
	}

	picks, err := p.selector.Select(ctx, day)
	if err != nil {
		if errors.Is(err, dto.ErrEmptyResult) {
			p.log.Info("No weekly candidates found", logger.StringField("date", utils.DayKey(day)))
		}
		return nil, err
	}

	if p.notifier != nil {
		if err := p.notifier.SendMessage(telegram.FormatWeeklyPicks(picks)); err != nil {
			p.log.Error("Failed to send weekly picks notification", logger.ErrorField(err))
		}
	}
	return picks, nil
}
