package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
	"github.com/abhishekk536-cpu/market-ai/pkg/utils"
)

// CandidateSelector produces the ranked weekly shortlist by joining the
// latest signals with historical per-symbol performance.
type CandidateSelector interface {
	Select(ctx context.Context, asOf time.Time) ([]entity.WeeklyPick, error)
}

// NewCandidateSelector creates a new candidate selector.
func NewCandidateSelector(cfg *config.Config, log *logger.Logger, signalRepo repository.SignalRepository, featureRepo repository.FeatureRepository, pickRepo repository.PickRepository) CandidateSelector {
	return &candidateSelector{
		cfg:          cfg,
		log:          log,
		signalRepo:   signalRepo,
		featureRepo:  featureRepo,
		pickRepo:     pickRepo,
		featureCache: gocache.New(15*time.Minute, 30*time.Minute),
	}
}

type candidateSelector struct {
	cfg          *config.Config
	log          *logger.Logger
	signalRepo   repository.SignalRepository
	featureRepo  repository.FeatureRepository
	pickRepo     repository.PickRepository
	featureCache *gocache.Cache
}

// Select qualifies, ranks and persists the shortlist for the most recent
// signal date. An empty qualifier set is a valid, reported outcome: nothing
// is persisted and ErrEmptyResult is returned.
func (s *candidateSelector) Select(ctx context.Context, asOf time.Time) ([]entity.WeeklyPick, error) {
	latest, err := s.signalRepo.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	if latest.IsZero() {
		return nil, fmt.Errorf("%w: signal log is empty", dto.ErrEmptyResult)
	}

	recent, err := s.signalRepo.FindByDate(ctx, latest)
	if err != nil {
		return nil, err
	}
	aggregates, err := s.signalRepo.AggregateBySymbol(ctx)
	if err != nil {
		return nil, err
	}

	weekID := utils.WeekID(asOf)
	var qualified []entity.WeeklyPick

	for _, rec := range recent {
		snapshots, err := s.featureHistory(ctx, rec.Symbol)
		if err != nil {
			s.log.Warn("Failed to load feature history, skipping symbol",
				logger.StringField("symbol", rec.Symbol), logger.ErrorField(err))
			continue
		}
		if len(snapshots) < trendHoldSessions {
			continue
		}

		last := snapshots[len(snapshots)-1]
		prev1 := snapshots[len(snapshots)-2]
		prev2 := snapshots[len(snapshots)-3]

		// Trend persistence is re-verified from the raw features at
		// selection time, independent of the scorer's gate.
		trendOK := last.Trend == entity.TrendUp && prev1.Trend == entity.TrendUp && prev2.Trend == entity.TrendUp
		atrPct := last.ATRPct()

		aggregate, ok := aggregates[rec.Symbol]
		if !ok {
			continue
		}

		if !(rec.SignalScore >= s.cfg.Engine.MinSignalScore &&
			aggregate.WinRate >= s.cfg.Engine.MinWinRate &&
			atrPct >= s.cfg.Engine.MinATRPct && atrPct <= s.cfg.Engine.MaxATRPct &&
			trendOK) {
			continue
		}

		qualified = append(qualified, entity.WeeklyPick{
			Symbol:       rec.Symbol,
			SignalScore:  rec.SignalScore,
			WinRatePct:   round(aggregate.WinRate*100, 1),
			AvgReturnPct: round(aggregate.AvgReturn*100, 2),
			ATRPct:       round(atrPct*100, 2),
			SignalsSeen:  int(aggregate.Signals),
			Trend:        last.Trend,
			WeekID:       weekID,
		})
	}

	if len(qualified) == 0 {
		return nil, fmt.Errorf("%w: no weekly candidates found", dto.ErrEmptyResult)
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].SignalScore != qualified[j].SignalScore {
			return qualified[i].SignalScore > qualified[j].SignalScore
		}
		return qualified[i].WinRatePct > qualified[j].WinRatePct
	})
	if len(qualified) > s.cfg.Engine.TopPicks {
		qualified = qualified[:s.cfg.Engine.TopPicks]
	}

	if err := s.pickRepo.Save(ctx, qualified); err != nil {
		return nil, err
	}

	s.log.Info("Weekly picks generated",
		logger.StringField("week", weekID),
		logger.IntField("picks", len(qualified)))
	return qualified, nil
}

func (s *candidateSelector) featureHistory(ctx context.Context, symbol string) ([]entity.FeatureSnapshot, error) {
	if cached, found := s.featureCache.Get(symbol); found {
		return cached.([]entity.FeatureSnapshot), nil
	}
	snapshots, err := s.featureRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.featureCache.Set(symbol, snapshots, gocache.DefaultExpiration)
	return snapshots, nil
}
