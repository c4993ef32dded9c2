package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// upSnapshots builds three trailing feature rows in a held uptrend with the
// given ATR fraction on the newest row.
func upSnapshots(symbol string, atrPct float64) []entity.FeatureSnapshot {
	snapshots := make([]entity.FeatureSnapshot, 3)
	for i := range snapshots {
		snapshots[i] = entity.FeatureSnapshot{
			Symbol: symbol,
			Date:   day("2025-06-10").AddDate(0, 0, i),
			Close:  100,
			ATR14:  atrPct * 100,
			Trend:  entity.TrendUp,
		}
	}
	return snapshots
}

type selectorFixture struct {
	signalRepo  *fakeSignalRepo
	featureRepo *fakeFeatureRepo
	pickRepo    *fakePickRepo
	selector    CandidateSelector
}

func newSelectorFixture(topPicks int) *selectorFixture {
	cfg := testConfig()
	cfg.Engine.TopPicks = topPicks
	f := &selectorFixture{
		signalRepo:  newFakeSignalRepo(),
		featureRepo: newFakeFeatureRepo(),
		pickRepo:    newFakePickRepo(),
	}
	f.selector = NewCandidateSelector(cfg, testLogger(), f.signalRepo, f.featureRepo, f.pickRepo)
	return f
}

func (f *selectorFixture) addCandidate(symbol string, score, winRate, atrPct float64) {
	f.signalRepo.records = append(f.signalRepo.records, entity.SignalRecord{
		Symbol:      symbol,
		Date:        day("2025-06-12"),
		SignalScore: score,
		Trend:       entity.TrendUp,
	})
	f.signalRepo.aggregates[symbol] = repository.SymbolAggregate{
		Symbol:    symbol,
		WinRate:   winRate,
		AvgReturn: 0.02,
		Signals:   12,
	}
	f.featureRepo.snapshots[symbol] = upSnapshots(symbol, atrPct)
}

func TestSelectEmptyLog(t *testing.T) {
	f := newSelectorFixture(15)

	_, err := f.selector.Select(context.Background(), day("2025-06-12"))
	assert.ErrorIs(t, err, dto.ErrEmptyResult)
	assert.Empty(t, f.pickRepo.picks)
}

func TestSelectRanksAndTruncates(t *testing.T) {
	f := newSelectorFixture(3)
	f.addCandidate("TCS", 85, 0.70, 0.03)
	f.addCandidate("INFY", 92, 0.60, 0.03)
	f.addCandidate("WIPRO", 78, 0.65, 0.03)
	f.addCandidate("HDFCBANK", 88, 0.58, 0.03)

	picks, err := f.selector.Select(context.Background(), day("2025-06-12"))
	require.NoError(t, err)
	require.Len(t, picks, 3)

	assert.Equal(t, "INFY", picks[0].Symbol)
	assert.Equal(t, "HDFCBANK", picks[1].Symbol)
	assert.Equal(t, "TCS", picks[2].Symbol)

	weekID := picks[0].WeekID
	assert.Equal(t, "2025-W24", weekID)
	assert.Len(t, f.pickRepo.picks[weekID], 3)
}

func TestSelectBreaksScoreTiesByWinRate(t *testing.T) {
	f := newSelectorFixture(15)
	f.addCandidate("TCS", 85, 0.60, 0.03)
	f.addCandidate("INFY", 85, 0.75, 0.03)

	picks, err := f.selector.Select(context.Background(), day("2025-06-12"))
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.Equal(t, "INFY", picks[0].Symbol)
}

func TestSelectFiltersDisqualified(t *testing.T) {
	f := newSelectorFixture(15)
	f.addCandidate("GOOD", 85, 0.70, 0.03)
	f.addCandidate("LOWSCORE", 60, 0.70, 0.03)
	f.addCandidate("LOWWINRATE", 85, 0.40, 0.03)
	f.addCandidate("TOOCALM", 85, 0.70, 0.005)
	f.addCandidate("TOOWILD", 85, 0.70, 0.09)

	f.addCandidate("NOTREND", 85, 0.70, 0.03)
	f.featureRepo.snapshots["NOTREND"][2].Trend = entity.TrendSideways

	f.addCandidate("NOHISTORY", 85, 0.70, 0.03)
	delete(f.signalRepo.aggregates, "NOHISTORY")

	picks, err := f.selector.Select(context.Background(), day("2025-06-12"))
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "GOOD", picks[0].Symbol)
	assert.Equal(t, 70.0, picks[0].WinRatePct)
	assert.Equal(t, 3.0, picks[0].ATRPct)
}

func TestSelectSkipsUnreadableFeatureHistory(t *testing.T) {
	f := newSelectorFixture(15)
	f.addCandidate("GOOD", 85, 0.70, 0.03)
	f.addCandidate("BROKEN", 90, 0.70, 0.03)
	f.featureRepo.findErrs["BROKEN"] = assert.AnError

	picks, err := f.selector.Select(context.Background(), day("2025-06-12"))
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "GOOD", picks[0].Symbol)
}

func TestSelectNothingPersistedWhenEmpty(t *testing.T) {
	f := newSelectorFixture(15)
	f.addCandidate("LOWSCORE", 60, 0.70, 0.03)

	_, err := f.selector.Select(context.Background(), day("2025-06-12"))
	assert.ErrorIs(t, err, dto.ErrEmptyResult)
	assert.Empty(t, f.pickRepo.picks)
}

func TestSelectUsesLatestSignalDate(t *testing.T) {
	f := newSelectorFixture(15)
	f.addCandidate("STALE", 85, 0.70, 0.03)
	f.signalRepo.records[0].Date = day("2025-06-01")
	f.addCandidate("FRESH", 85, 0.70, 0.03)

	picks, err := f.selector.Select(context.Background(), day("2025-06-12"))
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "FRESH", picks[0].Symbol)
}

func TestSelectWeekIDFollowsISOWeek(t *testing.T) {
	assertWeek := func(d time.Time, want string) {
		f := newSelectorFixture(15)
		f.addCandidate("TCS", 85, 0.70, 0.03)
		picks, err := f.selector.Select(context.Background(), d)
		require.NoError(t, err)
		require.NotEmpty(t, picks)
		assert.Equal(t, want, picks[0].WeekID)
	}

	assertWeek(day("2025-06-12"), "2025-W24")
	// January 1st can belong to the previous ISO year.
	assertWeek(day("2027-01-01"), "2026-W53")
}
