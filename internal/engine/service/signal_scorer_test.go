package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

func floatPtr(v float64) *float64 { return &v }

// gateSnapshots builds nine snapshots where the labelable one (five sessions
// before the newest) carries a textbook qualifying setup: stacked EMAs, RSI
// at the sweet spot, 3% ATR and a held uptrend. The newest close of 105
// yields a +5% forward return.
func gateSnapshots() []entity.FeatureSnapshot {
	snapshots := make([]entity.FeatureSnapshot, 9)
	for i := range snapshots {
		snapshots[i] = entity.FeatureSnapshot{
			Symbol: "TCS",
			Date:   day("2025-06-01").AddDate(0, 0, i),
			Close:  100,
			EMA20:  110,
			EMA50:  105,
			EMA200: 100,
			RSI14:  floatPtr(55),
			ATR14:  3,
			Trend:  entity.TrendUp,
		}
	}
	snapshots[len(snapshots)-1].Close = 105
	return snapshots
}

func newTestScorer(signalRepo *fakeSignalRepo) SignalScorer {
	return NewSignalScorer(testConfig(), testLogger(), signalRepo)
}

func TestEvaluateInsufficientBars(t *testing.T) {
	scorer := newTestScorer(newFakeSignalRepo())

	_, err := scorer.Evaluate(gateSnapshots(), 219)
	assert.ErrorIs(t, err, dto.ErrInsufficientHistory)
}

func TestEvaluateTooFewSnapshots(t *testing.T) {
	scorer := newTestScorer(newFakeSignalRepo())

	_, err := scorer.Evaluate(gateSnapshots()[:7], 250)
	assert.ErrorIs(t, err, dto.ErrInsufficientHistory)
}

func TestEvaluatePerfectSetup(t *testing.T) {
	scorer := newTestScorer(newFakeSignalRepo())

	record, err := scorer.Evaluate(gateSnapshots(), 250)
	require.NoError(t, err)
	require.NotNil(t, record)

	// 30 (full EMA spread) + 25 (RSI at 55) + 25 (ATR at 3%) + 20 (held trend).
	assert.Equal(t, 100.0, record.SignalScore)
	assert.InDelta(t, 0.05, record.ForwardReturn5D, 1e-9)
	assert.True(t, record.Win)
	assert.Equal(t, "TCS", record.Symbol)
	assert.Equal(t, entity.TrendUp, record.Trend)
}

func TestEvaluateRecentTrendScoresLower(t *testing.T) {
	scorer := newTestScorer(newFakeSignalRepo())

	snapshots := gateSnapshots()
	// Two sessions of uptrend pass the gate; three are needed for the full
	// trend component.
	snapshots[1].Trend = entity.TrendSideways

	record, err := scorer.Evaluate(snapshots, 250)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 92.0, record.SignalScore)
}

func TestEvaluateGateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(snapshots []entity.FeatureSnapshot)
	}{
		{
			name: "ema stack broken",
			mutate: func(s []entity.FeatureSnapshot) {
				s[3].EMA50 = 120
			},
		},
		{
			name: "rsi overbought",
			mutate: func(s []entity.FeatureSnapshot) {
				s[3].RSI14 = floatPtr(70)
			},
		},
		{
			name: "rsi undefined",
			mutate: func(s []entity.FeatureSnapshot) {
				s[3].RSI14 = nil
			},
		},
		{
			name: "volatility too high",
			mutate: func(s []entity.FeatureSnapshot) {
				s[3].ATR14 = 8
			},
		},
		{
			name: "volatility too low",
			mutate: func(s []entity.FeatureSnapshot) {
				s[3].ATR14 = 0.5
			},
		},
		{
			name: "trend not held",
			mutate: func(s []entity.FeatureSnapshot) {
				s[2].Trend = entity.TrendSideways
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := newTestScorer(newFakeSignalRepo())

			snapshots := gateSnapshots()
			tt.mutate(snapshots)

			record, err := scorer.Evaluate(snapshots, 250)
			assert.NoError(t, err)
			assert.Nil(t, record, "a failed gate emits nothing, it is not an error")
		})
	}
}

func TestScoreAndRecordAppends(t *testing.T) {
	signalRepo := newFakeSignalRepo()
	scorer := newTestScorer(signalRepo)

	record, err := scorer.ScoreAndRecord(context.Background(), "TCS", gateSnapshots(), 250)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Len(t, signalRepo.records, 1)
	assert.Equal(t, record.SignalScore, signalRepo.records[0].SignalScore)
}

func TestScoreAndRecordIdempotent(t *testing.T) {
	signalRepo := newFakeSignalRepo()
	scorer := newTestScorer(signalRepo)

	snapshots := gateSnapshots()
	_, err := scorer.ScoreAndRecord(context.Background(), "TCS", snapshots, 250)
	require.NoError(t, err)
	_, err = scorer.ScoreAndRecord(context.Background(), "TCS", snapshots, 250)
	require.NoError(t, err)

	assert.Len(t, signalRepo.records, 1, "re-running the same day must not duplicate the row")
}

func TestScoreAndRecordSkipsFailedGate(t *testing.T) {
	signalRepo := newFakeSignalRepo()
	scorer := newTestScorer(signalRepo)

	snapshots := gateSnapshots()
	for i := range snapshots {
		snapshots[i].Trend = entity.TrendSideways
	}

	record, err := scorer.ScoreAndRecord(context.Background(), "TCS", snapshots, 250)
	assert.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, signalRepo.records)
}

func TestEvaluateLabelsFiveSessionsBack(t *testing.T) {
	scorer := newTestScorer(newFakeSignalRepo())

	snapshots := gateSnapshots()
	wantDate := snapshots[len(snapshots)-1-ForwardReturnSessions].Date

	record, err := scorer.Evaluate(snapshots, 250)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Date.Equal(wantDate))
}
