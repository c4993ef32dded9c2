package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/entity"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func testConfig() *config.Config {
	return &config.Config{Engine: config.DefaultEngine()}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// barSeries builds n daily bars whose close follows closeFn and whose
// high/low straddle the close by one point.
func barSeries(symbol string, start time.Time, n int, closeFn func(i int) float64) []entity.PriceBar {
	bars := make([]entity.PriceBar, n)
	for i := range bars {
		c := closeFn(i)
		bars[i] = entity.PriceBar{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

type fakeStopStateRepo struct {
	states map[string]*entity.LearnedStopState
	getErr error
	saved  int
}

func newFakeStopStateRepo() *fakeStopStateRepo {
	return &fakeStopStateRepo{states: make(map[string]*entity.LearnedStopState)}
}

func (f *fakeStopStateRepo) Get(_ context.Context, symbol string) (*entity.LearnedStopState, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.states[symbol], nil
}

func (f *fakeStopStateRepo) Save(_ context.Context, state *entity.LearnedStopState) error {
	f.states[state.Symbol] = state
	f.saved++
	return nil
}

type fakeStopLossRepo struct {
	records map[string][]entity.StopLossRecord
	lastErr error
}

func newFakeStopLossRepo() *fakeStopLossRepo {
	return &fakeStopLossRepo{records: make(map[string][]entity.StopLossRecord)}
}

func (f *fakeStopLossRepo) Last(_ context.Context, symbol string) (*entity.StopLossRecord, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	recs := f.records[symbol]
	if len(recs) == 0 {
		return nil, nil
	}
	last := recs[len(recs)-1]
	return &last, nil
}

func (f *fakeStopLossRepo) Append(_ context.Context, record *entity.StopLossRecord) error {
	f.records[record.Symbol] = append(f.records[record.Symbol], *record)
	return nil
}

type fakeSignalRepo struct {
	records    []entity.SignalRecord
	aggregates map[string]repository.SymbolAggregate
}

func newFakeSignalRepo() *fakeSignalRepo {
	return &fakeSignalRepo{aggregates: make(map[string]repository.SymbolAggregate)}
}

func (f *fakeSignalRepo) Append(_ context.Context, records []entity.SignalRecord) error {
	for _, rec := range records {
		exists := false
		for _, have := range f.records {
			if have.Symbol == rec.Symbol && have.Date.Equal(rec.Date) {
				exists = true
				break
			}
		}
		if !exists {
			f.records = append(f.records, rec)
		}
	}
	return nil
}

func (f *fakeSignalRepo) LatestDate(_ context.Context) (time.Time, error) {
	var latest time.Time
	for _, rec := range f.records {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	return latest, nil
}

func (f *fakeSignalRepo) FindByDate(_ context.Context, date time.Time) ([]entity.SignalRecord, error) {
	var out []entity.SignalRecord
	for _, rec := range f.records {
		if rec.Date.Equal(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSignalRepo) FindSince(_ context.Context, since time.Time) ([]entity.SignalRecord, error) {
	var out []entity.SignalRecord
	for _, rec := range f.records {
		if !rec.Date.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSignalRepo) AggregateBySymbol(_ context.Context) (map[string]repository.SymbolAggregate, error) {
	return f.aggregates, nil
}

type fakeFeatureRepo struct {
	snapshots map[string][]entity.FeatureSnapshot
	findErrs  map[string]error
	replaced  int
}

func newFakeFeatureRepo() *fakeFeatureRepo {
	return &fakeFeatureRepo{
		snapshots: make(map[string][]entity.FeatureSnapshot),
		findErrs:  make(map[string]error),
	}
}

func (f *fakeFeatureRepo) Replace(_ context.Context, symbol string, snapshots []entity.FeatureSnapshot) error {
	f.snapshots[symbol] = snapshots
	f.replaced++
	return nil
}

func (f *fakeFeatureRepo) FindBySymbol(_ context.Context, symbol string) ([]entity.FeatureSnapshot, error) {
	if err := f.findErrs[symbol]; err != nil {
		return nil, err
	}
	return f.snapshots[symbol], nil
}

type fakeWeightRepo struct {
	vectors []entity.WeightVector
}

func (f *fakeWeightRepo) Append(_ context.Context, vector *entity.WeightVector) error {
	f.vectors = append(f.vectors, *vector)
	return nil
}

func (f *fakeWeightRepo) Latest(_ context.Context) (*entity.WeightVector, error) {
	if len(f.vectors) == 0 {
		return nil, nil
	}
	last := f.vectors[len(f.vectors)-1]
	return &last, nil
}

type fakePickRepo struct {
	picks map[string][]entity.WeeklyPick
}

func newFakePickRepo() *fakePickRepo {
	return &fakePickRepo{picks: make(map[string][]entity.WeeklyPick)}
}

func (f *fakePickRepo) Save(_ context.Context, picks []entity.WeeklyPick) error {
	if len(picks) == 0 {
		return nil
	}
	f.picks[picks[0].WeekID] = picks
	return nil
}

func (f *fakePickRepo) FindByWeek(_ context.Context, weekID string) ([]entity.WeeklyPick, error) {
	return f.picks[weekID], nil
}

func (f *fakePickRepo) LatestWeekID(_ context.Context) (string, error) {
	var latest string
	for weekID := range f.picks {
		if weekID > latest {
			latest = weekID
		}
	}
	return latest, nil
}

type fakeBacktestRepo struct {
	trades    []entity.BacktestTrade
	summaries []entity.BacktestSummary
}

func (f *fakeBacktestRepo) Save(_ context.Context, trades []entity.BacktestTrade, summary *entity.BacktestSummary) error {
	f.trades = append(f.trades, trades...)
	f.summaries = append(f.summaries, *summary)
	return nil
}

type fakeStocksRepo struct {
	stocks []entity.Stock
	err    error
}

func (f *fakeStocksRepo) GetStocks(_ context.Context) ([]entity.Stock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stocks, nil
}

type fakeLockRepo struct {
	acquired map[string]bool
	deny     bool
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{acquired: make(map[string]bool)}
}

func (f *fakeLockRepo) Acquire(_ context.Context, key string, d time.Time) (bool, error) {
	if f.deny {
		return false, nil
	}
	lockKey := key + ":" + d.Format("2006-01-02")
	if f.acquired[lockKey] {
		return false, nil
	}
	f.acquired[lockKey] = true
	return true, nil
}

type fakeBarProvider struct {
	bars map[string][]entity.PriceBar
	errs map[string]error
}

func newFakeBarProvider() *fakeBarProvider {
	return &fakeBarProvider{
		bars: make(map[string][]entity.PriceBar),
		errs: make(map[string]error),
	}
}

func (f *fakeBarProvider) GetDailyBars(_ context.Context, symbol string, _ time.Time) ([]entity.PriceBar, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) SendMessage(text string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}
