package config

import (
	"github.com/abhishekk536-cpu/market-ai/pkg/config"
)

// WeightBand bounds one tuned feature weight.
type WeightBand struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// WeightBands holds the safety bands applied after weight normalization.
type WeightBands struct {
	EMA   WeightBand `mapstructure:"ema"`
	RSI   WeightBand `mapstructure:"rsi"`
	ATR   WeightBand `mapstructure:"atr"`
	Trend WeightBand `mapstructure:"trend"`
}

// Engine holds the tunables of the signal intelligence engine.
type Engine struct {
	MaxConcurrentSymbols int `mapstructure:"max_concurrent_symbols"`
	MaxSymbolsPerMinute  int `mapstructure:"max_symbols_per_minute"`

	MinFeatureBars int `mapstructure:"min_feature_bars"`
	MinSignalBars  int `mapstructure:"min_signal_bars"`

	LearnLookbackYears   int       `mapstructure:"learn_lookback_years"`
	MinLearnBars         int       `mapstructure:"min_learn_bars"`
	LearnRefreshDays     int       `mapstructure:"learn_refresh_days"`
	DefaultATRMultiplier float64   `mapstructure:"default_atr_multiplier"`
	ATRMultipliers       []float64 `mapstructure:"atr_multipliers"`

	TuneWindowDays int         `mapstructure:"tune_window_days"`
	MinTuneRows    int         `mapstructure:"min_tune_rows"`
	WeightBands    WeightBands `mapstructure:"weight_bands"`

	TopPicks       int     `mapstructure:"top_picks"`
	MinSignalScore float64 `mapstructure:"min_signal_score"`
	MinWinRate     float64 `mapstructure:"min_win_rate"`
	MinATRPct      float64 `mapstructure:"min_atr_pct"`
	MaxATRPct      float64 `mapstructure:"max_atr_pct"`

	MinBacktestBars int `mapstructure:"min_backtest_bars"`
}

// Config holds the full configuration for the engine service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Engine   Engine          `mapstructure:"engine"`
}

// DefaultEngine returns the engine tunables used when the config file leaves
// them unset. The values mirror the production screening parameters.
func DefaultEngine() Engine {
	return Engine{
		MaxConcurrentSymbols: 8,
		MaxSymbolsPerMinute:  120,
		MinFeatureBars:       200,
		MinSignalBars:        220,
		LearnLookbackYears:   3,
		MinLearnBars:         20,
		LearnRefreshDays:     7,
		DefaultATRMultiplier: 1.5,
		ATRMultipliers:       []float64{1.0, 1.2, 1.5, 1.8, 2.0},
		TuneWindowDays:       90,
		MinTuneRows:          200,
		WeightBands: WeightBands{
			EMA:   WeightBand{Min: 0.25, Max: 0.45},
			RSI:   WeightBand{Min: 0.15, Max: 0.30},
			ATR:   WeightBand{Min: 0.10, Max: 0.25},
			Trend: WeightBand{Min: 0.10, Max: 0.25},
		},
		TopPicks:        15,
		MinSignalScore:  70,
		MinWinRate:      0.55,
		MinATRPct:       0.01,
		MaxATRPct:       0.06,
		MinBacktestBars: 10,
	}
}

// Load loads the engine configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	applyEngineDefaults(&cfg.Engine)
	return &cfg, nil
}

func applyEngineDefaults(e *Engine) {
	def := DefaultEngine()
	if e.MaxConcurrentSymbols == 0 {
		e.MaxConcurrentSymbols = def.MaxConcurrentSymbols
	}
	if e.MaxSymbolsPerMinute == 0 {
		e.MaxSymbolsPerMinute = def.MaxSymbolsPerMinute
	}
	if e.MinFeatureBars == 0 {
		e.MinFeatureBars = def.MinFeatureBars
	}
	if e.MinSignalBars == 0 {
		e.MinSignalBars = def.MinSignalBars
	}
	if e.LearnLookbackYears == 0 {
		e.LearnLookbackYears = def.LearnLookbackYears
	}
	if e.MinLearnBars == 0 {
		e.MinLearnBars = def.MinLearnBars
	}
	if e.LearnRefreshDays == 0 {
		e.LearnRefreshDays = def.LearnRefreshDays
	}
	if e.DefaultATRMultiplier == 0 {
		e.DefaultATRMultiplier = def.DefaultATRMultiplier
	}
	if len(e.ATRMultipliers) == 0 {
		e.ATRMultipliers = def.ATRMultipliers
	}
	if e.TuneWindowDays == 0 {
		e.TuneWindowDays = def.TuneWindowDays
	}
	if e.MinTuneRows == 0 {
		e.MinTuneRows = def.MinTuneRows
	}
	if e.WeightBands == (WeightBands{}) {
		e.WeightBands = def.WeightBands
	}
	if e.TopPicks == 0 {
		e.TopPicks = def.TopPicks
	}
	if e.MinSignalScore == 0 {
		e.MinSignalScore = def.MinSignalScore
	}
	if e.MinWinRate == 0 {
		e.MinWinRate = def.MinWinRate
	}
	if e.MinATRPct == 0 {
		e.MinATRPct = def.MinATRPct
	}
	if e.MaxATRPct == 0 {
		e.MaxATRPct = def.MaxATRPct
	}
	if e.MinBacktestBars == 0 {
		e.MinBacktestBars = def.MinBacktestBars
	}
}
