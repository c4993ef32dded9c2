package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abhishekk536-cpu/market-ai/internal/engine/config"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/dto"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/repository"
	"github.com/abhishekk536-cpu/market-ai/internal/engine/service"
	"github.com/abhishekk536-cpu/market-ai/pkg/logger"
	"github.com/abhishekk536-cpu/market-ai/pkg/postgres"
	"github.com/abhishekk536-cpu/market-ai/pkg/redis"
	"github.com/abhishekk536-cpu/market-ai/pkg/telegram"
	"github.com/abhishekk536-cpu/market-ai/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	dateFlag   string
	forceFlag  bool
	weeklyFlag bool
	weekIDFlag string
	notifyFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the daily screening pipeline once",
	Run:   runDaily,
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Produces the weekly shortlist from the latest signals",
	Run:   runWeekly,
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Evaluates a past weekly shortlist against subsequent prices",
	Run:   runBacktest,
}

// app bundles the wired services behind the subcommands.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	pipeline   service.Pipeline
	backtester service.Backtester
	notifier   telegram.Notifier
	close      func()
}

func buildApp() *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Signal Engine", zap.String("name", cfg.App.Name))

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	// Initialize repositories
	priceBarRepo := repository.NewPriceBarRepository(db.DB)
	provider := repository.NewStoredBarProvider(priceBarRepo)
	featureRepo := repository.NewFeatureRepository(db.DB)
	stopStateRepo := repository.NewStopStateRepository(db.DB)
	stopLossRepo := repository.NewStopLossRepository(db.DB)
	signalRepo := repository.NewSignalRepository(db.DB)
	weightRepo := repository.NewWeightRepository(db.DB)
	pickRepo := repository.NewPickRepository(db.DB)
	backtestRepo := repository.NewBacktestRepository(db.DB)
	stocksRepo := repository.NewStocksRepository(db.DB)
	lockRepo := repository.NewRedisRunLockRepository(redisClient)

	// Initialize services
	stopLearner := service.NewStopLearner(cfg, appLogger, stopStateRepo, stopLossRepo)
	scorer := service.NewSignalScorer(cfg, appLogger, signalRepo)
	tuner := service.NewWeightTuner(cfg, appLogger, signalRepo, weightRepo)
	selector := service.NewCandidateSelector(cfg, appLogger, signalRepo, featureRepo, pickRepo)
	backtester := service.NewBacktester(cfg, appLogger, pickRepo, featureRepo, backtestRepo)
	pipeline := service.NewPipeline(cfg, appLogger, stocksRepo, provider, featureRepo, stopLearner, scorer, tuner, selector, lockRepo, notifier)

	return &app{
		cfg:        cfg,
		log:        appLogger,
		pipeline:   pipeline,
		backtester: backtester,
		notifier:   notifier,
		close: func() {
			if sqlDB, err := db.DB.DB(); err == nil {
				_ = sqlDB.Close()
			}
			_ = redisClient.Close()
			_ = appLogger.Sync()
		},
	}
}

func resolveDate(a *app) time.Time {
	if dateFlag == "" {
		return utils.TimeNowIST()
	}
	day, err := time.Parse("2006-01-02", dateFlag)
	if err != nil {
		a.log.Fatal("Invalid --date value, expected YYYY-MM-DD", zap.Error(err))
	}
	return day
}

func runDaily(cmd *cobra.Command, args []string) {
	a := buildApp()
	defer a.close()

	summary, err := a.pipeline.RunDaily(context.Background(), dto.RunOptions{
		Date:   resolveDate(a),
		Force:  forceFlag,
		Weekly: weeklyFlag,
	})
	if err != nil {
		a.log.Fatal("Daily pipeline failed", zap.Error(err))
	}
	if summary.AlreadyRan {
		return
	}

	a.log.Info("Daily pipeline finished",
		logger.StringField("date", utils.DayKey(summary.RunDate)),
		logger.IntField("processed", summary.Processed()),
		logger.IntField("failed", summary.Failed()),
		logger.IntField("signals", summary.Signals()))
}

func runWeekly(cmd *cobra.Command, args []string) {
	a := buildApp()
	defer a.close()

	picks, err := a.pipeline.RunWeekly(context.Background(), resolveDate(a), forceFlag)
	if err != nil {
		a.log.Fatal("Weekly selection failed", zap.Error(err))
	}
	a.log.Info("Weekly selection finished", logger.IntField("picks", len(picks)))
}

func runBacktest(cmd *cobra.Command, args []string) {
	a := buildApp()
	defer a.close()

	report, err := a.backtester.Run(context.Background(), weekIDFlag)
	if err != nil {
		a.log.Fatal("Backtest failed", zap.Error(err))
	}

	if notifyFlag && a.notifier != nil {
		if err := a.notifier.SendMessage(telegram.FormatBacktestSummary(report.Summary, report.Trades)); err != nil {
			a.log.Error("Failed to send backtest notification", logger.ErrorField(err))
		}
	}

	a.log.Info("Backtest finished",
		logger.StringField("week", report.WeekID),
		logger.IntField("trades", len(report.Trades)),
		logger.Float64Field("win_rate_pct", report.Summary.WinRatePct))
}

func main() {
	rootCmd := &cobra.Command{Use: "engine"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-engine.yaml", "Path to the configuration file")

	runCmd.Flags().StringVar(&dateFlag, "date", "", "Run date (YYYY-MM-DD), defaults to today in IST")
	runCmd.Flags().BoolVar(&forceFlag, "force", false, "Bypass the run-once-per-day lock")
	runCmd.Flags().BoolVar(&weeklyFlag, "weekly", false, "Also run the weekly selection regardless of weekday")

	weeklyCmd.Flags().StringVar(&dateFlag, "date", "", "Selection date (YYYY-MM-DD), defaults to today in IST")
	weeklyCmd.Flags().BoolVar(&forceFlag, "force", false, "Bypass the run-once-per-day lock")

	backtestCmd.Flags().StringVar(&weekIDFlag, "week", "", "ISO week to evaluate (e.g. 2026-W35), defaults to the latest")
	backtestCmd.Flags().BoolVar(&notifyFlag, "notify", false, "Send the backtest summary to Telegram")

	rootCmd.AddCommand(runCmd, weeklyCmd, backtestCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing engine CLI: %s\n", err)
		os.Exit(1)
	}
}
