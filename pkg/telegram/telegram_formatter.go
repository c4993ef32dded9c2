package telegram

import (
	"fmt"
	"strings"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// FormatWeeklyPicks formats the weekly shortlist into a Markdown message for Telegram.
func FormatWeeklyPicks(picks []entity.WeeklyPick) string {
	if len(picks) == 0 {
		return "No weekly candidates qualified this week."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 *Weekly Picks — %s* 📅\n\n", picks[0].WeekID))

	for i, p := range picks {
		b.WriteString(fmt.Sprintf("*%d. %s*\n", i+1, p.Symbol))
		b.WriteString(fmt.Sprintf("🎯 *Score:* %.1f\n", p.SignalScore))
		b.WriteString(fmt.Sprintf("🏆 *Win Rate:* %.1f%% (%d signals)\n", p.WinRatePct, p.SignalsSeen))
		b.WriteString(fmt.Sprintf("💰 *Avg Return:* %.2f%%\n", p.AvgReturnPct))
		b.WriteString(fmt.Sprintf("📊 *ATR:* %.2f%% | *Trend:* %s\n\n", p.ATRPct, p.Trend))
	}

	return b.String()
}

// FormatBacktestSummary formats an evaluated shortlist into a Markdown message for Telegram.
func FormatBacktestSummary(summary entity.BacktestSummary, trades []entity.BacktestTrade) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 *Weekly Backtest — %s* 📊\n\n", summary.WeekID))
	b.WriteString(fmt.Sprintf("📦 *Stocks:* %d\n", summary.Total))
	b.WriteString(fmt.Sprintf("🏆 *Win Rate:* %.1f%%\n", summary.WinRatePct))
	b.WriteString(fmt.Sprintf("💰 *Avg Return:* %.2f%%\n", summary.AvgReturnPct))
	b.WriteString(fmt.Sprintf("🟢 *Best:* %.2f%% | 🔴 *Worst:* %.2f%%\n\n", summary.BestPct, summary.WorstPct))

	for _, t := range trades {
		icon := "🔴"
		if t.Win {
			icon = "🟢"
		}
		b.WriteString(fmt.Sprintf("%s %s: %.2f → %.2f (%.2f%%)\n", icon, t.Symbol, t.EntryPrice, t.ExitPrice, t.ReturnPct))
	}

	return b.String()
}
