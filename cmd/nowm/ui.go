package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"nowmarket/internal/market"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

type marketPayload struct {
	Stocks []market.InstrumentView `json:"stocks"`
}

type indicesPayload struct {
	Indices []market.Index `json:"indices"`
}

type newsPayload struct {
	News []market.NewsItem `json:"news"`
}

type watchPayload struct {
	Symbol  string `json:"symbol"`
	Watched bool   `json:"watched"`
}

type snapshotPayload struct {
	Saved bool `json:"saved"`
	Bytes int  `json:"bytes"`
}

func renderMarket(raw map[string]any) error {
	payload, err := decodeInto[marketPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== NOW MARKET ==")
	if len(payload.Stocks) == 0 {
		neutral.Println("No companies listed.")
		return nil
	}
	fmt.Printf("%-8s %-24s %-11s %12s %9s %-5s %s\n", "SYMBOL", "NAME", "SECTOR", "PRICE", "CHANGE", "TREND", "")
	for _, s := range payload.Stocks {
		flags := ""
		if s.Watched {
			flags += "*"
		}
		if s.CompanyOwned {
			flags += "O"
		}
		fmt.Printf("%-8s %-24s %-11s %12s %9s %-5s %s\n",
			s.Symbol,
			truncate(s.Name, 24),
			s.Sector,
			formatMicros(s.PriceMicros),
			colorizePercent(s.PercentChange),
			trendGlyph(s.Trending),
			flags,
		)
	}
	fmt.Println()
	return nil
}

func renderStockDetail(raw map[string]any) error {
	detail, err := decodeInto[market.InstrumentDetail](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s (%s) ==\n", detail.Symbol, detail.Name)
	if detail.Description != "" {
		neutral.Println(detail.Description)
	}
	fmt.Printf("Sector:   %s\n", detail.Sector)
	fmt.Printf("Price:    %s now (%s)\n", formatMicros(detail.PriceMicros), colorizePercent(detail.PercentChange))
	fmt.Printf("Trend:    %s (sampled %s)\n", detail.Trending, detail.SampleTrend)
	fmt.Printf("Cap:      %s now\n", formatMicros(detail.CapMicros))
	if detail.OwnedUnits > 0 {
		owned := fmt.Sprintf("Owned:    %.4f shares", market.UnitsToShares(detail.OwnedUnits))
		if detail.CompanyOwned {
			owned += " (majority owner)"
		}
		fmt.Println(owned)
	}

	if len(detail.PriceHistory) > 0 {
		fmt.Println()
		accent.Println("Recent Closes")
		limit := len(detail.PriceHistory)
		if limit > 10 {
			limit = 10
		}
		// History is oldest first; show the newest tail.
		for _, p := range detail.PriceHistory[len(detail.PriceHistory)-limit:] {
			fmt.Printf("  %12s\n", formatMicros(p))
		}
	}
	fmt.Println()
	return nil
}

func renderIndices(raw map[string]any) error {
	payload, err := decodeInto[indicesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== INDICES ==")
	fmt.Printf("%-10s %-22s %12s %9s %-5s\n", "ID", "NAME", "VALUE", "CHANGE", "TREND")
	for _, idx := range payload.Indices {
		fmt.Printf("%-10s %-22s %12.2f %9s %-5s\n",
			idx.ID,
			truncate(idx.Name, 22),
			idx.Value,
			colorizePercent(idx.PercentChange),
			trendGlyph(idx.Trending),
		)
	}
	fmt.Println()
	return nil
}

func renderOrderResult(raw map[string]any, side string) error {
	out, err := decodeInto[market.OrderResult](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== ORDER %s ==\n", strings.ToUpper(side))
	fmt.Printf("Symbol:  %s\n", out.Symbol)
	fmt.Printf("Shares:  %.4f\n", market.UnitsToShares(out.Units))
	fmt.Printf("Price:   %s now\n", formatMicros(out.PriceMicros))
	fmt.Printf("Total:   %s now\n", formatMicros(out.TotalMicros))
	fmt.Printf("Balance: %s now\n", formatMicros(out.BalanceMicros))
	fmt.Println()
	return nil
}

func renderPortfolio(raw map[string]any) error {
	out, err := decodeInto[market.PortfolioView](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== PORTFOLIO ==")
	fmt.Printf("Cash:      %s now\n", formatMicros(out.BalanceMicros))
	fmt.Printf("Net Worth: %s now\n", formatMicros(out.NetWorthMicros))

	if len(out.Holdings) > 0 {
		fmt.Println()
		accent.Println("Holdings")
		fmt.Printf("%-8s %12s %12s %12s %12s\n", "SYMBOL", "SHARES", "AVG COST", "VALUE", "P/L")
		for _, h := range out.Holdings {
			fmt.Printf("%-8s %12.4f %12s %12s %12s\n",
				h.Symbol,
				market.UnitsToShares(h.Units),
				formatMicros(h.AvgCostMicros),
				formatMicros(h.MarketValueMicros),
				colorizeMicros(h.UnrealizedMicros),
			)
		}
	}

	if len(out.Transactions) > 0 {
		fmt.Println()
		accent.Println("Recent Transactions")
		limit := len(out.Transactions)
		if limit > 10 {
			limit = 10
		}
		for _, tx := range out.Transactions[:limit] {
			fmt.Printf("  %-4s %-8s %10.4f @ %s\n",
				strings.ToUpper(tx.Side), tx.Symbol, market.UnitsToShares(tx.Units), formatMicros(tx.PriceMicros))
		}
	}
	fmt.Println()
	return nil
}

func renderNews(raw map[string]any) error {
	payload, err := decodeInto[newsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== MARKET NEWS ==")
	if len(payload.News) == 0 {
		neutral.Println("Quiet out there.")
		return nil
	}
	for _, item := range payload.News {
		tag := string(item.Kind)
		if item.Symbol != "" {
			tag = item.Symbol
		}
		line := fmt.Sprintf("[%-8s] %s", tag, item.Headline)
		switch {
		case item.Impact > 0:
			success.Println(line)
		case item.Impact < 0:
			danger.Println(line)
		default:
			neutral.Println(line)
		}
	}
	fmt.Println()
	return nil
}

func renderClock(raw map[string]any) error {
	out, err := decodeInto[market.ClockView](raw)
	if err != nil {
		return err
	}
	state := "CLOSED"
	if out.Clock.Open {
		state = "OPEN"
	}
	accent.Println("\n== MARKET CLOCK ==")
	fmt.Printf("Day %d, %02d:%02d — %s\n", out.Clock.Day, out.Clock.Hour, out.Clock.Minute, state)
	fmt.Printf("Mood: %.2f (%s)\n", out.MoodValue, out.MoodLabel)
	fmt.Println()
	return nil
}

func renderWatchToggle(raw map[string]any) error {
	out, err := decodeInto[watchPayload](raw)
	if err != nil {
		return err
	}
	if out.Watched {
		success.Printf("%s added to watchlist.\n", out.Symbol)
	} else {
		neutral.Printf("%s removed from watchlist.\n", out.Symbol)
	}
	return nil
}

func renderSnapshot(raw map[string]any) error {
	out, err := decodeInto[snapshotPayload](raw)
	if err != nil {
		return err
	}
	success.Printf("Snapshot saved (%d bytes).\n", out.Bytes)
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func trendGlyph(t market.Trend) string {
	switch t {
	case market.TrendUp:
		return success.Sprint("UP")
	case market.TrendDown:
		return danger.Sprint("DOWN")
	default:
		return neutral.Sprint("--")
	}
}

func colorizeMicros(v int64) string {
	text := formatMicros(v)
	if v > 0 {
		text = "+" + text
	}
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMicros(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / market.MicrosPerNow
	frac := (v % market.MicrosPerNow) / 10_000
	return fmt.Sprintf("%s%s.%02d", sign, comma(whole), frac)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
