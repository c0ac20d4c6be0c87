package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "nowmarket/internal/cli"
	"nowmarket/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "nowm",
		Short:        "NOW Market terminal client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newMarketCmd(&apiBase),
		newStockCmd(&apiBase),
		newIndicesCmd(&apiBase),
		newBuyCmd(&apiBase),
		newSellCmd(&apiBase),
		newPortfolioCmd(&apiBase),
		newNewsCmd(&apiBase),
		newClockCmd(&apiBase),
		newWatchCmd(&apiBase),
		newSnapshotCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newMarketCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "List every listed company",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).Market(ctx)
			if err != nil {
				return err
			}
			return renderMarket(raw)
		},
	}
}

func newStockCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <symbol>",
		Short: "Show one company with its price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).StockDetail(ctx, strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			return renderStockDetail(raw)
		},
	}
}

func newIndicesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Show sector indices and the NOW Average",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).Indices(ctx)
			if err != nil {
				return err
			}
			return renderIndices(raw)
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <symbol> <shares>",
		Short: "Buy shares at the current price",
		Args:  cobra.ExactArgs(2),
		RunE:  orderRunE(apiBase, "buy"),
	}
}

func newSellCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <symbol> <shares>",
		Short: "Sell shares at the current price",
		Args:  cobra.ExactArgs(2),
		RunE:  orderRunE(apiBase, "sell"),
	}
}

func orderRunE(apiBase *string, side string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(args[0])
		shares, err := strconv.ParseFloat(args[1], 64)
		if err != nil || shares <= 0 {
			return fmt.Errorf("shares must be a positive number, got %q", args[1])
		}
		ctx, cancel := callCtx(cmd)
		defer cancel()
		raw, err := newClient(apiBase).PlaceOrder(ctx, symbol, side, shares)
		if err != nil {
			return err
		}
		return renderOrderResult(raw, side)
	}
}

func newPortfolioCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show cash, holdings and recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).Portfolio(ctx)
			if err != nil {
				return err
			}
			return renderPortfolio(raw)
		},
	}
}

func newNewsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Show the market news feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).News(ctx)
			if err != nil {
				return err
			}
			return renderNews(raw)
		},
	}
}

func newClockCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Show the market clock and mood",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).Clock(ctx)
			if err != nil {
				return err
			}
			return renderClock(raw)
		},
	}
}

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <symbol>",
		Short: "Toggle a symbol on the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(args[0])
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).ToggleWatch(ctx, symbol)
			if err != nil {
				return err
			}
			return renderWatchToggle(raw)
		},
	}
}

func newSnapshotCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Force a server-side snapshot save",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			raw, err := newClient(apiBase).SaveSnapshot(ctx)
			if err != nil {
				return err
			}
			return renderSnapshot(raw)
		},
	}
}
