package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"tradedesk/internal/catalog"
)

// addPortfolioCommands adds portfolio and market data commands.
func addPortfolioCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newFundsCmd(app))
	rootCmd.AddCommand(newWatchlistCmd(app))
	rootCmd.AddCommand(newSearchCmd(app))
}

func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show positions, fund holdings and total valuation",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			rt := app.RouterFor(acct)
			rt.MarkToMarket()
			app.Persist(acct)

			positions := acct.Ledger.Positions()
			holdings := acct.Ledger.Holdings()
			valuation := acct.Ledger.Valuation()

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"positions": positions,
					"holdings":  holdings,
					"valuation": valuation,
				})
			}

			if len(positions) > 0 {
				output.Bold("Equity Positions")
				for _, pos := range positions {
					pnl := output.Green(formatPnL(pos.PnL))
					if pos.PnL.IsNegative() {
						pnl = output.Red(formatPnL(pos.PnL))
					}
					output.Printf("  %-14s %-4s  %8s @ %-12s  LTP %-12s  %s (%s)\n",
						pos.Symbol, pos.Exchange, formatQuantity(pos.Quantity),
						formatINR(pos.AvgCost), formatINR(pos.LastPrice),
						pnl, formatPercent(pos.PnLPercent))
				}
			}

			if len(holdings) > 0 {
				output.Bold("Mutual Fund Holdings")
				for _, h := range holdings {
					pnl := output.Green(formatPnL(h.PnL))
					if h.PnL.IsNegative() {
						pnl = output.Red(formatPnL(h.PnL))
					}
					output.Printf("  %-16s  %12s units  NAV %-10s  %12s  %s (%s)\n",
						h.FundID, formatUnits(h.Units), formatINR(h.LastNAV),
						formatINR(h.CurrentValue), pnl, formatPercent(h.PnLPercent))
				}
			}

			if len(positions) == 0 && len(holdings) == 0 {
				output.Info("No positions or holdings")
			}

			output.Bold("Valuation")
			output.Printf("  Cash:        %s\n", formatINR(valuation.Cash))
			output.Printf("  Equity:      %s\n", formatINR(valuation.EquityValue))
			output.Printf("  Funds:       %s\n", formatINR(valuation.FundValue))
			output.Printf("  Invested:    %s\n", formatINR(valuation.Investment))
			output.Printf("  P&L:         %s\n", formatPnL(valuation.PnL))
			return nil
		},
	}
}

func newFundsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "funds",
		Short: "List mutual funds available for investment",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			funds := catalog.Funds()
			if output.IsJSON() {
				return output.JSON(funds)
			}
			for _, fund := range funds {
				nav := fund.BaseNAV
				if current, ok := app.Prices.NAV(fund.ID); ok {
					nav = current
				}
				output.Printf("%-16s  %-28s  NAV %-10s  1Y %-8s  %s\n",
					fund.ID, fund.Name, formatINR(nav), formatPercent(fund.Returns1Y), fund.Category)
			}
			return nil
		},
	}
}

func newWatchlistCmd(app *App) *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show or edit the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				quotes := make(map[string]string, len(acct.Watchlist))
				for _, symbol := range acct.Watchlist {
					if price, ok := app.Prices.Price(symbol); ok {
						quotes[symbol] = price.String()
					}
				}
				return output.JSON(map[string]interface{}{
					"symbols": acct.Watchlist,
					"quotes":  quotes,
				})
			}
			if len(acct.Watchlist) == 0 {
				output.Info("Watchlist is empty")
				return nil
			}
			for _, symbol := range acct.Watchlist {
				if price, ok := app.Prices.Price(symbol); ok {
					output.Printf("%-14s  %s\n", symbol, formatINR(price))
				} else {
					output.Printf("%-14s  %s\n", symbol, output.Yellow("no quote"))
				}
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if err := app.Accounts.AddToWatchlist(acct.Email, args[0]); err != nil {
				output.Error("Failed to add symbol: %v", err)
				return err
			}
			app.Persist(acct)
			output.Success("Added %s to watchlist", strings.ToUpper(args[0]))
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if err := app.Accounts.RemoveFromWatchlist(acct.Email, args[0]); err != nil {
				output.Error("Failed to remove symbol: %v", err)
				return err
			}
			app.Persist(acct)
			output.Success("Removed %s from watchlist", strings.ToUpper(args[0]))
			return nil
		},
	}

	watchCmd.AddCommand(addCmd, removeCmd)
	return watchCmd
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   "Search listed equities by symbol or name",
		Example: `  tradedesk search reliance`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			results := catalog.Search(args[0])
			if output.IsJSON() {
				return output.JSON(results)
			}
			if len(results) == 0 {
				output.Info("No matches for %q", args[0])
				return nil
			}
			for _, equity := range results {
				price := equity.BasePrice
				if current, ok := app.Prices.Price(equity.Symbol); ok {
					price = current
				}
				output.Printf("%-14s %-4s  %-32s  %s\n",
					equity.Symbol, equity.Exchange, equity.Name, formatINR(price))
			}
			return nil
		},
	}
}
