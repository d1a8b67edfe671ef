package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradedesk/internal/catalog"
	"tradedesk/internal/market"
	"tradedesk/internal/models"
	"tradedesk/internal/router"
)

// addTradingCommands adds order placement commands.
func addTradingCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newInvestCmd(app))
	rootCmd.AddCommand(newRedeemCmd(app))
	rootCmd.AddCommand(newOrdersCmd(app))
}

func parseQuantity(arg string) (int64, error) {
	qty, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", arg)
	}
	return qty, nil
}

func (a *App) resolveExchange(cmd *cobra.Command) models.Exchange {
	exchange, _ := cmd.Flags().GetString("exchange")
	if exchange == "" {
		exchange = a.Config.Trading.DefaultExchange
	}
	return models.Exchange(strings.ToUpper(exchange))
}

func warnIfClosed(output *Output) {
	session := market.Now()
	if session.Status != models.MarketOpen {
		output.Warning("%s - order executed against simulated quotes", session.Reason)
	}
}

func newBuyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <symbol> <quantity>",
		Short: "Place an equity buy order",
		Example: `  tradedesk buy RELIANCE 10
  tradedesk buy TCS 5 --price 3800
  tradedesk buy SENSEX-TOP 5 --exchange BSE`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEquityOrder(cmd, app, models.OrderSideBuy, args)
		},
	}
	cmd.Flags().Float64("price", 0, "limit price (0 = market)")
	cmd.Flags().String("exchange", "", "exchange: NSE or BSE")
	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell <symbol> <quantity>",
		Short: "Place an equity sell order",
		Example: `  tradedesk sell RELIANCE 5
  tradedesk sell INFY 10 --price 1550`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEquityOrder(cmd, app, models.OrderSideSell, args)
		},
	}
	cmd.Flags().Float64("price", 0, "limit price (0 = market)")
	cmd.Flags().String("exchange", "", "exchange: NSE or BSE")
	return cmd
}

func runEquityOrder(cmd *cobra.Command, app *App, side models.OrderSide, args []string) error {
	output := NewOutput(cmd)

	acct, err := app.currentAccount()
	if err != nil {
		output.Error("%v", err)
		return err
	}

	symbol := strings.ToUpper(args[0])
	qty, err := parseQuantity(args[1])
	if err != nil {
		output.Error("%v", err)
		return err
	}
	price, _ := cmd.Flags().GetFloat64("price")
	exchange := app.resolveExchange(cmd)

	name := symbol
	if equity, ok := catalog.Lookup(symbol, exchange); ok {
		name = equity.Name
	}

	order, txn, err := app.RouterFor(acct).PlaceEquityOrder(router.EquityOrder{
		Symbol:     symbol,
		Exchange:   exchange,
		Name:       name,
		Side:       side,
		Quantity:   qty,
		LimitPrice: decimal.NewFromFloat(price),
	})
	if err != nil {
		output.Error("Order rejected: %v", err)
		return err
	}
	app.Persist(acct)

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"order":       order,
			"transaction": txn,
		})
	}
	warnIfClosed(output)
	output.Success("%s %s x%s @ %s", side, symbol, formatQuantity(order.Quantity), formatINR(order.Price))
	output.Printf("Order %s  Total %s\n", order.ID, formatINR(order.Amount))
	output.Printf("Available balance: %s\n", formatINR(txn.Balance))
	return nil
}

func newInvestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "invest <fund-id> <amount>",
		Short:   "Invest an amount in a mutual fund",
		Example: `  tradedesk invest SBI-BLUECHIP 10000`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			fundID := strings.ToUpper(args[0])
			amount, err := parseAmount(args[1])
			if err != nil {
				output.Error("%v", err)
				return err
			}

			name := fundID
			if fund, ok := catalog.LookupFund(fundID); ok {
				name = fund.Name
			}

			order, txn, err := app.RouterFor(acct).PlaceFundOrder(router.FundOrder{
				FundID: fundID,
				Name:   name,
				Side:   models.OrderSideInvest,
				Amount: amount,
			})
			if err != nil {
				output.Error("Order rejected: %v", err)
				return err
			}
			app.Persist(acct)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"order":       order,
					"transaction": txn,
				})
			}
			output.Success("Invested %s in %s", formatINR(order.Amount), name)
			output.Printf("Units allotted: %s @ NAV %s\n", formatUnits(order.Units), formatINR(order.Price))
			output.Printf("Available balance: %s\n", formatINR(txn.Balance))
			return nil
		},
	}
}

func newRedeemCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "redeem <fund-id> <units>",
		Short:   "Redeem units from a mutual fund holding",
		Example: `  tradedesk redeem SBI-BLUECHIP 50.5`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			fundID := strings.ToUpper(args[0])
			units, err := decimal.NewFromString(args[1])
			if err != nil {
				output.Error("invalid units %q", args[1])
				return fmt.Errorf("invalid units %q", args[1])
			}

			name := fundID
			if fund, ok := catalog.LookupFund(fundID); ok {
				name = fund.Name
			}

			order, txn, err := app.RouterFor(acct).PlaceFundOrder(router.FundOrder{
				FundID: fundID,
				Name:   name,
				Side:   models.OrderSideRedeem,
				Units:  units,
			})
			if err != nil {
				output.Error("Order rejected: %v", err)
				return err
			}
			app.Persist(acct)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"order":       order,
					"transaction": txn,
				})
			}
			output.Success("Redeemed %s units of %s", formatUnits(order.Units), name)
			output.Printf("Proceeds: %s @ NAV %s\n", formatINR(order.Amount), formatINR(order.Price))
			output.Printf("Available balance: %s\n", formatINR(txn.Balance))
			return nil
		},
	}
}

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show the order history, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			orders := acct.Ledger.Orders()
			limit, _ := cmd.Flags().GetInt("limit")
			if limit > 0 && limit < len(orders) {
				orders = orders[:limit]
			}

			if output.IsJSON() {
				return output.JSON(orders)
			}
			if len(orders) == 0 {
				output.Info("No orders")
				return nil
			}
			for _, o := range orders {
				qty := formatQuantity(o.Quantity)
				if o.Kind == models.KindFund {
					qty = formatUnits(o.Units) + " units"
				}
				output.Printf("%s  %-6s  %-14s  %10s @ %-12s  %12s  %s\n",
					o.Time.Format("02-Jan-2006 15:04:05"),
					o.Side, o.Symbol, qty, formatINR(o.Price),
					formatINR(o.Amount), o.Status)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "show at most this many entries")
	return cmd
}
