package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradedesk/internal/models"
)

// addMoneyCommands adds cash ledger commands.
func addMoneyCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBalanceCmd(app))
	rootCmd.AddCommand(newDepositCmd(app))
	rootCmd.AddCommand(newWithdrawCmd(app))
	rootCmd.AddCommand(newTransactionsCmd(app))
}

func parseAmount(arg string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(arg)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", arg)
	}
	return amount, nil
}

func newBalanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the available cash balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			balance := acct.Ledger.Balance()
			if output.IsJSON() {
				return output.JSON(map[string]string{"balance": balance.String()})
			}
			output.Printf("Available balance: %s\n", formatINR(balance))
			return nil
		},
	}
}

func newDepositCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deposit <amount>",
		Short:   "Add funds to the account",
		Example: `  tradedesk deposit 25000 --method UPI`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			amount, err := parseAmount(args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			method, _ := cmd.Flags().GetString("method")

			txn, err := app.RouterFor(acct).Deposit(amount, method)
			if err != nil {
				output.Error("Deposit failed: %v", err)
				return err
			}
			app.Persist(acct)

			if output.IsJSON() {
				return output.JSON(txn)
			}
			output.Success("Deposited %s via %s", formatINR(txn.Amount), method)
			output.Printf("Available balance: %s\n", formatINR(txn.Balance))
			return nil
		},
	}
	cmd.Flags().String("method", "UPI", "payment method label")
	return cmd
}

func newWithdrawCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "withdraw <amount>",
		Short:   "Withdraw funds to a linked bank account",
		Example: `  tradedesk withdraw 10000 --bank 0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			amount, err := parseAmount(args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if len(acct.Banks) == 0 {
				output.Error("No bank account linked, run 'tradedesk bank add' first")
				return fmt.Errorf("no bank account linked")
			}
			bankIdx, _ := cmd.Flags().GetInt("bank")
			if bankIdx < 0 || bankIdx >= len(acct.Banks) {
				output.Error("Invalid bank index %d (have %d linked)", bankIdx, len(acct.Banks))
				return fmt.Errorf("invalid bank index")
			}
			dest := acct.Banks[bankIdx]

			fee := acct.Ledger.WithdrawFee(amount)
			txn, err := app.RouterFor(acct).Withdraw(amount, dest)
			if err != nil {
				output.Error("Withdrawal failed: %v", err)
				return err
			}
			app.Persist(acct)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"transaction": txn,
					"fee":         fee.String(),
				})
			}
			output.Success("Withdrew %s to %s (%s)", formatINR(amount), dest.BankName, maskAccountNumber(dest.AccountNumber))
			if fee.IsPositive() {
				output.Warning("Fee charged: %s (free above %s)", formatINR(fee), strconv.FormatFloat(app.Config.Fees.WithdrawThreshold, 'f', -1, 64))
			}
			output.Printf("Available balance: %s\n", formatINR(txn.Balance))
			return nil
		},
	}
	cmd.Flags().Int("bank", 0, "index of the linked bank account")
	return cmd
}

func newTransactionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show the transaction log, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			txns := acct.Ledger.Transactions()
			limit, _ := cmd.Flags().GetInt("limit")
			if limit > 0 && limit < len(txns) {
				txns = txns[:limit]
			}

			if output.IsJSON() {
				return output.JSON(txns)
			}
			if len(txns) == 0 {
				output.Info("No transactions")
				return nil
			}
			for _, txn := range txns {
				amount := output.Green("+" + formatINR(txn.Amount))
				if txn.Direction == models.TxnDebit {
					amount = output.Red("-" + formatINR(txn.Amount))
				}
				output.Printf("%s  %-6s  %12s  %s  (balance %s)\n",
					txn.Time.Format("02-Jan-2006 15:04:05"),
					txn.Direction, amount, txn.Description, formatINR(txn.Balance))
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "show at most this many entries")
	return cmd
}
