package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradedesk/internal/account"
	"tradedesk/internal/catalog"
	"tradedesk/internal/config"
	"tradedesk/internal/ledger"
	"tradedesk/internal/logging"
	"tradedesk/internal/otp"
	"tradedesk/internal/pricing"
	"tradedesk/internal/router"
	"tradedesk/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Accounts  *account.Store
	DB        *store.SQLiteStore
	Prices    pricing.Source
}

// LedgerConfig builds the ledger configuration from app config.
func (a *App) LedgerConfig() ledger.Config {
	return ledger.Config{
		OpeningBalance: decimal.NewFromFloat(a.Config.Trading.OpeningBalance),
		WithdrawFees: ledger.FeeSchedule{
			Threshold: decimal.NewFromFloat(a.Config.Fees.WithdrawThreshold),
			FlatFee:   decimal.NewFromFloat(a.Config.Fees.WithdrawFlat),
		},
	}
}

// RouterFor builds an order router bound to one account's ledger.
func (a *App) RouterFor(acct *account.Account) *router.Router {
	return router.New(router.Config{
		Ledger:         acct.Ledger,
		Prices:         a.Prices,
		Logger:         logging.WithAccount(a.Logger, acct.Email),
		RecordRejected: a.Config.Orders.RecordRejected,
	})
}

// Close releases the snapshot store so the WAL is checkpointed. Safe to
// call more than once.
func (a *App) Close() {
	if a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close store")
	}
	a.DB = nil
}

// Persist writes the account to the snapshot store, best effort.
func (a *App) Persist(acct *account.Account) {
	if a.DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.DB.SaveAccount(ctx, acct); err != nil {
		a.Logger.Warn().Err(err).Str("account", acct.Email).Msg("Failed to persist account")
	}
}

// NewRootCmd creates the root command for the CLI. The returned cleanup
// closes the snapshot store and must run after Execute, including when
// the command fails.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) (*cobra.Command, func()) {
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
		Prices: pricing.NewSimSource(pricing.SimConfig{
			Prices: catalog.BasePrices(),
			NAVs:   catalog.BaseNAVs(),
			Jitter: cfg.Pricing.JitterPercent / 100,
			Seed:   cfg.Pricing.Seed,
		}),
	}

	app.Accounts = account.NewStore(account.StoreConfig{
		Gate:      otp.NewGate(otp.GateConfig{TTL: time.Duration(cfg.OTP.TTLSeconds) * time.Second}),
		LedgerCfg: app.LedgerConfig(),
		Logger:    logger,
	})
	app.loadPendingRegistration()

	db, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, accounts will not persist")
	} else {
		app.DB = db
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		accounts, err := db.LoadAll(ctx, app.LedgerConfig())
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to load stored accounts")
		} else {
			for _, acct := range accounts {
				app.Accounts.Put(acct)
			}
			logger.Debug().Int("count", len(accounts)).Msg("Accounts loaded")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "tradedesk",
		Short: "TradeDesk - paper brokerage CLI for the Indian market",
		Long: `TradeDesk is a paper-trading brokerage CLI for the Indian stock market.

It simulates a retail brokerage: account opening with OTP verification,
a cash ledger, equity and mutual-fund orders against simulated NSE/BSE
quotes, and the standard market session clock (IST).

Use 'tradedesk help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradedesk)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	addMarketCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addMoneyCommands(rootCmd, app)
	addTradingCommands(rootCmd, app)
	addPortfolioCommands(rootCmd, app)

	return rootCmd, app.Close
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
				return
			}
			output.Printf("tradedesk %s\n", Version)
		},
	}
}
