// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"tradedesk/internal/account"
	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/ledger"
	"tradedesk/internal/models"
)

// SQLiteStore persists accounts and their ledger state in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes. Monetary values are
// stored as TEXT to keep decimal exactness across save/load.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		pan TEXT NOT NULL,
		password_hash BLOB NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		watchlist TEXT,
		balance TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS banks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_email TEXT NOT NULL,
		holder_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		ifsc TEXT NOT NULL,
		bank_name TEXT,
		verified INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (account_email) REFERENCES accounts(email)
	);

	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_email TEXT NOT NULL,
		symbol TEXT NOT NULL,
		exchange TEXT NOT NULL,
		name TEXT,
		quantity INTEGER NOT NULL,
		avg_cost TEXT NOT NULL,
		last_price TEXT NOT NULL DEFAULT '0',
		UNIQUE(account_email, exchange, symbol),
		FOREIGN KEY (account_email) REFERENCES accounts(email)
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_email TEXT NOT NULL,
		fund_id TEXT NOT NULL,
		name TEXT,
		units TEXT NOT NULL,
		invested TEXT NOT NULL,
		last_nav TEXT NOT NULL DEFAULT '0',
		UNIQUE(account_email, fund_id),
		FOREIGN KEY (account_email) REFERENCES accounts(email)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		account_email TEXT NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		kind TEXT NOT NULL,
		symbol TEXT NOT NULL,
		name TEXT,
		exchange TEXT,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		units TEXT NOT NULL,
		amount TEXT NOT NULL,
		price TEXT NOT NULL,
		status TEXT NOT NULL,
		FOREIGN KEY (account_email) REFERENCES accounts(email)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_email TEXT NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		direction TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		balance TEXT NOT NULL,
		FOREIGN KEY (account_email) REFERENCES accounts(email)
	);

	CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_email, seq);
	CREATE INDEX IF NOT EXISTS idx_txns_account ON transactions(account_email, seq);
	CREATE INDEX IF NOT EXISTS idx_positions_account ON positions(account_email);
	CREATE INDEX IF NOT EXISTS idx_holdings_account ON holdings(account_email);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAccount writes the full account state, replacing any previous rows.
func (s *SQLiteStore) SaveAccount(ctx context.Context, acct *account.Account) error {
	snap := acct.Ledger.Snapshot()

	watchlist, err := json.Marshal(acct.Watchlist)
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (email, name, phone, pan, password_hash, verified, watchlist, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, acct.Email, acct.Name, acct.Phone, acct.PAN, acct.Password, boolToInt(acct.Verified), string(watchlist), snap.Balance.String(), acct.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	for _, table := range []string{"banks", "positions", "holdings", "orders", "transactions"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE account_email = ?", table), acct.Email); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, b := range acct.Banks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO banks (account_email, holder_name, account_number, ifsc, bank_name, verified)
			VALUES (?, ?, ?, ?, ?, ?)
		`, acct.Email, b.HolderName, b.AccountNumber, b.IFSC, b.BankName, boolToInt(b.Verified))
		if err != nil {
			return fmt.Errorf("failed to save bank account: %w", err)
		}
	}

	for _, pos := range snap.Positions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO positions (account_email, symbol, exchange, name, quantity, avg_cost, last_price)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, acct.Email, pos.Symbol, string(pos.Exchange), pos.Name, pos.Quantity, pos.AvgCost.String(), pos.LastPrice.String())
		if err != nil {
			return fmt.Errorf("failed to save position: %w", err)
		}
	}

	for _, h := range snap.Holdings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO holdings (account_email, fund_id, name, units, invested, last_nav)
			VALUES (?, ?, ?, ?, ?, ?)
		`, acct.Email, h.FundID, h.Name, h.Units.String(), h.Invested.String(), h.LastNAV.String())
		if err != nil {
			return fmt.Errorf("failed to save holding: %w", err)
		}
	}

	for i, o := range snap.Orders {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, account_email, seq, timestamp, kind, symbol, name, exchange, side, quantity, units, amount, price, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, acct.Email, i, o.Time, string(o.Kind), o.Symbol, o.Name, string(o.Exchange), string(o.Side), o.Quantity, o.Units.String(), o.Amount.String(), o.Price.String(), string(o.Status))
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
	}

	for i, txn := range snap.Transactions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (id, account_email, seq, timestamp, direction, amount, description, balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, txn.ID, acct.Email, i, txn.Time, string(txn.Direction), txn.Amount.String(), txn.Description, txn.Balance.String())
		if err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account save: %w", err)
	}
	return nil
}

// LoadAccount reconstructs an account and its ledger from the database.
func (s *SQLiteStore) LoadAccount(ctx context.Context, email string, cfg ledger.Config) (*account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT email, name, phone, pan, password_hash, verified, watchlist, balance, created_at
		FROM accounts WHERE email = ?
	`, email)

	var (
		acct         account.Account
		verified     int
		watchlistRaw sql.NullString
		balanceRaw   string
	)
	err := row.Scan(&acct.Email, &acct.Name, &acct.Phone, &acct.PAN, &acct.Password, &verified, &watchlistRaw, &balanceRaw, &acct.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	acct.Verified = verified != 0

	if watchlistRaw.Valid && watchlistRaw.String != "" {
		if err := json.Unmarshal([]byte(watchlistRaw.String), &acct.Watchlist); err != nil {
			return nil, fmt.Errorf("failed to decode watchlist: %w", err)
		}
	}

	snap := ledger.Snapshot{}
	if snap.Balance, err = decimal.NewFromString(balanceRaw); err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}

	if acct.Banks, err = s.loadBanks(ctx, email); err != nil {
		return nil, err
	}
	if snap.Positions, err = s.loadPositions(ctx, email); err != nil {
		return nil, err
	}
	if snap.Holdings, err = s.loadHoldings(ctx, email); err != nil {
		return nil, err
	}
	if snap.Orders, err = s.loadOrders(ctx, email); err != nil {
		return nil, err
	}
	if snap.Transactions, err = s.loadTransactions(ctx, email); err != nil {
		return nil, err
	}

	acct.Ledger = ledger.Restore(snap, cfg)
	return &acct, nil
}

// LoadAll loads every stored account.
func (s *SQLiteStore) LoadAll(ctx context.Context, cfg ledger.Config) ([]*account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email FROM accounts ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	accounts := make([]*account.Account, 0, len(emails))
	for _, email := range emails {
		acct, err := s.LoadAccount(ctx, email, cfg)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func (s *SQLiteStore) loadBanks(ctx context.Context, email string) ([]models.BankAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT holder_name, account_number, ifsc, bank_name, verified
		FROM banks WHERE account_email = ? ORDER BY id
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load banks: %w", err)
	}
	defer rows.Close()

	var banks []models.BankAccount
	for rows.Next() {
		var b models.BankAccount
		var verified int
		if err := rows.Scan(&b.HolderName, &b.AccountNumber, &b.IFSC, &b.BankName, &verified); err != nil {
			return nil, fmt.Errorf("failed to scan bank: %w", err)
		}
		b.Verified = verified != 0
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (s *SQLiteStore) loadPositions(ctx context.Context, email string) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, exchange, name, quantity, avg_cost, last_price
		FROM positions WHERE account_email = ?
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var (
			pos          models.Position
			exchange     string
			avgCostRaw   string
			lastPriceRaw string
		)
		if err := rows.Scan(&pos.Symbol, &exchange, &pos.Name, &pos.Quantity, &avgCostRaw, &lastPriceRaw); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		pos.Exchange = models.Exchange(exchange)
		if pos.AvgCost, err = decimal.NewFromString(avgCostRaw); err != nil {
			return nil, fmt.Errorf("failed to parse avg cost: %w", err)
		}
		if pos.LastPrice, err = decimal.NewFromString(lastPriceRaw); err != nil {
			return nil, fmt.Errorf("failed to parse last price: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (s *SQLiteStore) loadHoldings(ctx context.Context, email string) ([]models.FundHolding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fund_id, name, units, invested, last_nav
		FROM holdings WHERE account_email = ?
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.FundHolding
	for rows.Next() {
		var (
			h           models.FundHolding
			unitsRaw    string
			investedRaw string
			lastNAVRaw  string
		)
		if err := rows.Scan(&h.FundID, &h.Name, &unitsRaw, &investedRaw, &lastNAVRaw); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		if h.Units, err = decimal.NewFromString(unitsRaw); err != nil {
			return nil, fmt.Errorf("failed to parse units: %w", err)
		}
		if h.Invested, err = decimal.NewFromString(investedRaw); err != nil {
			return nil, fmt.Errorf("failed to parse invested: %w", err)
		}
		if h.LastNAV, err = decimal.NewFromString(lastNAVRaw); err != nil {
			return nil, fmt.Errorf("failed to parse last nav: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (s *SQLiteStore) loadOrders(ctx context.Context, email string) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, kind, symbol, name, exchange, side, quantity, units, amount, price, status
		FROM orders WHERE account_email = ? ORDER BY seq
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var (
			o                             models.Order
			kind, exchange, side, status  string
			unitsRaw, amountRaw, priceRaw string
		)
		if err := rows.Scan(&o.ID, &o.Time, &kind, &o.Symbol, &o.Name, &exchange, &side, &o.Quantity, &unitsRaw, &amountRaw, &priceRaw, &status); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Kind = models.InstrumentKind(kind)
		o.Exchange = models.Exchange(exchange)
		o.Side = models.OrderSide(side)
		o.Status = models.OrderStatus(status)
		if o.Units, err = decimal.NewFromString(unitsRaw); err != nil {
			return nil, fmt.Errorf("failed to parse order units: %w", err)
		}
		if o.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			return nil, fmt.Errorf("failed to parse order amount: %w", err)
		}
		if o.Price, err = decimal.NewFromString(priceRaw); err != nil {
			return nil, fmt.Errorf("failed to parse order price: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context, email string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, direction, amount, description, balance
		FROM transactions WHERE account_email = ? ORDER BY seq
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var (
			txn                   models.Transaction
			direction             string
			amountRaw, balanceRaw string
		)
		if err := rows.Scan(&txn.ID, &txn.Time, &direction, &amountRaw, &txn.Description, &balanceRaw); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Direction = models.TxnDirection(direction)
		if txn.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		if txn.Balance, err = decimal.NewFromString(balanceRaw); err != nil {
			return nil, fmt.Errorf("failed to parse balance: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
