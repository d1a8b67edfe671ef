package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# TradeDesk Configuration

[trading]
# Default exchange: NSE, BSE
default_exchange = "NSE"
# Opening balance for new accounts in INR
opening_balance = 100000.0

[fees]
# Flat fee charged on withdrawals below the threshold
withdraw_flat = 10.0
# Withdrawals at or above this amount are free
withdraw_threshold = 5000.0

[otp]
# OTP validity window in seconds
ttl_seconds = 300

[orders]
# Record rejected order attempts in the order log
record_rejected = false

[pricing]
# Simulated price jitter as a percentage of the base price
jitter_percent = 2.0
# Random seed for the price simulator (0 seeds from time)
seed = 0

[logging]
# Log level: debug, info, warn, error
level = "info"
# Rotated log file size limit
max_size_mb = 10
max_backups = 5
max_age_days = 30
# Mirror logs to the terminal
console = true

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
