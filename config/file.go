package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile loads wallet configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a wallet config value by key.
// Only runtime settings, NOT protocol parameters.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value

	// Keystore
	case "keystore.dir":
		cfg.Keystore.Dir = value

	// Ledger state
	case "ledger.params":
		cfg.Ledger.ParamsFile = value
	case "ledger.snapshot":
		cfg.Ledger.SnapshotFile = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default wallet configuration file.
func WriteDefaultConfig(path string) error {
	content := `# Trivium Wallet Configuration
#
# This file contains WALLET settings only.
# Protocol parameters (exchange rates, gas constants, transaction limits)
# must match the remote ledger service and live in the params file.

# Data directory (default: ~/.trivium)
# datadir = ~/.trivium

# ============================================================================
# Keystore
# ============================================================================

# Directory holding encrypted wallet files (default: <datadir>/wallets)
# keystore.dir =

# ============================================================================
# Ledger State
# ============================================================================

# Protocol parameters file (default: built-in parameters)
# ledger.params = params.json

# Account snapshot consumed when building transactions
# (default: <datadir>/snapshot.json)
# ledger.snapshot = snapshot.json

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
