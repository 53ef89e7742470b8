// Package config handles wallet configuration.
//
// Configuration is split into two categories:
//   - Protocol parameters: Exchange rates, gas constants and transaction
//     limits, immutable, must match the remote ledger service
//   - Wallet settings: Runtime configuration, can vary per installation
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// =============================================================================
// Wallet Configuration (runtime, per-installation settings)
// =============================================================================

// Config holds wallet-specific runtime configuration.
// These settings can vary between installations without affecting the
// transactions the wallet produces.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// Keystore
	Keystore KeystoreConfig

	// Ledger state source
	Ledger LedgerConfig

	// Logging
	Log LogConfig
}

// KeystoreConfig holds encrypted wallet storage settings.
type KeystoreConfig struct {
	// Dir overrides the directory holding encrypted wallet files.
	// Empty means the "wallets" subdirectory of DataDir.
	Dir string `conf:"keystore.dir"`
}

// LedgerConfig describes where ledger state comes from.
type LedgerConfig struct {
	// ParamsFile overrides the protocol parameters. Empty means the
	// built-in defaults.
	ParamsFile string `conf:"ledger.params"`

	// SnapshotFile is the account snapshot consumed when building
	// transactions. Empty means "snapshot.json" under DataDir.
	SnapshotFile string `conf:"ledger.snapshot"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.trivium
//	macOS:   ~/Library/Application Support/Trivium
//	Windows: %APPDATA%\Trivium
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trivium"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Trivium")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Trivium")
		}
		return filepath.Join(home, "AppData", "Roaming", "Trivium")
	default:
		return filepath.Join(home, ".trivium")
	}
}

// KeystoreDir returns the directory holding encrypted wallet files.
func (c *Config) KeystoreDir() string {
	if c.Keystore.Dir != "" {
		return c.Keystore.Dir
	}
	return filepath.Join(c.DataDir, "wallets")
}

// SnapshotFile returns the account snapshot file path.
func (c *Config) SnapshotFile() string {
	if c.Ledger.SnapshotFile != "" {
		return c.Ledger.SnapshotFile
	}
	return filepath.Join(c.DataDir, "snapshot.json")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "trivium.conf")
}
