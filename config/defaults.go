package config

// Default returns the default wallet configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Keystore: KeystoreConfig{
			Dir: "", // resolved against DataDir
		},
		Ledger: LedgerConfig{
			ParamsFile:   "",
			SnapshotFile: "",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
