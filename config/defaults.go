package config

// Default returns the default runner configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Snapshot: SnapshotConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
