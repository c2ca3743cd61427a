// Package config handles settlement runner configuration: defaults, a
// key=value config file, command-line flags and validation.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime settings for the settlement runner.
type Config struct {
	DataDir string `conf:"datadir"`

	// Inputs and outputs.
	SeedFile   string `conf:"seed"`   // JSON seed pool
	BatchFile  string `conf:"batch"`  // JSON transaction batch
	OutputFile string `conf:"output"` // Settlement result; stdout when empty

	// Snapshot store
	Snapshot SnapshotConfig

	// Logging
	Log LogConfig
}

// SnapshotConfig controls the pool snapshot store.
type SnapshotConfig struct {
	Enabled bool   `conf:"snapshot.enabled"`
	Dir     string `conf:"snapshot.dir"`  // Defaults to <datadir>/snapshots
	Load    string `conf:"snapshot.load"` // Snapshot to seed the pool from
	Save    string `conf:"snapshot.save"` // Snapshot to store the final pool as
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-settle
//	macOS:   ~/Library/Application Support/KlingnetSettle
//	Windows: %APPDATA%\KlingnetSettle
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-settle"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetSettle")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "KlingnetSettle")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetSettle")
	default:
		return filepath.Join(home, ".klingnet-settle")
	}
}

// SnapshotDir returns the Badger directory of the snapshot store.
func (c *Config) SnapshotDir() string {
	if c.Snapshot.Dir != "" {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.DataDir, "snapshots")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "settle.conf")
}
