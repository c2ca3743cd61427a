package config

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-settle/internal/log"
)

// Validate checks the runner config for operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q must be debug, info, warn or error", cfg.Log.Level)
	}

	if cfg.BatchFile == "" {
		return fmt.Errorf("batch file is required")
	}

	snap := cfg.Snapshot
	if !snap.Enabled && (snap.Load != "" || snap.Save != "") {
		return fmt.Errorf("snapshot.load/snapshot.save need snapshot.enabled")
	}
	if strings.Contains(snap.Load, "/") {
		return fmt.Errorf("snapshot.load %q must not contain '/'", snap.Load)
	}
	if strings.Contains(snap.Save, "/") {
		return fmt.Errorf("snapshot.save %q must not contain '/'", snap.Save)
	}

	switch {
	case cfg.SeedFile == "" && snap.Load == "":
		return fmt.Errorf("no seed pool: set seed or snapshot.load")
	case cfg.SeedFile != "" && snap.Load != "":
		return fmt.Errorf("seed and snapshot.load are mutually exclusive")
	}
	return nil
}
