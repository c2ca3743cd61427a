package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads a .conf file of "key = value" lines; # starts a comment.
// A missing file yields no values.
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
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		values[key] = value
	}

	return values, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// ApplyFileConfig applies file values to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "seed":
		cfg.SeedFile = value
	case "batch":
		cfg.BatchFile = value
	case "output":
		cfg.OutputFile = value

	case "snapshot.enabled", "snapshot":
		cfg.Snapshot.Enabled = parseBool(value)
	case "snapshot.dir":
		cfg.Snapshot.Dir = value
	case "snapshot.load":
		cfg.Snapshot.Load = value
	case "snapshot.save":
		cfg.Snapshot.Save = value

	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// WriteDefaultConfig writes a commented default config file.
func WriteDefaultConfig(path string) error {
	content := `# Klingnet settlement runner configuration

# Data directory (default: ~/.klingnet-settle)
# datadir = ~/.klingnet-settle

# ============================================================================
# Inputs and outputs
# ============================================================================

# Seed pool (JSON array of {outpoint, address, value})
# seed = seed.json

# Transaction batch (JSON array of transactions)
# batch = batch.json

# Settlement result (default: stdout)
# output = result.json

# ============================================================================
# Snapshot store
# ============================================================================

snapshot.enabled = false
# snapshot.dir = <datadir>/snapshots

# Seed from a stored snapshot instead of a seed file
# snapshot.load = genesis

# Store the settled pool under this name
# snapshot.save = latest

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
