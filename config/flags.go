package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	Help    bool
	Version bool

	DataDir string
	Config  string

	Seed   string
	Batch  string
	Output string

	Snapshot     bool
	SnapshotDir  string
	SnapshotLoad string
	SnapshotSave string

	LogLevel string
	LogFile  string
	LogJSON  bool

	Args []string

	// Explicitly-set bool flags, so --snapshot=false can override the file.
	SetSnapshot bool
	SetLogJSON  bool
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("settled", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	fs.StringVar(&f.Seed, "seed", "", "Seed pool JSON file")
	fs.StringVar(&f.Batch, "batch", "", "Transaction batch JSON file")
	fs.StringVar(&f.Output, "output", "", "Result file (default: stdout)")
	fs.StringVar(&f.Output, "o", "", "Result file (shorthand)")

	fs.BoolVar(&f.Snapshot, "snapshot", false, "Enable the snapshot store")
	fs.StringVar(&f.SnapshotDir, "snapshot-dir", "", "Snapshot store directory")
	fs.StringVar(&f.SnapshotLoad, "snapshot-load", "", "Seed the pool from this snapshot")
	fs.StringVar(&f.SnapshotSave, "snapshot-save", "", "Save the settled pool as this snapshot")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.SetSnapshot = isFlagSet(fs, "snapshot")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	// A positional argument stops the parser; anything flag-like after it
	// was silently ignored.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}
	return f, nil
}

// ApplyFlags applies flags on top of cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if f.Seed != "" {
		cfg.SeedFile = f.Seed
	}
	if f.Batch != "" {
		cfg.BatchFile = f.Batch
	}
	if f.Output != "" {
		cfg.OutputFile = f.Output
	}

	if f.SetSnapshot {
		cfg.Snapshot.Enabled = f.Snapshot
	}
	if f.SnapshotDir != "" {
		cfg.Snapshot.Dir = f.SnapshotDir
	}
	if f.SnapshotLoad != "" {
		cfg.Snapshot.Load = f.SnapshotLoad
	}
	if f.SnapshotSave != "" {
		cfg.Snapshot.Save = f.SnapshotSave
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the runner's help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `settled - settle a batch of transactions against a UTXO pool

Usage:
  settled --seed seed.json --batch batch.json [options]
  settled --snapshot --snapshot-load NAME --batch batch.json [options]

Commands:
  --help, -h        Show this help message
  --version, -v     Show version information

Core Options:
  --datadir         Data directory (default: ~/.klingnet-settle)
  --config, -c      Config file path (default: <datadir>/settle.conf)

Input/Output:
  --seed            Seed pool JSON file
  --batch           Transaction batch JSON file
  --output, -o      Result file (default: stdout)

Snapshot Options:
  --snapshot        Enable the Badger snapshot store
  --snapshot-dir    Store directory (default: <datadir>/snapshots)
  --snapshot-load   Seed the pool from this snapshot instead of --seed
  --snapshot-save   Save the settled pool under this name

Logging Options:
  --log-level       Log level: debug, info, warn, error (default: info)
  --log-file        Also write logs to this file
  --log-json        Output logs as JSON
`)
}

// Load builds the configuration with the following precedence:
// 1. Default values
// 2. Data dir + default config file (created if missing)
// 3. Config file
// 4. Command-line flags
//
// When --help or --version is given Load returns a nil Config.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return nil, flags, nil
	}

	cfg := Default()
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory and a default config file if
// they do not exist yet. Safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
