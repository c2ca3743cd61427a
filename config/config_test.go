package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConf(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "settle.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConf(t, t.TempDir(), `
# comment
seed = seed.json
batch = "batch file.json"
output='out.json'
snapshot.enabled = yes
log.level=debug
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := map[string]string{
		"seed":             "seed.json",
		"batch":            "batch file.json",
		"output":           "out.json",
		"snapshot.enabled": "yes",
		"log.level":        "debug",
	}
	if len(values) != len(want) {
		t.Fatalf("got %d values, want %d: %v", len(values), len(want), values)
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %q, want %q", k, values[k], v)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil || len(values) != 0 {
		t.Errorf("LoadFile(missing) = %v, %v; want empty, nil", values, err)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := writeConf(t, t.TempDir(), "seed = a\njust words\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("LoadFile error = %v, want line 2 error", err)
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := Default()
	err := ApplyFileConfig(cfg, map[string]string{
		"seed":          "s.json",
		"snapshot":      "on",
		"snapshot.save": "latest",
		"log.json":      "1",
	})
	if err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.SeedFile != "s.json" || !cfg.Snapshot.Enabled || cfg.Snapshot.Save != "latest" || !cfg.Log.JSON {
		t.Errorf("cfg = %+v", cfg)
	}

	if err := ApplyFileConfig(cfg, map[string]string{"p2p.port": "1"}); err == nil {
		t.Error("unknown key should be rejected")
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--seed", "s.json", "-o", "r.json", "--snapshot=false", "--log-json"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f.Seed != "s.json" || f.Output != "r.json" {
		t.Errorf("flags = %+v", f)
	}
	if !f.SetSnapshot || f.Snapshot {
		t.Error("--snapshot=false should be recorded as explicitly set to false")
	}
	if !f.SetLogJSON || !f.LogJSON {
		t.Error("--log-json should be set")
	}

	if _, err := ParseFlags([]string{"extra", "--seed", "x"}); err == nil {
		t.Error("flag after positional argument should be reported")
	}
	if _, err := ParseFlags([]string{"--no-such-flag"}); err == nil {
		t.Error("unknown flag should fail")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, dir, `
seed = from-file.json
batch = batch.json
snapshot.enabled = true
snapshot.save = nightly
log.level = warn
`)

	cfg, _, err := Load([]string{"--datadir", dir, "--seed", "from-flag.json", "--snapshot=true"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeedFile != "from-flag.json" {
		t.Errorf("SeedFile = %q, flag should win over file", cfg.SeedFile)
	}
	if cfg.BatchFile != "batch.json" || cfg.Log.Level != "warn" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Snapshot.Save != "nightly" {
		t.Errorf("Snapshot.Save = %q", cfg.Snapshot.Save)
	}
	if cfg.SnapshotDir() != filepath.Join(dir, "snapshots") {
		t.Errorf("SnapshotDir = %q", cfg.SnapshotDir())
	}
}

func TestLoad_CreatesDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	_, _, err := Load([]string{"--datadir", dir, "--seed", "s.json", "--batch", "b.json"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	values, err := LoadFile(filepath.Join(dir, "settle.conf"))
	if err != nil {
		t.Fatalf("default config unreadable: %v", err)
	}
	// The generated file must itself be a valid config.
	if err := ApplyFileConfig(Default(), values); err != nil {
		t.Errorf("default config does not apply: %v", err)
	}
}

func TestLoad_Help(t *testing.T) {
	cfg, f, err := Load([]string{"-h"})
	if err != nil || cfg != nil || !f.Help {
		t.Errorf("Load(-h) = %v, %+v, %v", cfg, f, err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.DataDir = "/tmp/x"
		cfg.SeedFile = "seed.json"
		cfg.BatchFile = "batch.json"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with files", func(*Config) {}, false},
		{"snapshot seed", func(c *Config) {
			c.SeedFile = ""
			c.Snapshot.Enabled = true
			c.Snapshot.Load = "genesis"
		}, false},
		{"no batch", func(c *Config) { c.BatchFile = "" }, true},
		{"no seed", func(c *Config) { c.SeedFile = "" }, true},
		{"seed and snapshot", func(c *Config) {
			c.Snapshot.Enabled = true
			c.Snapshot.Load = "genesis"
		}, true},
		{"snapshot name without store", func(c *Config) { c.Snapshot.Save = "x" }, true},
		{"slash in snapshot name", func(c *Config) {
			c.Snapshot.Enabled = true
			c.Snapshot.Save = "a/b"
		}, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"empty datadir", func(c *Config) { c.DataDir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if Validate(nil) == nil {
		t.Error("Validate(nil) should fail")
	}
}
