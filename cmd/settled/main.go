// Batch settlement runner.
//
// Usage:
//
//	settled --seed seed.json --batch batch.json       Settle a batch
//	settled --snapshot --snapshot-load genesis ...    Seed from a stored pool
//	settled --help                                    Show help
package main

import (
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-settle/config"
	"github.com/Klingon-tech/klingnet-settle/internal/log"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
	switch {
	case flags.Help:
		config.PrintUsage(os.Stdout)
		return
	case flags.Version:
		fmt.Printf("settled version %s\n", version)
		return
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, os.Stdout); err != nil {
		log.Logger.Error().Err(err).Msg("settlement failed")
		os.Exit(1)
	}
}
