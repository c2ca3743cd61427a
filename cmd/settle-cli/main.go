// Command-line tool for keys, transactions and pools.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-settle/config"
	"github.com/Klingon-tech/klingnet-settle/internal/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	dataDir := config.DefaultDataDir()
	logLevel := "warn"

	// Global flags come before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--log-level" && len(args) > 1:
			logLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			logLevel = args[0][len("--log-level="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	if !log.ValidLevel(logLevel) {
		fatal("invalid log level %q", logLevel)
	}
	if err := log.Init(logLevel, false, ""); err != nil {
		fatal("init logging: %v", err)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "keygen":
		cmdKeygen(cmdArgs)
	case "sign":
		cmdSign(cmdArgs)
	case "transfer":
		cmdTransfer(cmdArgs)
	case "check":
		cmdCheck(cmdArgs)
	case "pool":
		cmdPool(cmdArgs)
	case "snapshot":
		cmdSnapshot(cmdArgs, dataDir)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: settle-cli [global flags] <command> [flags]

Global flags:
  --datadir <path>      Data directory (default: ~/.klingnet-settle)
  --log-level <level>   debug, info, warn (default) or error

Commands:
  keygen [--words 24] [--count 5] [--import]
                                  Create (or re-derive) a mnemonic and list addresses
  sign --tx <file> --input <i> --index <n>
                                  Sign input i with the key at derivation index n
  transfer --seed <file> --to <addr> --amount <amt> [--fee <amt>] [--scan 20]
                                  Build and sign a payment from the wallet's outputs
  check --seed <file> --tx <file>
                                  Validate a transaction against a seed pool
  pool --seed <file>              List a seed pool's outputs and commitment

  snapshot list [--db <dir>]      List stored pool snapshots
  snapshot show <name> [--db <dir>]
                                  Show a snapshot's outputs
  snapshot delete <name> [--db <dir>]
                                  Delete a snapshot

Mnemonics are read from SETTLE_MNEMONIC, or prompted for without echo.
Amounts are decimal coins (1 coin = %d base units).
`, config.Coin)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
