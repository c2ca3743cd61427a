package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Klingon-tech/klingnet-settle/config"
	"github.com/Klingon-tech/klingnet-settle/internal/log"
	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/internal/wallet"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
	"golang.org/x/term"
)

// ── keygen ──────────────────────────────────────────────────────────────

func cmdKeygen(args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	words := fs.Int("words", 24, "Mnemonic length (12, 15, 18, 21 or 24)")
	count := fs.Int("count", 5, "Addresses to list")
	account := fs.Uint("account", 0, "BIP-44 account")
	importExisting := fs.Bool("import", false, "Derive from an existing mnemonic")
	fs.Parse(args)

	var mnemonic string
	if *importExisting {
		m, err := readMnemonic()
		if err != nil {
			fatal("%v", err)
		}
		mnemonic = m
	} else {
		m, err := wallet.GenerateMnemonicWords(*words)
		if err != nil {
			fatal("generate mnemonic: %v", err)
		}
		mnemonic = m
		fmt.Println("Mnemonic (write this down!):")
		fmt.Printf("  %s\n\n", mnemonic)
	}

	kr, err := wallet.NewKeyring(mnemonic, passphrase(), uint32(*account), *count)
	if err != nil {
		fatal("derive keys: %v", err)
	}
	defer kr.Zero()

	for i, addr := range kr.Addresses() {
		fmt.Printf("m/44'/8888'/%d'/0/%d  %s\n", *account, i, addr)
	}
}

// ── sign ────────────────────────────────────────────────────────────────

func cmdSign(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	txFile := fs.String("tx", "", "Transaction JSON file")
	input := fs.Int("input", 0, "Input position to sign")
	index := fs.Int("index", 0, "Derivation index of the signing key")
	account := fs.Uint("account", 0, "BIP-44 account")
	fs.Parse(args)

	if *txFile == "" {
		fatal("Usage: settle-cli sign --tx <file> --input <i> --index <n>")
	}
	t := readTransaction(*txFile)
	if *input < 0 || *input >= len(t.Inputs) {
		fatal("input %d out of range (transaction has %d inputs)", *input, len(t.Inputs))
	}

	mnemonic, err := readMnemonic()
	if err != nil {
		fatal("%v", err)
	}
	kr, err := wallet.NewKeyring(mnemonic, passphrase(), uint32(*account), *index+1)
	if err != nil {
		fatal("derive keys: %v", err)
	}
	defer kr.Zero()

	key, err := kr.Key(*index)
	if err != nil {
		fatal("%v", err)
	}
	sig, err := key.Sign(t.SigningBytes(*input))
	if err != nil {
		fatal("sign: %v", err)
	}
	t.Inputs[*input].Signature = sig

	log.CLI.Debug().
		Int("input", *input).
		Str("address", key.Address().String()).
		Msg("input signed")
	printJSON(t)
}

// ── transfer ────────────────────────────────────────────────────────────

func cmdTransfer(args []string) {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	seedFile := fs.String("seed", "", "Seed pool JSON file")
	to := fs.String("to", "", "Recipient address (hex)")
	amountStr := fs.String("amount", "", "Amount in coins")
	feeStr := fs.String("fee", "0", "Fee in coins")
	scan := fs.Int("scan", 20, "Wallet addresses to scan for outputs")
	account := fs.Uint("account", 0, "BIP-44 account")
	fs.Parse(args)

	if *seedFile == "" || *to == "" || *amountStr == "" {
		fatal("Usage: settle-cli transfer --seed <file> --to <addr> --amount <amt>")
	}
	recipient, err := types.ParseAddress(*to)
	if err != nil {
		fatal("invalid recipient: %v", err)
	}
	amount, err := config.ParseAmount(*amountStr)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	if amount == 0 {
		fatal("amount must be positive")
	}
	fee, err := config.ParseAmount(*feeStr)
	if err != nil {
		fatal("invalid fee: %v", err)
	}
	pool := loadSeed(*seedFile)
	mnemonic, err := readMnemonic()
	if err != nil {
		fatal("%v", err)
	}
	kr, err := wallet.NewKeyring(mnemonic, passphrase(), uint32(*account), *scan)
	if err != nil {
		fatal("derive keys: %v", err)
	}
	defer kr.Zero()

	t, sel, err := buildTransfer(kr, pool, recipient, amount, fee)
	if err != nil {
		fatal("%v", err)
	}

	log.CLI.Info().
		Int("inputs", len(sel.Inputs)).
		Str("amount", config.FormatAmount(amount)).
		Str("change", config.FormatAmount(sel.Change)).
		Str("fee", config.FormatAmount(fee)).
		Msg("transfer built")
	printJSON(t)
}

// buildTransfer pays amount to recipient from the keyring's outputs in
// pool, leaving fee unclaimed. Change goes to the keyring's first address.
func buildTransfer(kr *wallet.Keyring, pool *utxo.Pool, recipient types.Address, amount, fee int64) (*tx.Transaction, *wallet.CoinSelection, error) {
	target, ok := tx.AddValues(amount, fee)
	if !ok {
		return nil, nil, fmt.Errorf("amount plus fee overflows")
	}
	sel, err := wallet.SelectCoins(kr.Owned(pool), target)
	if err != nil {
		return nil, nil, fmt.Errorf("select outputs: %w", err)
	}
	if len(sel.Inputs) > config.MaxTxInputs {
		return nil, nil, fmt.Errorf("payment needs %d inputs, max is %d", len(sel.Inputs), config.MaxTxInputs)
	}

	b := tx.NewBuilder()
	owners := make(map[types.Outpoint]types.Address, len(sel.Inputs))
	for _, u := range sel.Inputs {
		b.AddInput(u.Outpoint)
		owners[u.Outpoint] = u.Address
	}
	b.AddOutput(amount, recipient)
	if sel.Change > 0 {
		b.AddOutput(sel.Change, kr.Addresses()[0])
	}
	if err := b.SignMulti(kr.Signers(), owners); err != nil {
		return nil, nil, fmt.Errorf("sign: %w", err)
	}
	return b.Build(), sel, nil
}

// ── Mnemonic helpers ────────────────────────────────────────────────────

func readMnemonic() (string, error) {
	if m := strings.TrimSpace(os.Getenv("SETTLE_MNEMONIC")); m != "" {
		if !wallet.ValidateMnemonic(m) {
			return "", wallet.ErrInvalidMnemonic
		}
		return m, nil
	}

	fmt.Fprint(os.Stderr, "Enter mnemonic: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("read mnemonic: %w", err)
	}
	m := strings.Join(strings.Fields(string(raw)), " ")
	if !wallet.ValidateMnemonic(m) {
		return "", wallet.ErrInvalidMnemonic
	}
	return m, nil
}

func passphrase() string {
	return os.Getenv("SETTLE_PASSPHRASE")
}
