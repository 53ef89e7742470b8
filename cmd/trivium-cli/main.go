// trivium-cli manages encrypted Trivium wallets and builds signed
// transactions against a caller-supplied ledger snapshot.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Trivium-tech/trivium-wallet/config"
	"github.com/Trivium-tech/trivium-wallet/internal/log"
	"github.com/Trivium-tech/trivium-wallet/internal/wallet"
	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/tx"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	dataDir := ""
	configFile := ""
	snapshotFile := ""
	paramsFile := ""

	// Scan for --datadir, --config, --snapshot, and --params before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--config" && len(args) > 1:
			configFile = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--config="):
			configFile = args[0][len("--config="):]
			args = args[1:]
		case args[0] == "--snapshot" && len(args) > 1:
			snapshotFile = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--snapshot="):
			snapshotFile = args[0][len("--snapshot="):]
			args = args[1:]
		case args[0] == "--params" && len(args) > 1:
			paramsFile = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--params="):
			paramsFile = args[0][len("--params="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	cfg := loadConfig(dataDir, configFile, snapshotFile, paramsFile)

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "wallet":
		cmdWallet(cmdArgs, cfg)
	case "build":
		cmdBuild(cmdArgs, cfg)
	case "verify":
		cmdVerify(cmdArgs, cfg)
	case "derive":
		cmdDerive(cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: trivium-cli [global flags] <command> [flags]

Global flags:
  --datadir <path>    Data directory (default: ~/.trivium)
  --config <file>     Config file (default: <datadir>/trivium.conf)
  --snapshot <file>   Ledger snapshot document (default: <datadir>/snapshot.json)
  --params <file>     Protocol parameters file (default: built-in)

Commands:
  wallet create --name <n>        Create a wallet (prints the mnemonic once)
  wallet import --name <n> --mnemonic "word1 word2 ..."
                                  Import a wallet from a mnemonic
  wallet list                     List wallets
  wallet show --wallet <w>        Show account id, org and derived addresses
  wallet new-address --wallet <w> --currency <c>
                                  Derive the next address for a currency
  wallet set-org --wallet <w> --org <org>
                                  Set the wallet's organization

  build --wallet <w> --request <file.json> [--out <file>] [--canonical <file>]
                                  Build and sign a transaction from a payment
                                  request against the ledger snapshot
  verify --tx <file.json>         Recompute id and size and verify every
                                  signature against the ledger snapshot
  derive --mnemonic "..." [--currency <c> --index <n>] [--private]
                                  Inspect the identity a mnemonic derives

Currencies: primary, secondary-a, secondary-b (or ordinals 0, 1, 2)
`)
}

// loadConfig resolves the runtime configuration: defaults, then the
// config file, then command-line overrides.
func loadConfig(dataDir, configFile, snapshotFile, paramsFile string) *config.Config {
	cfg := config.Default()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	path := configFile
	if path == "" {
		path = cfg.ConfigFile()
	}
	values, err := config.LoadFile(path)
	if err != nil {
		fatal("load config %s: %v", path, err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		fatal("apply config: %v", err)
	}

	// Command-line flags win over the file.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if snapshotFile != "" {
		cfg.Ledger.SnapshotFile = snapshotFile
	}
	if paramsFile != "" {
		cfg.Ledger.ParamsFile = paramsFile
	}

	if err := config.Validate(cfg); err != nil {
		fatal("invalid config: %v", err)
	}
	return cfg
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(args []string, cfg *config.Config) {
	if len(args) < 1 {
		fatal("Usage: trivium-cli wallet <create|import|list|show|new-address|set-org> [flags]")
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(args[1:], ks)
	case "import":
		cmdWalletImport(args[1:], ks)
	case "list":
		cmdWalletList(ks)
	case "show":
		cmdWalletShow(args[1:], ks)
	case "new-address":
		cmdWalletNewAddress(args[1:], ks)
	case "set-org":
		cmdWalletSetOrg(args[1:], ks)
	default:
		fatal("Unknown wallet command: %s\nUsage: trivium-cli wallet <create|import|list|show|new-address|set-org> [flags]", args[0])
	}
}

func cmdWalletCreate(args []string, ks *wallet.Keystore) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	withPassphrase := fs.Bool("with-passphrase", false, "Protect the mnemonic with a BIP-39 passphrase")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: trivium-cli wallet create --name <name> [--with-passphrase]")
	}

	passphrase := ""
	if *withPassphrase {
		p, err := readPassword("BIP-39 passphrase: ")
		if err != nil {
			fatal("read passphrase: %v", err)
		}
		passphrase = string(p)
	}

	// Prompt for password (twice).
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	mnemonic, err := ks.Create(*name, passphrase, password, wallet.DefaultEncryptionParams())
	if err != nil {
		fatal("create wallet: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	info, err := ks.Info(*name)
	if err != nil {
		fatal("read wallet: %v", err)
	}
	fmt.Printf("Wallet created: %s\n", *name)
	fmt.Printf("Account: %s\n", info.AccountID)
}

func cmdWalletImport(args []string, ks *wallet.Keystore) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (24 words)")
	withPassphrase := fs.Bool("with-passphrase", false, "Prompt for the BIP-39 passphrase")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: trivium-cli wallet import --name <name> --mnemonic \"word1 word2 ...\" [--with-passphrase]")
	}

	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	passphrase := ""
	if *withPassphrase {
		p, err := readPassword("BIP-39 passphrase: ")
		if err != nil {
			fatal("read passphrase: %v", err)
		}
		passphrase = string(p)
	}

	// Prompt for password (twice).
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	if err := ks.Import(*name, *mnemonic, passphrase, password, wallet.DefaultEncryptionParams()); err != nil {
		fatal("import wallet: %v", err)
	}

	info, err := ks.Info(*name)
	if err != nil {
		fatal("read wallet: %v", err)
	}
	fmt.Printf("Wallet imported: %s\n", *name)
	fmt.Printf("Account: %s\n", info.AccountID)
}

func cmdWalletList(ks *wallet.Keystore) {
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdWalletShow(args []string, ks *wallet.Keystore) {
	fs := flag.NewFlagSet("wallet show", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: trivium-cli wallet show --wallet <name>")
	}

	info, err := ks.Info(*walletName)
	if err != nil {
		fatal("read wallet: %v", err)
	}

	fmt.Printf("Account: %s\n", info.AccountID)
	if info.Org != "" {
		fmt.Printf("Org:     %s\n", info.Org)
	}
	fmt.Printf("Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if len(info.Addresses) == 0 {
		fmt.Println("No addresses derived.")
		return
	}
	fmt.Println("Addresses:")
	for _, rec := range info.Addresses {
		fmt.Printf("  [%s/%d] %s\n", rec.Currency, rec.Index, rec.Address)
	}
}

func cmdWalletNewAddress(args []string, ks *wallet.Keystore) {
	fs := flag.NewFlagSet("wallet new-address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	currency := fs.String("currency", "primary", "Currency the address holds")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: trivium-cli wallet new-address --wallet <name> --currency <c>")
	}

	c, err := parseCurrency(*currency)
	if err != nil {
		fatal("%v", err)
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	rec, err := ks.NewAddress(*walletName, password, c)
	if err != nil {
		fatal("derive address: %v", err)
	}

	fmt.Printf("New address [%s/%d]: %s\n", rec.Currency, rec.Index, rec.Address)
}

func cmdWalletSetOrg(args []string, ks *wallet.Keystore) {
	fs := flag.NewFlagSet("wallet set-org", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	org := fs.String("org", "", "Organization name")
	fs.Parse(args)

	if *walletName == "" || *org == "" {
		fatal("Usage: trivium-cli wallet set-org --wallet <name> --org <org>")
	}

	if err := ks.SetOrg(*walletName, *org); err != nil {
		fatal("set org: %v", err)
	}

	fmt.Printf("Organization set: %s\n", *org)
}

// ── build ───────────────────────────────────────────────────────────────

func cmdBuild(args []string, cfg *config.Config) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	requestFile := fs.String("request", "", "Payment request JSON file")
	outFile := fs.String("out", "", "Write the transaction JSON here instead of stdout")
	canonicalFile := fs.String("canonical", "", "Also write the canonical wire bytes here")
	fs.Parse(args)

	if *walletName == "" || *requestFile == "" {
		fatal("Usage: trivium-cli build --wallet <name> --request <file.json> [--out <file>] [--canonical <file>]")
	}

	data, err := os.ReadFile(*requestFile)
	if err != nil {
		fatal("read request: %v", err)
	}
	var req wallet.PaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fatal("parse request: %v", err)
	}

	snap := loadSnapshot(cfg)
	params := loadParams(cfg)

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	id, err := ks.Load(*walletName, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}
	if err := id.Attach(snap); err != nil {
		fatal("attach wallet keys: %v", err)
	}

	trans, err := wallet.NewBuilder(params, snap).Build(&req)
	if err != nil {
		fatal("build: %v", err)
	}

	out, err := json.MarshalIndent(trans, "", "  ")
	if err != nil {
		fatal("encode transaction: %v", err)
	}
	if *outFile != "" {
		if err := os.WriteFile(*outFile, append(out, '\n'), 0644); err != nil {
			fatal("write transaction: %v", err)
		}
	} else {
		fmt.Println(string(out))
	}

	if *canonicalFile != "" {
		raw, err := trans.Canonical(tx.ModeFull)
		if err != nil {
			fatal("canonical form: %v", err)
		}
		if err := os.WriteFile(*canonicalFile, raw, 0644); err != nil {
			fatal("write canonical bytes: %v", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Built %s: %d input(s), %d output(s), size %d\n",
		trans.ID, len(trans.Inputs), len(trans.Outputs), trans.Size)
}

// ── verify ──────────────────────────────────────────────────────────────

func cmdVerify(args []string, cfg *config.Config) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	txFile := fs.String("tx", "", "Transaction JSON file")
	fs.Parse(args)

	if *txFile == "" {
		fatal("Usage: trivium-cli verify --tx <file.json>")
	}

	data, err := os.ReadFile(*txFile)
	if err != nil {
		fatal("read transaction: %v", err)
	}
	var trans tx.Transaction
	if err := json.Unmarshal(data, &trans); err != nil {
		fatal("parse transaction: %v", err)
	}

	snap := loadSnapshot(cfg)
	if snap.Account.Keys.Pub.IsZero() {
		fatal("snapshot does not carry the account public key")
	}

	if err := trans.VerifyWithOrigins(snap, snap.Account.Keys.Pub); err != nil {
		fatal("verification failed: %v", err)
	}

	fmt.Printf("OK: %s\n", trans.ID)
	fmt.Printf("  Class:   %s\n", trans.Class)
	fmt.Printf("  Total:   %v\n", trans.Total)
	fmt.Printf("  Inputs:  %d\n", len(trans.Inputs))
	fmt.Printf("  Outputs: %d\n", len(trans.Outputs))
}

// ── derive ──────────────────────────────────────────────────────────────

func cmdDerive(args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	withPassphrase := fs.Bool("with-passphrase", false, "Prompt for the BIP-39 passphrase")
	currency := fs.String("currency", "", "Currency for an address-level key")
	index := fs.Uint("index", 0, "Derivation index")
	private := fs.Bool("private", false, "Also print private keys")
	fs.Parse(args)

	if *mnemonic == "" {
		fatal("Usage: trivium-cli derive --mnemonic \"word1 word2 ...\" [--currency <c> --index <n>] [--private]")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	passphrase := ""
	if *withPassphrase {
		p, err := readPassword("BIP-39 passphrase: ")
		if err != nil {
			fatal("read passphrase: %v", err)
		}
		passphrase = string(p)
	}

	seed, err := wallet.SeedFromMnemonic(*mnemonic, passphrase)
	if err != nil {
		fatal("derive seed: %v", err)
	}

	accountKey, err := wallet.DeriveAccountKey(seed)
	if err != nil {
		fatal("derive account key: %v", err)
	}
	fmt.Printf("Account: %s\n", crypto.AccountID(accountKey.Hex()))
	if *private {
		fmt.Printf("Account key: %s\n", accountKey.Hex())
	}
	accountKey.Zero()

	if *currency != "" {
		c, err := parseCurrency(*currency)
		if err != nil {
			fatal("%v", err)
		}
		key, err := wallet.DeriveAddressKey(seed, c, uint32(*index))
		if err != nil {
			fatal("derive address key: %v", err)
		}
		addr, err := crypto.DeriveAddress(key.Public())
		if err != nil {
			fatal("derive address: %v", err)
		}
		fmt.Printf("Address [%s/%d]: %s\n", c, *index, addr)
		if *private {
			fmt.Printf("Address key: %s\n", key.Hex())
		}
		key.Zero()
	}

	// Zero seed.
	for i := range seed {
		seed[i] = 0
	}
}

// ── Snapshot and params helpers ─────────────────────────────────────────

// loadSnapshot reads and checks the ledger snapshot document.
func loadSnapshot(cfg *config.Config) *wallet.Snapshot {
	path := cfg.SnapshotFile()
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read snapshot: %v", err)
	}
	var snap wallet.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		fatal("parse snapshot %s: %v", path, err)
	}
	if err := snap.Check(); err != nil {
		fatal("snapshot %s: %v", path, err)
	}
	return &snap
}

// loadParams returns the protocol parameters, from the configured file
// or the built-in defaults.
func loadParams(cfg *config.Config) *config.Params {
	if cfg.Ledger.ParamsFile == "" {
		return config.DefaultParams()
	}
	p, err := config.LoadParams(cfg.Ledger.ParamsFile)
	if err != nil {
		fatal("load params: %v", err)
	}
	return p
}

// parseCurrency accepts a currency name or its ordinal.
func parseCurrency(s string) (types.CurrencyType, error) {
	switch strings.ToLower(s) {
	case "primary", "0":
		return types.CurrencyPrimary, nil
	case "secondary-a", "1":
		return types.CurrencySecondaryA, nil
	case "secondary-b", "2":
		return types.CurrencySecondaryB, nil
	}
	return 0, fmt.Errorf("unknown currency %q (primary, secondary-a, secondary-b)", s)
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
