package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/illarion/lockwallet/cmd"
	"github.com/illarion/lockwallet/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithOperationID(ctx, uuid.NewString())

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(ctx, os.Args[2:])
	case "unlock":
		runUnlock(ctx, os.Args[2:])
	case "lock":
		runNoArgs(ctx, "lock", os.Args[2:], cmd.Lock)
	case "wallets", "ls":
		runNoArgs(ctx, os.Args[1], os.Args[2:], cmd.Wallets)
	case "import":
		runImport(ctx, os.Args[2:])
	case "export":
		runExport(ctx, os.Args[2:])
	case "sign":
		runSign(ctx, os.Args[2:])
	case "balance":
		runBalance(ctx, os.Args[2:])
	case "send":
		runSend(ctx, os.Args[2:])
	case "tx":
		runTx(ctx, os.Args[2:])
	case "quote":
		runQuote(ctx, os.Args[2:])
	case "status":
		runNoArgs(ctx, "status", os.Args[2:], cmd.Status)
	case "passwd":
		runNoArgs(ctx, "passwd", os.Args[2:], cmd.Passwd)
	case "reset":
		runReset(ctx, os.Args[2:])
	case "blob":
		runNoArgs(ctx, "blob", os.Args[2:], cmd.Blob)
	case "audit":
		runAudit(ctx, os.Args[2:])
	case "compact":
		runNoArgs(ctx, "compact", os.Args[2:], cmd.Compact)
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func requireArgs(fs *flag.FlagSet, n int, usage string) []string {
	if fs.NArg() != n {
		fmt.Fprintf(os.Stderr, "Usage: lockwallet %s\n", usage)
		os.Exit(1)
	}
	return fs.Args()
}

func runNoArgs(ctx context.Context, name string, args []string, run func(context.Context)) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	parse(fs, args)
	requireArgs(fs, 0, name)

	run(ctx)
}

func runInit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	mnemonic := fs.Bool("mnemonic", false, "Read a recovery phrase and derive the first account")
	generate := fs.Bool("generate", false, "Generate a new recovery phrase")
	words := fs.Int("words", 12, "Words in a generated recovery phrase (12 or 24)")
	parse(fs, args)
	requireArgs(fs, 0, "init [--mnemonic|--generate] [--words 12|24]")

	cmd.Init(ctx, *mnemonic, *generate, *words)
}

func runUnlock(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	remember := fs.Bool("remember", false, "Cache the password in the OS keyring")
	parse(fs, args)
	requireArgs(fs, 0, "unlock [--remember]")

	cmd.Unlock(ctx, *remember)
}

func runImport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	chainSlug := fs.String("chain", "ethereum", "Chain the wallet is used on")
	name := fs.String("name", "", "Wallet name")
	parse(fs, args)
	requireArgs(fs, 0, "import [--chain <slug>] [--name <name>]")

	cmd.Import(ctx, *chainSlug, *name)
}

func runExport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	mnemonic := fs.Bool("mnemonic", false, "Print the recovery phrase instead of a key")
	force := fs.Bool("force", false, "Do not ask for confirmation")
	parse(fs, args)

	if *mnemonic {
		requireArgs(fs, 0, "export --mnemonic [--force]")
		cmd.Export(ctx, "", true, *force)
		return
	}
	rest := requireArgs(fs, 1, "export [--force] <wallet>")
	cmd.Export(ctx, rest[0], false, *force)
}

func runSign(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	parse(fs, args)
	rest := requireArgs(fs, 2, "sign <wallet> <digest>")

	cmd.Sign(ctx, rest[0], rest[1])
}

func runBalance(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	chainRef := fs.String("chain", "", "Chain slug or id (defaults to the wallet's chain)")
	parse(fs, args)
	rest := requireArgs(fs, 1, "balance [--chain <slug>] <wallet|address>")

	cmd.Balance(ctx, rest[0], *chainRef)
}

func runSend(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	chainRef := fs.String("chain", "", "Chain slug or id")
	wallet := fs.String("wallet", "", "Wallet that signed the transaction")
	parse(fs, args)
	rest := requireArgs(fs, 1, "send --chain <slug> [--wallet <wallet>] <rawtx>")
	if *chainRef == "" {
		fmt.Fprintln(os.Stderr, "Error: --chain is required")
		os.Exit(1)
	}

	cmd.Send(ctx, *chainRef, *wallet, rest[0])
}

func runTx(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tx", flag.ExitOnError)
	chainRef := fs.String("chain", "ethereum", "Chain slug or id")
	parse(fs, args)
	rest := requireArgs(fs, 1, "tx [--chain <slug>] <hash>")

	cmd.Tx(ctx, rest[0], *chainRef)
}

func runQuote(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	chainRef := fs.String("chain", "ethereum", "Chain slug or id")
	from := fs.String("from", "", "Token to sell (contract address)")
	to := fs.String("to", "", "Token to buy (contract address)")
	amount := fs.String("amount", "", "Amount to sell in base units")
	slippage := fs.Float64("slippage", 0.5, "Maximum slippage in percent")
	wallet := fs.String("wallet", "", "Wallet to prepare the transaction for")
	parse(fs, args)
	requireArgs(fs, 0, "quote --chain <slug> --from <token> --to <token> --amount <n> [--slippage <pct>] [--wallet <wallet>]")

	cmd.Quote(ctx, *chainRef, *from, *to, *amount, *slippage, *wallet)
}

func runReset(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	force := fs.Bool("force", false, "Reset without confirmation")
	parse(fs, args)
	requireArgs(fs, 0, "reset [--force]")

	cmd.Reset(ctx, *force)
}

func runAudit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Number of events to show (0 for all)")
	parse(fs, args)
	requireArgs(fs, 0, "audit [--limit <n>]")

	cmd.Audit(ctx, *limit)
}

func runKeyring(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockwallet keyring <save|delete|status>")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave(ctx)
	case "delete":
		cmd.KeyringDelete(ctx)
	case "status":
		cmd.KeyringStatus(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: lockwallet keyring <save|delete|status>")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockwallet completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("lockwallet - Non-custodial wallet vault for EVM chains")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lockwallet <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init         Create a vault in current directory")
	fmt.Println("  unlock       Verify the password (--remember caches it)")
	fmt.Println("  lock         Forget the cached password")
	fmt.Println("  wallets, ls  List wallets")
	fmt.Println("  import       Import a private key")
	fmt.Println("  export       Print a private key or the recovery phrase")
	fmt.Println("  sign         Sign a 32-byte digest")
	fmt.Println("  balance      Show native balance of a wallet or address")
	fmt.Println("  send         Broadcast a signed raw transaction")
	fmt.Println("  tx           Show transaction status")
	fmt.Println("  quote        Get a token swap quote")
	fmt.Println("  status       Show vault status")
	fmt.Println("  passwd       Change vault password")
	fmt.Println("  reset        Delete all keys from the vault")
	fmt.Println("  blob         Print the encrypted vault blob")
	fmt.Println("  audit        Show the audit log")
	fmt.Println("  compact      Compact vault to reclaim disk space")
	fmt.Println("  keyring      Manage password in OS keyring")
	fmt.Println("  completion   Generate shell completions")
	fmt.Println("  help         Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lockwallet init --generate          # New vault with a fresh recovery phrase")
	fmt.Println("  lockwallet import --chain polygon   # Import a key for Polygon")
	fmt.Println("  lockwallet balance <wallet-id>      # Check a balance")
	fmt.Println()
	fmt.Println("Use 'lockwallet help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("lockwallet init [--mnemonic|--generate] [--words 12|24]")
		fmt.Println()
		fmt.Println("Creates a .lockwallet vault file in the current directory.")
		fmt.Println("Prompts for a password of 8 to 100 characters.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --mnemonic   Read an existing recovery phrase and derive Account 1")
		fmt.Println("  --generate   Generate a new recovery phrase and derive Account 1")
		fmt.Println("  --words      Length of a generated phrase (12 or 24)")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  lockwallet init                    # Empty vault")
		fmt.Println("  lockwallet init --generate         # New 12-word phrase")
		fmt.Println("  lockwallet init --mnemonic         # Restore from a phrase")
	case "unlock":
		fmt.Println("lockwallet unlock [--remember]")
		fmt.Println()
		fmt.Println("Decrypts the vault to check the password.")
		fmt.Println("With --remember the password is cached in the OS keyring so")
		fmt.Println("later commands do not prompt.")
	case "lock":
		fmt.Println("lockwallet lock")
		fmt.Println()
		fmt.Println("Removes the cached password from the OS keyring.")
	case "wallets", "ls":
		fmt.Println("lockwallet wallets")
		fmt.Println()
		fmt.Println("Lists wallets with id, name, chain and address.")
		fmt.Println("Does not require a password.")
	case "import":
		fmt.Println("lockwallet import [--chain <slug>] [--name <name>]")
		fmt.Println()
		fmt.Println("Imports a hex private key, read from the terminal without echo.")
		fmt.Println("The vault is re-encrypted and saved before the key is accepted.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  lockwallet import --chain arbitrum --name trading")
	case "export":
		fmt.Println("lockwallet export [--force] <wallet>")
		fmt.Println("lockwallet export --mnemonic [--force]")
		fmt.Println()
		fmt.Println("Prints a wallet's private key, or the recovery phrase.")
		fmt.Println("<wallet> is a wallet id, id prefix or address.")
	case "sign":
		fmt.Println("lockwallet sign <wallet> <digest>")
		fmt.Println()
		fmt.Println("Signs a 32-byte hex digest and prints the 65-byte r||s||v signature.")
	case "balance":
		fmt.Println("lockwallet balance [--chain <slug>] <wallet|address>")
		fmt.Println()
		fmt.Println("Shows the native currency balance. Does not require a password.")
	case "send":
		fmt.Println("lockwallet send --chain <slug> [--wallet <wallet>] <rawtx>")
		fmt.Println()
		fmt.Println("Broadcasts a signed raw transaction (0x hex) and records it in the audit log.")
	case "tx":
		fmt.Println("lockwallet tx [--chain <slug>] <hash>")
		fmt.Println()
		fmt.Println("Shows whether a transaction is pending, confirmed or failed.")
	case "quote":
		fmt.Println("lockwallet quote --chain <slug> --from <token> --to <token> --amount <n> [--slippage <pct>] [--wallet <wallet>]")
		fmt.Println()
		fmt.Println("Fetches a swap quote from 0x, falling back to 1inch.")
		fmt.Println("API keys are read from swap.zerox_api_key and swap.oneinch_api_key.")
		fmt.Println("With --wallet the transaction to sign is printed as well.")
	case "status":
		fmt.Println("lockwallet status")
		fmt.Println()
		fmt.Println("Shows vault file, encryption details, wallet count and keyring state.")
		fmt.Println("Does not require a password.")
	case "passwd":
		fmt.Println("lockwallet passwd")
		fmt.Println()
		fmt.Println("Changes the vault password.")
		fmt.Println("Requires both the current and new passwords.")
		fmt.Println("Re-encrypts the vault with a fresh salt.")
	case "reset":
		fmt.Println("lockwallet reset [--force]")
		fmt.Println()
		fmt.Println("Deletes every key and the recovery phrase. The audit log is kept.")
		fmt.Println("Asks for confirmation unless --force is given.")
	case "blob":
		fmt.Println("lockwallet blob")
		fmt.Println()
		fmt.Println("Prints the encrypted vault blob as JSON, suitable for backup or upload.")
	case "audit":
		fmt.Println("lockwallet audit [--limit <n>]")
		fmt.Println()
		fmt.Println("Shows recent vault events, newest first.")
	case "compact":
		fmt.Println("lockwallet compact")
		fmt.Println()
		fmt.Println("Compacts the .lockwallet database to reclaim unused disk space.")
		fmt.Println("This is automatically done after 'passwd' and 'reset'.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("lockwallet keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Manages the vault password cached in the OS keyring.")
	case "completion":
		fmt.Println("lockwallet completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(lockwallet completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(lockwallet completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  lockwallet completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
