package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/illarion/lockwallet/internal/chain"
	"github.com/illarion/lockwallet/internal/config"
	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/keyring"
	"github.com/illarion/lockwallet/internal/logging"
	"github.com/illarion/lockwallet/internal/prompt"
	"github.com/illarion/lockwallet/internal/storage"
	"github.com/illarion/lockwallet/internal/swap"
	"github.com/illarion/lockwallet/internal/vault"
)

// App bundles the configuration, database and vault manager of one invocation.
type App struct {
	Cfg   *config.Config
	DB    *storage.Storage
	Vault *vault.Manager
}

// Close releases the database.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// OpenApp loads configuration and opens the vault file. Unless create is set
// a missing vault file is reported as vault.ErrUninitialized.
func OpenApp(ctx context.Context, create bool) (*App, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level, os.Stderr)

	if !create {
		if _, err := os.Stat(cfg.Vault.Path); err != nil {
			if os.IsNotExist(err) {
				return nil, vault.ErrUninitialized
			}
			return nil, err
		}
	}

	db, err := storage.Open(cfg.Vault.Path)
	if err != nil {
		return nil, err
	}

	m, err := vault.NewManager(db,
		vault.WithKDFParams(cfg.KDF),
		vault.WithRegistry(cfg.Registry()),
		vault.WithAuditor(db),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	logging.Logger(ctx).Debug("vault opened", "path", cfg.Vault.Path, "state", m.State())
	return &App{Cfg: cfg, DB: db, Vault: m}, nil
}

// OpenAppOrExit is like OpenApp but exits on error
func OpenAppOrExit(ctx context.Context, create bool) *App {
	app, err := OpenApp(ctx, create)
	if err != nil {
		HandleError(err)
	}
	return app
}

// Password sources
const (
	SourceEnv     = "env"
	SourceKeyring = "keyring"
	SourcePrompt  = "prompt"
)

// GetPassword retrieves password from environment, keyring or prompts user
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(label string, vaultID string) ([]byte, string, error) {
	// Try environment variable first
	if password := prompt.GetPasswordFromEnv(); password != nil {
		return password, SourceEnv, nil
	}

	if vaultID != "" {
		if password, err := keyring.GetPassword(vaultID); err == nil && password != "" {
			return []byte(password), SourceKeyring, nil
		}
	}

	// Prompt user
	password, err := prompt.ReadPassword(label)
	if err != nil {
		return nil, "", err
	}
	return password, SourcePrompt, nil
}

// UnlockVault unlocks the app's vault. A stale keyring password is removed
// and the user is prompted once instead.
func UnlockVault(ctx context.Context, app *App) []byte {
	vaultID, _ := app.DB.GetVaultID()

	password, source, err := GetPassword("Enter password: ", vaultID)
	if err != nil {
		HandleError(err)
	}

	err = app.Vault.Unlock(ctx, password)
	if errors.Is(err, vault.ErrIncorrectPassword) && source == SourceKeyring {
		crypto.ClearBytes(password)
		fmt.Fprintln(os.Stderr, "warning: password in keyring is outdated, removing it")
		_ = keyring.DeletePassword(vaultID)

		password, err = prompt.ReadPassword("Enter password: ")
		if err != nil {
			HandleError(err)
		}
		err = app.Vault.Unlock(ctx, password)
	}
	if err != nil {
		crypto.ClearBytes(password)
		HandleError(err)
	}
	return password
}

// GetNewPassword reads a new password from the environment or a confirmed
// prompt and checks it against the password policy.
func GetNewPassword(label string) ([]byte, error) {
	password := prompt.GetPasswordFromEnv()
	if password == nil {
		var err error
		password, err = prompt.ReadPasswordConfirm(label)
		if err != nil {
			return nil, err
		}
	}
	if err := vault.CheckPasswordPolicy(password); err != nil {
		crypto.ClearBytes(password)
		return nil, err
	}
	return password, nil
}

// FindWallet looks a wallet up by id, id prefix or address.
func FindWallet(app *App, ref string) (*vault.Wallet, error) {
	var match *vault.Wallet
	for _, w := range app.Vault.Wallets() {
		if w.ID == ref || strings.EqualFold(w.Address, ref) {
			w := w
			return &w, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(w.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("wallet id prefix %q is ambiguous", ref)
			}
			w := w
			match = &w
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", vault.ErrWalletNotFound, ref)
	}
	return match, nil
}

// ChainClient builds an RPC client for a chain slug or id using the app config.
func ChainClient(app *App, ref string) (*chain.Client, error) {
	ch, err := app.Cfg.Registry().Resolve(ref)
	if err != nil {
		return nil, err
	}
	burst := int(app.Cfg.RPC.RateLimit)
	if burst < 1 {
		burst = 1
	}
	return chain.NewClient(ch,
		chain.WithHTTPClient(&http.Client{Timeout: app.Cfg.RPC.Timeout}),
		chain.WithRateLimit(app.Cfg.RPC.RateLimit, burst),
	), nil
}

// Quoter builds the swap quoter with the configured providers in fallback order.
func Quoter(app *App) *swap.Quoter {
	hc := &http.Client{Timeout: app.Cfg.Swap.Timeout}
	return swap.NewQuoter(
		swap.NewZeroX(swap.ProviderConfig{APIKey: app.Cfg.Swap.ZeroXAPIKey, HTTPClient: hc}),
		swap.NewOneInch(swap.ProviderConfig{APIKey: app.Cfg.Swap.OneInchAPIKey, HTTPClient: hc}),
	)
}

// HandleError handles common errors consistently
func HandleError(err error) {
	var kdfErr *vault.UnsupportedKDFError
	var quoteErr *swap.QuoteError
	var rpcErr *chain.RPCError
	var httpErr *chain.HTTPError

	switch {
	case errors.Is(err, vault.ErrUninitialized):
		fmt.Fprintf(os.Stderr, "Error: lockwallet not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'lockwallet init' first\n")
	case errors.Is(err, vault.ErrAlreadyInitialized):
		fmt.Fprintf(os.Stderr, "Error: a vault already exists here\n")
		fmt.Fprintf(os.Stderr, "Use 'lockwallet status' to see current state\n")
	case errors.Is(err, vault.ErrIncorrectPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, vault.ErrVaultCorrupt):
		fmt.Fprintf(os.Stderr, "Error: vault data is corrupt (%s)\n", err)
		fmt.Fprintf(os.Stderr, "Restore the vault file from a backup\n")
	case errors.As(err, &kdfErr):
		fmt.Fprintf(os.Stderr, "Error: vault uses unsupported key derivation %q\n", kdfErr.KDF)
	case errors.Is(err, vault.ErrUnsupportedVersion):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Upgrade lockwallet to open this vault\n")
	case errors.Is(err, vault.ErrPasswordTooShort):
		fmt.Fprintf(os.Stderr, "Error: password must be at least %d characters\n", vault.MinPasswordLength)
	case errors.Is(err, vault.ErrPasswordTooLong):
		fmt.Fprintf(os.Stderr, "Error: password must be at most %d characters\n", vault.MaxPasswordLength)
	case errors.Is(err, vault.ErrInvalidKey):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, vault.ErrWalletNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'lockwallet wallets' to list wallets\n")
	case errors.Is(err, chain.ErrUnsupportedChain):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.As(err, &quoteErr):
		fmt.Fprintf(os.Stderr, "Error: unable to fetch swap quote\n")
		for _, a := range quoteErr.Attempts {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", a.Provider, a.Err)
		}
	case errors.As(err, &rpcErr):
		fmt.Fprintf(os.Stderr, "Error: node rejected request: %s\n", rpcErr.Message)
	case errors.As(err, &httpErr):
		fmt.Fprintf(os.Stderr, "Error: rpc endpoint answered %s with http status %d\n", httpErr.Method, httpErr.Status)
		fmt.Fprintf(os.Stderr, "Check the rpc.urls setting for this chain\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// formatSize formats bytes as human-readable size
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
