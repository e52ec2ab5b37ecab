package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/hdwallet"
	"github.com/illarion/lockwallet/internal/prompt"
)

// Init creates a new vault, optionally seeded from a recovery phrase
func Init(ctx context.Context, withMnemonic, generate bool, words int) {
	if withMnemonic && generate {
		fmt.Fprintln(os.Stderr, "Error: --mnemonic and --generate are mutually exclusive")
		os.Exit(1)
	}

	app := OpenAppOrExit(ctx, true)
	defer app.Close()

	var mnemonic string
	var err error
	switch {
	case generate:
		mnemonic, err = hdwallet.GenerateMnemonic(words)
		if err != nil {
			HandleError(err)
		}
	case withMnemonic:
		mnemonic, err = prompt.ReadSecret("Enter recovery phrase: ")
		if err != nil {
			HandleError(err)
		}
	}

	// Read password (env var or prompt with confirmation)
	password, err := GetNewPassword("Enter password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	if err := app.Vault.Create(ctx, password, mnemonic); err != nil {
		HandleError(err)
	}
	if _, err := app.DB.GetOrCreateVaultID(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to assign vault id: %s\n", err)
	}

	fmt.Printf("✓ Initialized %s\n", app.Cfg.Vault.Path)
	for _, w := range app.Vault.Wallets() {
		fmt.Printf("  %s  %s  %s (%s)\n", w.ID, w.Address, w.Name, w.Chain)
	}

	if generate {
		fmt.Println()
		fmt.Println("Recovery phrase (write it down, it is shown only once):")
		fmt.Println()
		fmt.Printf("  %s\n", mnemonic)
	}
}
