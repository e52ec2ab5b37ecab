package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/lockwallet/internal/keyring"
	"github.com/illarion/lockwallet/internal/prompt"
)

// Reset deletes every key in the vault. The audit log is kept.
func Reset(ctx context.Context, force bool) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	if !force {
		fmt.Fprintf(os.Stderr, "This permanently deletes %d wallets and the recovery phrase from %s.\n",
			len(app.Vault.Wallets()), app.Cfg.Vault.Path)
		if !prompt.Confirm(os.Stdin, "Reset the vault?") {
			fmt.Println("Aborted")
			return
		}
	}

	vaultID, _ := app.DB.GetVaultID()
	if err := app.Vault.Reset(ctx); err != nil {
		HandleError(err)
	}
	if vaultID != "" {
		if err := keyring.DeletePassword(vaultID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove keyring password: %s\n", err)
		}
	}
	if err := app.DB.Compact(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
	}

	fmt.Println("✓ Vault reset")
}
