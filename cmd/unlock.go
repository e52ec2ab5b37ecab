package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/keyring"
)

// Unlock checks the password against the vault. With remember set the
// password is cached in the OS keyring for later commands.
func Unlock(ctx context.Context, remember bool) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	password := UnlockVault(ctx, app)
	defer crypto.ClearBytes(password)

	fmt.Printf("✓ Vault unlocked (%d wallets)\n", len(app.Vault.Wallets()))

	if remember {
		vaultID, err := app.DB.GetOrCreateVaultID()
		if err != nil {
			HandleError(err)
		}
		if err := keyring.SavePassword(vaultID, string(password)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("Password saved to keyring")
	}
	app.Vault.Lock()
}

// Lock forgets the cached keyring password so later commands prompt again.
func Lock(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	app.Vault.Lock()

	vaultID, err := app.DB.GetVaultID()
	if err != nil {
		fmt.Println("✓ Vault locked")
		return
	}
	if err := keyring.DeletePassword(vaultID); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to remove keyring password: %s\n", err)
	}
	fmt.Println("✓ Vault locked, cached password removed")
}
