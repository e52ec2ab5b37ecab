package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/keyring"
	"github.com/illarion/lockwallet/internal/prompt"
	"github.com/illarion/lockwallet/internal/vault"
)

// Passwd changes the vault password
func Passwd(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	// Get vault ID for keyring lookup
	vaultID, _ := app.DB.GetVaultID()

	currentPassword, _, err := GetPassword("Enter current password: ", vaultID)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(currentPassword)

	// New password always comes from the terminal
	newPassword, err := prompt.ReadPasswordConfirm("Enter new password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(newPassword)

	if err := vault.CheckPasswordPolicy(newPassword); err != nil {
		HandleError(err)
	}

	if err := app.Vault.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		HandleError(err)
	}

	// Keep a cached password in sync
	if vaultID != "" && keyring.HasPassword(vaultID) {
		if err := keyring.SavePassword(vaultID, string(newPassword)); err == nil {
			fmt.Println("Keyring updated with new password")
		}
	}

	// Compact database after rewriting the blob
	if err := app.DB.Compact(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
	}

	fmt.Println("password changed successfully")
}
