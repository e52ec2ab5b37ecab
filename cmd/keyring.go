package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/keyring"
	"github.com/illarion/lockwallet/internal/prompt"
	"github.com/illarion/lockwallet/internal/vault"
)

// KeyringSave saves the password to the OS keyring
func KeyringSave(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	// Prompt for password
	password, err := prompt.ReadPassword("Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if err := app.Vault.Unlock(ctx, password); err != nil {
		HandleError(err)
	}
	app.Vault.Lock()

	// Get vault ID (create if not exists)
	vaultID, err := app.DB.GetOrCreateVaultID()
	if err != nil {
		HandleError(err)
	}

	// Save to keyring
	if err := keyring.SavePassword(vaultID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	// Get vault ID
	vaultID, err := app.DB.GetVaultID()
	if err != nil || !keyring.HasPassword(vaultID) {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to remove from keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(ctx context.Context) {
	app, err := OpenApp(ctx, false)
	if err != nil {
		if errors.Is(err, vault.ErrUninitialized) {
			fmt.Println("Password: not stored")
			return
		}
		HandleError(err)
	}
	defer app.Close()

	// Get vault ID
	vaultID, err := app.DB.GetVaultID()
	if err != nil {
		fmt.Println("Password: not stored")
		return
	}

	if keyring.HasPassword(vaultID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
