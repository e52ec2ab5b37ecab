package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/prompt"
)

// Import adds a private key, read without echo, to the vault
func Import(ctx context.Context, chainSlug, name string) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	password := UnlockVault(ctx, app)
	crypto.ClearBytes(password)
	defer app.Vault.Lock()

	key, err := prompt.ReadSecret("Enter private key: ")
	if err != nil {
		HandleError(err)
	}

	w, err := app.Vault.ImportKey(ctx, key, chainSlug, name)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Imported %s\n", w.Address)
	fmt.Printf("  id:    %s\n", w.ID)
	fmt.Printf("  chain: %s\n", w.Chain)
	fmt.Printf("  name:  %s\n", w.Name)
}
