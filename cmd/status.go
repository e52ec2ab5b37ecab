package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/keyring"
	"github.com/illarion/lockwallet/internal/vault"
)

// Status shows the current state of the vault. No password required.
func Status(ctx context.Context) {
	app, err := OpenApp(ctx, false)
	if errors.Is(err, vault.ErrUninitialized) {
		fmt.Println("No vault found in current directory")
		fmt.Println("Run 'lockwallet init' to create one")
		return
	}
	if err != nil {
		HandleError(err)
	}
	defer app.Close()

	initialized, err := app.DB.IsInitialized()
	if err != nil {
		HandleError(err)
	}
	if !initialized {
		fmt.Printf("%s: empty (run 'lockwallet init')\n", app.Cfg.Vault.Path)
		return
	}

	blob, err := app.Vault.Blob()
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Vault:      %s\n", app.Cfg.Vault.Path)
	if info, err := os.Stat(app.Cfg.Vault.Path); err == nil {
		fmt.Printf("Size:       %s\n", formatSize(info.Size()))
	}
	if modified, err := app.DB.GetModified(); err == nil {
		fmt.Printf("Modified:   %s\n", modified.Local().Format(time.RFC3339))
	}
	fmt.Printf("Encryption: AES-256-GCM, %s\n", describeKDF(blob))
	fmt.Printf("Format:     %s\n", blob.Version)
	fmt.Printf("Wallets:    %d\n", len(app.Vault.Wallets()))

	vaultID, err := app.DB.GetVaultID()
	if err == nil && keyring.HasPassword(vaultID) {
		fmt.Println("Password:   cached in keyring")
	} else {
		fmt.Println("Password:   not cached")
	}
}

func describeKDF(b *vault.Blob) string {
	p := b.Params()
	if p.Algorithm == crypto.Argon2ID {
		return fmt.Sprintf("argon2id (t=%d, m=%d KiB)", p.Time, p.Memory)
	}
	return fmt.Sprintf("%s (%d iterations)", p.Algorithm, p.Iterations)
}
