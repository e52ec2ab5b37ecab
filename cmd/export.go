package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/prompt"
)

// Export prints a wallet's private key, or the recovery phrase with mnemonic set
func Export(ctx context.Context, ref string, mnemonic, force bool) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	if !force && !prompt.Confirm(os.Stdin, "This prints secret key material to the terminal. Continue?") {
		fmt.Println("Aborted")
		return
	}

	password := UnlockVault(ctx, app)
	crypto.ClearBytes(password)
	defer app.Vault.Lock()

	if mnemonic {
		phrase, err := app.Vault.Mnemonic()
		if err != nil {
			HandleError(err)
		}
		if phrase == "" {
			fmt.Fprintln(os.Stderr, "Error: vault has no recovery phrase")
			os.Exit(1)
		}
		fmt.Println(phrase)
		return
	}

	w, err := FindWallet(app, ref)
	if err != nil {
		HandleError(err)
	}
	key, err := app.Vault.PrivateKey(w.ID)
	if err != nil {
		HandleError(err)
	}
	fmt.Println(key)
}
