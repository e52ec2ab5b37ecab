package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockwallet/internal/hdwallet"
)

// Balance prints the native balance of a wallet (by id) or any address.
// No password required.
func Balance(ctx context.Context, ref, chainRef string) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	address := ref
	if !hdwallet.IsHexAddress(ref) {
		w, err := FindWallet(app, ref)
		if err != nil {
			HandleError(err)
		}
		address = w.Address
		if chainRef == "" {
			chainRef = w.Chain
		}
	}
	if chainRef == "" {
		chainRef = "ethereum"
	}

	client, err := ChainClient(app, chainRef)
	if err != nil {
		HandleError(err)
	}
	bal, err := client.Balance(ctx, address)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("%s %s\n", bal.Formatted, bal.Symbol)
	fmt.Printf("  address: %s\n", bal.Address)
	fmt.Printf("  chain:   %s (%d)\n", client.Chain().Name, bal.ChainID)
	fmt.Printf("  wei:     %s\n", bal.Wei.String())
}
