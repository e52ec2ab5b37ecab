package cmd

import (
	"context"
	"fmt"
)

// Send broadcasts a signed raw transaction and records it in the audit log
func Send(ctx context.Context, chainRef, walletRef, rawTx string) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	var walletID string
	if walletRef != "" {
		w, err := FindWallet(app, walletRef)
		if err != nil {
			HandleError(err)
		}
		walletID = w.ID
	}

	client, err := ChainClient(app, chainRef)
	if err != nil {
		HandleError(err)
	}
	hash, err := client.SendRawTransaction(ctx, rawTx)
	if err != nil {
		HandleError(err)
	}
	app.Vault.RecordTx(ctx, walletID, hash)

	fmt.Printf("✓ Sent %s\n", hash)
	if explorer := client.Chain().ExplorerURL; explorer != "" {
		fmt.Printf("  %s/tx/%s\n", explorer, hash)
	}
}
