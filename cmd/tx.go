package cmd

import (
	"context"
	"fmt"
)

// Tx prints the status of a transaction
func Tx(ctx context.Context, hash, chainRef string) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	client, err := ChainClient(app, chainRef)
	if err != nil {
		HandleError(err)
	}
	status, err := client.TransactionStatus(ctx, hash)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("%s: %s\n", status.Hash, status.State)
	if status.BlockNumber > 0 {
		fmt.Printf("  block:    %d\n", status.BlockNumber)
		fmt.Printf("  gas used: %d\n", status.GasUsed)
	}
}
