package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockwallet/internal/swap"
)

// Quote fetches a swap quote. With a wallet, the prepared transaction is
// printed too.
func Quote(ctx context.Context, chainRef, from, to, amount string, slippage float64, walletRef string) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	ch, err := app.Cfg.Registry().Resolve(chainRef)
	if err != nil {
		HandleError(err)
	}

	quoter := Quoter(app)
	quote, err := quoter.Quote(ctx, swap.Request{
		FromToken:  from,
		ToToken:    to,
		FromAmount: amount,
		ChainID:    ch.ID,
		Slippage:   slippage,
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Quote from %s on %s\n", quote.Provider, ch.Name)
	fmt.Printf("  sell:         %s %s\n", quote.FromAmount, quote.FromToken)
	fmt.Printf("  buy:          %s %s\n", quote.ToAmount, quote.ToToken)
	fmt.Printf("  price impact: %.2f%%\n", quote.PriceImpact)
	fmt.Printf("  gas estimate: %s\n", quote.GasEstimate)

	if walletRef == "" {
		return
	}
	w, err := FindWallet(app, walletRef)
	if err != nil {
		HandleError(err)
	}
	tx, err := quoter.Prepare(quote, w.Address)
	if err != nil {
		HandleError(err)
	}
	fmt.Println()
	fmt.Println("Transaction:")
	fmt.Printf("  from:  %s\n", tx.From)
	fmt.Printf("  to:    %s\n", tx.To)
	fmt.Printf("  value: %s\n", tx.Value)
	fmt.Printf("  gas:   %s\n", tx.GasLimit)
	fmt.Printf("  data:  %s\n", tx.Data)
}
