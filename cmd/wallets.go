package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Wallets lists wallets. No password required.
func Wallets(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	wallets := app.Vault.Wallets()
	if len(wallets) == 0 {
		fmt.Println("No wallets")
		fmt.Println("Use 'lockwallet import' to add one")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCHAIN\tADDRESS\tCREATED")
	for _, wl := range wallets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", wl.ID, wl.Name, wl.Chain, wl.Address, wl.CreatedAt.Local().Format(time.DateTime))
	}
	w.Flush()
}
