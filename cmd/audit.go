package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Audit prints the most recent audit events, newest first
func Audit(ctx context.Context, limit int) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	events, err := app.DB.ListEvents(limit)
	if err != nil {
		HandleError(err)
	}
	if len(events) == 0 {
		fmt.Println("No audit events")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tWALLET\tDETAIL")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ev.Time.Local().Format(time.DateTime), ev.Type, ev.WalletID, ev.Detail)
	}
	w.Flush()
}
