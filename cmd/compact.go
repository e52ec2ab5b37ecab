package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the vault database to reclaim unused space
func Compact(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	// Get file size before
	info, err := os.Stat(app.Cfg.Vault.Path)
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := app.DB.Compact(); err != nil {
		HandleError(err)
	}

	// Get file size after
	info, err = os.Stat(app.Cfg.Vault.Path)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
