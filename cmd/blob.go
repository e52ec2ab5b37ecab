package cmd

import (
	"context"
	"fmt"
)

// Blob prints the encrypted vault blob as JSON. No password required; the
// blob is safe to upload.
func Blob(ctx context.Context) {
	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	blob, err := app.Vault.Blob()
	if err != nil {
		HandleError(err)
	}
	data, err := blob.Marshal()
	if err != nil {
		HandleError(err)
	}
	fmt.Println(string(data))
}
