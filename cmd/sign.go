package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/hdwallet"
)

// Sign signs a 32-byte hex digest with a wallet key and prints r || s || v
func Sign(ctx context.Context, ref, digestHex string) {
	digest, err := hex.DecodeString(strings.TrimPrefix(digestHex, "0x"))
	if err != nil || len(digest) != hdwallet.DigestSize {
		HandleError(fmt.Errorf("%w: %q", hdwallet.ErrInvalidDigest, digestHex))
	}

	app := OpenAppOrExit(ctx, false)
	defer app.Close()

	w, err := FindWallet(app, ref)
	if err != nil {
		HandleError(err)
	}

	password := UnlockVault(ctx, app)
	crypto.ClearBytes(password)
	defer app.Vault.Lock()

	sig, err := app.Vault.SignDigest(w.ID, digest)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("0x%s\n", hex.EncodeToString(sig))
}
