package hdwallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"
)

const (
	PrivateKeySize = 32
	AddressSize    = 20
	DigestSize     = 32
	SignatureSize  = 65

	purpose  = 44
	coinType = 60 // Ethereum
)

var (
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidDigest     = errors.New("digest must be 32 bytes")
)

// Account is a derived or imported key pair.
type Account struct {
	Address    string // EIP-55 checksummed
	PrivateKey string // 0x-prefixed lowercase hex
	Path       string // empty for imported keys
}

// GenerateMnemonic returns a new BIP-39 phrase of 12 or 24 words.
func GenerateMnemonic(words int) (string, error) {
	var bits int
	switch words {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return "", fmt.Errorf("unsupported mnemonic length %d (want 12 or 24)", words)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to encode mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic lowercases the phrase and collapses whitespace.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// ValidateMnemonic reports whether the phrase is a valid BIP-39 mnemonic.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic))
}

// DerivationPath returns the BIP-44 Ethereum path for an account index.
func DerivationPath(index uint32) string {
	return fmt.Sprintf("m/44'/60'/0'/0/%d", index)
}

// DeriveAccount derives the account at m/44'/60'/0'/0/index from a mnemonic.
func DeriveAccount(mnemonic string, index uint32) (*Account, error) {
	mnemonic = NormalizeMnemonic(mnemonic)
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + purpose,
		hdkeychain.HardenedKeyStart + coinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		index,
	}
	for _, child := range path {
		key, err = key.Derive(child)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", child, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}

	return &Account{
		Address:    PublicKeyAddress(priv.PubKey()),
		PrivateKey: "0x" + hex.EncodeToString(priv.Serialize()),
		Path:       DerivationPath(index),
	}, nil
}

// AccountFromPrivateKey rebuilds an account from a hex private key, with or
// without the 0x prefix. The key must be a valid secp256k1 scalar.
func AccountFromPrivateKey(privateKey string) (*Account, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &Account{
		Address:    PublicKeyAddress(priv.PubKey()),
		PrivateKey: "0x" + hex.EncodeToString(priv.Serialize()),
	}, nil
}

func parsePrivateKey(privateKey string) (*btcec.PrivateKey, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"), "0X")
	if len(s) != PrivateKeySize*2 {
		return nil, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalidPrivateKey, PrivateKeySize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: out of curve range", ErrInvalidPrivateKey)
	}

	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv, nil
}

// PublicKeyAddress returns the checksummed address of a secp256k1 public key.
func PublicKeyAddress(pub *btcec.PublicKey) string {
	uncompressed := pub.SerializeUncompressed()
	h := keccak256(uncompressed[1:])
	return ChecksumAddress(h[len(h)-AddressSize:])
}

// ChecksumAddress renders a 20-byte address with the EIP-55 checksum.
func ChecksumAddress(addr []byte) string {
	lower := hex.EncodeToString(addr)
	hash := keccak256([]byte(lower))

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex address.
// The checksum is not enforced.
func IsHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	b, err := hex.DecodeString(s[2:])
	return err == nil && len(b) == AddressSize
}

// SignDigest signs a 32-byte digest and returns r || s || v with v in {0, 1}.
func SignDigest(privateKey string, digest []byte) ([]byte, error) {
	if len(digest) != DigestSize {
		return nil, ErrInvalidDigest
	}
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	compact := ecdsa.SignCompact(priv, digest, false)

	// compact is [27+v][r][s]
	sig := make([]byte, SignatureSize)
	copy(sig, compact[1:])
	sig[64] = compact[0] - 27
	return sig, nil
}

// RecoverAddress returns the address that produced an r || s || v signature.
func RecoverAddress(digest, sig []byte) (string, error) {
	if len(digest) != DigestSize {
		return "", ErrInvalidDigest
	}
	if len(sig) != SignatureSize || sig[64] > 1 {
		return "", errors.New("invalid signature")
	}

	compact := make([]byte, SignatureSize)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}
	return PublicKeyAddress(pub), nil
}

// Keccak256 returns the legacy Keccak-256 hash used by Ethereum.
func Keccak256(data ...[]byte) []byte {
	return keccak256(data...)
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
