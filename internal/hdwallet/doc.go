// Package hdwallet derives Ethereum-style accounts for lockwallet.
//
// Mnemonics follow BIP-39, hierarchical derivation follows BIP-32 on
// secp256k1, and account paths follow BIP-44 (m/44'/60'/0'/0/i).
// Addresses are the last 20 bytes of the Keccak-256 hash of the
// uncompressed public key, rendered with the EIP-55 mixed-case checksum.
package hdwallet
