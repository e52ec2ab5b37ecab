// Package vault implements the encrypted wallet vault.
//
// A vault is one encrypted blob holding the recovery mnemonic and every
// private key, stored next to a password verifier and the public wallet
// list. The blob is replaced wholesale on every mutation.
//
// Manager drives the Uninitialized, Locked and Unlocked states. Decrypted
// key material lives only inside memguard enclaves of an unlocked Manager.
package vault
