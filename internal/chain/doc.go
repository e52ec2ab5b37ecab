// Package chain holds the EVM chain registry and a minimal JSON-RPC client.
//
// The client covers the three calls lockwallet needs at its boundary:
// native balance lookup, broadcast of an already signed transaction and
// receipt-based status. Replies are decoded into typed structs and
// validated before use; malformed replies fail with ErrMalformedResponse.
package chain
