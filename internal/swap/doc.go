// Package swap fetches token swap quotes from aggregator APIs.
//
// Providers are tried in order (0x first, then 1inch). A provider that
// fails does not stop the chain, but its failure is kept: when no provider
// produces a quote the caller gets a *QuoteError listing every attempt and
// its cause.
package swap
