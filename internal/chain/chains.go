package chain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Chain describes an EVM network.
type Chain struct {
	ID          int64
	Slug        string
	Name        string
	RPCURL      string
	ExplorerURL string
	Currency    Currency
}

// Currency is a chain's native currency.
type Currency struct {
	Name     string
	Symbol   string
	Decimals int
}

var ether = Currency{Name: "Ether", Symbol: "ETH", Decimals: 18}
var matic = Currency{Name: "MATIC", Symbol: "MATIC", Decimals: 18}

var defaultChains = []Chain{
	{ID: 1, Slug: "ethereum", Name: "Ethereum", RPCURL: "https://eth.llamarpc.com", ExplorerURL: "https://etherscan.io", Currency: ether},
	{ID: 137, Slug: "polygon", Name: "Polygon", RPCURL: "https://polygon.llamarpc.com", ExplorerURL: "https://polygonscan.com", Currency: matic},
	{ID: 42161, Slug: "arbitrum", Name: "Arbitrum", RPCURL: "https://arb1.arbitrum.io/rpc", ExplorerURL: "https://arbiscan.io", Currency: ether},
	{ID: 10, Slug: "optimism", Name: "Optimism", RPCURL: "https://mainnet.optimism.io", ExplorerURL: "https://optimistic.etherscan.io", Currency: ether},
	{ID: 8453, Slug: "base", Name: "Base", RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org", Currency: ether},
	{ID: 11155111, Slug: "sepolia", Name: "Sepolia", RPCURL: "https://rpc.sepolia.org", ExplorerURL: "https://sepolia.etherscan.io", Currency: ether},
	{ID: 80001, Slug: "mumbai", Name: "Mumbai", RPCURL: "https://rpc-mumbai.maticvigil.com", ExplorerURL: "https://mumbai.polygonscan.com", Currency: matic},
}

// Registry resolves chains by slug or numeric id.
type Registry struct {
	bySlug map[string]Chain
	byID   map[int64]Chain
}

// NewRegistry returns the built-in chains with RPC URLs replaced by any
// entry in overrides (keyed by slug).
func NewRegistry(overrides map[string]string) *Registry {
	r := &Registry{
		bySlug: make(map[string]Chain, len(defaultChains)),
		byID:   make(map[int64]Chain, len(defaultChains)),
	}
	for _, c := range defaultChains {
		if u, ok := overrides[c.Slug]; ok && u != "" {
			c.RPCURL = u
		}
		r.bySlug[c.Slug] = c
		r.byID[c.ID] = c
	}
	return r
}

// DefaultRegistry returns the built-in chains without overrides.
func DefaultRegistry() *Registry {
	return NewRegistry(nil)
}

// BySlug looks up a chain by its slug, case-insensitively.
func (r *Registry) BySlug(slug string) (Chain, bool) {
	c, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	return c, ok
}

// ByID looks up a chain by its EIP-155 chain id.
func (r *Registry) ByID(id int64) (Chain, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Resolve accepts either a slug or a decimal chain id.
func (r *Registry) Resolve(s string) (Chain, error) {
	if c, ok := r.BySlug(s); ok {
		return c, nil
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		if c, ok := r.ByID(id); ok {
			return c, nil
		}
	}
	return Chain{}, r.unsupported(s)
}

// Lookup is like BySlug but reports an unknown slug as ErrUnsupportedChain.
func (r *Registry) Lookup(slug string) (Chain, error) {
	if c, ok := r.BySlug(slug); ok {
		return c, nil
	}
	return Chain{}, r.unsupported(slug)
}

func (r *Registry) unsupported(s string) error {
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedChain, s, strings.Join(r.Slugs(), ", "))
}

// Slugs returns the known chain slugs in sorted order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.bySlug))
	for s := range r.bySlug {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}
