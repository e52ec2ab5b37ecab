package swap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	weth   = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	usdc   = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	router = "0xDef1C0ded9bec7F1a1670819833240f027b25EfF"
	sender = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testRequest() Request {
	return Request{
		FromToken:  weth,
		ToToken:    usdc,
		FromAmount: "1000000000000000000",
		ChainID:    1,
	}
}

func zeroXServer(t *testing.T, status int, body any, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "/swap/v1/quote", r.URL.Path)
		assert.Equal(t, "zx-key", r.Header.Get("0x-api-key"))
		assert.Equal(t, weth, r.URL.Query().Get("sellToken"))
		assert.Equal(t, usdc, r.URL.Query().Get("buyToken"))
		assert.Equal(t, "0.005", r.URL.Query().Get("slippagePercentage"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func oneInchServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5.0/1/swap", r.URL.Path)
		assert.Equal(t, "Bearer inch-key", r.Header.Get("Authorization"))
		assert.Equal(t, "0.5", r.URL.Query().Get("slippage"))
		assert.Equal(t, "false", r.URL.Query().Get("disableEstimate"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var zeroXOK = map[string]any{
	"buyAmount":            "2500000000",
	"estimatedPriceImpact": "0.12",
	"estimatedGas":         "136000",
	"to":                   router,
	"data":                 "0xd9627aa4",
	"value":                "0",
	"gas":                  "150000",
}

var oneInchOK = map[string]any{
	"toTokenAmount": "2490000000",
	"tx": map[string]any{
		"to":    "0x1111111254EEB25477B68fb85Ed929f73A960582",
		"data":  "0x12aa3caf",
		"value": "0",
		"gas":   160000,
	},
}

func TestQuoteFromFirstProvider(t *testing.T) {
	var hits atomic.Int32
	zx := zeroXServer(t, http.StatusOK, zeroXOK, &hits)
	q := NewQuoter(
		NewZeroX(ProviderConfig{APIKey: "zx-key", BaseURL: zx.URL}),
		NewOneInch(ProviderConfig{APIKey: "inch-key", BaseURL: "http://127.0.0.1:1"}),
	)

	quote, err := q.Quote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "0x", quote.Provider)
	assert.Equal(t, "2500000000", quote.ToAmount)
	assert.Equal(t, "136000", quote.GasEstimate)
	assert.InDelta(t, 0.12, quote.PriceImpact, 1e-9)
	assert.Equal(t, router, quote.Tx.To)
	assert.Equal(t, "150000", quote.Tx.GasLimit)
	assert.Equal(t, int32(1), hits.Load())
}

func TestQuoteFallsBackToSecondProvider(t *testing.T) {
	zx := zeroXServer(t, http.StatusInternalServerError, map[string]string{"reason": "boom"}, nil)
	inch := oneInchServer(t, http.StatusOK, oneInchOK)
	q := NewQuoter(
		NewZeroX(ProviderConfig{APIKey: "zx-key", BaseURL: zx.URL}),
		NewOneInch(ProviderConfig{APIKey: "inch-key", BaseURL: inch.URL}),
	)

	quote, err := q.Quote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "1inch", quote.Provider)
	assert.Equal(t, "2490000000", quote.ToAmount)
	assert.Equal(t, "160000", quote.GasEstimate)
	assert.Equal(t, "160000", quote.Tx.GasLimit)
}

func TestQuoteFillsOmittedTxFields(t *testing.T) {
	sparse := map[string]any{
		"buyAmount": "2500000000",
		"to":        router,
		"data":      "0xd9627aa4",
	}
	zx := zeroXServer(t, http.StatusOK, sparse, nil)
	q := NewQuoter(NewZeroX(ProviderConfig{APIKey: "zx-key", BaseURL: zx.URL}))

	quote, err := q.Quote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "0x", quote.Provider)
	assert.Equal(t, DefaultGasEstimate, quote.GasEstimate)
	assert.Equal(t, DefaultTxValue, quote.Tx.Value)
	assert.Equal(t, DefaultGasLimit, quote.Tx.GasLimit)
	assert.Zero(t, quote.PriceImpact)
}

func TestOneInchFillsOmittedTxFields(t *testing.T) {
	sparse := map[string]any{
		"toTokenAmount": "2490000000",
		"tx": map[string]any{
			"to":   "0x1111111254EEB25477B68fb85Ed929f73A960582",
			"data": "0x12aa3caf",
		},
	}
	inch := oneInchServer(t, http.StatusOK, sparse)
	q := NewQuoter(NewOneInch(ProviderConfig{APIKey: "inch-key", BaseURL: inch.URL}))

	quote, err := q.Quote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, DefaultGasEstimate, quote.GasEstimate)
	assert.Equal(t, DefaultTxValue, quote.Tx.Value)
	assert.Equal(t, DefaultGasLimit, quote.Tx.GasLimit)
}

func TestQuoteAllProvidersFail(t *testing.T) {
	zx := zeroXServer(t, http.StatusBadRequest, map[string]string{"reason": "bad token"}, nil)
	q := NewQuoter(
		NewZeroX(ProviderConfig{APIKey: "zx-key", BaseURL: zx.URL}),
		NewOneInch(ProviderConfig{}),
	)

	_, err := q.Quote(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoQuote)
	assert.ErrorIs(t, err, ErrNotConfigured)

	var qerr *QuoteError
	require.ErrorAs(t, err, &qerr)
	require.Len(t, qerr.Attempts, 2)
	assert.Equal(t, "0x", qerr.Attempts[0].Provider)
	assert.Equal(t, "1inch", qerr.Attempts[1].Provider)

	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusBadRequest, herr.Status)
	assert.Contains(t, err.Error(), "0x:")
	assert.Contains(t, err.Error(), "1inch: provider not configured")
}

func TestQuoteRejectsMalformedProviderReply(t *testing.T) {
	bad := map[string]any{"buyAmount": "lots", "to": "nowhere", "data": "0x", "value": "0", "gas": "1"}
	zx := zeroXServer(t, http.StatusOK, bad, nil)
	q := NewQuoter(NewZeroX(ProviderConfig{APIKey: "zx-key", BaseURL: zx.URL}))

	_, err := q.Quote(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrMalformedQuote)
}

func TestQuoteValidatesRequest(t *testing.T) {
	var hits atomic.Int32
	zx := zeroXServer(t, http.StatusOK, zeroXOK, &hits)
	q := NewQuoter(NewZeroX(ProviderConfig{APIKey: "zx-key", BaseURL: zx.URL}))

	tests := []struct {
		name string
		mut  func(*Request)
	}{
		{"bad from token", func(r *Request) { r.FromToken = "0x123" }},
		{"same tokens", func(r *Request) { r.ToToken = r.FromToken }},
		{"negative amount", func(r *Request) { r.FromAmount = "-5" }},
		{"decimal amount", func(r *Request) { r.FromAmount = "1.5" }},
		{"missing chain", func(r *Request) { r.ChainID = 0 }},
		{"slippage too high", func(r *Request) { r.Slippage = 51 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mut(&req)
			_, err := q.Quote(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestZeroXUnsupportedChain(t *testing.T) {
	z := NewZeroX(ProviderConfig{APIKey: "zx-key"})
	req := testRequest()
	req.ChainID = 11155111

	_, err := z.Quote(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestQuoteNoProviders(t *testing.T) {
	_, err := NewQuoter().Quote(context.Background(), testRequest())
	var qerr *QuoteError
	require.True(t, errors.As(err, &qerr))
	assert.Empty(t, qerr.Attempts)
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestPrepare(t *testing.T) {
	q := NewQuoter()
	quote := &Quote{Tx: TxRequest{To: router, Data: "0xd9627aa4", Value: "0", GasLimit: "150000"}}

	tx, err := q.Prepare(quote, sender)
	require.NoError(t, err)
	assert.Equal(t, sender, tx.From)
	assert.Equal(t, router, tx.To)
	assert.Empty(t, quote.Tx.From, "quote must not be mutated")

	_, err = q.Prepare(quote, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = q.Prepare(nil, sender)
	assert.ErrorIs(t, err, ErrMalformedQuote)
}
