package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/illarion/lockwallet/internal/hdwallet"
	"github.com/illarion/lockwallet/internal/logging"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second per chain

	maxResponseSize = 1 << 20
	maxErrorBody    = 256
)

// TxState is the lifecycle state of a broadcast transaction.
type TxState string

const (
	TxPending   TxState = "pending"
	TxConfirmed TxState = "confirmed"
	TxFailed    TxState = "failed"
)

// Balance is a native-currency balance.
type Balance struct {
	Address   string
	ChainID   int64
	Wei       *big.Int
	Formatted string
	Symbol    string
}

// TxStatus is the receipt-derived status of a transaction.
type TxStatus struct {
	Hash        string
	State       TxState
	BlockNumber uint64
	GasUsed     uint64
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc" validate:"eq=2.0"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type quantity struct {
	Value string `validate:"required,hexadecimal,startswith=0x"`
}

type txHash struct {
	Value string `validate:"required,len=66,hexadecimal,startswith=0x"`
}

type receipt struct {
	TransactionHash string `json:"transactionHash" validate:"required,len=66,hexadecimal"`
	Status          string `json:"status" validate:"required,oneof=0x0 0x1"`
	BlockNumber     string `json:"blockNumber" validate:"required,hexadecimal,startswith=0x"`
	GasUsed         string `json:"gasUsed" validate:"required,hexadecimal,startswith=0x"`
}

// Client talks JSON-RPC to a single chain's node.
type Client struct {
	chain      Chain
	httpClient *http.Client
	limiter    *rate.Limiter
	validate   *validator.Validate
	nextID     atomic.Uint64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a client for the chain's configured RPC URL.
func NewClient(ch Chain, opts ...ClientOption) *Client {
	c := &Client{
		chain:      ch,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chain returns the chain this client talks to.
func (c *Client) Chain() Chain {
	return c.chain
}

// Balance returns the latest native balance of address.
func (c *Client) Balance(ctx context.Context, address string) (*Balance, error) {
	if !hdwallet.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	var result string
	if err := c.call(ctx, "eth_getBalance", []any{address, "latest"}, &result); err != nil {
		return nil, err
	}
	wei, err := c.parseQuantity(result)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Address:   address,
		ChainID:   c.chain.ID,
		Wei:       wei,
		Formatted: FormatUnits(wei, c.chain.Currency.Decimals),
		Symbol:    c.chain.Currency.Symbol,
	}, nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx string) (string, error) {
	rawTx = strings.TrimSpace(rawTx)
	if len(rawTx) < 4 || c.validate.Var(rawTx, "hexadecimal,startswith=0x") != nil {
		return "", ErrInvalidRawTx
	}

	var hash string
	if err := c.call(ctx, "eth_sendRawTransaction", []any{rawTx}, &hash); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcast, err)
	}
	if err := c.validate.Struct(txHash{Value: hash}); err != nil {
		return "", fmt.Errorf("%w: %w: %v", ErrBroadcast, ErrMalformedResponse, err)
	}

	logging.Logger(ctx).Info("transaction broadcast", "chain", c.chain.Slug, "hash", hash)
	return hash, nil
}

// TransactionStatus reports whether a transaction is pending, confirmed or failed.
func (c *Client) TransactionStatus(ctx context.Context, hash string) (*TxStatus, error) {
	if c.validate.Struct(txHash{Value: hash}) != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTxHash, hash)
	}

	var rcpt *receipt
	if err := c.call(ctx, "eth_getTransactionReceipt", []any{hash}, &rcpt); err != nil {
		return nil, err
	}
	if rcpt == nil {
		return &TxStatus{Hash: hash, State: TxPending}, nil
	}
	if err := c.validate.Struct(rcpt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	block, err := c.parseQuantity(rcpt.BlockNumber)
	if err != nil {
		return nil, err
	}
	gas, err := c.parseQuantity(rcpt.GasUsed)
	if err != nil {
		return nil, err
	}

	status := &TxStatus{
		Hash:        hash,
		State:       TxFailed,
		BlockNumber: block.Uint64(),
		GasUsed:     gas.Uint64(),
	}
	if rcpt.Status == "0x1" {
		status.State = TxConfirmed
	}
	return status, nil
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chain.RPCURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logging.Logger(ctx).Debug("rpc call", "chain", c.chain.Slug, "method", method)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &HTTPError{Method: method, Status: resp.StatusCode, Body: msg}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(rpcResp); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("%w: missing result", ErrMalformedResponse)
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) parseQuantity(s string) (*big.Int, error) {
	if err := c.validate.Struct(quantity{Value: s}); err != nil {
		return nil, fmt.Errorf("%w: bad quantity %q", ErrMalformedResponse, s)
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, fmt.Errorf("%w: bad quantity %q", ErrMalformedResponse, s)
	}
	return n, nil
}

// FormatUnits renders an integer amount with the given number of decimals,
// trimming trailing zeros but keeping at least one fractional digit.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		amount = new(big.Int)
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, unit, new(big.Int))

	fracStr := frac.String()
	if decimals > 0 {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
		fracStr = strings.TrimRight(fracStr, "0")
	} else {
		fracStr = ""
	}
	if fracStr == "" {
		fracStr = "0"
	}

	out := whole.String() + "." + fracStr
	if neg {
		out = "-" + out
	}
	return out
}
