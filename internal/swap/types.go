package swap

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultSlippage = 0.5 // percent

// Values assumed when a provider omits them from its reply.
const (
	DefaultTxValue     = "0"
	DefaultGasLimit    = "210000"
	DefaultGasEstimate = "0"
)

var (
	ErrInvalidRequest = errors.New("invalid swap request")
	ErrNotConfigured  = errors.New("provider not configured")
	ErrUnsupported    = errors.New("chain not supported by provider")
	ErrMalformedQuote = errors.New("malformed quote")
	ErrNoQuote        = errors.New("unable to fetch swap quote")
)

// Request asks for a quote selling FromAmount (base units) of FromToken.
type Request struct {
	FromToken  string  `validate:"required,eth_addr"`
	ToToken    string  `validate:"required,eth_addr,nefield=FromToken"`
	FromAmount string  `validate:"required,number"`
	ChainID    int64   `validate:"required,gt=0"`
	Slippage   float64 `validate:"gte=0,lte=50"` // percent, 0 means DefaultSlippage
}

func (r Request) slippage() float64 {
	if r.Slippage == 0 {
		return DefaultSlippage
	}
	return r.Slippage
}

// TxRequest is the unsigned transaction a quote asks the wallet to send.
type TxRequest struct {
	From     string `json:"from,omitempty" validate:"omitempty,eth_addr"`
	To       string `json:"to" validate:"required,eth_addr"`
	Data     string `json:"data" validate:"required,hexadecimal"`
	Value    string `json:"value" validate:"required,number"`
	GasLimit string `json:"gasLimit" validate:"required,number"`
}

// Quote is a provider's normalized answer.
type Quote struct {
	Provider    string    `json:"provider" validate:"required"`
	FromToken   string    `json:"fromToken" validate:"required,eth_addr"`
	ToToken     string    `json:"toToken" validate:"required,eth_addr"`
	FromAmount  string    `json:"fromAmount" validate:"required,number"`
	ToAmount    string    `json:"toAmount" validate:"required,number"`
	PriceImpact float64   `json:"priceImpact"`
	GasEstimate string    `json:"gasEstimate" validate:"required,number"`
	Tx          TxRequest `json:"tx"`
}

// Attempt records one provider's failure.
type Attempt struct {
	Provider string
	Err      error
}

// QuoteError is returned when every provider failed. Each attempt's cause is
// reachable through errors.Is and errors.As.
type QuoteError struct {
	Attempts []Attempt
}

func (e *QuoteError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrNoQuote.Error() + ": no providers"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return ErrNoQuote.Error() + ": " + strings.Join(parts, "; ")
}

func (e *QuoteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

func (e *QuoteError) Is(target error) bool {
	return target == ErrNoQuote
}

// HTTPError is a non-200 reply from a provider API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected http status %d: %s", e.Status, e.Body)
}
