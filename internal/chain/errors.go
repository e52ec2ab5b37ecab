package chain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedChain  = errors.New("unsupported chain")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidTxHash     = errors.New("invalid transaction hash")
	ErrInvalidRawTx      = errors.New("invalid raw transaction")
	ErrMalformedResponse = errors.New("malformed rpc response")
	ErrBroadcast         = errors.New("broadcast failed")
)

// RPCError is a JSON-RPC error object returned by a node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// HTTPError is a non-200 reply from an RPC endpoint.
type HTTPError struct {
	Method string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected http status %d", e.Method, e.Status)
	}
	return fmt.Sprintf("%s: unexpected http status %d: %s", e.Method, e.Status, e.Body)
}
