package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	oneInchBaseURL = "https://api.1inch.io"
	zeroAddress    = "0x0000000000000000000000000000000000000000"
)

type oneInchResponse struct {
	ToTokenAmount        string `json:"toTokenAmount"`
	EstimatedPriceImpact string `json:"estimatedPriceImpact"`
	Tx                   struct {
		To    string      `json:"to"`
		Data  string      `json:"data"`
		Value string      `json:"value"`
		Gas   json.Number `json:"gas"`
	} `json:"tx"`
}

// OneInch queries the 1inch v5 swap API.
type OneInch struct {
	cfg ProviderConfig
	hc  *http.Client
}

func NewOneInch(cfg ProviderConfig) *OneInch {
	return &OneInch{cfg: cfg, hc: cfg.httpClient()}
}

func (o *OneInch) Name() string { return "1inch" }

func (o *OneInch) Configured() bool { return o.cfg.APIKey != "" }

func (o *OneInch) Quote(ctx context.Context, req Request) (*Quote, error) {
	base := o.cfg.BaseURL
	if base == "" {
		base = oneInchBaseURL
	}
	endpoint := fmt.Sprintf("%s/v5.0/%d/swap", base, req.ChainID)

	query := url.Values{}
	query.Set("fromTokenAddress", req.FromToken)
	query.Set("toTokenAddress", req.ToToken)
	query.Set("amount", req.FromAmount)
	query.Set("fromAddress", zeroAddress)
	query.Set("slippage", strconv.FormatFloat(req.slippage(), 'f', -1, 64))
	query.Set("disableEstimate", "false")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	var resp oneInchResponse
	if err := getJSON(ctx, o.hc, endpoint, query, header, &resp); err != nil {
		return nil, err
	}

	gas := resp.Tx.Gas.String()
	return &Quote{
		Provider:    o.Name(),
		FromToken:   req.FromToken,
		ToToken:     req.ToToken,
		FromAmount:  req.FromAmount,
		ToAmount:    resp.ToTokenAmount,
		PriceImpact: parseImpact(resp.EstimatedPriceImpact),
		GasEstimate: orDefault(gas, DefaultGasEstimate),
		Tx: TxRequest{
			To:       resp.Tx.To,
			Data:     resp.Tx.Data,
			Value:    orDefault(resp.Tx.Value, DefaultTxValue),
			GasLimit: orDefault(gas, DefaultGasLimit),
		},
	}, nil
}
