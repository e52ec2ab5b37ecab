package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

var zeroXHosts = map[int64]string{
	1:     "api",
	137:   "polygon",
	42161: "arbitrum",
	10:    "optimism",
	8453:  "base",
}

type zeroXResponse struct {
	BuyAmount            string      `json:"buyAmount"`
	EstimatedPriceImpact string      `json:"estimatedPriceImpact"`
	EstimatedGas         json.Number `json:"estimatedGas"`
	To                   string      `json:"to"`
	Data                 string      `json:"data"`
	Value                string      `json:"value"`
	Gas                  json.Number `json:"gas"`
}

// ZeroX queries the 0x swap API.
type ZeroX struct {
	cfg ProviderConfig
	hc  *http.Client
}

func NewZeroX(cfg ProviderConfig) *ZeroX {
	return &ZeroX{cfg: cfg, hc: cfg.httpClient()}
}

func (z *ZeroX) Name() string { return "0x" }

func (z *ZeroX) Configured() bool { return z.cfg.APIKey != "" }

func (z *ZeroX) endpoint(chainID int64) (string, error) {
	if z.cfg.BaseURL != "" {
		return z.cfg.BaseURL + "/swap/v1/quote", nil
	}
	host, ok := zeroXHosts[chainID]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupported, chainID)
	}
	return "https://" + host + ".api.0x.org/swap/v1/quote", nil
}

func (z *ZeroX) Quote(ctx context.Context, req Request) (*Quote, error) {
	endpoint, err := z.endpoint(req.ChainID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("sellToken", req.FromToken)
	query.Set("buyToken", req.ToToken)
	query.Set("sellAmount", req.FromAmount)
	query.Set("slippagePercentage", strconv.FormatFloat(req.slippage()/100, 'f', -1, 64))

	header := http.Header{}
	header.Set("0x-api-key", z.cfg.APIKey)

	var resp zeroXResponse
	if err := getJSON(ctx, z.hc, endpoint, query, header, &resp); err != nil {
		return nil, err
	}

	return &Quote{
		Provider:    z.Name(),
		FromToken:   req.FromToken,
		ToToken:     req.ToToken,
		FromAmount:  req.FromAmount,
		ToAmount:    resp.BuyAmount,
		PriceImpact: parseImpact(resp.EstimatedPriceImpact),
		GasEstimate: orDefault(resp.EstimatedGas.String(), DefaultGasEstimate),
		Tx: TxRequest{
			To:       resp.To,
			Data:     resp.Data,
			Value:    orDefault(resp.Value, DefaultTxValue),
			GasLimit: orDefault(resp.Gas.String(), DefaultGasLimit),
		},
	}, nil
}
