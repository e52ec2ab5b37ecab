package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 1 << 20
	maxErrorBody    = 256
)

// Provider is a single quote source.
type Provider interface {
	Name() string
	Configured() bool
	Quote(ctx context.Context, req Request) (*Quote, error)
}

// ProviderConfig configures an HTTP-backed provider.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string // overrides the public endpoint
	HTTPClient *http.Client
}

func (c ProviderConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func getJSON(ctx context.Context, hc *http.Client, endpoint string, query url.Values, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}
	return nil
}

func parseImpact(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
