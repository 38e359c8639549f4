package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"PriceHistorian/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the CryptoCompare daily-history endpoint.
const DefaultBaseURL = "https://min-api.cryptocompare.com/data/v2/histoday"

// CryptoCompareSource implements Source using the CryptoCompare histoday API.
type CryptoCompareSource struct {
	BaseURL string
	FSym    string // base asset symbol, e.g. BTC
	TSym    string // quote currency symbol, e.g. USD
	APIKey  string
	Client  *http.Client
}

// NewCryptoCompareSource creates a source with optional proxy support and a
// bounded per-request timeout.
func NewCryptoCompareSource(baseURL, fsym, tsym, apiKey, proxyURL string) *CryptoCompareSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CryptoCompareSource{
		BaseURL: baseURL,
		FSym:    fsym,
		TSym:    tsym,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (s *CryptoCompareSource) Name() string { return "cryptocompare" }

// histodayResponse is the response structure from the histoday endpoint.
type histodayResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time int64            `json:"time"`
			Open *decimal.Decimal `json:"open"`
		} `json:"Data"`
	} `json:"Data"`
}

// FetchOpeningPrice requests a one-day trailing window ending at the given
// day's midnight-UTC timestamp and accepts only the entry for that exact
// timestamp.
func (s *CryptoCompareSource) FetchOpeningPrice(ctx context.Context, day time.Time) (model.PricePoint, error) {
	day = model.Midnight(day)
	ts := day.Unix()

	q := url.Values{}
	q.Set("fsym", s.FSym)
	q.Set("tsym", s.TSym)
	q.Set("limit", "1")
	q.Set("toTs", strconv.FormatInt(ts, 10))
	q.Set("api_key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return model.PricePoint{}, &TransportError{Day: day, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PricePoint{}, &TransportError{Day: day, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return model.PricePoint{}, &TransportError{Day: day, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var hist histodayResponse
	if err := json.Unmarshal(body, &hist); err != nil {
		return model.PricePoint{}, &MalformedResponseError{Day: day, Err: err}
	}
	if hist.Response != "Success" {
		return model.PricePoint{}, &DataNotFoundError{Day: day, Reason: fmt.Sprintf("provider response %q: %s", hist.Response, hist.Message)}
	}
	if len(hist.Data.Data) == 0 {
		return model.PricePoint{}, &DataNotFoundError{Day: day, Reason: "empty data array"}
	}

	for _, entry := range hist.Data.Data {
		if entry.Time == ts && entry.Open != nil {
			return model.PricePoint{Day: day, Price: *entry.Open}, nil
		}
	}
	return model.PricePoint{}, &DataNotFoundError{Day: day, Reason: "requested timestamp absent from data array"}
}
