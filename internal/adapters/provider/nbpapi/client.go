// Package nbpapi adapts the National Bank of Poland exchange-rate API
// (api.nbp.pl, table A) to the RateProvider port. Rates arrive quoted as one
// unit of foreign currency priced in PLN, which is exactly the record store's
// native shape.
package nbpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portsprov "github.com/SscSPs/fx_rates_app/internal/core/ports/providers"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.nbp.pl/api"

// Client fetches exchange-rate tables over HTTP.
type Client struct {
	name    string
	baseURL string
	client  *http.Client
}

var _ portsprov.RateProvider = (*Client)(nil)

// NewClient creates a provider adapter. An empty baseURL falls back to the
// public NBP endpoint; name is the deduplication key recorded per rate.
func NewClient(name, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		name:    name,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the stable provider name.
func (c *Client) Name() string {
	return c.name
}

// exchangeTable mirrors the NBP table payload.
type exchangeTable struct {
	Table         string `json:"table"`
	No            string `json:"no"`
	EffectiveDate string `json:"effectiveDate"`
	Rates         []struct {
		Currency string          `json:"currency"`
		Code     string          `json:"code"`
		Mid      decimal.Decimal `json:"mid"`
	} `json:"rates"`
}

// tableDetails is the per-rate opaque metadata stored alongside the value.
type tableDetails struct {
	Table    string `json:"table"`
	No       string `json:"no"`
	Currency string `json:"currency"`
}

// FetchCurrent retrieves the most recently published table.
func (c *Client) FetchCurrent(ctx context.Context) ([]domain.ProviderRate, error) {
	return c.fetch(ctx, c.baseURL+"/exchangerates/tables/A?format=json")
}

// FetchForDateRange retrieves every table published inside [fromDate, toDate].
// Days without a publication (weekends, holidays) are absent from the reply.
func (c *Client) FetchForDateRange(ctx context.Context, fromDate, toDate time.Time) ([]domain.ProviderRate, error) {
	url := fmt.Sprintf("%s/exchangerates/tables/A/%s/%s?format=json",
		c.baseURL, fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) ([]domain.ProviderRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates from %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	// NBP answers 404 for ranges with no publications; that is an empty
	// result, not a transport failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API returned status %d", c.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var tables []exchangeTable
	if err := json.Unmarshal(body, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	var rates []domain.ProviderRate
	for _, table := range tables {
		date, err := time.Parse("2006-01-02", table.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse effective date %q: %w", table.EffectiveDate, err)
		}
		for _, rate := range table.Rates {
			details, err := json.Marshal(tableDetails{Table: table.Table, No: table.No, Currency: rate.Currency})
			if err != nil {
				return nil, fmt.Errorf("failed to encode rate details: %w", err)
			}
			rates = append(rates, domain.ProviderRate{
				ProviderName: c.name,
				CurrencyCode: rate.Code,
				Date:         date,
				From:         decimal.NewFromInt(1),
				To:           rate.Mid,
				Details:      details,
			})
		}
	}
	return rates, nil
}
