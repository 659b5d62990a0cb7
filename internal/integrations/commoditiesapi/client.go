/**
 * @description
 * HTTP Client for commodities-api.com.
 * Fetches latest spot rates and trailing timeseries for tracked symbols.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 *
 * @notes
 * - The vendor quotes rates as "units of commodity per USD", so the USD price of
 *   one unit is 1/rate.
 * - Responses arrive wrapped in a "data" envelope ({"data": {"success": true, ...}}).
 *   The timeseries endpoint sometimes omits the wrapper, so both shapes are accepted.
 */

package commoditiesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/riskwatch-project/backend/internal/config"
)

const (
	DefaultTimeout = 10 * time.Second
)

// ErrMissingAPIKey is returned before any network call when the key is absent
var ErrMissingAPIKey = fmt.Errorf("COMMODITIES_API_KEY is not configured")

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL: cfg.Commodities.BaseURL,
		APIKey:  cfg.Commodities.APIKey,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// ratesPayload is the inner body of both the latest and timeseries responses
type ratesPayload struct {
	Success   bool            `json:"success"`
	Timestamp int64           `json:"timestamp"` // seconds epoch (latest endpoint only)
	Rates     json.RawMessage `json:"rates"`
}

// envelope models the optional {"data": {...}} wrapper
type envelope struct {
	Data *ratesPayload `json:"data"`
	// Fallback fields for unwrapped responses
	Success   bool            `json:"success"`
	Timestamp int64           `json:"timestamp"`
	Rates     json.RawMessage `json:"rates"`
}

// Quote is the latest spot price for one symbol
type Quote struct {
	Symbol    string
	Price     float64
	Timestamp int64 // ms epoch
}

// HistoryQuote is one day of timeseries data for a symbol
type HistoryQuote struct {
	Symbol    string
	Price     float64
	Timestamp int64 // ms epoch (midnight UTC of the quoted date)
}

// Latest fetches the current spot price for one symbol
func (c *Client) Latest(ctx context.Context, symbol string) (*Quote, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(fmt.Sprintf("%s/latest", c.BaseURL))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("access_key", c.APIKey)
	q.Set("symbols", symbol)
	u.RawQuery = q.Encode()

	payload, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("commodities api returned unsuccessful response for %s", symbol)
	}

	var rates map[string]float64
	if err := json.Unmarshal(payload.Rates, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode rates for %s: %w", symbol, err)
	}

	rate, ok := rates[symbol]
	if !ok || rate == 0 {
		return nil, fmt.Errorf("no rate found for %s", symbol)
	}

	return &Quote{
		Symbol:    symbol,
		Price:     1 / rate,
		Timestamp: payload.Timestamp * 1000,
	}, nil
}

// Timeseries fetches day-by-day prices for one symbol over [start, end]
func (c *Client) Timeseries(ctx context.Context, symbol string, start, end time.Time) ([]HistoryQuote, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(fmt.Sprintf("%s/timeseries", c.BaseURL))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("access_key", c.APIKey)
	q.Set("start_date", start.UTC().Format("2006-01-02"))
	q.Set("end_date", end.UTC().Format("2006-01-02"))
	q.Set("symbols", symbol)
	u.RawQuery = q.Encode()

	payload, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("commodities api returned unsuccessful response for %s", symbol)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("no rates data for %s", symbol)
	}

	// Timeseries rates are keyed by date: {"2026-08-01": {"XAU": 0.0005}, ...}
	var byDate map[string]map[string]float64
	if err := json.Unmarshal(payload.Rates, &byDate); err != nil {
		return nil, fmt.Errorf("failed to decode timeseries rates for %s: %w", symbol, err)
	}

	var quotes []HistoryQuote
	for date, rates := range byDate {
		rate, ok := rates[symbol]
		if !ok || rate == 0 {
			continue
		}
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		quotes = append(quotes, HistoryQuote{
			Symbol:    symbol,
			Price:     1 / rate,
			Timestamp: day.UTC().UnixMilli(),
		})
	}

	return quotes, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*ratesPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("commodities api error: status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}

	// Prefer the wrapped payload; fall back to the bare shape.
	if env.Data != nil {
		return env.Data, nil
	}
	return &ratesPayload{
		Success:   env.Success,
		Timestamp: env.Timestamp,
		Rates:     env.Rates,
	}, nil
}
