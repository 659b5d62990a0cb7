/**
 * @description
 * HTTP Client for the FRED (Federal Reserve Economic Data) API.
 * Fetches the latest observation for each tracked macroeconomic series.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 */

package fredapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/riskwatch-project/backend/internal/config"
)

const (
	DefaultTimeout = 10 * time.Second
)

// ErrMissingAPIKey is returned before any network call when the key is absent
var ErrMissingAPIKey = fmt.Errorf("FRED_API_KEY is not configured")

// Series tracked for supply chain monitoring: producer price indexes,
// industrial production, and broad commodity indexes.
var Series = map[string]string{
	"WPUFD4":    "PPI - Food",
	"WPU101":    "PPI - Metals",
	"WPU0612":   "PPI - Crude Petroleum",
	"PCU325325": "PPI - Plastics & Resins",
	"IPMAN":     "Industrial Production - Manufacturing",
	"IPCONGD":   "Industrial Production - Consumer Goods",
	"PPIACO":    "PPI - All Commodities",
	"PPIIDC":    "PPI - Industrial Commodities",
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL: cfg.Fred.BaseURL,
		APIKey:  cfg.Fred.APIKey,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Observation is one dated value of a FRED series
type Observation struct {
	SeriesID string
	Value    float64
	Date     string // "2006-01-02"
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// LatestObservation fetches the most recent observation for one series
func (c *Client) LatestObservation(ctx context.Context, seriesID string) (*Observation, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(fmt.Sprintf("%s/series/observations", c.BaseURL))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("series_id", seriesID)
	q.Set("api_key", c.APIKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fred api error: status %d", resp.StatusCode)
	}

	var body observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if len(body.Observations) == 0 {
		return nil, fmt.Errorf("no data for %s", seriesID)
	}

	obs := body.Observations[0]
	value, err := strconv.ParseFloat(obs.Value, 64)
	if err != nil {
		// FRED reports missing values as "."
		return nil, fmt.Errorf("non-numeric value %q for %s", obs.Value, seriesID)
	}

	return &Observation{
		SeriesID: seriesID,
		Value:    value,
		Date:     obs.Date,
	}, nil
}
