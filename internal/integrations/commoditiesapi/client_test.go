package commoditiesapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		HTTPClient: &http.Client{Timeout: time.Second},
	}
}

func TestLatestMissingAPIKey(t *testing.T) {
	c := &Client{BaseURL: "http://invalid.test", HTTPClient: &http.Client{}}
	if _, err := c.Latest(context.Background(), "XAU"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := c.Timeseries(context.Background(), "XAU", time.Now(), time.Now()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLatestParsesWrappedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbols"); got != "XAU" {
			t.Errorf("unexpected symbols param: %s", got)
		}
		if got := r.URL.Query().Get("access_key"); got != "test-key" {
			t.Errorf("unexpected access_key param: %s", got)
		}
		// The vendor wraps everything in a "data" object
		fmt.Fprint(w, `{"data":{"success":true,"timestamp":1756600000,"rates":{"XAU":0.0004}}}`)
	}))
	defer srv.Close()

	quote, err := testClient(srv.URL).Latest(context.Background(), "XAU")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// price = 1/rate
	if math.Abs(quote.Price-2500) > 1e-9 {
		t.Errorf("price = %v, want 2500", quote.Price)
	}
	if quote.Timestamp != 1756600000*1000 {
		t.Errorf("timestamp = %d, want ms epoch", quote.Timestamp)
	}
}

func TestLatestMissingRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"success":true,"timestamp":1756600000,"rates":{"XAG":0.03}}}`)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Latest(context.Background(), "XAU"); err == nil {
		t.Fatal("expected error for missing rate")
	}
}

func TestLatestUnsuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"success":false}}`)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Latest(context.Background(), "XAU"); err == nil {
		t.Fatal("expected error for unsuccessful response")
	}
}

func TestTimeseriesParsesUnwrappedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/timeseries" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		// The timeseries endpoint sometimes skips the "data" wrapper
		fmt.Fprint(w, `{"success":true,"rates":{"2026-08-01":{"XAU":0.0005},"2026-08-02":{"XAU":0.0004},"2026-08-03":{}}}`)
	}))
	defer srv.Close()

	end := time.Now()
	quotes, err := testClient(srv.URL).Timeseries(context.Background(), "XAU", end.AddDate(0, 0, -30), end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The day with no rate for the symbol is dropped, not an error
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}

	byTS := make(map[int64]float64)
	for _, q := range quotes {
		if q.Symbol != "XAU" {
			t.Errorf("unexpected symbol: %s", q.Symbol)
		}
		byTS[q.Timestamp] = q.Price
	}

	day1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if price, ok := byTS[day1]; !ok || math.Abs(price-2000) > 1e-9 {
		t.Errorf("2026-08-01 price = %v, want 2000", price)
	}
}

func TestTimeseriesNoRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true}`)
	}))
	defer srv.Close()

	end := time.Now()
	if _, err := testClient(srv.URL).Timeseries(context.Background(), "XAU", end.AddDate(0, 0, -30), end); err == nil {
		t.Fatal("expected error for missing rates")
	}
}

func TestLatestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Latest(context.Background(), "XAU"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
