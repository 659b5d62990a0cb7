package handlers

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/riskwatch-project/backend/internal/services"
)

func TestStreamPriceUpdates(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	defer redisClient.Close()

	service := &services.PriceService{
		Redis: redisClient,
	}

	handler := NewCommodityHandler(service)
	app := fiber.New()
	app.Get("/api/v1/commodities/stream", handler.StreamPriceUpdates)

	// Serve on a real listener: the net/http adaptor buffers the whole
	// response, which never completes for an SSE stream.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.Shutdown() }()
	baseURL := "http://" + ln.Addr().String()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Publish repeatedly until the stream is read: the handler subscribes only
	// once the request is in flight, and pub/sub drops anything sent before that.
	payload := `{"symbol":"XAU","price":2450.12,"timestamp":1756600000000}`
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = redisClient.Publish(context.Background(), services.PriceUpdateChannel, payload).Err()
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/commodities/stream", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to call SSE endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	// The request context caps the whole read at 3s if no event ever arrives.
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read SSE line: %v", err)
		}
		if strings.HasPrefix(line, "data:") {
			if !strings.Contains(line, `"XAU"`) {
				t.Fatalf("unexpected SSE payload: %s", line)
			}
			return
		}
	}
}
