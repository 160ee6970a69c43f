package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// WaitForHealthy polls /health until it returns 200 OK or ctx ends. baseURL
// is the server's HTTP base URL, e.g. "http://localhost:8080".
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL := strings.TrimSuffix(baseURL, "/") + "/health"
	client := &http.Client{Timeout: time.Second}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if healthy(ctx, client, healthURL) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func healthy(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
