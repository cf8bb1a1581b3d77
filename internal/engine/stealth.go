package engine

import (
	"context"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

// RandomUserAgent re-exports the stealth browser User-Agent rotation.
func RandomUserAgent() string { return stealth.RandomUserAgent() }

// FetchRetryConfig is stealth's default backoff with the retry count taken
// from Config.FetchRetries (0 = single attempt).
func FetchRetryConfig() stealth.RetryConfig {
	rc := stealth.DefaultRetryConfig
	rc.MaxRetries = max(cfg.FetchRetries, 0)
	return rc
}

// RetryHTTP executes fn with FetchRetryConfig. Retries only transport errors
// and 429/5xx responses.
func RetryHTTP(ctx context.Context, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, FetchRetryConfig(), fn)
}
