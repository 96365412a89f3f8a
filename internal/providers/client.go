package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riskrank/riskrank/internal/cache"
	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/fetch"
)

const (
	quoteURL     = "https://push2.eastmoney.com/api/qt/stock/get"
	klineURL     = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	dataCenter   = "https://datacenter-web.eastmoney.com/api/data/v1/get"
	providerName = "eastmoney"

	httpTimeout = 10 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer   = "https://quote.eastmoney.com/"
)

// Client is the HTTP adapter behind every provider interface. All
// reads go cache-first; upstream calls are paced and retried.
type Client struct {
	http    *http.Client
	cache   *cache.Store
	retrier *fetch.Retrier
	pacer   *fetch.Pacer
	breaker *fetch.Breaker
}

// NewClient wires the adapter from config.
func NewClient(cfg config.Config, store *cache.Store) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   store,
		retrier: fetch.NewRetrier(cfg.Retry),
		pacer:   fetch.NewPacer(cfg.ProviderInterval),
		breaker: fetch.NewBreaker(fetch.DefaultBreakerConfig()),
	}
}

// Bundle exposes the client through the provider interfaces.
func (c *Client) Bundle() Bundle {
	return Bundle{Market: c, Fundamentals: c, Classifier: c, Macro: c}
}

// getJSON performs one paced, retried GET behind the circuit breaker
// and returns the body.
func (c *Client) getJSON(ctx context.Context, op, url string) ([]byte, error) {
	var body []byte
	err := c.retrier.Do(ctx, op, func(ctx context.Context) error {
		if !c.breaker.Allow() {
			return &ProviderError{Provider: providerName, Op: op, Err: fetch.ErrBreakerOpen}
		}
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}
		err := c.doGET(ctx, op, url, &body)
		if err != nil {
			c.breaker.Failure()
			return err
		}
		c.breaker.Success()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Trace().Str("op", op).Int("bytes", len(body)).Msg("provider response")
	return body, nil
}

func (c *Client) doGET(ctx context.Context, op, url string, body *[]byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ProviderError{Provider: providerName, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Provider: providerName, Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status")
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			err = fmt.Errorf("unexpected status (temporarily unavailable)")
		}
		return &ProviderError{Provider: providerName, Op: op, Status: resp.StatusCode, Err: err}
	}
	*body, err = io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: providerName, Op: op, Err: err}
	}
	return nil
}

// cached runs fill on a cache miss and stores its result. The zero
// value of T is returned only alongside an error.
func cached[T any](ctx context.Context, c *Client, key, category string, fill func(context.Context) (T, error)) (T, error) {
	var out T
	if c.cache.GetValid(key, config.TTLFor(category), &out) {
		return out, nil
	}
	out, err := fill(ctx)
	if err != nil {
		return out, err
	}
	if err := c.cache.Put(key, out); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache write failed")
	}
	return out, nil
}
