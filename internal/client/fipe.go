package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"fipe/consulta/internal/config"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/metrics"
	"fipe/consulta/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type FipeClient interface {
	ListBrands(ctx context.Context, category domain.VehicleCategory) ([]domain.SelectableOption, error)
	ListModels(ctx context.Context, category domain.VehicleCategory, brandCode string) ([]domain.SelectableOption, error)
	ListYears(ctx context.Context, category domain.VehicleCategory, brandCode, modelCode string) ([]domain.SelectableOption, error)
	GetQuote(ctx context.Context, selection domain.Selection) (*domain.PriceQuote, error)
}

type fipeClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	proxies    proxy.Supplier
	proxyURL   atomic.Pointer[url.URL]
}

// NewFipeClient builds the price table client. proxies may be nil; when it
// holds working proxies the client starts on the first one and moves to the
// next after a transport failure. The proxy is picked per request, so a
// rotation never touches the shared transport.
func NewFipeClient(cfg config.FipeConfig, proxies proxy.Supplier) FipeClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	c := &fipeClient{
		rl:         ratelimit.New(cfg.MaxRequestsPerSecond),
		httpClient: client,
		proxies:    proxies,
	}

	if transport, err := client.HTTPTransport(); err == nil {
		transport.Proxy = c.proxyFor
	} else {
		log.Warnf("⚠️ Proxy rotation unavailable: %v", err)
	}

	if proxies != nil {
		if proxyURL := proxies.Next(); proxyURL != "" && c.useProxy(proxyURL) {
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	return c
}

// proxyFor falls back to the environment proxy settings until a pool proxy
// is in use.
func (c *fipeClient) proxyFor(req *http.Request) (*url.URL, error) {
	if u := c.proxyURL.Load(); u != nil {
		return u, nil
	}
	return http.ProxyFromEnvironment(req)
}

func (c *fipeClient) useProxy(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		log.Warnf("⚠️ Ignoring malformed proxy %q: %v", raw, err)
		return false
	}
	c.proxyURL.Store(u)
	return true
}

func (c *fipeClient) ListBrands(ctx context.Context, category domain.VehicleCategory) ([]domain.SelectableOption, error) {
	body, err := c.fetchJSON(ctx, "marcas", "/{category}/marcas", map[string]string{
		"category": category.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch brands for %s: %w", category, err)
	}

	brands, err := DecodeOptions(body, "marcas")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	log.Debugf("Fetched %d brands for %s", len(brands), category)
	return brands, nil
}

func (c *fipeClient) ListModels(ctx context.Context, category domain.VehicleCategory, brandCode string) ([]domain.SelectableOption, error) {
	body, err := c.fetchJSON(ctx, "modelos", "/{category}/marcas/{brand}/modelos", map[string]string{
		"category": category.String(),
		"brand":    brandCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models for brand %s: %w", brandCode, err)
	}

	models, err := DecodeOptions(body, "modelos")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	log.Debugf("Fetched %d models for brand %s", len(models), brandCode)
	return models, nil
}

func (c *fipeClient) ListYears(ctx context.Context, category domain.VehicleCategory, brandCode, modelCode string) ([]domain.SelectableOption, error) {
	body, err := c.fetchJSON(ctx, "anos", "/{category}/marcas/{brand}/modelos/{model}/anos", map[string]string{
		"category": category.String(),
		"brand":    brandCode,
		"model":    modelCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch years for model %s: %w", modelCode, err)
	}

	years, err := DecodeOptions(body, "anos")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	log.Debugf("Fetched %d years for model %s", len(years), modelCode)
	return years, nil
}

func (c *fipeClient) GetQuote(ctx context.Context, s domain.Selection) (*domain.PriceQuote, error) {
	if !s.Complete() {
		return nil, fmt.Errorf("%w: incomplete selection %+v", domain.ErrValidation, s)
	}

	body, err := c.fetchJSON(ctx, "valor", "/{category}/marcas/{brand}/modelos/{model}/anos/{year}", map[string]string{
		"category": s.Category.String(),
		"brand":    s.BrandCode,
		"model":    s.ModelCode,
		"year":     s.YearCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s/%s/%s: %w", s.BrandCode, s.ModelCode, s.YearCode, err)
	}

	quote, err := DecodeQuote(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	log.Debugf("Fetched quote %s (%s)", quote.FipeCode, quote.Value)
	return quote, nil
}

// fetchJSON performs one GET. Transport errors and non-2xx statuses both
// come back wrapped in domain.ErrUpstream; nothing is retried.
func (c *fipeClient) fetchJSON(ctx context.Context, endpoint, path string, params map[string]string) (body []byte, err error) {
	c.rl.Take()

	start := time.Now()
	defer func() { metrics.ObserveAPICall(endpoint, start, err) }()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: request cancelled: %v", domain.ErrUpstream, ctx.Err())
		}
		c.rotateProxy()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("%w: HTTP error: %s", domain.ErrUpstream, resp.Status())
	}

	return []byte(resp.String()), nil
}

// rotateProxy switches later requests to the next proxy. The failed request
// itself is not repeated.
func (c *fipeClient) rotateProxy() {
	if c.proxies == nil || c.proxies.Len() < 2 {
		return
	}
	next := c.proxies.Next()
	if c.useProxy(next) {
		log.Infof("🔄 Switching to proxy: %s", next)
	}
}
