package client

import (
	"context"
	"fmt"
	"time"

	"fipe/consulta/internal/config"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/metrics"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// PriceClient looks a vehicle up by an already known reference code on the
// secondary provider. It shares nothing with the cascade.
type PriceClient interface {
	Lookup(ctx context.Context, referenceCode string) (*domain.ReferencePrice, error)
}

type priceClient struct {
	httpClient *resty.Client
}

func NewPriceClient(cfg config.PriceConfig) PriceClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &priceClient{httpClient: client}
}

func (c *priceClient) Lookup(ctx context.Context, referenceCode string) (price *domain.ReferencePrice, err error) {
	if referenceCode == "" {
		return nil, fmt.Errorf("%w: reference code is required", domain.ErrValidation)
	}

	start := time.Now()
	defer func() { metrics.ObserveAPICall("preco", start, err) }()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("code", referenceCode).
		Get("/api/fipe/preco/v1/{code}")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch price for %s: %v", domain.ErrUpstream, referenceCode, err)
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("%w: HTTP error: %s", domain.ErrUpstream, resp.Status())
	}

	price, err = DecodeReferencePrice([]byte(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	log.Debugf("Fetched reference price for %s", referenceCode)
	return price, nil
}
