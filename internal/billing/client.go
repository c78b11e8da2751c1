// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
)

type ClientInterface interface {
	CreateCheckoutSession(ctx context.Context, tenantID, priceID, returnURL string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
}

// Client talks to the hosted billing provider's session API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewClient(baseURL, apiKey string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// CreateCheckoutSession starts a hosted checkout for a tenant. The tenant id
// travels in session metadata and comes back on the checkout-completed event.
func (c *Client) CreateCheckoutSession(ctx context.Context, tenantID, priceID, returnURL string) (*CheckoutSession, error) {
	ctx, span := c.tracer.Start(ctx, "billing.Client.CreateCheckoutSession")
	defer span.End()

	body := map[string]interface{}{
		"price":       priceID,
		"success_url": returnURL,
		"metadata": map[string]string{
			"tenant_id": tenantID,
			"plan_id":   priceID,
		},
	}

	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &session, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	ctx, span := c.tracer.Start(ctx, "billing.Client.CreatePortalSession")
	defer span.End()

	body := map[string]interface{}{
		"customer":   customerID,
		"return_url": returnURL,
	}

	var session PortalSession
	if err := c.post(ctx, "/v1/billing_portal/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	return &session, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.setAvailability(0)
		return err
	}
	defer resp.Body.Close()

	c.setAvailability(1)

	if resp.StatusCode >= 400 {
		// Error bodies are capped; provider error pages can be large.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("billing provider returned %d: %s", resp.StatusCode, msg)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setAvailability(up float64) {
	tags := map[string]string{"dependency": "billing_provider"}
	if err := c.monitor.SetDependencyAvailability(tags, up); err != nil {
		c.logger.Debugf("failed to set billing availability metric: %v", err)
	}
}
