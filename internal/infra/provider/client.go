package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"keypanel/internal/pkg/config"
	"keypanel/internal/pkg/errs"
)

// Client speaks the de-facto common SMM reseller API shape: form-urlencoded
// POST with an "action" discriminator, loosely-typed JSON back. Field naming
// and value types vary across providers, so responses are decoded into a
// generic map and coerced at the edge.
type Client struct {
	httpClient *http.Client
	cache      StatusCache
	logger     *slog.Logger
}

func NewClient(cfg config.ProviderConfig, cache StatusCache, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cache:  cache,
		logger: logger,
	}
}

// SubmitOrder places an order with the upstream provider. A provider-reported
// rejection comes back as SubmitResult.ErrorMessage; transport failures return
// ErrUnreachable so the caller can distinguish the two.
func (c *Client) SubmitOrder(ctx context.Context, cred Credential, serviceCode, link string, quantity int32) (*SubmitResult, error) {
	form := url.Values{}
	form.Set("key", cred.Secret)
	form.Set("action", "add")
	form.Set("service", serviceCode)
	form.Set("link", link)
	form.Set("quantity", fmt.Sprintf("%d", quantity))

	body, err := c.post(ctx, cred.BaseURL, form)
	if err != nil {
		return nil, errs.Wrapf(ErrUnreachable, "submit request failed: %v", err)
	}

	payload, err := decodeLoose(body)
	if err != nil {
		return nil, errs.Wrapf(ErrUnreachable, "submit response unparsable: %v", err)
	}

	result := &SubmitResult{Raw: body}
	if msg := coerceString(payload["error"]); msg != "" {
		result.ErrorMessage = msg
		return result, nil
	}
	if id := coerceString(payload["order"]); id != "" {
		result.ProviderOrderID = id
		return result, nil
	}

	// Neither an order id nor an error is a malformed response; treat it as
	// transport-level so the order is not falsely marked rejected.
	return nil, errs.Wrap(ErrUnreachable, "provider response carried no order id")
}

// QueryStatus fetches the provider's view of an order. Transport errors are
// logged and swallowed (nil result), so the polling loop can harmlessly retry
// on the next schedule.
func (c *Client) QueryStatus(ctx context.Context, cred Credential, providerOrderID string) (*StatusResult, error) {
	cacheKey := cred.ID.String() + ":" + providerOrderID
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}

	form := url.Values{}
	form.Set("key", cred.Secret)
	form.Set("action", "status")
	form.Set("order", providerOrderID)

	body, err := c.post(ctx, cred.BaseURL, form)
	if err != nil {
		c.logger.Warn("provider status query failed",
			"provider_order_id", providerOrderID,
			"error", err.Error())
		return nil, nil
	}

	payload, err := decodeLoose(body)
	if err != nil {
		c.logger.Warn("provider status response unparsable",
			"provider_order_id", providerOrderID,
			"error", err.Error())
		return nil, nil
	}

	status := coerceString(payload["status"])
	if status == "" {
		c.logger.Warn("provider status response carried no status",
			"provider_order_id", providerOrderID)
		return nil, nil
	}

	result := &StatusResult{
		Status:  status,
		Remains: coerceString(payload["remains"]),
		Charge:  coerceString(payload["charge"]),
		Raw:     body,
	}
	c.cache.Set(cacheKey, result)

	return result, nil
}

func (c *Client) post(ctx context.Context, baseURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Newf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	return body, nil
}

func decodeLoose(body []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// coerceString flattens the provider's type looseness: order ids and remains
// counts arrive as strings from some providers and numbers from others.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case json.Number:
		return val.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
