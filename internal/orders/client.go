package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/domain"
)

// Client reads orders from the external order service and writes back the
// payment fields. Nothing else on the order is touched by this core.
type Client interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	SetPaymentState(ctx context.Context, orderID string, method domain.PaymentMethod, status domain.PaymentStatus, paymentID string) error
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTP builds the order-service HTTP client.
func NewHTTP(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	u := c.baseURL + "/orders/" + url.PathEscape(orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: order service returned %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

type paymentStateRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	PaymentID     string               `json:"paymentId"`
}

func (c *httpClient) SetPaymentState(ctx context.Context, orderID string, method domain.PaymentMethod, status domain.PaymentStatus, paymentID string) error {
	body, err := json.Marshal(paymentStateRequest{PaymentMethod: method, PaymentStatus: status, PaymentID: paymentID})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	u := c.baseURL + "/orders/" + url.PathEscape(orderID) + "/payment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: order service returned %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}
	return nil
}
