package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain"
	paymentsvc "storefront/internal/service/payment"
)

// Card submits synchronous capture requests to the external card acquirer.
type Card struct {
	baseURL string
	client  *http.Client
}

// NewCard builds the acquirer HTTP client.
func NewCard(baseURL string) *Card {
	return &Card{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type captureRequest struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount"`
	Number  string `json:"cardNumber"`
	Expiry  string `json:"expiry"`
	CVV     string `json:"cvv"`
	Holder  string `json:"holder"`
}

type captureResponse struct {
	Approved bool   `json:"approved"`
	Ref      string `json:"ref"`
}

func (c *Card) Capture(ctx context.Context, orderID string, amount int64, card paymentsvc.CardDetails) (bool, string, error) {
	body, err := json.Marshal(captureRequest{
		OrderID: orderID,
		Amount:  amount,
		Number:  card.Number,
		Expiry:  card.Expiry,
		CVV:     card.CVV,
		Holder:  card.Holder,
	})
	if err != nil {
		return false, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/capture", bytes.NewReader(body))
	if err != nil {
		return false, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, "", fmt.Errorf("%w: acquirer returned %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}

	var out captureResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, "", fmt.Errorf("decode response: %w", err)
	}
	return out.Approved, out.Ref, nil
}
