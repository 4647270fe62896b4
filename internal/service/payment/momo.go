package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// momoMethod is the redirect gateway that also exposes a status-query API, so
// the poller asks the provider directly instead of waiting for the callback.
type momoMethod struct {
	cfg      config.MoMoConfig
	interval time.Duration
	client   *http.Client
	now      func() time.Time
}

// NewMoMo builds the MoMo redirect method.
func NewMoMo(cfg config.MoMoConfig, interval time.Duration) Method {
	return &momoMethod{
		cfg:      cfg,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

func (m *momoMethod) Name() domain.PaymentMethod { return domain.PaymentMethodMoMo }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	PayURL     string `json:"payUrl"`
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

func (m *momoMethod) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	// The provider requires a unique order reference per create attempt, so
	// the order id is suffixed with the initiation timestamp.
	providerOrderID := fmt.Sprintf("%s-%d", req.Order.ID, m.now().Unix())
	create := momoCreateRequest{
		PartnerCode: m.cfg.PartnerCode,
		RequestID:   providerOrderID,
		Amount:      req.Order.Amount,
		OrderID:     providerOrderID,
		OrderInfo:   "Payment for order " + req.Order.ID,
		RedirectURL: m.cfg.ReturnURL,
		IpnURL:      m.cfg.NotifyURL,
		RequestType: "captureWallet",
		ExtraData:   "",
	}
	create.Signature = m.sign(map[string]string{
		"accessKey":   m.cfg.AccessKey,
		"amount":      fmt.Sprintf("%d", create.Amount),
		"extraData":   create.ExtraData,
		"ipnUrl":      create.IpnURL,
		"orderId":     create.OrderID,
		"orderInfo":   create.OrderInfo,
		"partnerCode": create.PartnerCode,
		"redirectUrl": create.RedirectURL,
		"requestId":   create.RequestID,
		"requestType": create.RequestType,
	})

	var resp momoCreateResponse
	if err := m.post(ctx, "/create", create, &resp); err != nil {
		return nil, err
	}
	if resp.ResultCode != 0 || resp.PayURL == "" {
		return nil, fmt.Errorf("momo create rejected: %d %s", resp.ResultCode, resp.Message)
	}
	return &InitiateResult{
		Status:      domain.PaymentStatusPending,
		ProviderRef: providerOrderID,
		Payload: map[string]interface{}{
			"redirectUrl": resp.PayURL,
		},
	}, nil
}

func (m *momoMethod) PollInterval() time.Duration { return m.interval }

func (m *momoMethod) SupportsManualConfirm() bool { return false }

type momoQueryRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	Signature   string `json:"signature"`
}

type momoQueryResponse struct {
	ResultCode int `json:"resultCode"`
}

// CheckStatus asks the provider's query API for the payment's result.
// Result code 0 means captured; 1000 means the payer has not finished yet;
// anything else is a failure.
func (m *momoMethod) CheckStatus(ctx context.Context, p domain.Payment) (domain.PaymentStatus, error) {
	query := momoQueryRequest{
		PartnerCode: m.cfg.PartnerCode,
		RequestID:   p.ProviderRef,
		OrderID:     p.ProviderRef,
	}
	query.Signature = m.sign(map[string]string{
		"accessKey":   m.cfg.AccessKey,
		"orderId":     query.OrderID,
		"partnerCode": query.PartnerCode,
		"requestId":   query.RequestID,
	})

	var resp momoQueryResponse
	if err := m.post(ctx, "/query", query, &resp); err != nil {
		return "", err
	}
	switch resp.ResultCode {
	case 0:
		return domain.PaymentStatusPaid, nil
	case 1000:
		return domain.PaymentStatusPending, nil
	default:
		return domain.PaymentStatusFailed, nil
	}
}

func (m *momoMethod) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal momo request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build momo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: momo returned %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode momo response: %w", err)
	}
	return nil
}

// sign builds the HMAC-SHA256 signature over the "k=v&k=v" form of the given
// fields, sorted by the fixed field order MoMo documents. The map keys are
// concatenated in lexicographic order, which matches that contract.
func (m *momoMethod) sign(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	mac := hmac.New(sha256.New, []byte(m.cfg.SecretKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// MoMoReturn is the parsed outcome of a return-URL callback.
type MoMoReturn struct {
	OrderID string
	Paid    bool
}

// ParseMoMoReturn reads success or failure purely from the return query
// parameters. The provider echoes the composite order reference
// "<orderId>-<timestamp>"; the original order id is the part before the last
// dash. Result code "0" means captured.
func ParseMoMoReturn(query url.Values) (MoMoReturn, error) {
	composite := query.Get("orderId")
	if composite == "" {
		return MoMoReturn{}, fmt.Errorf("%w: missing orderId", domain.ErrInvalidInput)
	}
	orderID := composite
	if idx := strings.LastIndex(composite, "-"); idx > 0 {
		orderID = composite[:idx]
	}
	return MoMoReturn{
		OrderID: orderID,
		Paid:    query.Get("resultCode") == "0",
	}, nil
}
