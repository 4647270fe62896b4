package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// vnpayMethod is the redirect gateway whose completion is learned from the
// return-URL callback. The poller re-reads the payment store so an order view
// still resolves when the callback lands through another request.
type vnpayMethod struct {
	cfg      config.VNPayConfig
	interval time.Duration
	store    statusReader
	now      func() time.Time
}

// NewVNPay builds the VNPay redirect method.
func NewVNPay(cfg config.VNPayConfig, interval time.Duration, store statusReader) Method {
	return &vnpayMethod{cfg: cfg, interval: interval, store: store, now: time.Now}
}

func (m *vnpayMethod) Name() domain.PaymentMethod { return domain.PaymentMethodVNPay }

func (m *vnpayMethod) Initiate(_ context.Context, req InitiateRequest) (*InitiateResult, error) {
	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", m.cfg.TmnCode)
	// VNPay expects the amount multiplied by 100.
	params.Set("vnp_Amount", fmt.Sprintf("%d", req.Order.Amount*100))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", req.Order.ID)
	params.Set("vnp_OrderInfo", "Payment for order "+req.Order.ID)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", m.cfg.ReturnURL)
	params.Set("vnp_CreateDate", m.now().Format("20060102150405"))
	if ip := req.Params["clientIp"]; ip != "" {
		params.Set("vnp_IpAddr", ip)
	}
	params.Set("vnp_SecureHash", signVNPay(params, m.cfg.HashSecret))

	return &InitiateResult{
		Status:      domain.PaymentStatusPending,
		ProviderRef: req.Order.ID,
		Payload: map[string]interface{}{
			"redirectUrl": m.cfg.PayURL + "?" + params.Encode(),
		},
	}, nil
}

// RebuildPayload re-signs the redirect URL for an existing pending payment.
// Building the URL has no provider side effect, so repeating it is safe.
func (m *vnpayMethod) RebuildPayload(ctx context.Context, order domain.Order, _ domain.Payment) (map[string]interface{}, error) {
	result, err := m.Initiate(ctx, InitiateRequest{Order: order})
	if err != nil {
		return nil, err
	}
	return result.Payload, nil
}

func (m *vnpayMethod) PollInterval() time.Duration { return m.interval }

func (m *vnpayMethod) SupportsManualConfirm() bool { return false }

func (m *vnpayMethod) CheckStatus(ctx context.Context, p domain.Payment) (domain.PaymentStatus, error) {
	fresh, err := m.store.GetByID(ctx, p.ID)
	if err != nil {
		return "", err
	}
	return fresh.Status, nil
}

// signVNPay signs the sorted, url-encoded parameter string with HMAC-SHA512.
// The vnp_SecureHash field itself is excluded from the signed data.
func signVNPay(params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "vnp_SecureHash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(params.Get(k)))
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VNPayReturn is the parsed outcome of a return-URL callback.
type VNPayReturn struct {
	OrderID string
	Paid    bool
}

// ParseVNPayReturn reads success or failure purely from the return query
// parameters: response code "00" means the gateway captured the payment.
func ParseVNPayReturn(query url.Values) (VNPayReturn, error) {
	orderID := query.Get("vnp_TxnRef")
	if orderID == "" {
		return VNPayReturn{}, fmt.Errorf("%w: missing vnp_TxnRef", domain.ErrInvalidInput)
	}
	return VNPayReturn{
		OrderID: orderID,
		Paid:    query.Get("vnp_ResponseCode") == "00",
	}, nil
}
