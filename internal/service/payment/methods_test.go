package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
)

func TestValidateCard(t *testing.T) {
	valid := CardDetails{Number: "4111 1111 1111 1111", Expiry: "12/30", CVV: "123", Holder: "A NGUYEN"}
	if err := ValidateCard(valid); err != nil {
		t.Fatalf("expected valid card, got %v", err)
	}

	cases := []struct {
		name string
		card CardDetails
	}{
		{"short number", CardDetails{Number: "411111", Expiry: "12/30", CVV: "123"}},
		{"letters in number", CardDetails{Number: "4111x1111111111", Expiry: "12/30", CVV: "123"}},
		{"bad expiry format", CardDetails{Number: "4111111111111111", Expiry: "13/30", CVV: "123"}},
		{"expired card", CardDetails{Number: "4111111111111111", Expiry: "01/20", CVV: "123"}},
		{"bad cvv", CardDetails{Number: "4111111111111111", Expiry: "12/30", CVV: "12"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateCard(tc.card); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

type stubGateway struct {
	approved bool
	err      error
	calls    int
}

func (g *stubGateway) Capture(_ context.Context, _ string, _ int64, _ CardDetails) (bool, string, error) {
	g.calls++
	return g.approved, "capture-1", g.err
}

func TestCardInitiate(t *testing.T) {
	order := domain.Order{ID: "order-1", Amount: 1500000}
	params := map[string]string{
		"cardNumber": "4111111111111111",
		"cardExpiry": "12/30",
		"cardCvv":    "123",
		"cardHolder": "A NGUYEN",
	}

	t.Run("approved capture is paid", func(t *testing.T) {
		gw := &stubGateway{approved: true}
		res, err := NewCard(gw).Initiate(context.Background(), InitiateRequest{Order: order, Params: params})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != domain.PaymentStatusPaid {
			t.Fatalf("expected paid, got %s", res.Status)
		}
		if gw.calls != 1 {
			t.Fatalf("expected 1 capture, got %d", gw.calls)
		}
	})

	t.Run("declined capture is failed", func(t *testing.T) {
		gw := &stubGateway{approved: false}
		res, err := NewCard(gw).Initiate(context.Background(), InitiateRequest{Order: order, Params: params})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != domain.PaymentStatusFailed {
			t.Fatalf("expected failed, got %s", res.Status)
		}
	})

	t.Run("invalid card never reaches gateway", func(t *testing.T) {
		gw := &stubGateway{approved: true}
		bad := map[string]string{"cardNumber": "41", "cardExpiry": "12/30", "cardCvv": "123"}
		if _, err := NewCard(gw).Initiate(context.Background(), InitiateRequest{Order: order, Params: bad}); err == nil {
			t.Fatal("expected validation error")
		}
		if gw.calls != 0 {
			t.Fatalf("expected no capture, got %d", gw.calls)
		}
	})

	t.Run("gateway error surfaces", func(t *testing.T) {
		gw := &stubGateway{err: errors.New("acquirer down")}
		if _, err := NewCard(gw).Initiate(context.Background(), InitiateRequest{Order: order, Params: params}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestVNPayInitiateSignsRedirectURL(t *testing.T) {
	cfg := config.VNPayConfig{
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		TmnCode:    "TESTCODE",
		HashSecret: "secret",
		ReturnURL:  "https://shop.example/payments/return/vnpay",
	}
	m := NewVNPay(cfg, time.Second, nil).(*vnpayMethod)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }

	res, err := m.Initiate(context.Background(), InitiateRequest{
		Order:  domain.Order{ID: "order-7", Amount: 1000000},
		Params: map[string]string{"clientIp": "10.0.0.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	redirect, ok := res.Payload["redirectUrl"].(string)
	if !ok || !strings.HasPrefix(redirect, cfg.PayURL+"?") {
		t.Fatalf("unexpected redirect url: %v", res.Payload["redirectUrl"])
	}
	parsed, err := url.Parse(redirect)
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	q := parsed.Query()
	if got := q.Get("vnp_Amount"); got != "100000000" {
		t.Fatalf("expected amount x100, got %s", got)
	}
	if got := q.Get("vnp_TxnRef"); got != "order-7" {
		t.Fatalf("expected txn ref order-7, got %s", got)
	}
	if got := signVNPay(q, cfg.HashSecret); got != q.Get("vnp_SecureHash") {
		t.Fatal("secure hash does not verify")
	}
}

func TestSignVNPayMatchesManualHMAC(t *testing.T) {
	params := url.Values{}
	params.Set("vnp_Amount", "100")
	params.Set("vnp_TmnCode", "T")
	params.Set("vnp_SecureHash", "ignored")

	mac := hmac.New(sha512.New, []byte("s"))
	mac.Write([]byte("vnp_Amount=100&vnp_TmnCode=T"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := signVNPay(params, "s"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseVNPayReturn(t *testing.T) {
	ret, err := ParseVNPayReturn(url.Values{"vnp_TxnRef": {"order-9"}, "vnp_ResponseCode": {"00"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.OrderID != "order-9" || !ret.Paid {
		t.Fatalf("expected paid order-9, got %+v", ret)
	}

	ret, err = ParseVNPayReturn(url.Values{"vnp_TxnRef": {"order-9"}, "vnp_ResponseCode": {"24"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.Paid {
		t.Fatal("expected failed result for non-00 response code")
	}

	if _, err := ParseVNPayReturn(url.Values{}); err == nil {
		t.Fatal("expected error for missing txn ref")
	}
}

func TestParseMoMoReturn(t *testing.T) {
	ret, err := ParseMoMoReturn(url.Values{"orderId": {"order-3-1756700000"}, "resultCode": {"0"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.OrderID != "order-3" || !ret.Paid {
		t.Fatalf("expected paid order-3, got %+v", ret)
	}

	ret, err = ParseMoMoReturn(url.Values{"orderId": {"order-3-1756700000"}, "resultCode": {"1006"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.Paid {
		t.Fatal("expected failed result for non-zero result code")
	}

	if _, err := ParseMoMoReturn(url.Values{}); err == nil {
		t.Fatal("expected error for missing orderId")
	}
}

func TestMoMoInitiateAndCheckStatus(t *testing.T) {
	var queryResult int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/create":
			var req momoCreateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode create request: %v", err)
			}
			if req.Signature == "" || req.RequestType != "captureWallet" {
				t.Errorf("unexpected create request: %+v", req)
			}
			json.NewEncoder(w).Encode(momoCreateResponse{PayURL: "https://momo.example/pay", ResultCode: 0})
		case "/query":
			json.NewEncoder(w).Encode(momoQueryResponse{ResultCode: queryResult})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m := NewMoMo(config.MoMoConfig{
		Endpoint:    srv.URL,
		PartnerCode: "PARTNER",
		AccessKey:   "access",
		SecretKey:   "secret",
		ReturnURL:   "https://shop.example/payments/return/momo",
		NotifyURL:   "https://shop.example/payments/notify/momo",
	}, time.Second).(*momoMethod)
	m.now = func() time.Time { return time.Unix(1756700000, 0) }

	res, err := m.Initiate(context.Background(), InitiateRequest{Order: domain.Order{ID: "order-3", Amount: 2000000}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProviderRef != "order-3-1756700000" {
		t.Fatalf("expected composite provider ref, got %s", res.ProviderRef)
	}
	if res.Payload["redirectUrl"] != "https://momo.example/pay" {
		t.Fatalf("unexpected payload: %+v", res.Payload)
	}

	payment := domain.Payment{ID: "pay-1", OrderID: "order-3", ProviderRef: res.ProviderRef}
	for _, tc := range []struct {
		code int
		want domain.PaymentStatus
	}{
		{0, domain.PaymentStatusPaid},
		{1000, domain.PaymentStatusPending},
		{9, domain.PaymentStatusFailed},
	} {
		queryResult = tc.code
		status, err := m.CheckStatus(context.Background(), payment)
		if err != nil {
			t.Fatalf("result code %d: unexpected error: %v", tc.code, err)
		}
		if status != tc.want {
			t.Fatalf("result code %d: expected %s, got %s", tc.code, tc.want, status)
		}
	}
}

func TestMoMoCreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(momoCreateResponse{ResultCode: 41, Message: "duplicate order"})
	}))
	defer srv.Close()

	m := NewMoMo(config.MoMoConfig{Endpoint: srv.URL}, time.Second)
	if _, err := m.Initiate(context.Background(), InitiateRequest{Order: domain.Order{ID: "order-3"}}); err == nil {
		t.Fatal("expected error for rejected create")
	}
}

func TestBankTransferInitiate(t *testing.T) {
	accounts := []config.BankAccount{
		{ID: "vcb", BankCode: "VCB", AccountNumber: "0123456789", AccountName: "STORE CO"},
		{ID: "tcb", BankCode: "TCB", AccountNumber: "9876543210", AccountName: "STORE CO"},
	}
	m := NewBankTransfer(accounts, time.Second, nil)

	res, err := m.Initiate(context.Background(), InitiateRequest{Order: domain.Order{ID: "order-12", Amount: 500000}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", res.Status)
	}
	if !strings.HasPrefix(res.ProviderRef, "SFORDER12") {
		t.Fatalf("unexpected transfer reference %s", res.ProviderRef)
	}
	banks, ok := res.Payload["banks"].([]map[string]interface{})
	if !ok || len(banks) != 2 {
		t.Fatalf("expected 2 banks in payload, got %+v", res.Payload["banks"])
	}
	if res.Payload["memo"] != res.ProviderRef {
		t.Fatal("memo must match the stored reference")
	}
}

func TestBankTransferInitiateNoAccounts(t *testing.T) {
	m := NewBankTransfer(nil, time.Second, nil)
	if _, err := m.Initiate(context.Background(), InitiateRequest{Order: domain.Order{ID: "order-12"}}); err == nil {
		t.Fatal("expected error with no configured accounts")
	}
}

func TestBankQRImageURL(t *testing.T) {
	m := NewBankTransfer([]config.BankAccount{
		{ID: "vcb", BankCode: "VCB", AccountNumber: "0123456789", AccountName: "STORE CO"},
	}, time.Second, nil).(*bankTransferMethod)

	link, err := m.QRImageURL("vcb", 750000, "SFORDER12ABCD1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(link, "https://img.vietqr.io/image/VCB-0123456789-compact2.png?") {
		t.Fatalf("unexpected image url %s", link)
	}
	q, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if q.Query().Get("amount") != "750000" || q.Query().Get("addInfo") != "SFORDER12ABCD1234" {
		t.Fatalf("unexpected query %s", q.RawQuery)
	}

	if _, err := m.QRImageURL("missing", 1, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransferReferenceShape(t *testing.T) {
	ref := transferReference("order-12")
	if !strings.HasPrefix(ref, "SFORDER12") || len(ref) != len("SFORDER12")+8 {
		t.Fatalf("unexpected reference %s", ref)
	}
	if ref == transferReference("order-12") {
		t.Fatal("expected a fresh suffix per reference")
	}
	if strings.ToUpper(ref) != ref {
		t.Fatalf("reference must be uppercase: %s", ref)
	}
}
