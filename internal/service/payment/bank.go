package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// bankTransferMethod offers the receiving accounts for a manual transfer.
// The payer must reproduce the generated memo exactly; completion arrives
// through the payer's self-report plus a privileged confirmation, which the
// poller picks up from the payment store.
type bankTransferMethod struct {
	accounts []config.BankAccount
	interval time.Duration
	store    statusReader
}

type statusReader interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
}

// NewBankTransfer builds the bank-transfer method.
func NewBankTransfer(accounts []config.BankAccount, interval time.Duration, store statusReader) Method {
	return &bankTransferMethod{accounts: accounts, interval: interval, store: store}
}

func (m *bankTransferMethod) Name() domain.PaymentMethod { return domain.PaymentMethodBankTransfer }

func (m *bankTransferMethod) Initiate(_ context.Context, req InitiateRequest) (*InitiateResult, error) {
	if len(m.accounts) == 0 {
		return nil, errors.New("no bank accounts configured")
	}
	ref := transferReference(req.Order.ID)
	banks := make([]map[string]interface{}, 0, len(m.accounts))
	for _, acc := range m.accounts {
		banks = append(banks, map[string]interface{}{
			"id":            acc.ID,
			"bankCode":      acc.BankCode,
			"accountNumber": acc.AccountNumber,
			"accountName":   acc.AccountName,
		})
	}
	return &InitiateResult{
		Status:      domain.PaymentStatusPending,
		ProviderRef: ref,
		Payload: map[string]interface{}{
			"banks":     banks,
			"reference": ref,
			"memo":      ref,
			"amount":    req.Order.Amount,
		},
	}, nil
}

func (m *bankTransferMethod) PollInterval() time.Duration { return m.interval }

func (m *bankTransferMethod) SupportsManualConfirm() bool { return true }

// CheckStatus re-reads the payment store: bank transfers complete through an
// explicit confirmation by another writer, never through a provider API.
func (m *bankTransferMethod) CheckStatus(ctx context.Context, p domain.Payment) (domain.PaymentStatus, error) {
	fresh, err := m.store.GetByID(ctx, p.ID)
	if err != nil {
		return "", err
	}
	return fresh.Status, nil
}

// RebuildPayload re-derives the transfer instructions for an existing pending
// payment, keeping its stored reference so the memo stays stable.
func (m *bankTransferMethod) RebuildPayload(_ context.Context, order domain.Order, p domain.Payment) (map[string]interface{}, error) {
	banks := make([]map[string]interface{}, 0, len(m.accounts))
	for _, acc := range m.accounts {
		banks = append(banks, map[string]interface{}{
			"id":            acc.ID,
			"bankCode":      acc.BankCode,
			"accountNumber": acc.AccountNumber,
			"accountName":   acc.AccountName,
		})
	}
	return map[string]interface{}{
		"banks":     banks,
		"reference": p.ProviderRef,
		"memo":      p.ProviderRef,
		"amount":    order.Amount,
	}, nil
}

// QRImageURL builds a VietQR-style image link for one receiving account, with
// the amount and transfer memo embedded.
func (m *bankTransferMethod) QRImageURL(bankID string, amount int64, memo string) (string, error) {
	for _, acc := range m.accounts {
		if acc.ID != bankID {
			continue
		}
		q := url.Values{}
		q.Set("amount", fmt.Sprintf("%d", amount))
		q.Set("addInfo", memo)
		q.Set("accountName", acc.AccountName)
		return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-compact2.png?%s",
			acc.BankCode, acc.AccountNumber, q.Encode()), nil
	}
	return "", domain.ErrNotFound
}

// transferReference generates the code the payer must quote in the transfer
// memo. Uppercase and short enough to survive bank memo fields.
func transferReference(orderID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "SF" + sanitizeRef(orderID) + suffix
}

func sanitizeRef(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
