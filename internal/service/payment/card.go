package payment

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"storefront/internal/domain"
)

// CardDetails are the raw form fields for a card capture.
type CardDetails struct {
	Number string
	Expiry string
	CVV    string
	Holder string
}

// CardGateway performs the synchronous capture against the external acquirer.
type CardGateway interface {
	Capture(ctx context.Context, orderID string, amount int64, card CardDetails) (approved bool, ref string, err error)
}

// cardMethod validates the card fields before any network call, then makes
// exactly one capture attempt per submission.
type cardMethod struct {
	gateway CardGateway
}

// NewCard builds the card-capture method.
func NewCard(gateway CardGateway) Method {
	return &cardMethod{gateway: gateway}
}

func (m *cardMethod) Name() domain.PaymentMethod { return domain.PaymentMethodCard }

var (
	cardNumberRe = regexp.MustCompile(`^[0-9]{13,19}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	cardCVVRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// ValidateCard rejects malformed card fields. It runs before submission so a
// bad form never reaches the gateway.
func ValidateCard(card CardDetails) error {
	number := strings.ReplaceAll(card.Number, " ", "")
	if !cardNumberRe.MatchString(number) {
		return errors.New("invalid card number")
	}
	match := cardExpiryRe.FindStringSubmatch(card.Expiry)
	if match == nil {
		return errors.New("invalid expiry, expected MM/YY")
	}
	if expired(match[1], match[2]) {
		return errors.New("card expired")
	}
	if !cardCVVRe.MatchString(card.CVV) {
		return errors.New("invalid cvv")
	}
	return nil
}

func expired(month, year string) bool {
	exp, err := time.Parse("01/06", month+"/"+year)
	if err != nil {
		return true
	}
	// Valid through the end of the expiry month.
	endOfMonth := exp.AddDate(0, 1, 0)
	return !time.Now().Before(endOfMonth)
}

func (m *cardMethod) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	card := CardDetails{
		Number: req.Params["cardNumber"],
		Expiry: req.Params["cardExpiry"],
		CVV:    req.Params["cardCvv"],
		Holder: req.Params["cardHolder"],
	}
	if err := ValidateCard(card); err != nil {
		return nil, err
	}

	approved, ref, err := m.gateway.Capture(ctx, req.Order.ID, req.Order.Amount, card)
	if err != nil {
		return nil, err
	}
	status := domain.PaymentStatusFailed
	if approved {
		status = domain.PaymentStatusPaid
	}
	return &InitiateResult{
		Status:      status,
		ProviderRef: ref,
		Payload: map[string]interface{}{
			"approved": approved,
		},
	}, nil
}

func (m *cardMethod) PollInterval() time.Duration { return 0 }

func (m *cardMethod) SupportsManualConfirm() bool { return false }
