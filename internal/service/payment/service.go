package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"storefront/internal/domain"
	paymentrepo "storefront/internal/repository/payment"
)

type paymentStore interface {
	Create(ctx context.Context, in paymentrepo.CreatePaymentInput) (*domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)
	GetPending(ctx context.Context, orderID string, method domain.PaymentMethod) (*domain.Payment, error)
	MarkStatus(ctx context.Context, id string, status domain.PaymentStatus) (bool, error)
}

type orderClient interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	SetPaymentState(ctx context.Context, orderID string, method domain.PaymentMethod, status domain.PaymentStatus, paymentID string) error
}

// payloadRebuilder is implemented by methods whose initiation payload can be
// reproduced without a new provider side effect, so a re-rendered checkout
// can show the same instructions again.
type payloadRebuilder interface {
	RebuildPayload(ctx context.Context, order domain.Order, p domain.Payment) (map[string]interface{}, error)
}

// Service is the payment orchestrator: it initiates provider flows, owns the
// status pollers and funnels every status writer through the store's
// terminal-state guard.
type Service struct {
	repo    paymentStore
	orders  orderClient
	logger  *log.Logger
	methods map[domain.PaymentMethod]Method

	mu       sync.Mutex
	inflight map[string]struct{}
	pollers  map[string]*Poller
	closed   bool
}

// New wires the orchestrator with its method registry.
func New(repo paymentStore, orders orderClient, logger *log.Logger, methods ...Method) *Service {
	registry := make(map[domain.PaymentMethod]Method, len(methods))
	for _, m := range methods {
		registry[m.Name()] = m
	}
	return &Service{
		repo:     repo,
		orders:   orders,
		logger:   logger,
		methods:  registry,
		inflight: make(map[string]struct{}),
		pollers:  make(map[string]*Poller),
	}
}

// InitiateResponse is the uniform result of starting (or re-observing) a
// payment flow.
type InitiateResponse struct {
	Payment domain.Payment         `json:"payment"`
	Payload map[string]interface{} `json:"providerFields,omitempty"`
}

// Initiate starts the chosen method for an order. Exactly one initiation per
// order and method is allowed per checkout attempt: a concurrent duplicate is
// rejected, and when a pending payment already exists it is returned instead
// of creating a second one.
func (s *Service) Initiate(ctx context.Context, orderID string, methodName domain.PaymentMethod, params map[string]string) (*InitiateResponse, error) {
	method, ok := s.methods[methodName]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported payment method", domain.ErrInvalidInput)
	}

	guard := orderID + "/" + string(methodName)
	s.mu.Lock()
	if _, busy := s.inflight[guard]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: payment already being processed", domain.ErrConflict)
	}
	s.inflight[guard] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, guard)
		s.mu.Unlock()
	}()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("order: %w", domain.ErrNotFound)
		}
		return nil, err
	}

	if existing, err := s.repo.GetPending(ctx, orderID, methodName); err == nil {
		resp := &InitiateResponse{Payment: *existing}
		if rb, ok := method.(payloadRebuilder); ok {
			payload, err := rb.RebuildPayload(ctx, *order, *existing)
			if err != nil {
				return nil, err
			}
			resp.Payload = payload
		}
		return resp, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	result, err := method.Initiate(ctx, InitiateRequest{Order: *order, Params: params})
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.Create(ctx, paymentrepo.CreatePaymentInput{
		OrderID:     orderID,
		Method:      methodName,
		ProviderRef: result.ProviderRef,
		Status:      result.Status,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentState(ctx, orderID, methodName, payment.Status, payment.ID); err != nil {
		s.logger.Printf("order payment state write-back failed for %s: %v", orderID, err)
	}

	if payment.Status == domain.PaymentStatusPending {
		s.startPoller(method, *payment)
	}
	return &InitiateResponse{Payment: *payment, Payload: result.Payload}, nil
}

// startPoller begins background status polling for methods that declare an
// interval and a way to fetch a fresh status.
func (s *Service) startPoller(method Method, payment domain.Payment) {
	interval := method.PollInterval()
	checker, ok := method.(statusChecker)
	if interval <= 0 || !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Keyed by payment id so two pending methods on one order poll
	// independently. Re-initiation reuses the pending row, so the same key
	// also guards against duplicate pollers for one payment.
	if existing, ok := s.pollers[payment.ID]; ok {
		existing.Stop()
	}
	s.pollers[payment.ID] = StartPolling(interval,
		func(ctx context.Context) (domain.PaymentStatus, error) {
			return checker.CheckStatus(ctx, payment)
		},
		func(status domain.PaymentStatus) {
			s.finalize(context.Background(), payment, status)
		},
		s.logger,
	)
}

// finalize moves a payment into a terminal state. The store's guard makes it
// idempotent across the poller, return callbacks and manual confirmation:
// only the first writer applies, the rest are silent no-ops.
func (s *Service) finalize(ctx context.Context, payment domain.Payment, status domain.PaymentStatus) {
	applied, err := s.repo.MarkStatus(ctx, payment.ID, status)
	if err != nil {
		s.logger.Printf("mark payment %s %s: %v", payment.ID, status, err)
		return
	}
	if applied {
		if err := s.orders.SetPaymentState(ctx, payment.OrderID, payment.Method, status, payment.ID); err != nil {
			s.logger.Printf("order payment state write-back failed for %s: %v", payment.OrderID, err)
		}
	}
	s.stopPoller(payment.ID)
}

func (s *Service) stopPoller(paymentID string) {
	s.mu.Lock()
	poller, ok := s.pollers[paymentID]
	if ok {
		delete(s.pollers, paymentID)
	}
	s.mu.Unlock()
	if ok {
		poller.Stop()
	}
}

// Confirm marks a payment as paid. Confirming an already-terminal payment is
// a silent no-op; the current payment is returned either way.
func (s *Service) Confirm(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status.IsTerminal() {
		return payment, nil
	}
	s.finalize(ctx, *payment, domain.PaymentStatusPaid)
	return s.repo.GetByID(ctx, paymentID)
}

// CheckResult is the order's payment view.
type CheckResult struct {
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Payments      []domain.Payment     `json:"payments"`
}

// Check reports the order's payment status. Pending payments whose method can
// query fresh status get one immediate check; a terminal result finalizes the
// payment and cancels its poller, so an explicit "check now" success tears
// the timer down too.
func (s *Service) Check(ctx context.Context, orderID string) (*CheckResult, error) {
	payments, err := s.repo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	refreshed := false
	for _, p := range payments {
		if p.Status != domain.PaymentStatusPending {
			continue
		}
		method, ok := s.methods[p.Method]
		if !ok {
			continue
		}
		checker, ok := method.(statusChecker)
		if !ok {
			continue
		}
		status, err := checker.CheckStatus(ctx, p)
		if err != nil {
			s.logger.Printf("payment status check failed for %s: %v", p.ID, err)
			continue
		}
		if status.IsTerminal() {
			s.finalize(ctx, p, status)
			refreshed = true
		}
	}
	if refreshed {
		if payments, err = s.repo.GetByOrder(ctx, orderID); err != nil {
			return nil, err
		}
	}

	return &CheckResult{PaymentStatus: overallStatus(payments), Payments: payments}, nil
}

// overallStatus folds per-payment statuses into the order-level one: any paid
// payment settles the order, otherwise any pending one keeps it open.
func overallStatus(payments []domain.Payment) domain.PaymentStatus {
	sawPending := false
	sawFailed := false
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentStatusPaid:
			return domain.PaymentStatusPaid
		case domain.PaymentStatusPending:
			sawPending = true
		case domain.PaymentStatusFailed:
			sawFailed = true
		}
	}
	if sawPending {
		return domain.PaymentStatusPending
	}
	if sawFailed {
		return domain.PaymentStatusFailed
	}
	return domain.PaymentStatusPending
}

// HandleVNPayReturn applies a VNPay return-URL callback.
func (s *Service) HandleVNPayReturn(ctx context.Context, query url.Values) (*domain.Payment, error) {
	ret, err := ParseVNPayReturn(query)
	if err != nil {
		return nil, err
	}
	return s.applyReturn(ctx, ret.OrderID, domain.PaymentMethodVNPay, ret.Paid)
}

// HandleMoMoReturn applies a MoMo return-URL callback.
func (s *Service) HandleMoMoReturn(ctx context.Context, query url.Values) (*domain.Payment, error) {
	ret, err := ParseMoMoReturn(query)
	if err != nil {
		return nil, err
	}
	return s.applyReturn(ctx, ret.OrderID, domain.PaymentMethodMoMo, ret.Paid)
}

func (s *Service) applyReturn(ctx context.Context, orderID string, method domain.PaymentMethod, paid bool) (*domain.Payment, error) {
	payment, err := s.repo.GetPending(ctx, orderID, method)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// No pending payment: a faster writer already finalized it.
		payments, err := s.repo.GetByOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		for _, p := range payments {
			if p.Method == method {
				return &p, nil
			}
		}
		return nil, domain.ErrNotFound
	}

	status := domain.PaymentStatusFailed
	if paid {
		status = domain.PaymentStatusPaid
	}
	s.finalize(ctx, *payment, status)
	return s.repo.GetByID(ctx, payment.ID)
}

// BankQR builds the transfer QR image link for one receiving account of a
// pending bank-transfer payment.
func (s *Service) BankQR(ctx context.Context, bankID, orderID string) (string, error) {
	method, ok := s.methods[domain.PaymentMethodBankTransfer]
	if !ok {
		return "", fmt.Errorf("%w: unsupported payment method", domain.ErrInvalidInput)
	}
	bank, ok := method.(*bankTransferMethod)
	if !ok {
		return "", fmt.Errorf("%w: unsupported payment method", domain.ErrInvalidInput)
	}
	payment, err := s.repo.GetPending(ctx, orderID, domain.PaymentMethodBankTransfer)
	if err != nil {
		return "", err
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return bank.QRImageURL(bankID, order.Amount, payment.ProviderRef)
}

// SupportsManualConfirm reports whether a method allows the payer's
// "I have paid" self-report.
func (s *Service) SupportsManualConfirm(methodName domain.PaymentMethod) bool {
	method, ok := s.methods[methodName]
	return ok && method.SupportsManualConfirm()
}

// Close stops every live poller. Safe to call once at shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	pollers := make([]*Poller, 0, len(s.pollers))
	for id, p := range s.pollers {
		pollers = append(pollers, p)
		delete(s.pollers, id)
	}
	s.mu.Unlock()
	for _, p := range pollers {
		p.Stop()
		p.Wait()
	}
}
