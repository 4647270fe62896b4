package payment

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront/internal/domain"
)

// Poller re-checks a payment's status on a fixed, provider-specific interval
// until a terminal state is observed or it is stopped. onTerminal fires at
// most once; a transient check failure is logged and skipped, never retried
// within the same tick.
type Poller struct {
	interval   time.Duration
	check      func(ctx context.Context) (domain.PaymentStatus, error)
	onTerminal func(domain.PaymentStatus)
	logger     *log.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// StartPolling begins polling in a background goroutine and returns the
// running poller.
func StartPolling(interval time.Duration, check func(ctx context.Context) (domain.PaymentStatus, error), onTerminal func(domain.PaymentStatus), logger *log.Logger) *Poller {
	p := &Poller{
		interval:   interval,
		check:      check,
		onTerminal: onTerminal,
		logger:     logger,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Poller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := domain.PaymentStatusPending
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.interval)
		status, err := p.check(ctx)
		cancel()
		if err != nil {
			p.logger.Printf("payment status check failed: %v", err)
			continue
		}
		if status == last || !status.IsTerminal() {
			last = status
			continue
		}
		// Transition into a terminal state: report once and cancel.
		p.onTerminal(status)
		p.Stop()
		return
	}
}

// Stop cancels the poller. Stopping an already-stopped poller is a safe
// no-op, so teardown, terminal observation and "check now" success may all
// call it without coordination.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Wait blocks until the polling goroutine has exited.
func (p *Poller) Wait() {
	<-p.done
}
