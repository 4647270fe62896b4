package payment

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPollerFiresTerminalExactlyOnce(t *testing.T) {
	var checks int32
	var terminals int32
	done := make(chan domain.PaymentStatus, 1)

	p := StartPolling(5*time.Millisecond,
		func(context.Context) (domain.PaymentStatus, error) {
			if atomic.AddInt32(&checks, 1) < 3 {
				return domain.PaymentStatusPending, nil
			}
			return domain.PaymentStatusPaid, nil
		},
		func(status domain.PaymentStatus) {
			atomic.AddInt32(&terminals, 1)
			done <- status
		},
		testLogger(),
	)

	select {
	case status := <-done:
		if status != domain.PaymentStatusPaid {
			t.Fatalf("expected paid, got %s", status)
		}
	case <-time.After(time.Second):
		t.Fatal("poller never reached terminal state")
	}
	p.Wait()
	if got := atomic.LoadInt32(&terminals); got != 1 {
		t.Fatalf("expected onTerminal once, got %d", got)
	}
	if got := atomic.LoadInt32(&checks); got < 3 {
		t.Fatalf("expected at least 3 checks, got %d", got)
	}
}

func TestPollerContinuesAfterCheckError(t *testing.T) {
	var checks int32
	done := make(chan domain.PaymentStatus, 1)

	StartPolling(5*time.Millisecond,
		func(context.Context) (domain.PaymentStatus, error) {
			if atomic.AddInt32(&checks, 1) == 1 {
				return "", errors.New("provider timeout")
			}
			return domain.PaymentStatusFailed, nil
		},
		func(status domain.PaymentStatus) { done <- status },
		testLogger(),
	)

	select {
	case status := <-done:
		if status != domain.PaymentStatusFailed {
			t.Fatalf("expected failed, got %s", status)
		}
	case <-time.After(time.Second):
		t.Fatal("poller never recovered from check error")
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := StartPolling(5*time.Millisecond,
		func(context.Context) (domain.PaymentStatus, error) {
			return domain.PaymentStatusPending, nil
		},
		func(domain.PaymentStatus) { t.Error("unexpected terminal callback") },
		testLogger(),
	)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Stop()
		}()
	}
	wg.Wait()
	p.Stop()

	waited := make(chan struct{})
	go func() { p.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("poller goroutine did not exit after Stop")
	}
}
