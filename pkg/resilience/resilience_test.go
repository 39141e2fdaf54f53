package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test-op", fastRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), "test-op", fastRetryConfig(), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Retry() = %v, want wrapped sentinel", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	cfg := fastRetryConfig()
	cfg.MaxAttempts = 10
	err := Retry(ctx, "test-op", cfg, func() error {
		calls++
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
	if calls > 1 {
		t.Errorf("fn called %d times after cancellation", calls)
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Hour})
	fail := func() error { return errors.New("down") }

	for i := 0; i < 3; i++ {
		if err := cb.Execute(fail); errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("circuit opened early at call %d", i)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open after threshold", cb.GetState())
	}
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() while open = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn ran while the circuit was open")
	}
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold:    1,
		ResetTimeout:        10 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})
	cb.Execute(func() error { return errors.New("down") })
	if cb.GetState() != StateOpen {
		t.Fatal("circuit did not open")
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", cb.GetState())
	}
}

func TestCircuitBreakerReopensOnFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     10 * time.Millisecond,
	})
	cb.Execute(func() error { return errors.New("down") })
	time.Sleep(20 * time.Millisecond)
	cb.Execute(func() error { return errors.New("still down") })
	if cb.GetState() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", cb.GetState())
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Hour})
	fail := func() error { return errors.New("down") }
	ok := func() error { return nil }

	cb.Execute(fail)
	cb.Execute(fail)
	cb.Execute(ok)
	cb.Execute(fail)
	cb.Execute(fail)
	if cb.GetState() != StateClosed {
		t.Error("non-consecutive failures tripped the circuit")
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	cb.Execute(func() error { return errors.New("down") })
	if cb.GetState() != StateOpen {
		t.Fatal("circuit did not open")
	}
	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Error("Reset() did not close the circuit")
	}
}
