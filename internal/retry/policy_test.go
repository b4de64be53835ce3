package retry_test

import (
	"testing"
	"time"

	"vinestore/internal/retry"
)

func TestDefaultPolicy(t *testing.T) {
	p := retry.DefaultPolicy()
	if p.Mode != retry.ModeExponential {
		t.Fatalf("expected exponential default mode, got %s", p.Mode)
	}
	if p.MaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", p.MaxRetries)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

func TestNewPolicyClampsInitial(t *testing.T) {
	p := retry.NewPolicy(retry.ModeFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s, got %v", p.Initial)
	}
	if p.Mode != retry.ModeFixed {
		t.Fatalf("expected fixed mode, got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected 5 retries, got %d", p.MaxRetries)
	}
}

func TestNewPolicyUnknownModeFallsBack(t *testing.T) {
	p := retry.NewPolicy(retry.Mode("bogus"), 0, 0, -1)
	if p != retry.DefaultPolicy() {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestDelayModes(t *testing.T) {
	fixed := retry.NewPolicy(retry.ModeFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for attempt := 1; attempt <= 3; attempt++ {
		if d := fixed.Delay(attempt); d != 100*time.Millisecond {
			t.Fatalf("fixed attempt %d: expected 100ms, got %v", attempt, d)
		}
	}

	linear := retry.NewPolicy(retry.ModeLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	linearCases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 250 * time.Millisecond},
		{4, 250 * time.Millisecond},
	}
	for _, tc := range linearCases {
		if got := linear.Delay(tc.attempt); got != tc.want {
			t.Fatalf("linear attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}

	exponential := retry.NewPolicy(retry.ModeExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	expCases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 50 * time.Millisecond},
		{2, 100 * time.Millisecond},
		{3, 160 * time.Millisecond},
		{4, 160 * time.Millisecond},
	}
	for _, tc := range expCases {
		if got := exponential.Delay(tc.attempt); got != tc.want {
			t.Fatalf("exponential attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestDelayNonPositiveAttempt(t *testing.T) {
	p := retry.DefaultPolicy()
	if d := p.Delay(0); d != 0 {
		t.Fatalf("attempt 0: expected 0, got %v", d)
	}
	if d := p.Delay(-1); d != 0 {
		t.Fatalf("attempt -1: expected 0, got %v", d)
	}
}

func TestValidateRejectsBadPolicies(t *testing.T) {
	bad := []retry.Policy{
		{Mode: retry.ModeLinear, Initial: 0, Max: time.Second, MaxRetries: 1},
		{Mode: retry.ModeLinear, Initial: time.Second, Max: 0, MaxRetries: 1},
		{Mode: retry.ModeLinear, Initial: time.Second, Max: time.Second, MaxRetries: -1},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
