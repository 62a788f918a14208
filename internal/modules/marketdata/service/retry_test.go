package service

import (
	"context"
	"errors"
	"testing"
)

func TestRunWithRetriesSucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, ok := RunWithRetries(context.Background(), RetryPolicy{Attempts: 3}, "op",
		func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
	if !ok || got != 42 {
		t.Fatalf("got %v, %v", got, ok)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRunWithRetriesExhausts(t *testing.T) {
	calls := 0
	_, ok := RunWithRetries(context.Background(), RetryPolicy{Attempts: 3}, "op",
		func(context.Context) (int, error) {
			calls++
			return 0, errors.New("down")
		})
	if ok {
		t.Fatal("want failure after exhaustion")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRunWithRetriesZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	_, _ = RunWithRetries(context.Background(), RetryPolicy{}, "op",
		func(context.Context) (int, error) {
			calls++
			return 0, errors.New("down")
		})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunWithRetriesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, ok := RunWithRetries(ctx, RetryPolicy{Attempts: 5, Delay: 1}, "op",
		func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("down")
		})
	if ok {
		t.Fatal("want failure")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 after cancellation", calls)
	}
}
