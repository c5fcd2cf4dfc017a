package util

import (
	"context"
	"errors"
	"syscall"
	"testing"
)

func TestIsMountBusy(t *testing.T) {
	if !IsMountBusy(syscall.EBUSY) {
		t.Error("EBUSY should be busy")
	}
	if IsMountBusy(syscall.EACCES) {
		t.Error("EACCES should not be busy")
	}
	if IsMountBusy(errors.New("other")) {
		t.Error("arbitrary error should not be busy")
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("Retry should fail after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithResult(t *testing.T) {
	calls := 0
	got, err := RetryWithResult(context.Background(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("RetryWithResult: %v", err)
	}
	if got != "ok" {
		t.Errorf("got = %q, want ok", got)
	}
}

// Mount retry options only retry busy errors.
func TestMountRetryOptions_Predicate(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := Retry(ctx, func() error {
		calls++
		return syscall.EACCES
	}, MountRetryOptions(ctx)...)
	if err == nil {
		t.Fatal("EACCES should not be retried into success")
	}
	if calls != 1 {
		t.Errorf("EACCES retried %d times, want 1", calls)
	}
}
