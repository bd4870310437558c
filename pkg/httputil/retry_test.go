package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	unavailable := errors.New("503 Service Unavailable")
	badRequest := errors.New("400 Bad Request")

	tests := []struct {
		name      string
		attempts  int
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"first try", 3, nil, 1, nil},
		{"recovers", 3, []error{Transient(unavailable), Transient(unavailable)}, 3, nil},
		{"gives up", 3, []error{Transient(unavailable), Transient(unavailable), Transient(unavailable), nil}, 3, unavailable},
		{"permanent", 3, []error{badRequest, nil}, 1, badRequest},
		{"single attempt", 0, []error{Transient(unavailable), nil}, 1, unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= len(tt.errs) {
					return tt.errs[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if err != tt.wantErr {
				t.Errorf("Retry() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 10, time.Hour, func() error {
		calls++
		cancel()
		return Transient(errors.New("connection reset"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) != nil")
	}
	cause := errors.New("reset")
	err := Transient(cause)
	if !IsTransient(err) || !errors.Is(err, cause) || err.Error() != "reset" {
		t.Errorf("Transient() = %v", err)
	}
	if IsTransient(cause) {
		t.Error("unmarked error reported transient")
	}
}
