package retry

import (
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		return nil
	}, WithMaxAttempts(5))
	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := Do(func() error {
		attempts++
		return boom
	}, WithMaxAttempts(3), WithInterval(time.Millisecond), WithBackoff(2))
	if err != boom {
		t.Errorf("expected last error to surface, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoRecoversMidway(t *testing.T) {
	attempts := 0
	res, err := Do1(func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	}, WithMaxAttempts(5))
	if err != nil {
		t.Errorf("expected eventual success, got %v", err)
	}
	if res != 42 || attempts != 3 {
		t.Errorf("expected 42 after 3 attempts, got %d after %d", res, attempts)
	}
}
