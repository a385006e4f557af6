package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfiguration, "tile pool is empty (%d donors)", 0)

	if err.Code != ErrCodeConfiguration {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfiguration)
	}
	if err.Message != "tile pool is empty (0 donors)" {
		t.Errorf("Message = %q", err.Message)
	}
	expected := "CONFIGURATION: tile pool is empty (0 donors)"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeResource, cause, "failed to decode %s", "a.jpg")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got != "RESOURCE: failed to decode a.jpg: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvariant, "x"), ErrCodeInvariant, true},
		{"different code", New(ErrCodeInvariant, "x"), ErrCodeResource, false},
		{"wrapped by fmt", fmt.Errorf("stage: %w", New(ErrCodeConfiguration, "x")), ErrCodeConfiguration, true},
		{"plain error", errors.New("x"), ErrCodeConfiguration, false},
		{"nil", nil, ErrCodeConfiguration, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(fmt.Errorf("run: %w", New(ErrCodeResource, "x"))); got != ErrCodeResource {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeResource)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", New(ErrCodeConfiguration, "tile pool is empty"), "tile pool is empty"},
		{"with cause", Wrap(ErrCodeResource, errors.New("EOF"), "failed to decode photo"), "failed to decode photo: EOF"},
		{"foreign", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
