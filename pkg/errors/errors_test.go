package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "unknown format: %s", "reel")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Message != "unknown format: reel" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown format: reel")
	}

	expected := "INVALID_FORMAT: unknown format: reel"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("png: invalid format")
	err := Wrap(ErrCodeRenderFailed, cause, "encode chart")

	if err.Code != ErrCodeRenderFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRenderFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeEmptyInput, "no events"),
			code:     ErrCodeEmptyInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeEmptyInput, "no events"),
			code:     ErrCodeInvalidFormat,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("render: %w", New(ErrCodeInvalidStyle, "bad color")),
			code:     ErrCodeInvalidStyle,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
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
	if got := GetCode(New(ErrCodeInvalidInputType, "x")); got != ErrCodeInvalidInputType {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidInputType)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeInvalidFormat, "x"), true},
		{New(ErrCodeInvalidStyle, "x"), true},
		{New(ErrCodeInvalidInputType, "x"), true},
		{New(ErrCodeEmptyInput, "x"), false},
		{New(ErrCodeRenderFailed, "x"), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := IsInvalid(tt.err); got != tt.want {
			t.Errorf("IsInvalid(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(New(ErrCodeEventNotFound, "x")) {
		t.Error("IsNotFound(EVENT_NOT_FOUND) = false, want true")
	}
	if IsNotFound(New(ErrCodeInvalidInput, "x")) {
		t.Error("IsNotFound(INVALID_INPUT) = true, want false")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeEmptyInput, "No events to display on the timeline."), "No events to display on the timeline."},
		{"render failure", Wrap(ErrCodeRenderFailed, errors.New("boom"), "rasterize"), RenderFailedMessage},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
