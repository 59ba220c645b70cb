package errors

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "Lunch", false},
		{"unicode", "Café du Monde", false},
		{"tab allowed", "Stand\tup", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"control char", "Lunch\x00", true},
		{"newline", "Lunch\nbreak", true},
		{"too long", strings.Repeat("a", 201), true},
		{"max length", strings.Repeat("a", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText("title", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateText(%q) code = %v, want %v", tt.value, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"#8FA2B7", false},
		{"#8fa2b7", false},
		{"#fff", false},
		{"", true},
		{"8FA2B7", true},
		{"#8FA2B", true},
		{"#GGGGGG", true},
		{"black", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateHexColor("bar_color", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOpacity(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		if err := ValidateOpacity("opacity", v); err != nil {
			t.Errorf("ValidateOpacity(%g) unexpected error: %v", v, err)
		}
	}
	for _, v := range []float64{-0.1, 1.01} {
		err := ValidateOpacity("opacity", v)
		if !Is(err, ErrCodeInvalidStyle) {
			t.Errorf("ValidateOpacity(%g) = %v, want INVALID_STYLE", v, err)
		}
	}
}

func TestValidateFraction(t *testing.T) {
	if err := ValidateFraction("bar_width", 1); err != nil {
		t.Errorf("ValidateFraction(1) unexpected error: %v", err)
	}
	if err := ValidateFraction("bar_width", 0); err == nil {
		t.Error("ValidateFraction(0) expected error")
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("height", 300); err != nil {
		t.Errorf("ValidatePositive(300) unexpected error: %v", err)
	}
	if err := ValidatePositive("height", 0); err == nil {
		t.Error("ValidatePositive(0) expected error")
	}
}

func TestValidateRange(t *testing.T) {
	for _, v := range []int{1, 1050, 2000} {
		if err := ValidateRange("width", v, 1, 2000); err != nil {
			t.Errorf("ValidateRange(%d) unexpected error: %v", v, err)
		}
	}
	for _, v := range []int{0, -5, 2001, 200000} {
		if err := ValidateRange("width", v, 1, 2000); !Is(err, ErrCodeInvalidStyle) {
			t.Errorf("ValidateRange(%d) = %v, want INVALID_STYLE", v, err)
		}
	}
}

func TestValidateImageFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantCode Code
	}{
		{"png", "bg.png", ""},
		{"jpg", "bg.jpg", ""},
		{"jpeg upper", "BG.JPEG", ""},
		{"empty", "", ErrCodeInvalidInput},
		{"path", "../bg.png", ErrCodeInvalidInput},
		{"slash", "dir/bg.png", ErrCodeInvalidInput},
		{"gif", "bg.gif", ErrCodeInvalidInputType},
		{"no ext", "bg", ErrCodeInvalidInputType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageFilename(tt.filename)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateImageFilename(%q) unexpected error: %v", tt.filename, err)
				}
				return
			}
			if !Is(err, tt.wantCode) {
				t.Errorf("ValidateImageFilename(%q) = %v, want code %v", tt.filename, err, tt.wantCode)
			}
		})
	}
}
