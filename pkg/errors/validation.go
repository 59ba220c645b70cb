package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateRequired checks that a free-text field is present.
// Only presence is checked: any non-blank text is accepted.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidInput, "%s is required", field)
	}
	return nil
}

// ValidateText validates a free-text event field (title or place).
//
// The rules are conservative:
//   - Field must be present
//   - No control characters other than tab
//   - Maximum length of 200 characters
func ValidateText(field, value string) error {
	if err := ValidateRequired(field, value); err != nil {
		return err
	}
	if len(value) > 200 {
		return New(ErrCodeInvalidInput, "%s too long (max 200 characters)", field)
	}
	for _, r := range value {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// hexColorRegex matches #RGB and #RRGGBB colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateHexColor validates a hex color string such as "#8FA2B7".
func ValidateHexColor(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidStyle, "%s cannot be empty", field)
	}
	if !hexColorRegex.MatchString(value) {
		return New(ErrCodeInvalidStyle, "%s must be a hex color like #RRGGBB, got %q", field, value)
	}
	return nil
}

// ValidateOpacity checks that an opacity value lies in [0, 1].
func ValidateOpacity(field string, value float64) error {
	if value < 0 || value > 1 {
		return New(ErrCodeInvalidStyle, "%s must be between 0 and 1, got %g", field, value)
	}
	return nil
}

// ValidateFraction checks that a value lies in (0, 1].
func ValidateFraction(field string, value float64) error {
	if value <= 0 || value > 1 {
		return New(ErrCodeInvalidStyle, "%s must be in (0, 1], got %g", field, value)
	}
	return nil
}

// ValidatePositive checks that a numeric value is strictly positive.
func ValidatePositive(field string, value float64) error {
	if value <= 0 {
		return New(ErrCodeInvalidStyle, "%s must be positive, got %g", field, value)
	}
	return nil
}

// ValidateRange checks that an integer lies in [lo, hi].
func ValidateRange(field string, value, lo, hi int) error {
	if value < lo || value > hi {
		return New(ErrCodeInvalidStyle, "%s must be between %d and %d, got %d", field, lo, hi, value)
	}
	return nil
}

// imageExtensions lists the upload types accepted for background images.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ValidateImageFilename validates an uploaded background image filename.
// It must be a simple basename with a png, jpg or jpeg extension.
func ValidateImageFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "image filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return New(ErrCodeInvalidInput, "image filename cannot contain path components")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return New(ErrCodeInvalidInputType, "unsupported image type %q (must be png, jpg or jpeg)", ext)
	}
	return nil
}
