package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

// Limits applied at the API edge
const (
	MaxBodySize      = 64 * 1024 // 64KB - request body limit
	MaxTitleLength   = 256
	MaxAppKeyLength  = 64
	MaxKeyNameLength = 32
	MaxDimension     = 16384
)

// AppKeyPattern allows alphanumeric, dots, hyphens, underscores
var AppKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateWindowID checks the win_<ULID> shape
func ValidateWindowID(s string) error {
	if s == "" {
		return fmt.Errorf("window_id is required")
	}
	if !id.IsWindowID(s) {
		return fmt.Errorf("window_id %q is malformed", s)
	}
	return nil
}

// ValidateString validates string length and UTF-8 encoding
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid UTF-8", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must be at most %d characters", fieldName, maxLen)
	}
	return nil
}

// ValidateAppKey validates a catalog app key
func ValidateAppKey(key string) error {
	if err := ValidateString(key, "app_key", 1, MaxAppKeyLength, true); err != nil {
		return err
	}
	if !AppKeyPattern.MatchString(key) {
		return fmt.Errorf("app_key contains invalid characters")
	}
	return nil
}

// ValidateTitle validates a window title before sanitizing
func ValidateTitle(title string) error {
	return ValidateString(title, "title", 0, MaxTitleLength, false)
}

// ValidateKeyName validates a key name forwarded from the keyboard surface
func ValidateKeyName(name string) error {
	if err := ValidateString(strings.TrimSpace(name), "key", 1, MaxKeyNameLength, true); err != nil {
		return err
	}
	return nil
}

// ValidateSize rejects negative or absurd dimensions
func ValidateSize(s types.Size) error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("size must not be negative")
	}
	if s.Width > MaxDimension || s.Height > MaxDimension {
		return fmt.Errorf("size must be at most %dx%d", MaxDimension, MaxDimension)
	}
	return nil
}

// ValidatePosition rejects coordinates far outside any viewport
func ValidatePosition(p types.Position) error {
	if abs(p.X) > MaxDimension || abs(p.Y) > MaxDimension {
		return fmt.Errorf("position must be within ±%d", MaxDimension)
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
