package checker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/namelens/handlecheck/internal/core"
)

// ErrInvalidFormat reports a handle that breaks a platform's syntax rules.
var ErrInvalidFormat = errors.New("invalid handle format")

// ValidateHandle checks a handle against the platform's username rules.
// Platforms without known rules accept every handle.
func ValidateHandle(platform core.PlatformID, handle string) error {
	switch platform {
	case core.PlatformInstagram:
		return validateInstagram(handle)
	case core.PlatformYouTube:
		return validateYouTube(handle)
	case core.PlatformTikTok:
		return validateTikTok(handle)
	default:
		return nil
	}
}

// Instagram: 1-30 chars of letters, digits, '.' and '_'; no leading,
// trailing or doubled periods.
func validateInstagram(handle string) error {
	if err := checkLength(handle, 1, 30); err != nil {
		return err
	}
	if strings.HasPrefix(handle, ".") || strings.HasSuffix(handle, ".") {
		return invalid("must not start or end with a period")
	}
	if strings.Contains(handle, "..") {
		return invalid("must not contain consecutive periods")
	}
	return checkCharset(handle, "._")
}

// YouTube: 3-20 chars of letters, digits, '-' and '_'; no leading or
// trailing '-' or '_'.
func validateYouTube(handle string) error {
	if err := checkLength(handle, 3, 20); err != nil {
		return err
	}
	if strings.HasPrefix(handle, "-") || strings.HasPrefix(handle, "_") ||
		strings.HasSuffix(handle, "-") || strings.HasSuffix(handle, "_") {
		return invalid("must not start or end with a hyphen or underscore")
	}
	return checkCharset(handle, "-_")
}

// TikTok: 1-24 chars of letters, digits, '_' and '.'; starts with a letter;
// no doubled underscores.
func validateTikTok(handle string) error {
	if err := checkLength(handle, 1, 24); err != nil {
		return err
	}
	first, _ := utf8.DecodeRuneInString(handle)
	if !unicode.IsLetter(first) {
		return invalid("must start with a letter")
	}
	if strings.Contains(handle, "__") {
		return invalid("must not contain consecutive underscores")
	}
	return checkCharset(handle, "_.")
}

func checkLength(handle string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(handle)
	if n < minLen || n > maxLen {
		return invalid(fmt.Sprintf("must be %d-%d characters", minLen, maxLen))
	}
	return nil
}

func checkCharset(handle, extra string) error {
	for _, r := range handle {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(extra, r) {
			continue
		}
		return invalid(fmt.Sprintf("character %q is not allowed", r))
	}
	return nil
}

func invalid(rule string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, rule)
}
