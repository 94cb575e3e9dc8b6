package notify

import (
	"fmt"
	"regexp"

	"homevia/apperr"
)

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// NormalizePhone cleans a raw phone number into E.164 form. The number
// must carry its country code: after stripping everything but digits and
// '+', it has to start with '+' and be at least 10 characters long. We do
// not guess a default country code.
func NormalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty phone number: %w", apperr.ErrInvalidInput)
	}

	cleaned := nonPhoneChars.ReplaceAllString(raw, "")

	if len(cleaned) == 0 || cleaned[0] != '+' {
		return "", fmt.Errorf("phone number %q missing country code: %w", raw, apperr.ErrInvalidInput)
	}
	if len(cleaned) < 10 {
		return "", fmt.Errorf("phone number %q too short: %w", raw, apperr.ErrInvalidInput)
	}

	return cleaned, nil
}
