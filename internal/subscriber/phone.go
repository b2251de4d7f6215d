package subscriber

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("phone number is empty or not a valid number")

// NormalizePhone converts any of the accepted input formats to digits only
// with a country code:
//
//	08012345678    -> 2348012345678
//	2348012345678  -> 2348012345678
//	+2348012345678 -> 2348012345678
//
// countryPrefix replaces a leading 0 in local numbers.
func NormalizePhone(phone, countryPrefix string) (string, error) {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.TrimPrefix(phone, "+")

	if phone == "" {
		return "", ErrInvalidPhone
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}

	if strings.HasPrefix(phone, "0") {
		phone = countryPrefix + phone[1:]
	}
	if len(phone) < 8 {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
