package whatsapp

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
)

var ErrNotOnWhatsApp = errors.New("number is not registered on WhatsApp")

// NormalizePhoneNumber reduces a phone number to the digits of its
// international form. With a countryCode, a leading "00" international
// prefix is dropped, a single leading trunk "0" is replaced by the country
// code, and a stray trunk "0" after the country code is removed:
//
//	"+503 7742-8772" -> "50377428772"
//	"050-123-4567"   -> "972501234567" (countryCode "972")
//	"9720501234567"  -> "972501234567" (countryCode "972")
func NormalizePhoneNumber(phoneNumber, countryCode string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, phoneNumber)

	if countryCode == "" {
		return digits
	}

	switch {
	case strings.HasPrefix(digits, "00"):
		digits = digits[2:]
	case strings.HasPrefix(digits, "0"):
		digits = countryCode + digits[1:]
	}

	if strings.HasPrefix(digits, countryCode+"0") {
		digits = countryCode + digits[len(countryCode)+1:]
	}
	return digits
}

// Link returns a wa.me click-to-chat URL that opens WhatsApp with text
// pre-filled for phoneNumber.
func Link(phoneNumber, countryCode, text string) string {
	phone := NormalizePhoneNumber(phoneNumber, countryCode)
	// wa.me expects %20 rather than + for spaces
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + encoded
}
