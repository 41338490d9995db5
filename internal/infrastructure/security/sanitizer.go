package security

import "strings"

const maskRune = '*'

// MaskAccountNumber hides all but the last four characters of a canonical
// account number. Account numbers are supplier identity data and must not
// appear in clear text in logs or audit details.
func MaskAccountNumber(accountNumber string) string {
	return maskTail(accountNumber, 4)
}

// MaskPhone hides all but the last three digits of a phone number.
func MaskPhone(phone string) string {
	return maskTail(phone, 3)
}

func maskTail(value string, visible int) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= visible {
		return strings.Repeat(string(maskRune), len(runes))
	}

	var b strings.Builder
	for i := 0; i < len(runes)-visible; i++ {
		b.WriteRune(maskRune)
	}
	b.WriteString(string(runes[len(runes)-visible:]))
	return b.String()
}
