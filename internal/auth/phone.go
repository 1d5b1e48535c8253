package auth

import "strings"

// NormalizePhone converts an Indian phone number to E.164. Spaces and dashes
// are stripped; a bare 10-digit number gets the +91 prefix; a 12-digit number
// starting with 91 gets a +. The same normalization must run at OTP send and
// check time or the provider will treat them as different numbers.
func NormalizePhone(raw string) string {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(raw)
	switch {
	case len(phone) == 10 && !strings.HasPrefix(phone, "+"):
		return "+91" + phone
	case len(phone) == 12 && strings.HasPrefix(phone, "91"):
		return "+" + phone
	}
	return phone
}
