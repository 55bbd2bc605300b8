package logger

import "strings"

const visibleCodePrefix = 4

// MaskCode hides a one-time code for logging, keeping a short prefix so
// attempts can still be correlated (e.g. "081a****").
func MaskCode(code string) string {
	if code == "" {
		return "[empty]"
	}
	if len(code) <= visibleCodePrefix {
		return strings.Repeat("*", len(code))
	}
	return code[:visibleCodePrefix] + strings.Repeat("*", len(code)-visibleCodePrefix)
}

// MaskPhone keeps the first three and last four digits of a phone number.
func MaskPhone(phone string) string {
	if len(phone) < 8 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
}
