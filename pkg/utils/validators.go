package utils

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^[1-9]\d{5}$`)
	upiPattern     = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// NormalizePhone strips spaces, dashes and an optional +91/0 prefix.
func NormalizePhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	cleaned = strings.TrimPrefix(cleaned, "+91")
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "0") {
		cleaned = cleaned[1:]
	}
	return cleaned
}

// IsValidPhone reports whether phone is a 10 digit Indian mobile number.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// IsValidPincode reports whether pincode is a 6 digit postal code.
func IsValidPincode(pincode string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(pincode))
}

// IsValidUPIID reports whether id looks like a UPI virtual payment address.
func IsValidUPIID(id string) bool {
	return upiPattern.MatchString(strings.TrimSpace(id))
}

// IsValidEmail is a loose shape check; empty input is not valid.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// NormalizeText lowercases s and collapses runs of whitespace.
func NormalizeText(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(strings.ToLower(s), " "))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	needle = NormalizeText(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(NormalizeText(haystack), needle)
}
