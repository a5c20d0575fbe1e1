package validation

import "strings"

const (
	maxLocalPartLength = 64
	maxDomainLength    = 255
	minTLDLength       = 2
)

// IsValidFormat checks the structural validity of an email address:
// local@domain shape, local part 1-64 chars, domain at most 255 chars
// with at least one dot, and a final label of two or more chars.
// It is pure and never fails on any input.
func IsValidFormat(email string) bool {
	_, _, ok := SplitAddress(email)
	return ok
}

// SplitAddress breaks an address into local part and domain, applying
// the same structural rules as IsValidFormat.
func SplitAddress(email string) (local, domain string, ok bool) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", "", false
	}
	local, domain = parts[0], parts[1]

	if len(local) < 1 || len(local) > maxLocalPartLength {
		return "", "", false
	}
	if len(domain) > maxDomainLength {
		return "", "", false
	}
	if len(TLDOf(domain)) < minTLDLength {
		return "", "", false
	}
	return local, domain, true
}

// TLDOf returns the final label of a domain, or "" when the domain has
// no dot separator.
func TLDOf(domain string) string {
	dot := strings.LastIndex(domain, ".")
	if dot < 0 {
		return ""
	}
	return domain[dot+1:]
}
