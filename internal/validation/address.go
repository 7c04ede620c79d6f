package validation

import (
	"regexp"
	"strings"
)

var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ZeroAddress is the all-zeroes address, rejected wherever a real
// counterparty is required.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// IsAddress reports whether s is a well-formed hex account address.
func IsAddress(s string) bool {
	return addressRegex.MatchString(s)
}

// NormalizeAddress lowercases an address so lookups are case-insensitive.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Address validates an account address field.
func (v *Validator) Address(field, addr string) {
	v.Check(IsAddress(addr), field, "must be a valid hex address")
	v.Check(NormalizeAddress(addr) != ZeroAddress, field, "must not be the zero address")
}
