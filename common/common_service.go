package common

import (
	"errors"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid address")

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Mixed-case input must carry a valid EIP-55 checksum; all-lower and
// all-upper input is accepted as is.
func IsAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || !ethcommon.IsHexAddress(s) {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return ethcommon.HexToAddress(s).Hex() == s
}

// ParseAddress validates s and returns the address
func ParseAddress(s string) (ethcommon.Address, error) {
	s = strings.TrimSpace(s)
	if !IsAddress(s) {
		return ethcommon.Address{}, ErrInvalidAddress
	}
	return ethcommon.HexToAddress(s), nil
}

// NormalizeAddress returns the checksummed form, or "" if s is not an address
func NormalizeAddress(s string) string {
	addr, err := ParseAddress(s)
	if err != nil {
		return ""
	}
	return addr.Hex()
}

// SameAddress compares two addresses ignoring case
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
