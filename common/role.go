package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// DefaultAdminRole is the all-zero role id used by AccessControl
var DefaultAdminRole = ethcommon.Hash{}

// RoleID returns keccak256(name), the id AccessControl derives for a named role
func RoleID(name string) ethcommon.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	var out ethcommon.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// MinterRole is RoleID("MINTER_ROLE")
var MinterRole = RoleID("MINTER_ROLE")

// ParseRole accepts a 32-byte hex id or a role name such as MINTER_ROLE
func ParseRole(s string) (ethcommon.Hash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ethcommon.Hash{}, fmt.Errorf("empty role")
	}
	if strings.HasPrefix(s, "0x") {
		b, err := hex.DecodeString(s[2:])
		if err != nil || len(b) != ethcommon.HashLength {
			return ethcommon.Hash{}, fmt.Errorf("invalid role id %q", s)
		}
		return ethcommon.BytesToHash(b), nil
	}
	switch strings.ToUpper(s) {
	case "DEFAULT_ADMIN_ROLE", "ADMIN":
		return DefaultAdminRole, nil
	}
	return RoleID(s), nil
}

// RoleName maps well-known role ids back to their names
func RoleName(id ethcommon.Hash) string {
	switch id {
	case DefaultAdminRole:
		return "DEFAULT_ADMIN_ROLE"
	case MinterRole:
		return "MINTER_ROLE"
	}
	return ""
}
