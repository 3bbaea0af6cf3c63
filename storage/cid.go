package storage

import (
	"encoding/base32"
	"errors"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

var ErrInvalidCID = errors.New("invalid CID")

var base32Lower = base32.StdEncoding.WithPadding(base32.NoPadding)

// ValidateCID accepts base58 CIDv0 ("Qm...") and multibase CIDv1 in
// base32 ("b...") or base58btc ("z...").
func ValidateCID(cid string) error {
	if cid == "" {
		return ErrInvalidCID
	}

	if strings.HasPrefix(cid, "Qm") {
		raw := base58.Decode(cid)
		// sha2-256 multihash: 0x12 0x20 + 32 bytes
		if len(cid) != 46 || len(raw) != 34 || raw[0] != 0x12 || raw[1] != 0x20 {
			return ErrInvalidCID
		}
		return nil
	}

	var raw []byte
	switch cid[0] {
	case 'b':
		var err error
		raw, err = base32Lower.DecodeString(strings.ToUpper(cid[1:]))
		if err != nil {
			return ErrInvalidCID
		}
	case 'z':
		raw = base58.Decode(cid[1:])
	default:
		return ErrInvalidCID
	}

	// version, codec, then a multihash of at least code+length
	if len(raw) < 4 || raw[0] != 0x01 {
		return ErrInvalidCID
	}
	return nil
}
