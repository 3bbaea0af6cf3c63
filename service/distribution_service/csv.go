package distribution_service

// csv.go parses recipient lists for batch distribution.
//
// Two layouts are accepted:
//  1. single-nft: one address per line; token id and amount come from the selected NFT
//  2. custom: address,tokenId,amount per line
//
// Per-line problems are collected with their 1-based line number so the
// caller can show every issue at once. The list is usable only when no
// error was found.

import (
	"fmt"
	"math/big"
	"strings"

	"eternal-mint/common"
)

// Mode distribution layout
type Mode string

const (
	ModeSingleNFT Mode = "single-nft"
	ModeCustom    Mode = "custom"
)

// DefaultMaxRecipients upper bound for one CSV upload
const DefaultMaxRecipients = 100

// ValidationError one problem found in the CSV; Line is 0 for whole-file checks
type ValidationError struct {
	Line    int    `json:"line,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// SelectedNFT the token distributed in single-nft mode
type SelectedNFT struct {
	TokenID            string
	Balance            *big.Int
	AmountToDistribute *big.Int
}

// ParseOptions how to read the CSV
type ParseOptions struct {
	Mode          Mode
	Selected      *SelectedNFT // Required in single-nft mode
	MaxRecipients int
}

// ParseResult aligned recipient, token id and amount columns
type ParseResult struct {
	Mode       Mode              `json:"mode"`
	Recipients []string          `json:"recipients"`
	TokenIDs   []string          `json:"tokenIds"`
	Amounts    []string          `json:"amounts"`
	Errors     []ValidationError `json:"-"`
	Valid      bool              `json:"valid"`
}

// Messages rendered errors, "Line N: ..." for per-line ones
func (r *ParseResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// ParsePositiveInt digits only, greater than zero
func ParsePositiveInt(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, false
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() <= 0 {
		return nil, false
	}
	return n, true
}

func isTokenID(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseCSV parse and validate a recipient list
func ParseCSV(content string, opts ParseOptions) *ParseResult {
	res := &ParseResult{Mode: opts.Mode}
	fail := func(line int, value, format string, args ...interface{}) {
		res.Errors = append(res.Errors, ValidationError{Line: line, Value: value, Message: fmt.Sprintf(format, args...)})
	}

	content = strings.TrimSpace(content)
	if content == "" {
		fail(0, "", "CSV file is empty")
		return res
	}

	switch opts.Mode {
	case ModeSingleNFT:
		if opts.Selected == nil || !isTokenID(opts.Selected.TokenID) {
			fail(0, "", "No NFT selected")
			return res
		}
		if opts.Selected.AmountToDistribute == nil || opts.Selected.AmountToDistribute.Sign() <= 0 {
			fail(0, "", "Amount to distribute must be a positive integer")
			return res
		}
	case ModeCustom:
	default:
		fail(0, string(opts.Mode), "Unknown distribution mode: %s", opts.Mode)
		return res
	}

	lines := strings.Split(content, "\n")
	start := 0
	if strings.Contains(strings.ToLower(lines[0]), "address") {
		start = 1
	}

	for i := start; i < len(lines); i++ {
		lineNo := i + 1
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		cols := strings.Split(line, ",")
		for j := range cols {
			cols[j] = strings.TrimSpace(cols[j])
		}

		if opts.Mode == ModeSingleNFT {
			addr := cols[0]
			if !common.IsAddress(addr) {
				fail(lineNo, addr, "Invalid address format: %s", addr)
				continue
			}
			res.Recipients = append(res.Recipients, addr)
			res.TokenIDs = append(res.TokenIDs, opts.Selected.TokenID)
			res.Amounts = append(res.Amounts, opts.Selected.AmountToDistribute.String())
			continue
		}

		if len(cols) < 3 {
			fail(lineNo, line, "Missing data. Expected: address,tokenId,amount")
			continue
		}
		addr, tokenID, amount := cols[0], cols[1], cols[2]
		if !common.IsAddress(addr) {
			fail(lineNo, addr, "Invalid address format: %s", addr)
			continue
		}
		if tokenID == "" {
			fail(lineNo, "", "Missing token ID")
			continue
		}
		if !isTokenID(tokenID) {
			fail(lineNo, tokenID, "Invalid token ID: %s", tokenID)
			continue
		}
		if _, ok := ParsePositiveInt(amount); !ok {
			fail(lineNo, amount, "Invalid amount: %s", amount)
			continue
		}
		res.Recipients = append(res.Recipients, addr)
		res.TokenIDs = append(res.TokenIDs, tokenID)
		res.Amounts = append(res.Amounts, amount)
	}

	maxRecipients := opts.MaxRecipients
	if maxRecipients <= 0 {
		maxRecipients = DefaultMaxRecipients
	}
	n := len(res.Recipients)
	if n == 0 {
		fail(0, "", "No valid recipients found")
	}
	if n > maxRecipients {
		fail(0, "", "Too many recipients (%d). Maximum is %d per batch.", n, maxRecipients)
	}

	seen := make(map[string]struct{}, n)
	for _, r := range res.Recipients {
		key := strings.ToLower(r)
		if _, dup := seen[key]; dup {
			fail(0, "", "Duplicate recipient addresses found")
			break
		}
		seen[key] = struct{}{}
	}

	if opts.Mode == ModeSingleNFT && opts.Selected.Balance != nil {
		need := new(big.Int).Mul(big.NewInt(int64(n)), opts.Selected.AmountToDistribute)
		if need.Cmp(opts.Selected.Balance) > 0 {
			fail(0, "", "Insufficient balance. Need %s, have %s", need, opts.Selected.Balance)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
