package contract_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"eternal-mint/common"
	"eternal-mint/database"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidMethod         = errors.New("invalid method")
	ErrInvalidArgs           = errors.New("invalid arguments")
	ErrContractNotConfigured = errors.New("contract address not configured")
	ErrCallFailed            = errors.New("contract call failed")
)

// Read-only methods the proxy forwards
var allowedMethods = map[string]bool{
	"getCID":            true,
	"getSupply":         true,
	"getCreator":        true,
	"canUserDistribute": true,
	"getUserTokens":     true,
	"hasRole":           true,
}

// IsAllowedMethod reports whether method may be called through the proxy
func IsAllowedMethod(method string) bool {
	return allowedMethods[method]
}

// CallResult the decoded result of one read
type CallResult struct {
	Result interface{} `json:"result"`
}

// ContractReader allow-listed view calls against the contract
type ContractReader struct {
	address  string
	abi      abi.ABI
	contract *bind.BoundContract
	cache    database.Cache
	ttl      time.Duration
}

// NewContractReader create reader; an empty address yields a reader whose
// calls fail with ErrContractNotConfigured. cache may be nil.
func NewContractReader(caller bind.ContractCaller, address string, cache database.Cache, ttl time.Duration) (*ContractReader, error) {
	parsed, err := common.ContractABI()
	if err != nil {
		return nil, err
	}
	r := &ContractReader{address: address, abi: parsed, cache: cache, ttl: ttl}
	if address != "" {
		if !common.IsAddress(address) {
			return nil, fmt.Errorf("%w: contract address %s", common.ErrInvalidAddress, address)
		}
		r.contract = bind.NewBoundContract(ethcommon.HexToAddress(address), parsed, caller, nil, nil)
	}
	return r, nil
}

// Call invoke method with JSON-decoded args
func (r *ContractReader) Call(ctx context.Context, method string, args []interface{}) (*CallResult, error) {
	if !IsAllowedMethod(method) {
		return nil, ErrInvalidMethod
	}
	if r.contract == nil {
		return nil, ErrContractNotConfigured
	}

	params, err := convertArgs(method, args)
	if err != nil {
		return nil, err
	}

	cacheKey := r.cacheKey(method, params)
	if r.cache != nil {
		var cached CallResult
		if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		log.Printf("Contract call error: %s: %v", method, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrCallFailed, method, err)
	}

	result, err := formatResult(method, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	res := &CallResult{Result: result}
	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, res, r.ttl); err != nil {
			log.Printf("⚠️  Failed to cache %s: %v", cacheKey, err)
		}
	}
	return res, nil
}

// TokenCID getCID(tokenID), the metadata CID the token was minted with
func (r *ContractReader) TokenCID(ctx context.Context, tokenID string) (string, error) {
	res, err := r.Call(ctx, "getCID", []interface{}{tokenID})
	if err != nil {
		return "", err
	}
	cid, ok := res.Result.(string)
	if !ok {
		return "", fmt.Errorf("%w: getCID returned %T", ErrCallFailed, res.Result)
	}
	return cid, nil
}

func (r *ContractReader) cacheKey(method string, params []interface{}) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, stringify(p))
	}
	return fmt.Sprintf("contract:%s:%s:%s", strings.ToLower(r.address), method, strings.Join(parts, ","))
}

func convertArgs(method string, args []interface{}) ([]interface{}, error) {
	want := 1
	if method == "canUserDistribute" || method == "hasRole" {
		want = 2
	}
	if len(args) != want {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrInvalidArgs, method, want, len(args))
	}

	switch method {
	case "canUserDistribute":
		user, err := toAddress(args[0])
		if err != nil {
			return nil, err
		}
		tokenID, err := ToUint256(args[1])
		if err != nil {
			return nil, err
		}
		return []interface{}{user, tokenID}, nil
	case "getUserTokens":
		user, err := toAddress(args[0])
		if err != nil {
			return nil, err
		}
		return []interface{}{user}, nil
	case "hasRole":
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: role must be a string", ErrInvalidArgs)
		}
		role, err := common.ParseRole(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		account, err := toAddress(args[1])
		if err != nil {
			return nil, err
		}
		return []interface{}{[32]byte(role), account}, nil
	default:
		params := make([]interface{}, len(args))
		for i, a := range args {
			v, err := ToUint256(a)
			if err != nil {
				return nil, err
			}
			params[i] = v
		}
		return params, nil
	}
}

func toAddress(v interface{}) (ethcommon.Address, error) {
	s, ok := v.(string)
	if !ok {
		return ethcommon.Address{}, fmt.Errorf("%w: address must be a string", ErrInvalidArgs)
	}
	addr, err := common.ParseAddress(s)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %s", ErrInvalidArgs, s)
	}
	return addr, nil
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ToUint256 accepts decimal or 0x strings and integral JSON numbers
func ToUint256(v interface{}) (*big.Int, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		if t != float64(int64(t)) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidArgs, t)
		}
		s = fmt.Sprintf("%d", int64(t))
	case int:
		s = fmt.Sprintf("%d", t)
	case int64:
		s = fmt.Sprintf("%d", t)
	default:
		return nil, fmt.Errorf("%w: unsupported value %v", ErrInvalidArgs, v)
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok || n.Sign() < 0 || n.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: %q is not a uint256", ErrInvalidArgs, s)
	}
	return n, nil
}

func formatResult(method string, out []interface{}) (interface{}, error) {
	if method == "getUserTokens" {
		if len(out) != 2 {
			return nil, fmt.Errorf("getUserTokens returned %d values", len(out))
		}
		ids, ok1 := out[0].([]*big.Int)
		balances, ok2 := out[1].([]*big.Int)
		if !ok1 || !ok2 {
			return nil, errors.New("getUserTokens returned unexpected types")
		}
		return [][]string{bigStrings(ids), bigStrings(balances)}, nil
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s returned %d values", method, len(out))
	}
	return stringify(out[0]), nil
}

func bigStrings(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case *big.Int:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case ethcommon.Address:
		return t.Hex()
	case [32]byte:
		return ethcommon.Hash(t).Hex()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
