package contract_service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"

	"eternal-mint/common"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrSignerNotConfigured = errors.New("signer key not configured")

// GasLimits per-method gas limits, 0 lets the node estimate
type GasLimits struct {
	Mint       uint64
	Distribute uint64
	Transfer   uint64
}

// Submitter the contract writes used by the mint and distribution services
type Submitter interface {
	Mint(ctx context.Context, supply *big.Int, cid string) (string, error)
	DistributeToMany(ctx context.Context, tokenID *big.Int, recipients []ethcommon.Address, amounts []*big.Int) (string, error)
	BatchTransfer(ctx context.Context, recipients []ethcommon.Address, tokenIDs, amounts []*big.Int) (string, error)
	DistributeSingle(ctx context.Context, tokenID *big.Int, recipient ethcommon.Address, amount *big.Int) (string, error)
}

// ContractWriter signs and submits contract transactions with a server-held key.
// Submissions are serialized and nonces assigned locally, so concurrent jobs
// sharing the key never race on the node's pending nonce.
type ContractWriter struct {
	contract *bind.BoundContract
	backend  bind.ContractTransactor
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	gas      GasLimits
	from     ethcommon.Address

	mu         sync.Mutex
	nonce      uint64
	nonceKnown bool
}

// NewContractWriter create writer for the contract at address, signing with hexKey
func NewContractWriter(backend bind.ContractBackend, address, hexKey string, chainID int64, gas GasLimits) (*ContractWriter, error) {
	if address == "" {
		return nil, ErrContractNotConfigured
	}
	if hexKey == "" {
		return nil, ErrSignerNotConfigured
	}
	if !common.IsAddress(address) {
		return nil, fmt.Errorf("%w: contract address %s", common.ErrInvalidAddress, address)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signer key: %w", err)
	}
	parsed, err := common.ContractABI()
	if err != nil {
		return nil, err
	}
	return &ContractWriter{
		contract: bind.NewBoundContract(ethcommon.HexToAddress(address), parsed, backend, backend, backend),
		backend:  backend,
		key:      key,
		chainID:  big.NewInt(chainID),
		gas:      gas,
		from:     crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// From signer address
func (w *ContractWriter) From() ethcommon.Address {
	return w.from
}

func (w *ContractWriter) transact(ctx context.Context, gasLimit uint64, method string, params ...interface{}) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	opts, err := bind.NewKeyedTransactorWithChainID(w.key, w.chainID)
	if err != nil {
		return "", fmt.Errorf("create transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = gasLimit

	if !w.nonceKnown {
		nonce, err := w.backend.PendingNonceAt(ctx, w.from)
		if err != nil {
			return "", fmt.Errorf("pending nonce of %s: %w", w.from.Hex(), err)
		}
		w.nonce, w.nonceKnown = nonce, true
	}
	opts.Nonce = new(big.Int).SetUint64(w.nonce)

	tx, err := w.contract.Transact(opts, method, params...)
	if err != nil {
		// the node may or may not have taken the nonce; ask again next time
		w.nonceKnown = false
		return "", fmt.Errorf("%s: %w", method, err)
	}
	w.nonce++
	log.Printf("Submitted %s tx %s nonce %d from %s", method, tx.Hash().Hex(), tx.Nonce(), w.from.Hex())
	return tx.Hash().Hex(), nil
}

// Mint mint(supply, cid)
func (w *ContractWriter) Mint(ctx context.Context, supply *big.Int, cid string) (string, error) {
	return w.transact(ctx, w.gas.Mint, "mint", supply, cid)
}

// DistributeToMany distributeToMany(tokenId, recipients, amounts)
func (w *ContractWriter) DistributeToMany(ctx context.Context, tokenID *big.Int, recipients []ethcommon.Address, amounts []*big.Int) (string, error) {
	return w.transact(ctx, w.gas.Distribute, "distributeToMany", tokenID, recipients, amounts)
}

// BatchTransfer batchTransfer(recipients, tokenIds, amounts)
func (w *ContractWriter) BatchTransfer(ctx context.Context, recipients []ethcommon.Address, tokenIDs, amounts []*big.Int) (string, error) {
	return w.transact(ctx, w.gas.Distribute, "batchTransfer", recipients, tokenIDs, amounts)
}

// DistributeSingle distributeSingle(tokenId, recipient, amount)
func (w *ContractWriter) DistributeSingle(ctx context.Context, tokenID *big.Int, recipient ethcommon.Address, amount *big.Int) (string, error) {
	return w.transact(ctx, w.gas.Transfer, "distributeSingle", tokenID, recipient, amount)
}
