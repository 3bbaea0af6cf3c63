package distribution_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"eternal-mint/common"
	"eternal-mint/service/contract_service"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	DefaultBatchSize  = 100
	DefaultBatchDelay = 2 * time.Second
)

var (
	ErrEmptyPlan      = errors.New("nothing to distribute")
	ErrInvalidRequest = errors.New("invalid distribution request")
)

// Chunk cut items into consecutive slices of at most size elements
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// BatchProgress reported after every submitted chunk
type BatchProgress struct {
	Batch  int // 1-based
	Total  int
	TxHash string
}

// RunResult hashes of the submitted chunks, in order
type RunResult struct {
	TxHashes []string `json:"txHashes"`
	LastHash string   `json:"lastHash"`
}

// RunError a chunk failed; Result holds what was submitted before it
type RunError struct {
	Batch  int
	Result *RunResult
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("batch %d failed after %d submitted: %v", e.Batch, len(e.Result.TxHashes), e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Distributor submits parsed recipient lists in paced chunks. All jobs share
// one signer, so at most one contract write is outstanding at a time.
type Distributor struct {
	submitter contract_service.Submitter
	batchSize int
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error

	submitMu sync.Mutex
}

// NewDistributor create distributor. batchSize <= 0 falls back to 100
// recipients; a negative delay falls back to 2s and 0 disables pacing.
func NewDistributor(submitter contract_service.Submitter, batchSize int, delay time.Duration) *Distributor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	return &Distributor{submitter: submitter, batchSize: batchSize, delay: delay, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TotalBatches number of chunks a list of n recipients becomes
func (d *Distributor) TotalBatches(n int) int {
	return (n + d.batchSize - 1) / d.batchSize
}

func toBig(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		out[i] = n
	}
	return out, nil
}

func toAddresses(values []string) []ethcommon.Address {
	out := make([]ethcommon.Address, len(values))
	for i, v := range values {
		out[i] = ethcommon.HexToAddress(v)
	}
	return out
}

// Run submit a valid parse result chunk by chunk. single-nft lists go
// through distributeToMany, custom lists through batchTransfer. Chunks are
// sequential with the configured pause between them, never after the last.
func (d *Distributor) Run(ctx context.Context, plan *ParseResult, onBatch func(BatchProgress)) (*RunResult, error) {
	if plan == nil || len(plan.Recipients) == 0 {
		return nil, ErrEmptyPlan
	}
	if len(plan.TokenIDs) != len(plan.Recipients) || len(plan.Amounts) != len(plan.Recipients) {
		return nil, errors.New("recipients, token ids and amounts are not aligned")
	}

	tokenIDs, err := toBig(plan.TokenIDs)
	if err != nil {
		return nil, err
	}
	amounts, err := toBig(plan.Amounts)
	if err != nil {
		return nil, err
	}
	recipients := toAddresses(plan.Recipients)

	recipientChunks := Chunk(recipients, d.batchSize)
	tokenChunks := Chunk(tokenIDs, d.batchSize)
	amountChunks := Chunk(amounts, d.batchSize)
	total := len(recipientChunks)

	result := &RunResult{TxHashes: make([]string, 0, total)}
	for i := range recipientChunks {
		if err := ctx.Err(); err != nil {
			return result, &RunError{Batch: i + 1, Result: result, Err: err}
		}

		var hash string
		d.submitMu.Lock()
		switch plan.Mode {
		case ModeSingleNFT:
			hash, err = d.submitter.DistributeToMany(ctx, tokenChunks[i][0], recipientChunks[i], amountChunks[i])
		default:
			hash, err = d.submitter.BatchTransfer(ctx, recipientChunks[i], tokenChunks[i], amountChunks[i])
		}
		d.submitMu.Unlock()
		if err != nil {
			log.Printf("⚠️  [distribution] batch %d/%d failed: %v", i+1, total, err)
			return result, &RunError{Batch: i + 1, Result: result, Err: err}
		}

		result.TxHashes = append(result.TxHashes, hash)
		result.LastHash = hash
		log.Printf("[distribution] batch %d/%d submitted: %s (%d recipients)", i+1, total, hash, len(recipientChunks[i]))
		if onBatch != nil {
			onBatch(BatchProgress{Batch: i + 1, Total: total, TxHash: hash})
		}

		if i < total-1 {
			if err := d.sleep(ctx, d.delay); err != nil {
				return result, &RunError{Batch: i + 2, Result: result, Err: err}
			}
		}
	}
	return result, nil
}

// DistributeSingle send amount of tokenID to one recipient
func (d *Distributor) DistributeSingle(ctx context.Context, tokenID, recipient, amount string) (string, error) {
	if !isTokenID(tokenID) {
		return "", fmt.Errorf("%w: invalid token ID: %s", ErrInvalidRequest, tokenID)
	}
	to, err := common.ParseAddress(recipient)
	if err != nil {
		return "", fmt.Errorf("%w: invalid recipient %s: %v", ErrInvalidRequest, recipient, err)
	}
	n, ok := ParsePositiveInt(amount)
	if !ok {
		return "", fmt.Errorf("%w: invalid amount: %s", ErrInvalidRequest, amount)
	}
	id, _ := new(big.Int).SetString(tokenID, 10)

	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	return d.submitter.DistributeSingle(ctx, id, to, n)
}
