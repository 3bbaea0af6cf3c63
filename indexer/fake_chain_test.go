package indexer

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"eternal-mint/common"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var testContract = ethcommon.HexToAddress("0x09e8798DAb58C211183c42325Ad7CCd935C11f7D")

type fakeChain struct {
	mu          sync.Mutex
	head        uint64
	logs        []types.Log
	headerCalls map[uint64]int
	failLogs    int // FilterLogs fails this many times first
	queries     [][2]int64
}

func newFakeChain(head uint64, logs ...types.Log) *fakeChain {
	return &fakeChain{head: head, logs: logs, headerCalls: map[uint64]int{}}
}

func (f *fakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *fakeChain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLogs > 0 {
		f.failLogs--
		return nil, errors.New("rpc unavailable")
	}
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	f.queries = append(f.queries, [2]int64{int64(from), int64(to)})
	var out []types.Log
	for _, lg := range f.logs {
		if lg.BlockNumber >= from && lg.BlockNumber <= to && lg.Address == q.Addresses[0] {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (f *fakeChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headerCalls[number.Uint64()]++
	return &types.Header{Number: number, Time: 1700000000 + number.Uint64()*2}, nil
}

// eventLog packs an event log the way the contract emits it
func eventLog(t *testing.T, name string, block uint64, index uint, indexed []ethcommon.Hash, data ...interface{}) types.Log {
	t.Helper()
	parsed, err := common.ContractABI()
	if err != nil {
		t.Fatal(err)
	}
	ev := parsed.Events[name]
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		t.Fatalf("pack %s: %v", name, err)
	}
	return types.Log{
		Address:     testContract,
		Topics:      append([]ethcommon.Hash{ev.ID}, indexed...),
		Data:        packed,
		BlockNumber: block,
		TxHash:      ethcommon.BigToHash(big.NewInt(int64(block*1000) + int64(index))),
		Index:       index,
	}
}

func addrTopic(a ethcommon.Address) ethcommon.Hash {
	return ethcommon.BytesToHash(a.Bytes())
}

func uintTopic(v int64) ethcommon.Hash {
	return ethcommon.BigToHash(big.NewInt(v))
}
