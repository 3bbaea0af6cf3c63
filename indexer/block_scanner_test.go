package indexer

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"eternal-mint/model"
	"eternal-mint/tool"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func testScanner(t *testing.T, chain ChainClient, batch int64, confirmations int64) *BlockScanner {
	t.Helper()
	s, err := NewBlockScanner(chain, ScannerConfig{
		ChainName:     "test",
		Contract:      testContract,
		Confirmations: confirmations,
		BatchSize:     batch,
		Interval:      5 * time.Millisecond,
		Retry:         tool.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestScanRangeOrdersEventsAndCachesTimestamps(t *testing.T) {
	foreign := eventLog(t, model.EntityNftMinted, 4, 0, []ethcommon.Hash{addrTopic(alice), uintTopic(1)}, big.NewInt(1))
	foreign.Address = ethcommon.HexToAddress("0x1")
	removed := eventLog(t, model.EntityNftMinted, 4, 9, []ethcommon.Hash{addrTopic(alice), uintTopic(2)}, big.NewInt(1))
	removed.Removed = true

	chain := newFakeChain(100,
		eventLog(t, model.EntityNftMinted, 5, 2, []ethcommon.Hash{addrTopic(alice), uintTopic(3)}, big.NewInt(1)),
		eventLog(t, model.EntityRoleGranted, 4, 1, []ethcommon.Hash{ethcommon.Hash{}, addrTopic(alice), addrTopic(bob)}),
		eventLog(t, model.EntityNftMinted, 5, 0, []ethcommon.Hash{addrTopic(alice), uintTopic(4)}, big.NewInt(1)),
		types.Log{Address: testContract, BlockNumber: 4, Index: 5, Topics: []ethcommon.Hash{ethcommon.HexToHash("0xdead")}},
		foreign,
		removed,
	)
	s := testScanner(t, chain, 100, 0)

	var got []*LogEvent
	n, err := s.ScanRange(context.Background(), 1, 10, func(ctx context.Context, ev *LogEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 3 || len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	order := [][2]uint64{{4, 1}, {5, 0}, {5, 2}}
	for i, o := range order {
		if got[i].Log.BlockNumber != o[0] || uint64(got[i].Log.Index) != o[1] {
			t.Fatalf("event %d at %d/%d, want %d/%d", i, got[i].Log.BlockNumber, got[i].Log.Index, o[0], o[1])
		}
	}
	if got[1].BlockTimestamp != 1700000010 {
		t.Fatalf("unexpected timestamp %d", got[1].BlockTimestamp)
	}
	if chain.headerCalls[5] != 1 {
		t.Fatalf("header for block 5 fetched %d times", chain.headerCalls[5])
	}
}

func TestScanWindowsRetriesAndReportsProgress(t *testing.T) {
	chain := newFakeChain(100,
		eventLog(t, model.EntityNftMinted, 12, 0, []ethcommon.Hash{addrTopic(alice), uintTopic(1)}, big.NewInt(1)),
	)
	chain.failLogs = 2
	s := testScanner(t, chain, 10, 0)

	var ranges []int64
	count := 0
	next, err := s.ScanWindows(context.Background(), 1, 25,
		func(ctx context.Context, ev *LogEvent) error { count++; return nil },
		func(ctx context.Context, to int64) error { ranges = append(ranges, to); return nil },
	)
	if err != nil {
		t.Fatalf("scan windows: %v", err)
	}
	if next != 26 || count != 1 {
		t.Fatalf("next=%d count=%d", next, count)
	}
	if len(ranges) != 3 || ranges[0] != 10 || ranges[1] != 20 || ranges[2] != 25 {
		t.Fatalf("unexpected ranges %v", ranges)
	}
}

func TestScanWindowsStopsOnHandlerError(t *testing.T) {
	chain := newFakeChain(100,
		eventLog(t, model.EntityNftMinted, 3, 0, []ethcommon.Hash{addrTopic(alice), uintTopic(1)}, big.NewInt(1)),
	)
	s := testScanner(t, chain, 10, 0)

	boom := errors.New("db down")
	next, err := s.ScanWindows(context.Background(), 1, 30,
		func(ctx context.Context, ev *LogEvent) error { return boom }, nil)
	if !errors.Is(err, boom) || next != 1 {
		t.Fatalf("expected failure at block 1, got next=%d err=%v", next, err)
	}
}

func TestRunHonoursConfirmationsAndCancellation(t *testing.T) {
	chain := newFakeChain(30,
		eventLog(t, model.EntityNftMinted, 20, 0, []ethcommon.Hash{addrTopic(alice), uintTopic(1)}, big.NewInt(1)),
		eventLog(t, model.EntityNftMinted, 28, 0, []ethcommon.Hash{addrTopic(alice), uintTopic(2)}, big.NewInt(1)),
	)
	s := testScanner(t, chain, 10, 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []uint64
	var heights []int64
	err := s.Run(ctx, 11, func(ctx context.Context, ev *LogEvent) error {
		mu.Lock()
		seen = append(seen, ev.Log.BlockNumber)
		mu.Unlock()
		return nil
	}, func(ctx context.Context, to int64) error {
		heights = append(heights, to)
		if to == 25 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(seen) != 1 || seen[0] != 20 {
		t.Fatalf("block 28 is not confirmed yet, saw %v", seen)
	}
	if heights[len(heights)-1] != 25 {
		t.Fatalf("unexpected heights %v", heights)
	}
	if s.LastHead() != 30 {
		t.Fatalf("last head %d", s.LastHead())
	}
}
