package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"eternal-mint/tool"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/schollz/progressbar/v3"
)

// maxTimestampCache bounds the block timestamp cache
const maxTimestampCache = 4096

// ChainClient subset of ethclient.Client used by the scanner
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// EventHandler handles one decoded event; events arrive in (block, log index) order
type EventHandler func(ctx context.Context, ev *LogEvent) error

// RangeHandler runs after every event up to toBlock has been handled
type RangeHandler func(ctx context.Context, toBlock int64) error

// ScannerConfig block scanner settings
type ScannerConfig struct {
	ChainName     string
	Contract      ethcommon.Address
	Confirmations int64
	BatchSize     int64         // Blocks per eth_getLogs window
	Interval      time.Duration // Head polling interval
	ProgressBar   bool
	Retry         tool.RetryPolicy
}

// BlockScanner polls an EVM chain for contract logs
type BlockScanner struct {
	client  ChainClient
	decoder *EventDecoder
	cfg     ScannerConfig

	mu         sync.Mutex
	timestamps map[uint64]int64

	lastHead atomic.Int64
}

// NewBlockScanner create block scanner for the contract in cfg
func NewBlockScanner(client ChainClient, cfg ScannerConfig) (*BlockScanner, error) {
	decoder, err := NewEventDecoder()
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 2000
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Confirmations < 0 {
		cfg.Confirmations = 0
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.OnRetry == nil {
		chain := cfg.ChainName
		cfg.Retry.OnRetry = func(attempt int, wait time.Duration, err error) {
			log.Printf("⚠️  [%s] RPC attempt %d failed, retrying in %s: %v", chain, attempt, wait, err)
		}
	}
	return &BlockScanner{
		client:     client,
		decoder:    decoder,
		cfg:        cfg,
		timestamps: make(map[uint64]int64),
	}, nil
}

// LastHead chain head seen by the most recent poll, 0 before the first one
func (s *BlockScanner) LastHead() int64 {
	return s.lastHead.Load()
}

// Head fetch the chain head
func (s *BlockScanner) Head(ctx context.Context) (int64, error) {
	var head uint64
	err := tool.Retry(ctx, s.cfg.Retry, func(ctx context.Context) error {
		var err error
		head, err = s.client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get block number: %w", err)
	}
	s.lastHead.Store(int64(head))
	return int64(head), nil
}

// SafeHead head minus the configured confirmations
func (s *BlockScanner) SafeHead(ctx context.Context) (int64, error) {
	head, err := s.Head(ctx)
	if err != nil {
		return 0, err
	}
	return head - s.cfg.Confirmations, nil
}

// blockTimestamp block time in seconds, cached per block
func (s *BlockScanner) blockTimestamp(ctx context.Context, number uint64) (int64, error) {
	s.mu.Lock()
	ts, ok := s.timestamps[number]
	s.mu.Unlock()
	if ok {
		return ts, nil
	}

	var header *types.Header
	err := tool.Retry(ctx, s.cfg.Retry, func(ctx context.Context) error {
		var err error
		header, err = s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get header %d: %w", number, err)
	}

	ts = int64(header.Time)
	s.mu.Lock()
	if len(s.timestamps) >= maxTimestampCache {
		s.timestamps = make(map[uint64]int64)
	}
	s.timestamps[number] = ts
	s.mu.Unlock()
	return ts, nil
}

// ScanRange fetch, decode and dispatch the contract logs in [from, to]
func (s *BlockScanner) ScanRange(ctx context.Context, from, to int64, handler EventHandler) (int, error) {
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(from),
		ToBlock:   big.NewInt(to),
		Addresses: []ethcommon.Address{s.cfg.Contract},
		Topics:    [][]ethcommon.Hash{s.decoder.Topics()},
	}
	logs, err := s.client.FilterLogs(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("filter logs %d-%d: %w", from, to, err)
	}

	queue := NewLogEventQueue()
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		ev, err := s.decoder.Decode(lg)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				log.Printf("ℹ️  [%s] skip unknown event in tx %s log %d", s.cfg.ChainName, lg.TxHash.Hex(), lg.Index)
			} else {
				log.Printf("⚠️  [%s] skip undecodable log in tx %s log %d: %v", s.cfg.ChainName, lg.TxHash.Hex(), lg.Index, err)
			}
			continue
		}
		queue.PushEvent(ev)
	}

	events := queue.Drain()
	for _, ev := range events {
		ts, err := s.blockTimestamp(ctx, ev.Log.BlockNumber)
		if err != nil {
			return 0, err
		}
		ev.BlockTimestamp = ts
		if err := handler(ctx, ev); err != nil {
			return 0, fmt.Errorf("handle %s at %d/%d: %w", ev.Name, ev.Log.BlockNumber, ev.Log.Index, err)
		}
	}
	return len(events), nil
}

func (s *BlockScanner) newProgressBar(total int64) *progressbar.ProgressBar {
	if !s.cfg.ProgressBar {
		return nil
	}
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(fmt.Sprintf("[%s] Scanning blocks", s.cfg.ChainName)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("blocks"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// ScanWindows scan [from, to] in windows of BatchSize blocks; each window
// is retried as a whole since handlers are idempotent. onRange may be nil.
func (s *BlockScanner) ScanWindows(ctx context.Context, from, to int64, handler EventHandler, onRange RangeHandler) (int64, error) {
	if from > to {
		return from, nil
	}

	bar := s.newProgressBar(to - from + 1)
	defer func() {
		if bar != nil {
			bar.Finish()
		}
	}()

	next := from
	for next <= to {
		end := next + s.cfg.BatchSize - 1
		if end > to {
			end = to
		}

		var count int
		err := tool.Retry(ctx, s.cfg.Retry, func(ctx context.Context) error {
			var err error
			count, err = s.ScanRange(ctx, next, end, handler)
			return err
		})
		if err != nil {
			return next, err
		}
		if count > 0 && bar == nil {
			log.Printf("[%s] blocks %d-%d: %d events", s.cfg.ChainName, next, end, count)
		}

		if onRange != nil {
			if err := onRange(ctx, end); err != nil {
				log.Printf("⚠️  [%s] failed to record progress at block %d: %v", s.cfg.ChainName, end, err)
			}
		}
		if bar != nil {
			bar.Add64(end - next + 1)
		}
		next = end + 1
	}
	return next, nil
}

// Run scan from block `from` up to the safe head, then keep polling for
// new blocks every Interval until ctx ends
func (s *BlockScanner) Run(ctx context.Context, from int64, handler EventHandler, onRange RangeHandler) error {
	next := from
	log.Printf("[%s] block scanner started from block %d", s.cfg.ChainName, next)

	caughtUp := false
	for {
		safe, err := s.SafeHead(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("⚠️  [%s] failed to get chain head: %v", s.cfg.ChainName, err)
		} else if next <= safe {
			log.Printf("[%s] scanning blocks %d to %d", s.cfg.ChainName, next, safe)
			next, err = s.ScanWindows(ctx, next, safe, handler, onRange)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("⚠️  [%s] scan stopped at block %d: %v", s.cfg.ChainName, next, err)
			}
		} else if !caughtUp {
			caughtUp = true
			log.Printf("✅ [%s] caught up at block %d", s.cfg.ChainName, next-1)
		}

		timer := time.NewTimer(s.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
