package indexer_service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"eternal-mint/common"
	"eternal-mint/database"
	"eternal-mint/indexer"
	"eternal-mint/model"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	testContract = ethcommon.HexToAddress("0x09e8798DAb58C211183c42325Ad7CCd935C11f7D")
	alice        = ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	bob          = ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
)

type recordingNotifier struct {
	mu       sync.Mutex
	entities []string
}

func (n *recordingNotifier) Publish(entity string, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entities = append(n.entities, entity)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

type fakeCids struct {
	mu    sync.Mutex
	cids  map[string]string
	calls int
}

func (f *fakeCids) TokenCID(_ context.Context, tokenID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	cid, ok := f.cids[tokenID]
	if !ok {
		return "", errors.New("execution reverted")
	}
	return cid, nil
}

func newMemDB(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func logEvent(name string, block uint64, index uint, data interface{}) *indexer.LogEvent {
	return &indexer.LogEvent{
		Name: name,
		Log: types.Log{
			Address:     testContract,
			BlockNumber: block,
			Index:       index,
			TxHash:      ethcommon.BigToHash(big.NewInt(int64(block*1000) + int64(index))),
		},
		BlockTimestamp: 1700000000 + int64(block),
		Data:           data,
	}
}

func TestEntityID(t *testing.T) {
	hash := ethcommon.HexToHash("0x01")
	id := EntityID(hash, 1)
	want := "0x" + strings.Repeat("0", 62) + "01" + "01000000"
	if id != want {
		t.Fatalf("EntityID = %s, want %s", id, want)
	}
	if len(id) != 74 {
		t.Fatalf("len = %d", len(id))
	}
	if EntityID(hash, 258) != "0x"+strings.Repeat("0", 62)+"01"+"02010000" {
		t.Fatalf("log index must be little endian: %s", EntityID(hash, 258))
	}
}

func TestHandleNftMintedIsIdempotent(t *testing.T) {
	db := newMemDB(t)
	notifier := &recordingNotifier{}
	svc := NewIndexerService(db, nil, notifier, Options{ChainName: "taurus"})
	cids := &fakeCids{cids: map[string]string{"7": "bafkreiabc"}}
	svc.SetCidResolver(cids)

	ev := logEvent(model.EntityNftMinted, 10, 2, &indexer.NftMintedEvent{
		Creator: alice,
		TokenId: big.NewInt(7),
		Supply:  new(big.Int).Lsh(big.NewInt(1), 100),
	})
	for i := 0; i < 2; i++ {
		if err := svc.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("handle #%d: %v", i, err)
		}
	}

	if len(notifier.entities) != 1 {
		t.Fatalf("published %d times, want 1", len(notifier.entities))
	}

	query := NewEntityQueryService(db)
	rec, err := query.GetMint(EntityID(ev.Log.TxHash, 2))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Creator != alice.Hex() || rec.TokenID != "7" || rec.Cid != "bafkreiabc" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Supply != "1267650600228229401496703205376" {
		t.Fatalf("supply = %s", rec.Supply)
	}
	if rec.BlockNumber != 10 || rec.LogIndex != 2 || rec.BlockTimestamp != 1700000010 {
		t.Fatalf("unexpected meta %+v", rec.EventMeta)
	}
}

func TestHandleNftMintedWithoutCid(t *testing.T) {
	db := newMemDB(t)
	query := NewEntityQueryService(db)
	ctx := context.Background()

	// no resolver configured
	svc := NewIndexerService(db, nil, nil, Options{ChainName: "taurus"})
	plain := logEvent(model.EntityNftMinted, 3, 0, &indexer.NftMintedEvent{Creator: alice, TokenId: big.NewInt(1), Supply: big.NewInt(5)})
	if err := svc.HandleEvent(ctx, plain); err != nil {
		t.Fatal(err)
	}
	rec, err := query.GetMint(EntityID(plain.Log.TxHash, 0))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Cid != "" {
		t.Fatalf("cid = %q, want empty", rec.Cid)
	}

	// getCID reverts: the mint is still recorded
	cids := &fakeCids{cids: map[string]string{}}
	svc.SetCidResolver(cids)
	failed := logEvent(model.EntityNftMinted, 4, 0, &indexer.NftMintedEvent{Creator: alice, TokenId: big.NewInt(2), Supply: big.NewInt(5)})
	if err := svc.HandleEvent(ctx, failed); err != nil {
		t.Fatalf("resolver failure must not fail indexing: %v", err)
	}
	rec, err = query.GetMint(EntityID(failed.Log.TxHash, 0))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Cid != "" || rec.TokenID != "2" || cids.calls != 1 {
		t.Fatalf("unexpected record %+v after %d calls", rec, cids.calls)
	}
}

func TestHandleRoleAndDistributionEvents(t *testing.T) {
	db := newMemDB(t)
	svc := NewIndexerService(db, nil, nil, Options{ChainName: "taurus"})
	ctx := context.Background()

	events := []*indexer.LogEvent{
		logEvent(model.EntityRoleGranted, 1, 0, &indexer.RoleEvent{Role: common.MinterRole, Account: bob, Sender: alice}),
		logEvent(model.EntityRoleRevoked, 2, 0, &indexer.RoleEvent{Role: common.MinterRole, Account: bob, Sender: alice}),
		logEvent(model.EntityBatchDistribution, 3, 1, &indexer.BatchDistributionEvent{
			Distributor: alice,
			Recipients:  []ethcommon.Address{bob, alice},
			TokenIds:    []*big.Int{big.NewInt(5), big.NewInt(6)},
			Amounts:     []*big.Int{big.NewInt(1), big.NewInt(2)},
		}),
		logEvent(model.EntitySingleDistribution, 4, 0, &indexer.SingleDistributionEvent{
			Distributor: alice, TokenId: big.NewInt(5), Recipient: bob, Amount: big.NewInt(3),
		}),
	}
	for _, ev := range events {
		if err := svc.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("%s: %v", ev.Name, err)
		}
	}

	query := NewEntityQueryService(db)
	grants, err := query.ListRoleGrants(strings.ToLower(bob.Hex()), 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(grants.Items) != 1 || grants.Items[0].Role != ethcommon.Hash(common.MinterRole).Hex() {
		t.Fatalf("unexpected grants %+v", grants.Items)
	}

	batches, err := query.ListBatchDistributions(database.DistributionFilter{TokenID: "6"}, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches.Items) != 1 || batches.Items[0].RecipientCount != 2 {
		t.Fatalf("unexpected batches %+v", batches.Items)
	}

	singles, err := query.ListSingleDistributions(database.DistributionFilter{Distributor: alice.Hex()}, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(singles.Items) != 1 || singles.Items[0].Amount != "3" {
		t.Fatalf("unexpected singles %+v", singles.Items)
	}

	stats, err := query.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.RoleGranted != 1 || stats.RoleRevoked != 1 || stats.BatchDistribution != 1 || stats.SingleDistribution != 1 || stats.NftMinted != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestHandleRejectsWrongPayload(t *testing.T) {
	svc := NewIndexerService(newMemDB(t), nil, nil, Options{})
	err := svc.HandleEvent(context.Background(), logEvent(model.EntityNftMinted, 1, 0, &indexer.RoleEvent{}))
	if err == nil {
		t.Fatal("expected error for mismatched payload")
	}
}

func TestStartHeight(t *testing.T) {
	db := newMemDB(t)
	svc := NewIndexerService(db, nil, nil, Options{ChainName: "taurus", Contract: testContract.Hex(), StartBlock: 100})

	if h, err := svc.StartHeight(); err != nil || h != 100 {
		t.Fatalf("fresh start = %d, %v", h, err)
	}

	if err := svc.onRangeComplete(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	if h, _ := svc.StartHeight(); h != 100 {
		t.Fatalf("persisted behind config: start = %d, want 100", h)
	}

	if err := svc.onRangeComplete(context.Background(), 250); err != nil {
		t.Fatal(err)
	}
	if h, _ := svc.StartHeight(); h != 251 {
		t.Fatalf("persisted ahead of config: start = %d, want 251", h)
	}
}

func TestClampPageSize(t *testing.T) {
	cases := map[int]int{0: 20, -1: 20, 1: 1, 50: 50, 100: 100, 101: 20}
	for in, want := range cases {
		if got := ClampPageSize(in); got != want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestQueryFilterValidation(t *testing.T) {
	query := NewEntityQueryService(newMemDB(t))
	if _, err := query.ListMintsByCreator("not-an-address", 0, 10); err == nil {
		t.Fatal("expected invalid creator error")
	}
	if _, err := query.ListMintsByToken("12a", 0, 10); err == nil {
		t.Fatal("expected invalid token id error")
	}
	if _, err := query.GetMint("0xdead"); err != ErrRecordNotFound {
		t.Fatalf("GetMint missing = %v", err)
	}
}

// staticChain serves a fixed set of logs
type staticChain struct {
	head uint64
	logs []types.Log
}

func (c *staticChain) BlockNumber(context.Context) (uint64, error) { return c.head, nil }

func (c *staticChain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var out []types.Log
	for _, lg := range c.logs {
		if lg.BlockNumber >= q.FromBlock.Uint64() && lg.BlockNumber <= q.ToBlock.Uint64() {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (c *staticChain) HeaderByNumber(_ context.Context, n *big.Int) (*types.Header, error) {
	return &types.Header{Number: n, Time: 1700000000 + n.Uint64()}, nil
}

func mintLog(t *testing.T, block uint64, tokenID int64) types.Log {
	t.Helper()
	parsed, err := common.ContractABI()
	if err != nil {
		t.Fatal(err)
	}
	ev := parsed.Events[model.EntityNftMinted]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}
	return types.Log{
		Address:     testContract,
		Topics:      []ethcommon.Hash{ev.ID, ethcommon.BytesToHash(alice.Bytes()), ethcommon.BigToHash(big.NewInt(tokenID))},
		Data:        data,
		BlockNumber: block,
		TxHash:      ethcommon.BigToHash(big.NewInt(int64(block))),
	}
}

func TestRescanBlocksAsync(t *testing.T) {
	db := newMemDB(t)
	chain := &staticChain{head: 100, logs: []types.Log{mintLog(t, 20, 1), mintLog(t, 40, 2)}}
	scanner, err := indexer.NewBlockScanner(chain, indexer.ScannerConfig{ChainName: "taurus", Contract: testContract, BatchSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	svc := NewIndexerService(db, scanner, nil, Options{ChainName: "taurus"})

	if st := svc.GetRescanStatus(); st.Status != RescanStatusIdle {
		t.Fatalf("initial status %s", st.Status)
	}

	taskID, err := svc.RescanBlocksAsync(1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(taskID, "rescan_taurus_1_50_") {
		t.Fatalf("task id %s", taskID)
	}

	deadline := time.Now().Add(5 * time.Second)
	for svc.GetRescanStatus().Status == RescanStatusRunning {
		if time.Now().After(deadline) {
			t.Fatal("rescan did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	st := svc.GetRescanStatus()
	if st.Status != RescanStatusCompleted || st.ProcessedBlocks != 50 || st.CurrentHeight != 50 {
		t.Fatalf("unexpected status %+v", st)
	}

	stats, err := NewEntityQueryService(db).Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NftMinted != 2 {
		t.Fatalf("NftMinted = %d, want 2", stats.NftMinted)
	}

	// Rescan never moves the persisted height
	if h, _ := svc.StartHeight(); h != 0 {
		t.Fatalf("start height moved to %d", h)
	}

	if _, err := svc.RescanBlocksAsync(10, 5); err == nil {
		t.Fatal("expected range error")
	}
}
