package database

import (
	"errors"
	"testing"

	"eternal-mint/model"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

func newMemPebble(t *testing.T) *PebbleDatabase {
	t.Helper()
	db, err := NewPebbleDatabase(&PebbleConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.(*PebbleDatabase)
}

func meta(block int64, logIndex uint) model.EventMeta {
	return model.EventMeta{
		BlockNumber:     block,
		LogIndex:        logIndex,
		BlockTimestamp:  1700000000 + block,
		TransactionHash: "0xabc",
	}
}

func TestPebbleSaveIsInsertIfAbsent(t *testing.T) {
	db := newMemPebble(t)

	rec := &model.NftMinted{ID: "0x01", Creator: "0xAa", TokenID: "1", Supply: "10", Cid: "bafy", EventMeta: meta(5, 0)}
	created, err := db.SaveNftMinted(rec)
	if err != nil || !created {
		t.Fatalf("first save: created=%v err=%v", created, err)
	}

	dup := *rec
	dup.Supply = "999"
	created, err = db.SaveNftMinted(&dup)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if created {
		t.Fatal("second save of the same id reported created")
	}

	got, err := db.GetNftMintedByID("0x01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Supply != "10" {
		t.Fatalf("stored record was mutated: supply=%s", got.Supply)
	}

	stats, err := db.GetEntityStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.NftMinted != 1 {
		t.Fatalf("expected 1 mint, got %d", stats.NftMinted)
	}

	if _, err := db.SaveNftMinted(&model.NftMinted{}); err != ErrMissingID {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if _, err := db.GetNftMintedByID("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPebbleListNewestFirstWithCursor(t *testing.T) {
	db := newMemPebble(t)

	recs := []*model.NftMinted{
		{ID: "a", Creator: "0xCreatorA", TokenID: "1", EventMeta: meta(10, 1)},
		{ID: "b", Creator: "0xCreatorA", TokenID: "2", EventMeta: meta(10, 0)},
		{ID: "c", Creator: "0xCreatorB", TokenID: "12", EventMeta: meta(9, 3)},
		{ID: "d", Creator: "0xcreatora", TokenID: "1", EventMeta: meta(11, 0)},
	}
	for _, r := range recs {
		if _, err := db.SaveNftMinted(r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	page, next, err := db.ListNftMintedWithCursor(0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID != "d" || page[1].ID != "a" || next != 2 {
		t.Fatalf("unexpected first page: %v next=%d", ids(page), next)
	}
	page, next, _ = db.ListNftMintedWithCursor(next, 2)
	if len(page) != 2 || page[0].ID != "b" || page[1].ID != "c" || next != 4 {
		t.Fatalf("unexpected second page: %v next=%d", ids(page), next)
	}
	page, next, _ = db.ListNftMintedWithCursor(next, 2)
	if len(page) != 0 || next != 4 {
		t.Fatalf("expected empty tail page, got %v next=%d", ids(page), next)
	}

	byToken, _, _ := db.ListNftMintedByTokenID("1", 0, 10)
	if len(byToken) != 2 || byToken[0].ID != "d" || byToken[1].ID != "a" {
		t.Fatalf("token 1 should not match token 12: %v", ids(byToken))
	}

	byCreator, _, _ := db.ListNftMintedByCreator("0xCREATORA", 0, 10)
	if len(byCreator) != 3 {
		t.Fatalf("creator lookup should ignore case: %v", ids(byCreator))
	}
}

func ids(recs []*model.NftMinted) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestPebbleRoleQueries(t *testing.T) {
	db := newMemPebble(t)

	db.SaveRoleGranted(&model.RoleGranted{ID: "g1", Role: "0x00", Account: "0xAlice", Sender: "0xAdmin", EventMeta: meta(1, 0)})
	db.SaveRoleGranted(&model.RoleGranted{ID: "g2", Role: "0x00", Account: "0xBob", Sender: "0xAdmin", EventMeta: meta(2, 0)})
	db.SaveRoleRevoked(&model.RoleRevoked{ID: "r1", Role: "0x00", Account: "0xAlice", Sender: "0xAdmin", EventMeta: meta(3, 0)})

	all, _, err := db.ListRoleGranted("", 0, 10)
	if err != nil || len(all) != 2 || all[0].ID != "g2" {
		t.Fatalf("unexpected grants: %+v err=%v", all, err)
	}
	alice, _, _ := db.ListRoleGranted("0xalice", 0, 10)
	if len(alice) != 1 || alice[0].ID != "g1" {
		t.Fatalf("unexpected grants for alice: %+v", alice)
	}
	revoked, _, _ := db.ListRoleRevoked("0xAlice", 0, 10)
	if len(revoked) != 1 || revoked[0].ID != "r1" {
		t.Fatalf("unexpected revokes: %+v", revoked)
	}
}

func TestPebbleDistributionFilters(t *testing.T) {
	db := newMemPebble(t)

	db.SaveBatchDistribution(&model.BatchDistribution{
		ID: "b1", Distributor: "0xD1",
		Recipients: []string{"0x1", "0x2", "0x3"}, TokenIDs: []string{"7", "7", "8"}, Amounts: []string{"1", "1", "2"},
		RecipientCount: 3, EventMeta: meta(20, 0),
	})
	db.SaveBatchDistribution(&model.BatchDistribution{
		ID: "b2", Distributor: "0xD2",
		Recipients: []string{"0x4"}, TokenIDs: []string{"7"}, Amounts: []string{"5"},
		RecipientCount: 1, EventMeta: meta(21, 0),
	})

	byToken, _, err := db.ListBatchDistributions(DistributionFilter{TokenID: "7"}, 0, 10)
	if err != nil || len(byToken) != 2 || byToken[0].ID != "b2" {
		t.Fatalf("token 7 batches: %+v err=%v", byToken, err)
	}
	both, _, _ := db.ListBatchDistributions(DistributionFilter{TokenID: "7", Distributor: "0xd1"}, 0, 10)
	if len(both) != 1 || both[0].ID != "b1" {
		t.Fatalf("token 7 by d1: %+v", both)
	}
	eight, _, _ := db.ListBatchDistributions(DistributionFilter{TokenID: "8"}, 0, 10)
	if len(eight) != 1 || !eight[0].HasToken("8") {
		t.Fatalf("token 8 batches: %+v", eight)
	}

	db.SaveSingleDistribution(&model.SingleDistribution{ID: "s1", Distributor: "0xD1", TokenID: "7", Recipient: "0x9", Amount: "1", EventMeta: meta(22, 1)})
	singles, _, _ := db.ListSingleDistributions(DistributionFilter{Distributor: "0xD1"}, 0, 10)
	if len(singles) != 1 || singles[0].Recipient != "0x9" {
		t.Fatalf("singles by distributor: %+v", singles)
	}

	stats, _ := db.GetEntityStats()
	if stats.BatchDistribution != 2 || stats.SingleDistribution != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPebbleSyncStatus(t *testing.T) {
	db := newMemPebble(t)

	if _, err := db.GetIndexerSyncStatusByChainName("taurus"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.CreateOrUpdateIndexerSyncStatus(&model.IndexerSyncStatus{ChainName: "taurus", CurrentSyncHeight: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.UpdateIndexerSyncStatusHeight("taurus", 150); err != nil {
		t.Fatalf("update: %v", err)
	}
	status, err := db.GetIndexerSyncStatusByChainName("taurus")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if status.CurrentSyncHeight != 150 || status.ID != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	all, _ := db.GetAllIndexerSyncStatus()
	if len(all) != 1 {
		t.Fatalf("expected one status, got %d", len(all))
	}
}

func TestPebbleSyncStatusCounterSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CreateOrUpdateIndexerSyncStatus(&model.IndexerSyncStatus{ChainName: "taurus"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = NewPebbleDatabase(&PebbleConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	status := &model.IndexerSyncStatus{ChainName: "mainnet"}
	if err := db.CreateOrUpdateIndexerSyncStatus(status); err != nil {
		t.Fatal(err)
	}
	if status.ID != 2 {
		t.Fatalf("second status id = %d, want 2", status.ID)
	}
}

func TestPebbleSyncStatusCounterWriteFails(t *testing.T) {
	db := newMemPebble(t)

	// swap the counters collection for a read-only one
	fs := vfs.NewMem()
	rw, err := pebble.Open(collectionCounters, &pebble.Options{FS: fs})
	if err != nil {
		t.Fatal(err)
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	ro, err := pebble.Open(collectionCounters, &pebble.Options{FS: fs, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	db.collections[collectionCounters].Close()
	db.collections[collectionCounters] = ro

	err = db.CreateOrUpdateIndexerSyncStatus(&model.IndexerSyncStatus{ChainName: "taurus"})
	if !errors.Is(err, pebble.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if _, err := db.GetIndexerSyncStatusByChainName("taurus"); err != ErrNotFound {
		t.Fatalf("status stored without its counter: %v", err)
	}
}

func TestPrefixUpperBound(t *testing.T) {
	if got := string(prefixUpperBound([]byte("7:"))); got != "7;" {
		t.Fatalf("got %q", got)
	}
	if got := prefixUpperBound([]byte{0xff, 0xff}); got != nil {
		t.Fatalf("expected nil for all-0xff prefix, got %v", got)
	}
}
