package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"eternal-mint/model"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// PebbleDatabase PebbleDB database implementation with multiple collections
type PebbleDatabase struct {
	collections map[string]*pebble.DB // Map of collection name to PebbleDB instance

	writeMu         sync.Mutex // serializes insert-if-absent
	statusIDCounter atomic.Int64
}

// PebbleConfig PebbleDB configuration
type PebbleConfig struct {
	DataDir  string
	InMemory bool // keep every collection on an in-memory filesystem
}

// Collection names and their key-value formats.
// {order} is {block_number:020d}:{log_index:010d}:{id}, so byte order is chain order.
const (
	collectionNftMinted        = "nft_minted"         // key: {id}, value: JSON(NftMinted)
	collectionNftMintedOrder   = "nft_minted_order"   // key: {order}, value: {id}
	collectionNftMintedToken   = "nft_minted_token"   // key: {token_id}:{order}, value: {id}
	collectionNftMintedCreator = "nft_minted_creator" // key: {creator_lower}:{order}, value: {id}

	collectionRoleGranted        = "role_granted"         // key: {id}, value: JSON(RoleGranted)
	collectionRoleGrantedOrder   = "role_granted_order"   // key: {order}, value: {id}
	collectionRoleGrantedAccount = "role_granted_account" // key: {account_lower}:{order}, value: {id}

	collectionRoleRevoked        = "role_revoked"         // key: {id}, value: JSON(RoleRevoked)
	collectionRoleRevokedOrder   = "role_revoked_order"   // key: {order}, value: {id}
	collectionRoleRevokedAccount = "role_revoked_account" // key: {account_lower}:{order}, value: {id}

	collectionBatchDist            = "batch_distribution"             // key: {id}, value: JSON(BatchDistribution)
	collectionBatchDistOrder       = "batch_distribution_order"       // key: {order}, value: {id}
	collectionBatchDistToken       = "batch_distribution_token"       // key: {token_id}:{order}, one per distinct token, value: {id}
	collectionBatchDistDistributor = "batch_distribution_distributor" // key: {distributor_lower}:{order}, value: {id}

	collectionSingleDist            = "single_distribution"             // key: {id}, value: JSON(SingleDistribution)
	collectionSingleDistOrder       = "single_distribution_order"       // key: {order}, value: {id}
	collectionSingleDistToken       = "single_distribution_token"       // key: {token_id}:{order}, value: {id}
	collectionSingleDistDistributor = "single_distribution_distributor" // key: {distributor_lower}:{order}, value: {id}

	// System collections
	collectionSyncStatus = "sync_status" // key: {chain_name}, value: JSON(IndexerSyncStatus)
	collectionCounters   = "counters"    // key: status, value: {max_id}
)

const keyStatusCounter = "status"

var collectionNames = []string{
	collectionNftMinted,
	collectionNftMintedOrder,
	collectionNftMintedToken,
	collectionNftMintedCreator,
	collectionRoleGranted,
	collectionRoleGrantedOrder,
	collectionRoleGrantedAccount,
	collectionRoleRevoked,
	collectionRoleRevokedOrder,
	collectionRoleRevokedAccount,
	collectionBatchDist,
	collectionBatchDistOrder,
	collectionBatchDistToken,
	collectionBatchDistDistributor,
	collectionSingleDist,
	collectionSingleDistOrder,
	collectionSingleDistToken,
	collectionSingleDistDistributor,
	collectionSyncStatus,
	collectionCounters,
}

// NewPebbleDatabase create PebbleDB database instance with multiple collections
func NewPebbleDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*PebbleConfig)
	if !ok {
		return nil, fmt.Errorf("%w: expected *PebbleConfig", ErrInvalidConfig)
	}

	if !cfg.InMemory {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
		log.Printf("PebbleDB data directory: %s", cfg.DataDir)
	}

	collections := make(map[string]*pebble.DB)
	for _, name := range collectionNames {
		opts := &pebble.Options{}
		collectionPath := filepath.Join(cfg.DataDir, "indexer_db", name)
		if cfg.InMemory {
			opts.FS = vfs.NewMem()
			collectionPath = name
		}

		db, err := pebble.Open(collectionPath, opts)
		if err != nil {
			for _, openedDB := range collections {
				openedDB.Close()
			}
			return nil, fmt.Errorf("failed to open collection %s at %s: %w", name, collectionPath, err)
		}
		collections[name] = db
	}

	pdb := &PebbleDatabase{collections: collections}
	pdb.loadCounters()

	log.Printf("PebbleDB database connected successfully with %d collections", len(collections))
	return pdb, nil
}

// loadCounters load ID counters from counters collection
func (p *PebbleDatabase) loadCounters() {
	if val, closer, err := p.collections[collectionCounters].Get([]byte(keyStatusCounter)); err == nil {
		count, _ := strconv.ParseInt(string(val), 10, 64)
		p.statusIDCounter.Store(count)
		closer.Close()
	}
}

func orderKey(meta model.EventMeta, id string) string {
	return fmt.Sprintf("%020d:%010d:%s", meta.BlockNumber, meta.LogIndex, id)
}

func ownerKey(owner string, meta model.EventMeta, id string) string {
	return strings.ToLower(owner) + ":" + orderKey(meta, id)
}

// prefixUpperBound returns the smallest key greater than every key with prefix
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// saveRecord writes the index entries and then the primary record.
// The primary key is written last so a crash between the two leaves a
// record that the next save of the same event completes.
func (p *PebbleDatabase) saveRecord(primary, id string, value interface{}, indexes map[string][]string) (bool, error) {
	if id == "" {
		return false, ErrMissingID
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	primaryDB := p.collections[primary]
	_, closer, err := primaryDB.Get([]byte(id))
	if err == nil {
		closer.Close()
		return false, nil
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return false, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	for collection, keys := range indexes {
		db := p.collections[collection]
		for _, key := range keys {
			if err := db.Set([]byte(key), []byte(id), pebble.NoSync); err != nil {
				return false, fmt.Errorf("failed to write index %s: %w", collection, err)
			}
		}
	}

	if err := primaryDB.Set([]byte(id), data, pebble.Sync); err != nil {
		return false, err
	}
	return true, nil
}

// getJSON loads key from db into a new T
func getJSON[T any](db *pebble.DB, key string) (*T, error) {
	data, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// listDesc walks the index under prefix from the newest entry backwards,
// resolves each id in the primary collection and keeps the ones match
// accepts. The first cursor accepted records are skipped.
func listDesc[T any](p *PebbleDatabase, primary, index, prefix string, cursor int64, size int, match func(*T) bool) ([]*T, int64, error) {
	if cursor < 0 {
		cursor = 0
	}
	opts := &pebble.IterOptions{}
	if prefix != "" {
		opts.LowerBound = []byte(prefix)
		opts.UpperBound = prefixUpperBound([]byte(prefix))
	}

	iter, err := p.collections[index].NewIter(opts)
	if err != nil {
		return nil, cursor, err
	}
	defer iter.Close()

	primaryDB := p.collections[primary]
	var (
		result  []*T
		skipped int64
	)
	for iter.Last(); iter.Valid() && len(result) < size; iter.Prev() {
		rec, err := getJSON[T](primaryDB, string(iter.Value()))
		if errors.Is(err, ErrNotFound) {
			// index written but record never committed
			continue
		}
		if err != nil {
			return nil, cursor, err
		}
		if match != nil && !match(rec) {
			continue
		}
		if skipped < cursor {
			skipped++
			continue
		}
		result = append(result, rec)
	}
	return result, cursor + int64(len(result)), nil
}

func (p *PebbleDatabase) countKeys(collection string) (int64, error) {
	iter, err := p.collections[collection].NewIter(nil)
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	var count int64
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, nil
}

// NftMinted operations

func (p *PebbleDatabase) SaveNftMinted(rec *model.NftMinted) (bool, error) {
	return p.saveRecord(collectionNftMinted, rec.ID, rec, map[string][]string{
		collectionNftMintedOrder:   {orderKey(rec.EventMeta, rec.ID)},
		collectionNftMintedToken:   {rec.TokenID + ":" + orderKey(rec.EventMeta, rec.ID)},
		collectionNftMintedCreator: {ownerKey(rec.Creator, rec.EventMeta, rec.ID)},
	})
}

func (p *PebbleDatabase) GetNftMintedByID(id string) (*model.NftMinted, error) {
	return getJSON[model.NftMinted](p.collections[collectionNftMinted], id)
}

func (p *PebbleDatabase) ListNftMintedWithCursor(cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return listDesc[model.NftMinted](p, collectionNftMinted, collectionNftMintedOrder, "", cursor, size, nil)
}

func (p *PebbleDatabase) ListNftMintedByTokenID(tokenID string, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return listDesc[model.NftMinted](p, collectionNftMinted, collectionNftMintedToken, tokenID+":", cursor, size, nil)
}

func (p *PebbleDatabase) ListNftMintedByCreator(creator string, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return listDesc[model.NftMinted](p, collectionNftMinted, collectionNftMintedCreator, strings.ToLower(creator)+":", cursor, size, nil)
}

// Role operations

func (p *PebbleDatabase) SaveRoleGranted(rec *model.RoleGranted) (bool, error) {
	return p.saveRecord(collectionRoleGranted, rec.ID, rec, map[string][]string{
		collectionRoleGrantedOrder:   {orderKey(rec.EventMeta, rec.ID)},
		collectionRoleGrantedAccount: {ownerKey(rec.Account, rec.EventMeta, rec.ID)},
	})
}

func (p *PebbleDatabase) GetRoleGrantedByID(id string) (*model.RoleGranted, error) {
	return getJSON[model.RoleGranted](p.collections[collectionRoleGranted], id)
}

func (p *PebbleDatabase) ListRoleGranted(account string, cursor int64, size int) ([]*model.RoleGranted, int64, error) {
	if account == "" {
		return listDesc[model.RoleGranted](p, collectionRoleGranted, collectionRoleGrantedOrder, "", cursor, size, nil)
	}
	return listDesc[model.RoleGranted](p, collectionRoleGranted, collectionRoleGrantedAccount, strings.ToLower(account)+":", cursor, size, nil)
}

func (p *PebbleDatabase) SaveRoleRevoked(rec *model.RoleRevoked) (bool, error) {
	return p.saveRecord(collectionRoleRevoked, rec.ID, rec, map[string][]string{
		collectionRoleRevokedOrder:   {orderKey(rec.EventMeta, rec.ID)},
		collectionRoleRevokedAccount: {ownerKey(rec.Account, rec.EventMeta, rec.ID)},
	})
}

func (p *PebbleDatabase) GetRoleRevokedByID(id string) (*model.RoleRevoked, error) {
	return getJSON[model.RoleRevoked](p.collections[collectionRoleRevoked], id)
}

func (p *PebbleDatabase) ListRoleRevoked(account string, cursor int64, size int) ([]*model.RoleRevoked, int64, error) {
	if account == "" {
		return listDesc[model.RoleRevoked](p, collectionRoleRevoked, collectionRoleRevokedOrder, "", cursor, size, nil)
	}
	return listDesc[model.RoleRevoked](p, collectionRoleRevoked, collectionRoleRevokedAccount, strings.ToLower(account)+":", cursor, size, nil)
}

// Distribution operations

func (p *PebbleDatabase) SaveBatchDistribution(rec *model.BatchDistribution) (bool, error) {
	order := orderKey(rec.EventMeta, rec.ID)
	seen := make(map[string]bool)
	var tokenKeys []string
	for _, tokenID := range rec.TokenIDs {
		if seen[tokenID] {
			continue
		}
		seen[tokenID] = true
		tokenKeys = append(tokenKeys, tokenID+":"+order)
	}
	return p.saveRecord(collectionBatchDist, rec.ID, rec, map[string][]string{
		collectionBatchDistOrder:       {order},
		collectionBatchDistToken:       tokenKeys,
		collectionBatchDistDistributor: {ownerKey(rec.Distributor, rec.EventMeta, rec.ID)},
	})
}

func (p *PebbleDatabase) GetBatchDistributionByID(id string) (*model.BatchDistribution, error) {
	return getJSON[model.BatchDistribution](p.collections[collectionBatchDist], id)
}

func (p *PebbleDatabase) ListBatchDistributions(filter DistributionFilter, cursor int64, size int) ([]*model.BatchDistribution, int64, error) {
	switch {
	case filter.TokenID != "":
		var match func(*model.BatchDistribution) bool
		if filter.Distributor != "" {
			match = func(rec *model.BatchDistribution) bool {
				return strings.EqualFold(rec.Distributor, filter.Distributor)
			}
		}
		return listDesc(p, collectionBatchDist, collectionBatchDistToken, filter.TokenID+":", cursor, size, match)
	case filter.Distributor != "":
		return listDesc[model.BatchDistribution](p, collectionBatchDist, collectionBatchDistDistributor, strings.ToLower(filter.Distributor)+":", cursor, size, nil)
	default:
		return listDesc[model.BatchDistribution](p, collectionBatchDist, collectionBatchDistOrder, "", cursor, size, nil)
	}
}

func (p *PebbleDatabase) SaveSingleDistribution(rec *model.SingleDistribution) (bool, error) {
	order := orderKey(rec.EventMeta, rec.ID)
	return p.saveRecord(collectionSingleDist, rec.ID, rec, map[string][]string{
		collectionSingleDistOrder:       {order},
		collectionSingleDistToken:       {rec.TokenID + ":" + order},
		collectionSingleDistDistributor: {ownerKey(rec.Distributor, rec.EventMeta, rec.ID)},
	})
}

func (p *PebbleDatabase) GetSingleDistributionByID(id string) (*model.SingleDistribution, error) {
	return getJSON[model.SingleDistribution](p.collections[collectionSingleDist], id)
}

func (p *PebbleDatabase) ListSingleDistributions(filter DistributionFilter, cursor int64, size int) ([]*model.SingleDistribution, int64, error) {
	switch {
	case filter.TokenID != "":
		var match func(*model.SingleDistribution) bool
		if filter.Distributor != "" {
			match = func(rec *model.SingleDistribution) bool {
				return strings.EqualFold(rec.Distributor, filter.Distributor)
			}
		}
		return listDesc(p, collectionSingleDist, collectionSingleDistToken, filter.TokenID+":", cursor, size, match)
	case filter.Distributor != "":
		return listDesc[model.SingleDistribution](p, collectionSingleDist, collectionSingleDistDistributor, strings.ToLower(filter.Distributor)+":", cursor, size, nil)
	default:
		return listDesc[model.SingleDistribution](p, collectionSingleDist, collectionSingleDistOrder, "", cursor, size, nil)
	}
}

func (p *PebbleDatabase) GetEntityStats() (*model.EntityStats, error) {
	var stats model.EntityStats
	counts := []struct {
		collection string
		dest       *int64
	}{
		{collectionNftMinted, &stats.NftMinted},
		{collectionRoleGranted, &stats.RoleGranted},
		{collectionRoleRevoked, &stats.RoleRevoked},
		{collectionBatchDist, &stats.BatchDistribution},
		{collectionSingleDist, &stats.SingleDistribution},
	}
	for _, c := range counts {
		n, err := p.countKeys(c.collection)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return &stats, nil
}

// IndexerSyncStatus operations

func (p *PebbleDatabase) CreateOrUpdateIndexerSyncStatus(status *model.IndexerSyncStatus) error {
	if existing, err := p.GetIndexerSyncStatusByChainName(status.ChainName); err == nil {
		status.ID = existing.ID
		status.CreatedAt = existing.CreatedAt
	}
	if status.ID == 0 {
		status.ID = p.statusIDCounter.Add(1)
		if err := p.collections[collectionCounters].Set(
			[]byte(keyStatusCounter),
			[]byte(strconv.FormatInt(status.ID, 10)),
			pebble.Sync,
		); err != nil {
			return fmt.Errorf("failed to persist status counter: %w", err)
		}
	}
	now := time.Now()
	if status.CreatedAt.IsZero() {
		status.CreatedAt = now
	}
	status.UpdatedAt = now

	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.collections[collectionSyncStatus].Set([]byte(status.ChainName), data, pebble.Sync)
}

func (p *PebbleDatabase) GetIndexerSyncStatusByChainName(chainName string) (*model.IndexerSyncStatus, error) {
	return getJSON[model.IndexerSyncStatus](p.collections[collectionSyncStatus], chainName)
}

func (p *PebbleDatabase) UpdateIndexerSyncStatusHeight(chainName string, height int64) error {
	status, err := p.GetIndexerSyncStatusByChainName(chainName)
	if err != nil {
		return err
	}

	status.CurrentSyncHeight = height
	return p.CreateOrUpdateIndexerSyncStatus(status)
}

func (p *PebbleDatabase) GetAllIndexerSyncStatus() ([]*model.IndexerSyncStatus, error) {
	var statuses []*model.IndexerSyncStatus

	iter, err := p.collections[collectionSyncStatus].NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var status model.IndexerSyncStatus
		if err := json.Unmarshal(iter.Value(), &status); err != nil {
			continue
		}
		statuses = append(statuses, &status)
	}

	return statuses, nil
}

// Close close all database connections
func (p *PebbleDatabase) Close() error {
	var lastErr error
	for name, db := range p.collections {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close collection %s: %v", name, err)
			lastErr = err
		}
	}
	return lastErr
}
