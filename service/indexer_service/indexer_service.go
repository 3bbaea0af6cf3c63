package indexer_service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"

	"eternal-mint/database"
	"eternal-mint/indexer"
	"eternal-mint/model"
	"eternal-mint/model/dao"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var ErrUnexpectedPayload = errors.New("unexpected event payload")

// Options indexer service settings
type Options struct {
	ChainName  string
	Contract   string
	StartBlock int64
}

// CidResolver looks up the metadata CID of a token; NftMinted does not carry it
type CidResolver interface {
	TokenCID(ctx context.Context, tokenID string) (string, error)
}

// IndexerService turns decoded contract logs into stored records
type IndexerService struct {
	scanner  *indexer.BlockScanner
	notifier indexer.Notifier
	cids     CidResolver
	opts     Options

	nftMintedDAO    *dao.NftMintedDAO
	roleEventDAO    *dao.RoleEventDAO
	distributionDAO *dao.DistributionDAO
	syncStatusDAO   *dao.IndexerSyncStatusDAO

	runMu     sync.Mutex
	runCancel context.CancelFunc

	// Rescan task management
	currentRescanTask *RescanTask
	rescanMu          sync.Mutex
}

// NewIndexerService create indexer service on db; scanner may be nil for a query-only instance
func NewIndexerService(db database.Database, scanner *indexer.BlockScanner, notifier indexer.Notifier, opts Options) *IndexerService {
	if notifier == nil {
		notifier = indexer.NopNotifier{}
	}
	return &IndexerService{
		scanner:         scanner,
		notifier:        notifier,
		opts:            opts,
		nftMintedDAO:    dao.NewNftMintedDAOWithDB(db),
		roleEventDAO:    dao.NewRoleEventDAOWithDB(db),
		distributionDAO: dao.NewDistributionDAOWithDB(db),
		syncStatusDAO:   dao.NewIndexerSyncStatusDAOWithDB(db),
	}
}

// SetCidResolver fill NftMinted.Cid from the contract at index time; without
// one the column stays empty
func (s *IndexerService) SetCidResolver(r CidResolver) {
	s.cids = r
}

// GetScanner get block scanner, nil for a query-only instance
func (s *IndexerService) GetScanner() *indexer.BlockScanner {
	return s.scanner
}

// EntityID record id: 0x + hex(txHash ++ int32LE(logIndex))
func EntityID(txHash ethcommon.Hash, logIndex uint) string {
	buf := make([]byte, 0, ethcommon.HashLength+4)
	buf = append(buf, txHash.Bytes()...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(logIndex)))
	return "0x" + hex.EncodeToString(buf)
}

// StartHeight first block to scan: the configured start block, or the
// block after the persisted height when that is further along
func (s *IndexerService) StartHeight() (int64, error) {
	status, err := s.syncStatusDAO.GetByChainName(s.opts.ChainName)
	if err != nil {
		return 0, fmt.Errorf("failed to get sync status: %w", err)
	}
	start := s.opts.StartBlock
	if status != nil && status.CurrentSyncHeight+1 > start {
		log.Printf("Resuming from persisted height %d (config start %d)", status.CurrentSyncHeight, s.opts.StartBlock)
		start = status.CurrentSyncHeight + 1
	}
	return start, nil
}

// Start block until ctx ends, scanning from StartHeight and persisting
// the sync height after every window
func (s *IndexerService) Start(ctx context.Context) error {
	if s.scanner == nil {
		return errors.New("scanner not initialized")
	}
	from, err := s.StartHeight()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.runMu.Lock()
	s.runCancel = cancel
	s.runMu.Unlock()
	defer cancel()

	log.Printf("Indexer service started for %s contract %s", s.opts.ChainName, s.opts.Contract)
	err = s.scanner.Run(ctx, from, s.HandleEvent, s.onRangeComplete)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop stop the scan loop and any running rescan
func (s *IndexerService) Stop() {
	s.runMu.Lock()
	if s.runCancel != nil {
		s.runCancel()
	}
	s.runMu.Unlock()
	_ = s.StopRescan()
	if err := s.notifier.Close(); err != nil {
		log.Printf("⚠️  Failed to close notifier: %v", err)
	}
	log.Println("Indexer service stopped")
}

func (s *IndexerService) onRangeComplete(_ context.Context, height int64) error {
	return s.syncStatusDAO.SetHeight(s.opts.ChainName, s.opts.Contract, height)
}

// HandleEvent dispatch a decoded log to its handler
func (s *IndexerService) HandleEvent(ctx context.Context, ev *indexer.LogEvent) error {
	switch ev.Name {
	case model.EntityNftMinted:
		return s.HandleNftMinted(ctx, ev)
	case model.EntityRoleGranted:
		return s.HandleRoleGranted(ev)
	case model.EntityRoleRevoked:
		return s.HandleRoleRevoked(ev)
	case model.EntityBatchDistribution:
		return s.HandleBatchDistribution(ev)
	case model.EntitySingleDistribution:
		return s.HandleSingleDistribution(ev)
	default:
		log.Printf("⚠️  Skipping unhandled event %s in tx %s", ev.Name, ev.Log.TxHash.Hex())
		return nil
	}
}

func eventMeta(ev *indexer.LogEvent) model.EventMeta {
	return model.EventMeta{
		BlockNumber:     ev.BlockNumber(),
		LogIndex:        ev.LogIndex(),
		BlockTimestamp:  ev.BlockTimestamp,
		TransactionHash: ev.Log.TxHash.Hex(),
	}
}

func decimal(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func decimals(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = decimal(v)
	}
	return out
}

// published notify subscribers about a newly created record
func (s *IndexerService) published(entity string, created bool, record interface{}) {
	if !created {
		return
	}
	if err := s.notifier.Publish(entity, record); err != nil {
		log.Printf("⚠️  Failed to publish %s: %v", entity, err)
	}
}

// HandleNftMinted store an NftMinted record
func (s *IndexerService) HandleNftMinted(ctx context.Context, ev *indexer.LogEvent) error {
	data, ok := ev.Data.(*indexer.NftMintedEvent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedPayload, ev.Name)
	}
	rec := &model.NftMinted{
		ID:        EntityID(ev.Log.TxHash, ev.LogIndex()),
		Creator:   data.Creator.Hex(),
		TokenID:   decimal(data.TokenId),
		Supply:    decimal(data.Supply),
		EventMeta: eventMeta(ev),
	}
	if s.cids != nil {
		cid, err := s.cids.TokenCID(ctx, rec.TokenID)
		if err != nil {
			log.Printf("⚠️  getCID(%s) failed, storing NftMinted without CID: %v", rec.TokenID, err)
		} else {
			rec.Cid = cid
		}
	}
	created, err := s.nftMintedDAO.Save(rec)
	if err != nil {
		return fmt.Errorf("failed to save NftMinted %s: %w", rec.ID, err)
	}
	if created {
		log.Printf("✅ NftMinted token %s supply %s by %s (block %d)", rec.TokenID, rec.Supply, rec.Creator, rec.BlockNumber)
	}
	s.published(model.EntityNftMinted, created, rec)
	return nil
}

func roleFields(ev *indexer.LogEvent) (*indexer.RoleEvent, error) {
	data, ok := ev.Data.(*indexer.RoleEvent)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedPayload, ev.Name)
	}
	return data, nil
}

// HandleRoleGranted store a RoleGranted record
func (s *IndexerService) HandleRoleGranted(ev *indexer.LogEvent) error {
	data, err := roleFields(ev)
	if err != nil {
		return err
	}
	rec := &model.RoleGranted{
		ID:        EntityID(ev.Log.TxHash, ev.LogIndex()),
		Role:      ethcommon.Hash(data.Role).Hex(),
		Account:   data.Account.Hex(),
		Sender:    data.Sender.Hex(),
		EventMeta: eventMeta(ev),
	}
	created, err := s.roleEventDAO.SaveGranted(rec)
	if err != nil {
		return fmt.Errorf("failed to save RoleGranted %s: %w", rec.ID, err)
	}
	s.published(model.EntityRoleGranted, created, rec)
	return nil
}

// HandleRoleRevoked store a RoleRevoked record
func (s *IndexerService) HandleRoleRevoked(ev *indexer.LogEvent) error {
	data, err := roleFields(ev)
	if err != nil {
		return err
	}
	rec := &model.RoleRevoked{
		ID:        EntityID(ev.Log.TxHash, ev.LogIndex()),
		Role:      ethcommon.Hash(data.Role).Hex(),
		Account:   data.Account.Hex(),
		Sender:    data.Sender.Hex(),
		EventMeta: eventMeta(ev),
	}
	created, err := s.roleEventDAO.SaveRevoked(rec)
	if err != nil {
		return fmt.Errorf("failed to save RoleRevoked %s: %w", rec.ID, err)
	}
	s.published(model.EntityRoleRevoked, created, rec)
	return nil
}

// HandleBatchDistribution store a BatchDistribution record
func (s *IndexerService) HandleBatchDistribution(ev *indexer.LogEvent) error {
	data, ok := ev.Data.(*indexer.BatchDistributionEvent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedPayload, ev.Name)
	}
	recipients := make([]string, len(data.Recipients))
	for i, r := range data.Recipients {
		recipients[i] = r.Hex()
	}
	rec := &model.BatchDistribution{
		ID:             EntityID(ev.Log.TxHash, ev.LogIndex()),
		Distributor:    data.Distributor.Hex(),
		Recipients:     recipients,
		TokenIDs:       decimals(data.TokenIds),
		Amounts:        decimals(data.Amounts),
		RecipientCount: len(recipients),
		EventMeta:      eventMeta(ev),
	}
	created, err := s.distributionDAO.SaveBatch(rec)
	if err != nil {
		return fmt.Errorf("failed to save BatchDistribution %s: %w", rec.ID, err)
	}
	if created {
		log.Printf("✅ BatchDistribution by %s to %d recipients (block %d)", rec.Distributor, rec.RecipientCount, rec.BlockNumber)
	}
	s.published(model.EntityBatchDistribution, created, rec)
	return nil
}

// HandleSingleDistribution store a SingleDistribution record
func (s *IndexerService) HandleSingleDistribution(ev *indexer.LogEvent) error {
	data, ok := ev.Data.(*indexer.SingleDistributionEvent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedPayload, ev.Name)
	}
	rec := &model.SingleDistribution{
		ID:          EntityID(ev.Log.TxHash, ev.LogIndex()),
		Distributor: data.Distributor.Hex(),
		TokenID:     decimal(data.TokenId),
		Recipient:   data.Recipient.Hex(),
		Amount:      decimal(data.Amount),
		EventMeta:   eventMeta(ev),
	}
	created, err := s.distributionDAO.SaveSingle(rec)
	if err != nil {
		return fmt.Errorf("failed to save SingleDistribution %s: %w", rec.ID, err)
	}
	s.published(model.EntitySingleDistribution, created, rec)
	return nil
}
