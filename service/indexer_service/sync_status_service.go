package indexer_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eternal-mint/database"
	"eternal-mint/indexer"
	"eternal-mint/model"
	"eternal-mint/model/dao"
)

var ErrSyncStatusNotFound = errors.New("sync status not found")

// SyncStatus persisted progress next to the live chain head
type SyncStatus struct {
	ChainName         string    `json:"chainName"`
	ContractAddress   string    `json:"contractAddress"`
	CurrentSyncHeight int64     `json:"currentSyncHeight"`
	LatestBlockHeight int64     `json:"latestBlockHeight"`
	BlocksBehind      int64     `json:"blocksBehind"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// SyncStatusService sync status service
type SyncStatusService struct {
	syncStatusDAO *dao.IndexerSyncStatusDAO
	scanner       *indexer.BlockScanner
	chainName     string
}

// NewSyncStatusService create sync status service instance
func NewSyncStatusService(db database.Database, chainName string) *SyncStatusService {
	return &SyncStatusService{
		syncStatusDAO: dao.NewIndexerSyncStatusDAOWithDB(db),
		chainName:     chainName,
	}
}

// SetBlockScanner set block scanner for getting latest block height
func (s *SyncStatusService) SetBlockScanner(scanner *indexer.BlockScanner) {
	s.scanner = scanner
}

// GetSyncStatus sync status of the indexed chain
func (s *SyncStatusService) GetSyncStatus(ctx context.Context) (*SyncStatus, error) {
	return s.GetSyncStatusByChain(ctx, s.chainName)
}

// GetSyncStatusByChain get sync status by chain name
func (s *SyncStatusService) GetSyncStatusByChain(ctx context.Context, chainName string) (*SyncStatus, error) {
	status, err := s.syncStatusDAO.GetByChainName(chainName)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	if status == nil {
		return nil, ErrSyncStatusNotFound
	}

	out := fromModel(status)
	if chainName == s.chainName {
		if latest, err := s.GetLatestBlockHeight(ctx); err == nil {
			out.LatestBlockHeight = latest
			if latest > status.CurrentSyncHeight {
				out.BlocksBehind = latest - status.CurrentSyncHeight
			}
		}
	}
	return out, nil
}

// GetAllSyncStatus get all chain sync status
func (s *SyncStatusService) GetAllSyncStatus() ([]*model.IndexerSyncStatus, error) {
	statuses, err := s.syncStatusDAO.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get all sync status: %w", err)
	}
	return statuses, nil
}

// GetLatestBlockHeight head seen by the scanner, fetched from the node when no poll ran yet
func (s *SyncStatusService) GetLatestBlockHeight(ctx context.Context) (int64, error) {
	if s.scanner == nil {
		return 0, errors.New("scanner not available")
	}
	if head := s.scanner.LastHead(); head > 0 {
		return head, nil
	}

	head, err := s.scanner.Head(ctx)
	if err != nil {
		log.Printf("Failed to get latest block height from node: %v", err)
		return 0, fmt.Errorf("failed to get latest block height: %w", err)
	}
	return head, nil
}

func fromModel(status *model.IndexerSyncStatus) *SyncStatus {
	return &SyncStatus{
		ChainName:         status.ChainName,
		ContractAddress:   status.ContractAddress,
		CurrentSyncHeight: status.CurrentSyncHeight,
		UpdatedAt:         status.UpdatedAt,
	}
}
