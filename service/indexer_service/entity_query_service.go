package indexer_service

import (
	"errors"
	"fmt"
	"strings"

	"eternal-mint/common"
	"eternal-mint/database"
	"eternal-mint/model"
	"eternal-mint/model/dao"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidFilter  = errors.New("invalid filter")
)

// Page one page of newest-first records
type Page[T any] struct {
	Items      []T   `json:"items"`
	NextCursor int64 `json:"nextCursor"`
	HasMore    bool  `json:"hasMore"`
}

// EntityQueryService read side of the indexed records
type EntityQueryService struct {
	nftMintedDAO    *dao.NftMintedDAO
	roleEventDAO    *dao.RoleEventDAO
	distributionDAO *dao.DistributionDAO
}

// NewEntityQueryService create query service on db
func NewEntityQueryService(db database.Database) *EntityQueryService {
	return &EntityQueryService{
		nftMintedDAO:    dao.NewNftMintedDAOWithDB(db),
		roleEventDAO:    dao.NewRoleEventDAOWithDB(db),
		distributionDAO: dao.NewDistributionDAOWithDB(db),
	}
}

// ClampPageSize sizes outside 1..100 fall back to 20
func ClampPageSize(size int) int {
	if size < 1 || size > maxPageSize {
		return defaultPageSize
	}
	return size
}

func page[T any](items []T, nextCursor int64, size int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	// Exactly size records means there might be more
	return &Page[T]{Items: items, NextCursor: nextCursor, HasMore: len(items) == size}
}

func checkAddress(addr string) error {
	if addr != "" && !common.IsAddress(addr) {
		return fmt.Errorf("%w: address %s", ErrInvalidFilter, addr)
	}
	return nil
}

func checkTokenID(tokenID string) error {
	if tokenID == "" {
		return nil
	}
	for _, c := range tokenID {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: token id %s", ErrInvalidFilter, tokenID)
		}
	}
	return nil
}

// ListMints latest mints first
func (s *EntityQueryService) ListMints(cursor int64, size int) (*Page[*model.NftMinted], error) {
	size = ClampPageSize(size)
	recs, next, err := s.nftMintedDAO.ListWithCursor(cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list mints: %w", err)
	}
	return page(recs, next, size), nil
}

// GetMint mint record by id
func (s *EntityQueryService) GetMint(id string) (*model.NftMinted, error) {
	rec, err := s.nftMintedDAO.GetByID(strings.ToLower(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get mint: %w", err)
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// ListMintsByToken mints of one token id
func (s *EntityQueryService) ListMintsByToken(tokenID string, cursor int64, size int) (*Page[*model.NftMinted], error) {
	if tokenID == "" {
		return nil, fmt.Errorf("%w: token id is required", ErrInvalidFilter)
	}
	if err := checkTokenID(tokenID); err != nil {
		return nil, err
	}
	size = ClampPageSize(size)
	recs, next, err := s.nftMintedDAO.ListByTokenID(tokenID, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list mints by token: %w", err)
	}
	return page(recs, next, size), nil
}

// ListMintsByCreator mints by one creator address
func (s *EntityQueryService) ListMintsByCreator(creator string, cursor int64, size int) (*Page[*model.NftMinted], error) {
	if creator == "" {
		return nil, fmt.Errorf("%w: creator is required", ErrInvalidFilter)
	}
	if err := checkAddress(creator); err != nil {
		return nil, err
	}
	size = ClampPageSize(size)
	recs, next, err := s.nftMintedDAO.ListByCreator(creator, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list mints by creator: %w", err)
	}
	return page(recs, next, size), nil
}

// ListRoleGrants grants, optionally for one account
func (s *EntityQueryService) ListRoleGrants(account string, cursor int64, size int) (*Page[*model.RoleGranted], error) {
	if err := checkAddress(account); err != nil {
		return nil, err
	}
	size = ClampPageSize(size)
	recs, next, err := s.roleEventDAO.ListGranted(account, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	return page(recs, next, size), nil
}

// ListRoleRevokes revokes, optionally for one account
func (s *EntityQueryService) ListRoleRevokes(account string, cursor int64, size int) (*Page[*model.RoleRevoked], error) {
	if err := checkAddress(account); err != nil {
		return nil, err
	}
	size = ClampPageSize(size)
	recs, next, err := s.roleEventDAO.ListRevoked(account, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list role revokes: %w", err)
	}
	return page(recs, next, size), nil
}

func checkDistributionFilter(filter database.DistributionFilter) error {
	if err := checkTokenID(filter.TokenID); err != nil {
		return err
	}
	return checkAddress(filter.Distributor)
}

// ListBatchDistributions batch distributions filtered by token id and/or distributor
func (s *EntityQueryService) ListBatchDistributions(filter database.DistributionFilter, cursor int64, size int) (*Page[*model.BatchDistribution], error) {
	if err := checkDistributionFilter(filter); err != nil {
		return nil, err
	}
	size = ClampPageSize(size)
	recs, next, err := s.distributionDAO.ListBatches(filter, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch distributions: %w", err)
	}
	return page(recs, next, size), nil
}

// ListSingleDistributions single distributions filtered by token id and/or distributor
func (s *EntityQueryService) ListSingleDistributions(filter database.DistributionFilter, cursor int64, size int) (*Page[*model.SingleDistribution], error) {
	if err := checkDistributionFilter(filter); err != nil {
		return nil, err
	}
	size = ClampPageSize(size)
	recs, next, err := s.distributionDAO.ListSingles(filter, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list single distributions: %w", err)
	}
	return page(recs, next, size), nil
}

// Stats record counts per entity
func (s *EntityQueryService) Stats() (*model.EntityStats, error) {
	stats, err := s.nftMintedDAO.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to get entity stats: %w", err)
	}
	return stats, nil
}
