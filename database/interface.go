package database

import (
	"eternal-mint/model"
)

// DistributionFilter narrows distribution queries; empty fields match all
type DistributionFilter struct {
	TokenID     string
	Distributor string
}

// Database interface for different database implementations.
// Event records are immutable: Save* inserts when the id is new and
// reports created=false, leaving the stored record untouched, otherwise.
// List* return newest first by (block_number, log_index); cursor is the
// number of records to skip and nextCursor = cursor + len(result).
type Database interface {
	// NftMinted operations
	SaveNftMinted(rec *model.NftMinted) (bool, error)
	GetNftMintedByID(id string) (*model.NftMinted, error)
	ListNftMintedWithCursor(cursor int64, size int) ([]*model.NftMinted, int64, error)
	ListNftMintedByTokenID(tokenID string, cursor int64, size int) ([]*model.NftMinted, int64, error)
	ListNftMintedByCreator(creator string, cursor int64, size int) ([]*model.NftMinted, int64, error)

	// Role operations, account "" lists every account
	SaveRoleGranted(rec *model.RoleGranted) (bool, error)
	GetRoleGrantedByID(id string) (*model.RoleGranted, error)
	ListRoleGranted(account string, cursor int64, size int) ([]*model.RoleGranted, int64, error)
	SaveRoleRevoked(rec *model.RoleRevoked) (bool, error)
	GetRoleRevokedByID(id string) (*model.RoleRevoked, error)
	ListRoleRevoked(account string, cursor int64, size int) ([]*model.RoleRevoked, int64, error)

	// Distribution operations
	SaveBatchDistribution(rec *model.BatchDistribution) (bool, error)
	GetBatchDistributionByID(id string) (*model.BatchDistribution, error)
	ListBatchDistributions(filter DistributionFilter, cursor int64, size int) ([]*model.BatchDistribution, int64, error)
	SaveSingleDistribution(rec *model.SingleDistribution) (bool, error)
	GetSingleDistributionByID(id string) (*model.SingleDistribution, error)
	ListSingleDistributions(filter DistributionFilter, cursor int64, size int) ([]*model.SingleDistribution, int64, error)

	GetEntityStats() (*model.EntityStats, error)

	// IndexerSyncStatus operations
	CreateOrUpdateIndexerSyncStatus(status *model.IndexerSyncStatus) error
	GetIndexerSyncStatusByChainName(chainName string) (*model.IndexerSyncStatus, error)
	UpdateIndexerSyncStatusHeight(chainName string, height int64) error
	GetAllIndexerSyncStatus() ([]*model.IndexerSyncStatus, error)

	// General operations
	Close() error
}

// DBType database type
type DBType string

const (
	DBTypeMySQL  DBType = "mysql"
	DBTypePebble DBType = "pebble"
)

// Global database instance
var DB Database

// currentDBType stores the current database type
var currentDBType DBType

// InitDatabase initialize database with specified type
func InitDatabase(dbType DBType, config interface{}) error {
	var err error

	switch dbType {
	case DBTypeMySQL:
		DB, err = NewMySQLDatabase(config)
		currentDBType = DBTypeMySQL
	case DBTypePebble:
		DB, err = NewPebbleDatabase(config)
		currentDBType = DBTypePebble
	default:
		return ErrUnsupportedDBType
	}

	return err
}

// GetDBType get current database type
func GetDBType() DBType {
	return currentDBType
}
