package dao

import (
	"errors"

	"eternal-mint/database"
	"eternal-mint/model"
)

// NftMintedDAO mint record data access object
type NftMintedDAO struct {
	db database.Database
}

// NewNftMintedDAO create mint DAO on the global database
func NewNftMintedDAO() *NftMintedDAO {
	return NewNftMintedDAOWithDB(database.DB)
}

// NewNftMintedDAOWithDB create mint DAO on db
func NewNftMintedDAOWithDB(db database.Database) *NftMintedDAO {
	return &NftMintedDAO{db: db}
}

// Save insert the record unless its id exists; created reports which happened
func (dao *NftMintedDAO) Save(rec *model.NftMinted) (bool, error) {
	return dao.db.SaveNftMinted(rec)
}

// GetByID get mint record by id, nil when absent
func (dao *NftMintedDAO) GetByID(id string) (*model.NftMinted, error) {
	rec, err := dao.db.GetNftMintedByID(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// ListWithCursor latest mints first
// cursor: number of records to skip (0 for first page)
// Returns: records, nextCursor, error
func (dao *NftMintedDAO) ListWithCursor(cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return dao.db.ListNftMintedWithCursor(cursor, size)
}

// ListByTokenID mints of one token id
func (dao *NftMintedDAO) ListByTokenID(tokenID string, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return dao.db.ListNftMintedByTokenID(tokenID, cursor, size)
}

// ListByCreator mints by one creator address
func (dao *NftMintedDAO) ListByCreator(creator string, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return dao.db.ListNftMintedByCreator(creator, cursor, size)
}

// Stats record counts per entity
func (dao *NftMintedDAO) Stats() (*model.EntityStats, error) {
	return dao.db.GetEntityStats()
}
