package dao

import (
	"errors"

	"eternal-mint/database"
	"eternal-mint/model"
)

// IndexerSyncStatusDAO persisted scan height per chain
type IndexerSyncStatusDAO struct {
	db database.Database
}

func NewIndexerSyncStatusDAO() *IndexerSyncStatusDAO {
	return NewIndexerSyncStatusDAOWithDB(database.DB)
}

func NewIndexerSyncStatusDAOWithDB(db database.Database) *IndexerSyncStatusDAO {
	return &IndexerSyncStatusDAO{db: db}
}

// GetByChainName nil when the chain has never been scanned
func (dao *IndexerSyncStatusDAO) GetByChainName(chainName string) (*model.IndexerSyncStatus, error) {
	status, err := dao.db.GetIndexerSyncStatusByChainName(chainName)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return status, err
}

// SetHeight record height as the last fully indexed block, creating the row if needed
func (dao *IndexerSyncStatusDAO) SetHeight(chainName, contract string, height int64) error {
	status, err := dao.GetByChainName(chainName)
	if err != nil {
		return err
	}
	if status == nil {
		return dao.db.CreateOrUpdateIndexerSyncStatus(&model.IndexerSyncStatus{
			ChainName:         chainName,
			ContractAddress:   contract,
			CurrentSyncHeight: height,
		})
	}
	return dao.db.UpdateIndexerSyncStatusHeight(chainName, height)
}

func (dao *IndexerSyncStatusDAO) GetAll() ([]*model.IndexerSyncStatus, error) {
	return dao.db.GetAllIndexerSyncStatus()
}
