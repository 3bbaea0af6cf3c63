package dao

import (
	"errors"

	"eternal-mint/database"
	"eternal-mint/model"
)

// DistributionDAO batch and single distribution records
type DistributionDAO struct {
	db database.Database
}

func NewDistributionDAO() *DistributionDAO {
	return NewDistributionDAOWithDB(database.DB)
}

func NewDistributionDAOWithDB(db database.Database) *DistributionDAO {
	return &DistributionDAO{db: db}
}

func (dao *DistributionDAO) SaveBatch(rec *model.BatchDistribution) (bool, error) {
	return dao.db.SaveBatchDistribution(rec)
}

func (dao *DistributionDAO) SaveSingle(rec *model.SingleDistribution) (bool, error) {
	return dao.db.SaveSingleDistribution(rec)
}

func (dao *DistributionDAO) GetBatchByID(id string) (*model.BatchDistribution, error) {
	rec, err := dao.db.GetBatchDistributionByID(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (dao *DistributionDAO) GetSingleByID(id string) (*model.SingleDistribution, error) {
	rec, err := dao.db.GetSingleDistributionByID(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (dao *DistributionDAO) ListBatches(filter database.DistributionFilter, cursor int64, size int) ([]*model.BatchDistribution, int64, error) {
	return dao.db.ListBatchDistributions(filter, cursor, size)
}

func (dao *DistributionDAO) ListSingles(filter database.DistributionFilter, cursor int64, size int) ([]*model.SingleDistribution, int64, error) {
	return dao.db.ListSingleDistributions(filter, cursor, size)
}
