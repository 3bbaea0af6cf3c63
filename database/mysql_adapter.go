package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"eternal-mint/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// MySQLDatabase MySQL database implementation
type MySQLDatabase struct {
	db *gorm.DB
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// NewMySQLDatabase create MySQL database instance
func NewMySQLDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*MySQLConfig)
	if !ok {
		return nil, fmt.Errorf("%w: expected *MySQLConfig", ErrInvalidConfig)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&model.NftMinted{},
			&model.RoleGranted{},
			&model.RoleRevoked{},
			&model.BatchDistribution{},
			&model.SingleDistribution{},
			&model.IndexerSyncStatus{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate MySQL schema: %w", err)
		}
	}

	log.Println("MySQL database connected successfully")

	return &MySQLDatabase{db: db}, nil
}

// NewMySQLDatabaseWithGorm wraps an already opened gorm handle
func NewMySQLDatabaseWithGorm(db *gorm.DB) *MySQLDatabase {
	return &MySQLDatabase{db: db}
}

// insertIfAbsent creates rec unless a row with the same primary key exists
func (m *MySQLDatabase) insertIfAbsent(id string, rec interface{}) (bool, error) {
	if id == "" {
		return false, ErrMissingID
	}
	res := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// firstByID loads the row with primary key id into dest
func (m *MySQLDatabase) firstByID(id string, dest interface{}) error {
	err := m.db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// newestFirst applies the shared ordering and offset pagination
func newestFirst(q *gorm.DB, cursor int64, size int) *gorm.DB {
	if cursor < 0 {
		cursor = 0
	}
	return q.Order("block_number DESC").Order("log_index DESC").Offset(int(cursor)).Limit(size)
}

// NftMinted operations

func (m *MySQLDatabase) SaveNftMinted(rec *model.NftMinted) (bool, error) {
	return m.insertIfAbsent(rec.ID, rec)
}

func (m *MySQLDatabase) GetNftMintedByID(id string) (*model.NftMinted, error) {
	var rec model.NftMinted
	if err := m.firstByID(id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) listNftMinted(q *gorm.DB, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	var recs []*model.NftMinted
	if err := newestFirst(q, cursor, size).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, cursor + int64(len(recs)), nil
}

func (m *MySQLDatabase) ListNftMintedWithCursor(cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return m.listNftMinted(m.db.Model(&model.NftMinted{}), cursor, size)
}

func (m *MySQLDatabase) ListNftMintedByTokenID(tokenID string, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return m.listNftMinted(m.db.Where("token_id = ?", tokenID), cursor, size)
}

func (m *MySQLDatabase) ListNftMintedByCreator(creator string, cursor int64, size int) ([]*model.NftMinted, int64, error) {
	return m.listNftMinted(m.db.Where("creator = ?", creator), cursor, size)
}

// Role operations

func (m *MySQLDatabase) SaveRoleGranted(rec *model.RoleGranted) (bool, error) {
	return m.insertIfAbsent(rec.ID, rec)
}

func (m *MySQLDatabase) GetRoleGrantedByID(id string) (*model.RoleGranted, error) {
	var rec model.RoleGranted
	if err := m.firstByID(id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) ListRoleGranted(account string, cursor int64, size int) ([]*model.RoleGranted, int64, error) {
	q := m.db.Model(&model.RoleGranted{})
	if account != "" {
		q = q.Where("account = ?", account)
	}
	var recs []*model.RoleGranted
	if err := newestFirst(q, cursor, size).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, cursor + int64(len(recs)), nil
}

func (m *MySQLDatabase) SaveRoleRevoked(rec *model.RoleRevoked) (bool, error) {
	return m.insertIfAbsent(rec.ID, rec)
}

func (m *MySQLDatabase) GetRoleRevokedByID(id string) (*model.RoleRevoked, error) {
	var rec model.RoleRevoked
	if err := m.firstByID(id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) ListRoleRevoked(account string, cursor int64, size int) ([]*model.RoleRevoked, int64, error) {
	q := m.db.Model(&model.RoleRevoked{})
	if account != "" {
		q = q.Where("account = ?", account)
	}
	var recs []*model.RoleRevoked
	if err := newestFirst(q, cursor, size).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, cursor + int64(len(recs)), nil
}

// Distribution operations

func (m *MySQLDatabase) SaveBatchDistribution(rec *model.BatchDistribution) (bool, error) {
	return m.insertIfAbsent(rec.ID, rec)
}

func (m *MySQLDatabase) GetBatchDistributionByID(id string) (*model.BatchDistribution, error) {
	var rec model.BatchDistribution
	if err := m.firstByID(id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) ListBatchDistributions(filter DistributionFilter, cursor int64, size int) ([]*model.BatchDistribution, int64, error) {
	q := m.db.Model(&model.BatchDistribution{})
	if filter.Distributor != "" {
		q = q.Where("distributor = ?", filter.Distributor)
	}
	if filter.TokenID != "" {
		// token_ids is a JSON array of decimal strings
		q = q.Where("token_ids LIKE ?", `%"`+filter.TokenID+`"%`)
	}
	var recs []*model.BatchDistribution
	if err := newestFirst(q, cursor, size).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, cursor + int64(len(recs)), nil
}

func (m *MySQLDatabase) SaveSingleDistribution(rec *model.SingleDistribution) (bool, error) {
	return m.insertIfAbsent(rec.ID, rec)
}

func (m *MySQLDatabase) GetSingleDistributionByID(id string) (*model.SingleDistribution, error) {
	var rec model.SingleDistribution
	if err := m.firstByID(id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) ListSingleDistributions(filter DistributionFilter, cursor int64, size int) ([]*model.SingleDistribution, int64, error) {
	q := m.db.Model(&model.SingleDistribution{})
	if filter.Distributor != "" {
		q = q.Where("distributor = ?", filter.Distributor)
	}
	if filter.TokenID != "" {
		q = q.Where("token_id = ?", filter.TokenID)
	}
	var recs []*model.SingleDistribution
	if err := newestFirst(q, cursor, size).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, cursor + int64(len(recs)), nil
}

func (m *MySQLDatabase) GetEntityStats() (*model.EntityStats, error) {
	var stats model.EntityStats
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&model.NftMinted{}, &stats.NftMinted},
		{&model.RoleGranted{}, &stats.RoleGranted},
		{&model.RoleRevoked{}, &stats.RoleRevoked},
		{&model.BatchDistribution{}, &stats.BatchDistribution},
		{&model.SingleDistribution{}, &stats.SingleDistribution},
	}
	for _, c := range counts {
		if err := m.db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

// IndexerSyncStatus operations

func (m *MySQLDatabase) CreateOrUpdateIndexerSyncStatus(status *model.IndexerSyncStatus) error {
	var existing model.IndexerSyncStatus
	err := m.db.Where("chain_name = ?", status.ChainName).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m.db.Create(status).Error
	} else if err != nil {
		return err
	}

	status.ID = existing.ID
	status.CreatedAt = existing.CreatedAt
	return m.db.Save(status).Error
}

func (m *MySQLDatabase) GetIndexerSyncStatusByChainName(chainName string) (*model.IndexerSyncStatus, error) {
	var status model.IndexerSyncStatus
	err := m.db.Where("chain_name = ?", chainName).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (m *MySQLDatabase) UpdateIndexerSyncStatusHeight(chainName string, height int64) error {
	return m.db.Model(&model.IndexerSyncStatus{}).
		Where("chain_name = ?", chainName).
		Update("current_sync_height", height).Error
}

func (m *MySQLDatabase) GetAllIndexerSyncStatus() ([]*model.IndexerSyncStatus, error) {
	var statuses []*model.IndexerSyncStatus
	err := m.db.Find(&statuses).Error
	return statuses, err
}

func (m *MySQLDatabase) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetGormDB get underlying GORM database instance
func (m *MySQLDatabase) GetGormDB() *gorm.DB {
	return m.db
}
