package model

import "time"

// IndexerSyncStatus last fully indexed block per chain
type IndexerSyncStatus struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ChainName         string    `gorm:"uniqueIndex;type:varchar(50);not null" json:"chain_name"`
	ContractAddress   string    `gorm:"type:varchar(42)" json:"contract_address"`
	CurrentSyncHeight int64     `gorm:"not null;default:0" json:"current_sync_height"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specify table name
func (IndexerSyncStatus) TableName() string {
	return "tb_indexer_sync_status"
}
