package model

import "time"

// Entity names, also used as ZMQ topics
const (
	EntityNftMinted          = "NftMinted"
	EntityRoleGranted        = "RoleGranted"
	EntityRoleRevoked        = "RoleRevoked"
	EntityBatchDistribution  = "BatchDistribution"
	EntitySingleDistribution = "SingleDistribution"
)

// EventMeta block and transaction fields shared by every indexed record
type EventMeta struct {
	BlockNumber     int64     `gorm:"index:idx_block_log,priority:1;not null" json:"blockNumber"`
	LogIndex        uint      `gorm:"index:idx_block_log,priority:2;not null" json:"logIndex"`
	BlockTimestamp  int64     `gorm:"index;not null" json:"blockTimestamp"`                   // Seconds since epoch
	TransactionHash string    `gorm:"index;type:varchar(66);not null" json:"transactionHash"` // 0x-prefixed
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"-"`
}

// NftMinted one record per NftMinted log
type NftMinted struct {
	ID      string `gorm:"primaryKey;type:varchar(74)" json:"id"` // txHash ++ int32LE(logIndex)
	Creator string `gorm:"index;type:varchar(42);not null" json:"creator"`
	TokenID string `gorm:"index;type:varchar(78);not null" json:"tokenId"` // uint256 as decimal
	Supply  string `gorm:"type:varchar(78);not null" json:"supply"`
	Cid     string `gorm:"type:varchar(255)" json:"cid"`

	EventMeta `gorm:"embedded"`
}

// TableName specify table name
func (NftMinted) TableName() string {
	return "tb_nft_minted"
}

// RoleGranted one record per RoleGranted log
type RoleGranted struct {
	ID      string `gorm:"primaryKey;type:varchar(74)" json:"id"`
	Role    string `gorm:"index;type:varchar(66);not null" json:"role"`
	Account string `gorm:"index;type:varchar(42);not null" json:"account"`
	Sender  string `gorm:"type:varchar(42);not null" json:"sender"`

	EventMeta `gorm:"embedded"`
}

// TableName specify table name
func (RoleGranted) TableName() string {
	return "tb_role_granted"
}

// RoleRevoked one record per RoleRevoked log
type RoleRevoked struct {
	ID      string `gorm:"primaryKey;type:varchar(74)" json:"id"`
	Role    string `gorm:"index;type:varchar(66);not null" json:"role"`
	Account string `gorm:"index;type:varchar(42);not null" json:"account"`
	Sender  string `gorm:"type:varchar(42);not null" json:"sender"`

	EventMeta `gorm:"embedded"`
}

// TableName specify table name
func (RoleRevoked) TableName() string {
	return "tb_role_revoked"
}

// BatchDistribution one record per BatchDistribution log.
// The three arrays are aligned: recipient i received amounts[i] of tokenIds[i].
type BatchDistribution struct {
	ID             string   `gorm:"primaryKey;type:varchar(74)" json:"id"`
	Distributor    string   `gorm:"index;type:varchar(42);not null" json:"distributor"`
	Recipients     []string `gorm:"serializer:json;type:mediumtext" json:"recipients"`
	TokenIDs       []string `gorm:"serializer:json;type:mediumtext" json:"tokenIds"`
	Amounts        []string `gorm:"serializer:json;type:mediumtext" json:"amounts"`
	RecipientCount int      `json:"recipientCount"`

	EventMeta `gorm:"embedded"`
}

// TableName specify table name
func (BatchDistribution) TableName() string {
	return "tb_batch_distribution"
}

// HasToken reports whether tokenID appears in the batch
func (b *BatchDistribution) HasToken(tokenID string) bool {
	for _, id := range b.TokenIDs {
		if id == tokenID {
			return true
		}
	}
	return false
}

// SingleDistribution one record per SingleDistribution log
type SingleDistribution struct {
	ID          string `gorm:"primaryKey;type:varchar(74)" json:"id"`
	Distributor string `gorm:"index;type:varchar(42);not null" json:"distributor"`
	TokenID     string `gorm:"index;type:varchar(78);not null" json:"tokenId"`
	Recipient   string `gorm:"index;type:varchar(42);not null" json:"recipient"`
	Amount      string `gorm:"type:varchar(78);not null" json:"amount"`

	EventMeta `gorm:"embedded"`
}

// TableName specify table name
func (SingleDistribution) TableName() string {
	return "tb_single_distribution"
}

// EntityStats record counts per entity
type EntityStats struct {
	NftMinted          int64 `json:"nftMinted"`
	RoleGranted        int64 `json:"roleGranted"`
	RoleRevoked        int64 `json:"roleRevoked"`
	BatchDistribution  int64 `json:"batchDistribution"`
	SingleDistribution int64 `json:"singleDistribution"`
}
