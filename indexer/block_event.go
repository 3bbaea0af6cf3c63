package indexer

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogEvent a decoded contract log with its block metadata
type LogEvent struct {
	Name           string    // Event name, same as the entity name
	Log            types.Log // Raw log as returned by eth_getLogs
	BlockTimestamp int64     // Block timestamp in seconds
	Data           interface{}
}

// BlockNumber block the log was emitted in
func (e *LogEvent) BlockNumber() int64 {
	return int64(e.Log.BlockNumber)
}

// LogIndex position of the log within its block
func (e *LogEvent) LogIndex() uint {
	return e.Log.Index
}

// NftMintedEvent NftMinted(address indexed creator, uint256 indexed tokenId, uint256 supply).
// The CID is not part of the event; it is read with getCID(tokenId).
type NftMintedEvent struct {
	Creator ethcommon.Address
	TokenId *big.Int
	Supply  *big.Int
}

// RoleEvent RoleGranted / RoleRevoked(bytes32 indexed role, address indexed account, address indexed sender)
type RoleEvent struct {
	Role    [32]byte
	Account ethcommon.Address
	Sender  ethcommon.Address
}

// BatchDistributionEvent BatchDistribution(address indexed distributor, address[] recipients, uint256[] tokenIds, uint256[] amounts)
type BatchDistributionEvent struct {
	Distributor ethcommon.Address
	Recipients  []ethcommon.Address
	TokenIds    []*big.Int
	Amounts     []*big.Int
}

// SingleDistributionEvent SingleDistribution(address indexed distributor, uint256 indexed tokenId, address indexed recipient, uint256 amount)
type SingleDistributionEvent struct {
	Distributor ethcommon.Address
	TokenId     *big.Int
	Recipient   ethcommon.Address
	Amount      *big.Int
}
