package common

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EternalMintABI events and methods of the ERC-1155 mint/distribution contract
const EternalMintABI = `[
  {"type":"event","name":"NftMinted","anonymous":false,"inputs":[
    {"name":"creator","type":"address","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"supply","type":"uint256","indexed":false}]},
  {"type":"event","name":"RoleGranted","anonymous":false,"inputs":[
    {"name":"role","type":"bytes32","indexed":true},
    {"name":"account","type":"address","indexed":true},
    {"name":"sender","type":"address","indexed":true}]},
  {"type":"event","name":"RoleRevoked","anonymous":false,"inputs":[
    {"name":"role","type":"bytes32","indexed":true},
    {"name":"account","type":"address","indexed":true},
    {"name":"sender","type":"address","indexed":true}]},
  {"type":"event","name":"BatchDistribution","anonymous":false,"inputs":[
    {"name":"distributor","type":"address","indexed":true},
    {"name":"recipients","type":"address[]","indexed":false},
    {"name":"tokenIds","type":"uint256[]","indexed":false},
    {"name":"amounts","type":"uint256[]","indexed":false}]},
  {"type":"event","name":"SingleDistribution","anonymous":false,"inputs":[
    {"name":"distributor","type":"address","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"recipient","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]},

  {"type":"function","name":"getCID","stateMutability":"view",
    "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"getSupply","stateMutability":"view",
    "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getCreator","stateMutability":"view",
    "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"canUserDistribute","stateMutability":"view",
    "inputs":[{"name":"user","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getUserTokens","stateMutability":"view",
    "inputs":[{"name":"user","type":"address"}],
    "outputs":[{"name":"tokenIds","type":"uint256[]"},{"name":"balances","type":"uint256[]"}]},
  {"type":"function","name":"hasRole","stateMutability":"view",
    "inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},

  {"type":"function","name":"mint","stateMutability":"nonpayable",
    "inputs":[{"name":"supply","type":"uint256"},{"name":"cid","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"batchTransfer","stateMutability":"nonpayable",
    "inputs":[{"name":"recipients","type":"address[]"},{"name":"tokenIds","type":"uint256[]"},{"name":"amounts","type":"uint256[]"}],"outputs":[]},
  {"type":"function","name":"distributeToMany","stateMutability":"nonpayable",
    "inputs":[{"name":"tokenId","type":"uint256"},{"name":"recipients","type":"address[]"},{"name":"amounts","type":"uint256[]"}],"outputs":[]},
  {"type":"function","name":"distributeSingle","stateMutability":"nonpayable",
    "inputs":[{"name":"tokenId","type":"uint256"},{"name":"recipient","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

var (
	parsedABI     abi.ABI
	parsedABIErr  error
	parsedABIOnce sync.Once
)

// ContractABI parsed EternalMintABI, shared by the indexer and the contract services
func ContractABI() (abi.ABI, error) {
	parsedABIOnce.Do(func() {
		parsedABI, parsedABIErr = abi.JSON(strings.NewReader(EternalMintABI))
	})
	return parsedABI, parsedABIErr
}
