package conf

import "strings"

// EvmNetwork chain parameters for a supported EVM network
type EvmNetwork struct {
	Name           string
	ChainID        int64
	RpcUrl         string
	BlockExplorer  string
	CurrencySymbol string
	Testnet        bool
}

// StorageNetwork Auto Drive deployment
type StorageNetwork struct {
	Name    string
	ApiUrl  string // API root, object routes hang off /objects
	Testnet bool
}

// Deployment binds an environment to its contract and networks
type Deployment struct {
	EvmNetwork     string
	StorageNetwork string
	Contract       string
	SubgraphUrl    string
	Debug          bool
	MaxImageSizeMB int64
}

const (
	NetworkTaurus  = "taurus"
	NetworkMainnet = "mainnet"
)

var EvmNetworks = map[string]EvmNetwork{
	NetworkTaurus: {
		Name:           "Autonomys Taurus Auto EVM",
		ChainID:        490000,
		RpcUrl:         "https://auto-evm.taurus.autonomys.xyz/ws",
		BlockExplorer:  "https://explorer.auto-evm.taurus.autonomys.xyz",
		CurrencySymbol: "tAI3",
		Testnet:        true,
	},
	NetworkMainnet: {
		Name:           "Autonomys Mainnet Auto EVM",
		ChainID:        490001,
		RpcUrl:         "https://auto-evm.mainnet.autonomys.xyz/ws",
		BlockExplorer:  "https://explorer.auto-evm.mainnet.autonomys.xyz",
		CurrencySymbol: "AI3",
		Testnet:        false,
	},
}

var StorageNetworks = map[string]StorageNetwork{
	NetworkTaurus: {
		Name:    "Autonomys Taurus Auto Drive",
		ApiUrl:  "https://demo.auto-drive.autonomys.xyz/api",
		Testnet: true,
	},
	NetworkMainnet: {
		Name:    "Autonomys Mainnet Auto Drive",
		ApiUrl:  "https://mainnet.auto-drive.autonomys.xyz/api",
		Testnet: false,
	},
}

const defaultContractAddress = "0x09e8798DAb58C211183c42325Ad7CCd935C11f7D"

var Deployments = map[SystemEnvironment]Deployment{
	DevelopmentEnvironmentEnum: {
		EvmNetwork:     NetworkTaurus,
		StorageNetwork: NetworkTaurus,
		Contract:       defaultContractAddress,
		SubgraphUrl:    "https://api.studio.thegraph.com/query/114204/eternalmint-dev/v0.0.16",
		Debug:          true,
		MaxImageSizeMB: 10,
	},
	StagingEnvironmentEnum: {
		EvmNetwork:     NetworkTaurus,
		StorageNetwork: NetworkTaurus,
		Contract:       defaultContractAddress,
		SubgraphUrl:    "https://api.studio.thegraph.com/query/114204/eternalmint-dev/v0.0.16",
		Debug:          true,
		MaxImageSizeMB: 5,
	},
	ProductionEnvironmentEnum: {
		EvmNetwork:     NetworkTaurus,
		StorageNetwork: NetworkMainnet,
		Contract:       defaultContractAddress,
		SubgraphUrl:    "https://api.studio.thegraph.com/query/114204/eternalmint-prod/v1.0.0",
		Debug:          false,
		MaxImageSizeMB: 5,
	},
}

// IsStorageNetwork reports whether name is a known Auto Drive network
func IsStorageNetwork(name string) bool {
	_, ok := StorageNetworks[name]
	return ok
}

// StorageApiUrl returns the Auto Drive API root for a network, honouring yaml overrides
func StorageApiUrl(network string) string {
	if Cfg != nil {
		if u, ok := Cfg.AutoDrive.ApiUrls[network]; ok && u != "" {
			return strings.TrimRight(u, "/")
		}
	}
	if n, ok := StorageNetworks[network]; ok {
		return n.ApiUrl
	}
	return ""
}
