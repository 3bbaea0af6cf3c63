package conf

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	// Environment name: development, staging, production
	Net         string
	IndexerPort string
	Host        string // Public base URL used to build media and metadata links
	Debug       bool

	// Database configuration
	Database DatabaseConfig

	// Blockchain configuration
	Chain ChainConfig

	// Contract configuration
	Contract ContractConfig

	// Blob cache configuration
	Storage StorageConfig

	// Auto Drive configuration
	AutoDrive AutoDriveConfig

	// Indexer configuration
	Indexer IndexerConfig

	// Uploader configuration
	Uploader UploaderConfig

	// Distribution configuration
	Distribution DistributionConfig

	// Mint configuration
	Mint MintConfig

	// Redis configuration
	Redis RedisConfig
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	IndexerType  string // Indexer database type: mysql, pebble
	Dsn          string // MySQL DSN
	MaxOpenConns int    // MySQL max open connections
	MaxIdleConns int    // MySQL max idle connections
	DataDir      string // PebbleDB data directory
}

// ChainConfig blockchain configuration
type ChainConfig struct {
	Network       string // Key into EvmNetworks
	ChainID       int64
	RpcUrl        string
	BlockExplorer string
	StartBlock    int64
	Confirmations int64
	SubgraphUrl   string
	SignerKey     string // Hex private key used for server-side writes, optional
}

// ContractConfig contract address, gas limits and role ids
type ContractConfig struct {
	Address            string
	GasLimitMint       uint64
	GasLimitDistribute uint64
	GasLimitTransfer   uint64
	MinterRole         string
	AdminRole          string
}

// StorageConfig storage configuration
type StorageConfig struct {
	Type  string
	Local LocalStorageConfig
	OSS   OSSStorageConfig
	S3    S3StorageConfig
	MinIO MinIOStorageConfig
}

// LocalStorageConfig local storage configuration
type LocalStorageConfig struct {
	BasePath string
}

// OSSStorageConfig OSS storage configuration
type OSSStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// S3StorageConfig AWS S3 storage configuration
type S3StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Endpoint  string // Optional custom endpoint
}

// MinIOStorageConfig MinIO storage configuration
type MinIOStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// AutoDriveConfig decentralized storage API configuration
type AutoDriveConfig struct {
	ApiKey  string
	Network string            // Storage network used for uploads
	ApiUrls map[string]string // Per-network API root overrides
	Timeout int               // Seconds
}

// IndexerConfig indexer configuration
type IndexerConfig struct {
	ScanInterval   int    // Seconds between head polls
	BatchSize      int    // Blocks per eth_getLogs window
	SwaggerBaseUrl string // Swagger API base URL (e.g., "example.com:7281")
	ZmqEnabled     bool   // Publish indexed records over ZMQ
	ZmqAddress     string // ZMQ PUB bind address
	ProgressBar    bool   // Render a progress bar while catching up
}

// UploaderConfig media upload limits
type UploaderConfig struct {
	MaxImageSizeMB      int64
	SupportedImageTypes []string
}

// DistributionConfig batch distribution settings
type DistributionConfig struct {
	BatchSize     int // Recipients per transaction
	BatchDelayMs  int // Pause between transactions, 0 disables pacing
	MaxRecipients int // Upper bound for one CSV upload
}

// MintConfig mint route settings
type MintConfig struct {
	OnChain bool // Submit mint(supply, cid) after uploading metadata
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL int // Seconds
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration
func InitConfig() error {
	viper.SetConfigFile(GetYaml())
	// Secrets stay out of the yaml
	_ = viper.BindEnv("autodrive.api_key", "AUTO_DRIVE_API_KEY")
	_ = viper.BindEnv("chain.signer_key", "SIGNER_PRIVATE_KEY")
	_ = viper.BindEnv("host", "PUBLIC_HOST")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Fatal error config file: %s", err)
	}

	Cfg = &Config{
		Net:         string(SystemEnvironmentEnum),
		IndexerPort: viper.GetString("indexer.port"),
		Host:        viper.GetString("host"),
		Debug:       viper.GetBool("debug"),

		Database: DatabaseConfig{
			IndexerType:  viper.GetString("database.indexer_type"),
			Dsn:          viper.GetString("database.dsn"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			DataDir:      viper.GetString("database.data_dir"),
		},

		Chain: ChainConfig{
			Network:       viper.GetString("chain.network"),
			ChainID:       viper.GetInt64("chain.chain_id"),
			RpcUrl:        viper.GetString("chain.rpc_url"),
			BlockExplorer: viper.GetString("chain.block_explorer"),
			StartBlock:    viper.GetInt64("chain.start_block"),
			Confirmations: viper.GetInt64("chain.confirmations"),
			SubgraphUrl:   viper.GetString("chain.subgraph_url"),
			SignerKey:     viper.GetString("chain.signer_key"),
		},

		Contract: ContractConfig{
			Address:            viper.GetString("contract.address"),
			GasLimitMint:       viper.GetUint64("contract.gas_limit_mint"),
			GasLimitDistribute: viper.GetUint64("contract.gas_limit_distribute"),
			GasLimitTransfer:   viper.GetUint64("contract.gas_limit_transfer"),
			MinterRole:         viper.GetString("contract.minter_role"),
			AdminRole:          viper.GetString("contract.admin_role"),
		},

		Storage: StorageConfig{
			Type: viper.GetString("storage.type"),
			Local: LocalStorageConfig{
				BasePath: viper.GetString("storage.local.base_path"),
			},
			OSS: OSSStorageConfig{
				Endpoint:  viper.GetString("storage.oss.endpoint"),
				AccessKey: viper.GetString("storage.oss.access_key"),
				SecretKey: viper.GetString("storage.oss.secret_key"),
				Bucket:    viper.GetString("storage.oss.bucket"),
			},
			S3: S3StorageConfig{
				Region:    viper.GetString("storage.s3.region"),
				AccessKey: viper.GetString("storage.s3.access_key"),
				SecretKey: viper.GetString("storage.s3.secret_key"),
				Bucket:    viper.GetString("storage.s3.bucket"),
				Endpoint:  viper.GetString("storage.s3.endpoint"),
			},
			MinIO: MinIOStorageConfig{
				Endpoint:  viper.GetString("storage.minio.endpoint"),
				AccessKey: viper.GetString("storage.minio.access_key"),
				SecretKey: viper.GetString("storage.minio.secret_key"),
				Bucket:    viper.GetString("storage.minio.bucket"),
			},
		},

		AutoDrive: AutoDriveConfig{
			ApiKey:  viper.GetString("autodrive.api_key"),
			Network: viper.GetString("autodrive.network"),
			ApiUrls: viper.GetStringMapString("autodrive.api_urls"),
			Timeout: viper.GetInt("autodrive.timeout"),
		},

		Indexer: IndexerConfig{
			ScanInterval:   viper.GetInt("indexer.scan_interval"),
			BatchSize:      viper.GetInt("indexer.batch_size"),
			SwaggerBaseUrl: viper.GetString("indexer.swagger_base_url"),
			ZmqEnabled:     viper.GetBool("indexer.zmq_enabled"),
			ZmqAddress:     viper.GetString("indexer.zmq_address"),
			ProgressBar:    viper.GetBool("indexer.progress_bar"),
		},

		Uploader: UploaderConfig{
			MaxImageSizeMB:      viper.GetInt64("uploader.max_image_size_mb"),
			SupportedImageTypes: viper.GetStringSlice("uploader.supported_image_types"),
		},

		Distribution: DistributionConfig{
			BatchSize:     viper.GetInt("distribution.batch_size"),
			BatchDelayMs:  viper.GetInt("distribution.batch_delay_ms"),
			MaxRecipients: viper.GetInt("distribution.max_recipients"),
		},

		Mint: MintConfig{
			OnChain: viper.GetBool("mint.onchain"),
		},

		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			CacheTTL: viper.GetInt("redis.cache_ttl"),
		},
	}

	applyDeployment(Cfg, SystemEnvironmentEnum)
	applyDefaults(Cfg)

	fmt.Printf("ℹ️  Deployment: env=%s evm=%s storage=%s contract=%s\n",
		Cfg.Net, Cfg.Chain.Network, Cfg.AutoDrive.Network, Cfg.Contract.Address)
	return nil
}

// applyDeployment fills chain, contract and storage settings that the yaml leaves empty
func applyDeployment(cfg *Config, env SystemEnvironment) {
	d, ok := Deployments[env]
	if !ok {
		d = Deployments[StagingEnvironmentEnum]
	}
	if !viper.IsSet("debug") {
		cfg.Debug = d.Debug
	}
	if cfg.Chain.Network == "" {
		cfg.Chain.Network = d.EvmNetwork
	}
	if n, ok := EvmNetworks[cfg.Chain.Network]; ok {
		if cfg.Chain.ChainID == 0 {
			cfg.Chain.ChainID = n.ChainID
		}
		if cfg.Chain.RpcUrl == "" {
			cfg.Chain.RpcUrl = n.RpcUrl
		}
		if cfg.Chain.BlockExplorer == "" {
			cfg.Chain.BlockExplorer = n.BlockExplorer
		}
	}
	if cfg.Chain.SubgraphUrl == "" {
		cfg.Chain.SubgraphUrl = d.SubgraphUrl
	}
	if cfg.Contract.Address == "" {
		cfg.Contract.Address = d.Contract
	}
	if cfg.AutoDrive.Network == "" {
		cfg.AutoDrive.Network = d.StorageNetwork
	}
	if cfg.Uploader.MaxImageSizeMB == 0 {
		cfg.Uploader.MaxImageSizeMB = d.MaxImageSizeMB
	}
}

func applyDefaults(cfg *Config) {
	if cfg.IndexerPort == "" {
		cfg.IndexerPort = "7281"
	}
	if cfg.Database.IndexerType == "" {
		cfg.Database.IndexerType = "pebble"
	}
	if cfg.Database.DataDir == "" {
		cfg.Database.DataDir = "./data"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Local.BasePath == "" {
		cfg.Storage.Local.BasePath = "./data/files"
	}
	if cfg.Contract.GasLimitMint == 0 {
		cfg.Contract.GasLimitMint = 500000
	}
	if cfg.Contract.GasLimitDistribute == 0 {
		cfg.Contract.GasLimitDistribute = 2500000
	}
	if cfg.Contract.GasLimitTransfer == 0 {
		cfg.Contract.GasLimitTransfer = 100000
	}
	if cfg.Contract.MinterRole == "" {
		cfg.Contract.MinterRole = "0x9f2df0fed2c77648de5860a4cc508cd0818c85b8b8a1ab4ceeef8d981c8956a6"
	}
	if cfg.Contract.AdminRole == "" {
		cfg.Contract.AdminRole = "0x0000000000000000000000000000000000000000000000000000000000000000"
	}
	if cfg.AutoDrive.Timeout == 0 {
		cfg.AutoDrive.Timeout = 60
	}
	if cfg.Indexer.ScanInterval == 0 {
		cfg.Indexer.ScanInterval = 10
	}
	if cfg.Indexer.BatchSize == 0 {
		cfg.Indexer.BatchSize = 2000
	}
	if cfg.Indexer.SwaggerBaseUrl == "" {
		cfg.Indexer.SwaggerBaseUrl = "localhost:" + cfg.IndexerPort
	}
	if cfg.Uploader.MaxImageSizeMB == 0 {
		cfg.Uploader.MaxImageSizeMB = 5
	}
	if len(cfg.Uploader.SupportedImageTypes) == 0 {
		cfg.Uploader.SupportedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if cfg.Distribution.BatchSize == 0 {
		cfg.Distribution.BatchSize = 100
	}
	// an explicit 0 turns pacing off
	if cfg.Distribution.BatchDelayMs == 0 && !viper.IsSet("distribution.batch_delay_ms") {
		cfg.Distribution.BatchDelayMs = 2000
	}
	if cfg.Distribution.MaxRecipients == 0 {
		cfg.Distribution.MaxRecipients = 100
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 30
	}
}

// NewDefaultConfig returns a config with deployment values and defaults only, for tools and tests
func NewDefaultConfig(env SystemEnvironment) *Config {
	cfg := &Config{Net: string(env), AutoDrive: AutoDriveConfig{ApiUrls: map[string]string{}}}
	applyDeployment(cfg, env)
	applyDefaults(cfg)
	return cfg
}
