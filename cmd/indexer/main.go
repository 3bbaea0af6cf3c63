package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eternal-mint/conf"
	"eternal-mint/controller"
	"eternal-mint/database"
	"eternal-mint/indexer"
	"eternal-mint/service/cid_service"
	"eternal-mint/service/contract_service"
	"eternal-mint/service/distribution_service"
	"eternal-mint/service/indexer_service"
	"eternal-mint/service/mint_service"
	"eternal-mint/service/subgraph_service"
	"eternal-mint/storage"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var ENV string

func init() {
	flag.StringVar(&ENV, "env", "staging", "Environment: development/staging/production")
}

// @title           Eternal Mint Indexer API
// @version         1.0
// @description     Indexes EternalMint contract events and serves the mint, storage and distribution routes of the web app
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:7281
// @BasePath  /api/v1

// @schemes https http

func main() {
	app, srv, cleanup := initAll()
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := app.indexer.Start(ctx); err != nil {
			log.Printf("⚠️  Indexer stopped with error: %v", err)
		}
	}()
	log.Println("Indexer service started successfully")

	go startServer(srv)
	log.Println("Indexer API service started successfully")

	waitForShutdown()

	log.Println("Shutting down indexer service...")

	cancel()
	app.indexer.Stop()

	shutdownServer(srv)

	log.Println("Server exited")
}

type application struct {
	indexer      *indexer_service.IndexerService
	distribution *distribution_service.DistributionService
}

// initEnv initialize environment
func initEnv() {
	conf.SystemEnvironmentEnum = conf.ParseEnvironment(ENV)
	fmt.Printf("Environment: %s\n", conf.SystemEnvironmentEnum)
}

// initAll initialize all components
func initAll() (*application, *http.Server, func()) {
	flag.Parse()

	initEnv()

	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := conf.Cfg
	log.Printf("Configuration loaded: env=%s, network=%s, port=%s", ENV, cfg.Chain.Network, cfg.IndexerPort)

	if err := initDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis is optional; the cache degrades to a miss when it is down
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis initialization failed (cache will be disabled): %v", err)
	}

	stor, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage initialized: type=%s", cfg.Storage.Type)

	drive := storage.NewAutoDriveClient(cfg.AutoDrive.ApiKey,
		time.Duration(cfg.AutoDrive.Timeout)*time.Second, conf.StorageApiUrl)

	client, err := ethclient.Dial(cfg.Chain.RpcUrl)
	if err != nil {
		log.Fatalf("Failed to connect to RPC %s: %v", cfg.Chain.RpcUrl, err)
	}

	scanner, err := indexer.NewBlockScanner(client, indexer.ScannerConfig{
		ChainName:     cfg.Chain.Network,
		Contract:      ethcommon.HexToAddress(cfg.Contract.Address),
		Confirmations: cfg.Chain.Confirmations,
		BatchSize:     int64(cfg.Indexer.BatchSize),
		Interval:      time.Duration(cfg.Indexer.ScanInterval) * time.Second,
		ProgressBar:   cfg.Indexer.ProgressBar,
	})
	if err != nil {
		log.Fatalf("Failed to create block scanner: %v", err)
	}

	var notifier indexer.Notifier
	if cfg.Indexer.ZmqEnabled {
		zmq, err := indexer.NewZMQNotifier(context.Background(), cfg.Indexer.ZmqAddress)
		if err != nil {
			log.Fatalf("Failed to start ZMQ publisher: %v", err)
		}
		notifier = zmq
		log.Printf("ZMQ publisher bound to %s", cfg.Indexer.ZmqAddress)
	}

	indexerService := indexer_service.NewIndexerService(database.DB, scanner, notifier, indexer_service.Options{
		ChainName:  cfg.Chain.Network,
		Contract:   cfg.Contract.Address,
		StartBlock: cfg.Chain.StartBlock,
	})
	syncStatusService := indexer_service.NewSyncStatusService(database.DB, cfg.Chain.Network)
	syncStatusService.SetBlockScanner(scanner)

	var cache database.Cache
	if database.IsRedisEnabled() {
		cache = database.RedisCache{}
	}
	reader, err := contract_service.NewContractReader(client, cfg.Contract.Address, cache, database.DefaultCacheTTL())
	if err != nil {
		log.Fatalf("Failed to create contract reader: %v", err)
	}
	indexerService.SetCidResolver(reader)

	// Server-side writes need a signer; without one mint stays client side
	// and distribution answers 503
	var distributor *distribution_service.Distributor
	var minter mint_service.Minter
	if cfg.Chain.SignerKey != "" {
		writer, err := contract_service.NewContractWriter(client, cfg.Contract.Address, cfg.Chain.SignerKey, cfg.Chain.ChainID,
			contract_service.GasLimits{
				Mint:       cfg.Contract.GasLimitMint,
				Distribute: cfg.Contract.GasLimitDistribute,
				Transfer:   cfg.Contract.GasLimitTransfer,
			})
		if err != nil {
			log.Fatalf("Failed to create contract writer: %v", err)
		}
		log.Printf("✅ Signer enabled: %s", writer.From().Hex())
		distributor = distribution_service.NewDistributor(writer, cfg.Distribution.BatchSize,
			time.Duration(cfg.Distribution.BatchDelayMs)*time.Millisecond)
		if cfg.Mint.OnChain {
			minter = writer
		}
	} else {
		log.Println("ℹ️  No signer key configured, server-side writes disabled")
	}
	distributionService := distribution_service.NewDistributionService(cfg.Distribution, distributor)

	mintService := mint_service.NewMintService(mint_service.Config{
		ApiKey:         cfg.AutoDrive.ApiKey,
		Host:           cfg.Host,
		Network:        cfg.AutoDrive.Network,
		MaxImageSizeMB: cfg.Uploader.MaxImageSizeMB,
		OnChain:        cfg.Mint.OnChain,
	}, drive, minter)

	router := controller.SetupIndexerRouter(&controller.Services{
		Indexer:        indexerService,
		Query:          indexer_service.NewEntityQueryService(database.DB),
		SyncStatus:     syncStatusService,
		Cid:            cid_service.NewCidService(stor, drive),
		ContractReader: reader,
		Mint:           mintService,
		Distribution:   distributionService,
		Subgraph:       subgraph_service.NewSubgraphService(cfg.Chain.SubgraphUrl, 30*time.Second),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.IndexerPort,
		Handler: router,
	}

	app := &application{indexer: indexerService, distribution: distributionService}

	cleanup := func() {
		app.distribution.Close()
		client.Close()
		if database.DB != nil {
			database.DB.Close()
		}
		if err := database.CloseRedis(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		}
	}

	return app, srv, cleanup
}

// initDatabase initialize database based on configuration
func initDatabase() error {
	dbType := database.DBType(conf.Cfg.Database.IndexerType)

	switch dbType {
	case database.DBTypeMySQL:
		config := &database.MySQLConfig{
			DSN:          conf.Cfg.Database.Dsn,
			MaxOpenConns: conf.Cfg.Database.MaxOpenConns,
			MaxIdleConns: conf.Cfg.Database.MaxIdleConns,
		}
		return database.InitDatabase(database.DBTypeMySQL, config)

	case database.DBTypePebble:
		config := &database.PebbleConfig{
			DataDir: conf.Cfg.Database.DataDir,
		}
		return database.InitDatabase(database.DBTypePebble, config)

	default:
		log.Printf("Indexer database type not specified, defaulting to Pebble")
		config := &database.PebbleConfig{
			DataDir: conf.Cfg.Database.DataDir,
		}
		return database.InitDatabase(database.DBTypePebble, config)
	}
}

// startServer start HTTP server
func startServer(srv *http.Server) {
	log.Printf("Indexer API service starting on port %s...", conf.Cfg.IndexerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
