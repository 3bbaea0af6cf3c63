package controller

import (
	"eternal-mint/conf"
	"eternal-mint/controller/handler"
	"eternal-mint/controller/respond"
	indexerDocs "eternal-mint/docs/indexer"
	"eternal-mint/service/cid_service"
	"eternal-mint/service/contract_service"
	"eternal-mint/service/distribution_service"
	"eternal-mint/service/indexer_service"
	"eternal-mint/service/mint_service"
	"eternal-mint/service/subgraph_service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services everything the router serves; Indexer may be nil for an API-only process
type Services struct {
	Indexer        *indexer_service.IndexerService
	Query          *indexer_service.EntityQueryService
	SyncStatus     *indexer_service.SyncStatusService
	Cid            *cid_service.CidService
	ContractReader *contract_service.ContractReader
	Mint           *mint_service.MintService
	Distribution   *distribution_service.DistributionService
	Subgraph       *subgraph_service.SubgraphService
}

// SetupIndexerRouter setup indexer service router
func SetupIndexerRouter(svc *Services) *gin.Engine {
	if conf.Cfg != nil {
		indexerDocs.SwaggerInfoindexer.Host = conf.Cfg.Indexer.SwaggerBaseUrl
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * 3600,
	}))

	r.Use(respond.TimingMiddleware())

	indexerQueryHandler := handler.NewIndexerQueryHandler(svc.Query, svc.SyncStatus)
	if svc.Indexer != nil {
		indexerQueryHandler.SetIndexerService(svc.Indexer)
	}
	cidHandler := handler.NewCidHandler(svc.Cid)
	contractHandler := handler.NewContractHandler(svc.ContractReader)
	mintHandler := handler.NewMintHandler(svc.Mint)
	distributionHandler := handler.NewDistributionHandler(svc.Distribution)
	subgraphHandler := handler.NewSubgraphHandler(svc.Subgraph)

	v1 := r.Group("/api/v1")
	{
		mints := v1.Group("/mints")
		{
			mints.GET("", indexerQueryHandler.ListMints)
			mints.GET("/:id", indexerQueryHandler.GetMint)
			mints.GET("/token/:tokenId", indexerQueryHandler.ListMintsByToken)
			mints.GET("/creator/:address", indexerQueryHandler.ListMintsByCreator)
		}

		roles := v1.Group("/roles")
		{
			roles.GET("/granted", indexerQueryHandler.ListRoleGrants)
			roles.GET("/revoked", indexerQueryHandler.ListRoleRevokes)
		}

		distributions := v1.Group("/distributions")
		{
			// Indexed events
			distributions.GET("/batch", indexerQueryHandler.ListBatchDistributions)
			distributions.GET("/single", indexerQueryHandler.ListSingleDistributions)

			// Server-side submission
			distributions.POST("/validate", distributionHandler.Validate)
			distributions.POST("", distributionHandler.Start)
			distributions.POST("/single", distributionHandler.DistributeSingle)
			distributions.GET("/jobs/:jobId", distributionHandler.GetJob)
		}

		v1.POST("/subgraph", subgraphHandler.Query)
		v1.GET("/subgraph/latest-mints", subgraphHandler.LatestMints)

		v1.GET("/status", indexerQueryHandler.GetSyncStatus)
		v1.GET("/stats", indexerQueryHandler.GetStats)

		admin := v1.Group("/admin")
		{
			admin.POST("/rescan", indexerQueryHandler.RescanBlocks)
			admin.GET("/rescan/status", indexerQueryHandler.GetRescanStatus)
			admin.POST("/rescan/stop", indexerQueryHandler.StopRescan)
		}
	}

	// Routes the web app calls directly, bodies kept as it expects them
	api := r.Group("/api")
	{
		api.GET("/cid/:network/:cid", cidHandler.GetContent)
		api.GET("/cid/:network", cidHandler.GetContent)
		api.POST("/utils/contract-call", contractHandler.Call)
		api.POST("/mint", mintHandler.Mint)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "indexer",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName("indexer")))

	return r
}
