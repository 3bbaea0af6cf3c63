package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"eternal-mint/controller/respond"
	"eternal-mint/database"
	"eternal-mint/service/indexer_service"

	"github.com/gin-gonic/gin"
)

// IndexerQueryHandler indexer query handler
type IndexerQueryHandler struct {
	queryService      *indexer_service.EntityQueryService
	syncStatusService *indexer_service.SyncStatusService
	indexerService    *indexer_service.IndexerService
}

// NewIndexerQueryHandler create indexer query handler instance
func NewIndexerQueryHandler(queryService *indexer_service.EntityQueryService, syncStatusService *indexer_service.SyncStatusService) *IndexerQueryHandler {
	return &IndexerQueryHandler{
		queryService:      queryService,
		syncStatusService: syncStatusService,
	}
}

// SetIndexerService sets the indexer service (for rescan operations)
func (h *IndexerQueryHandler) SetIndexerService(indexerService *indexer_service.IndexerService) {
	h.indexerService = indexerService
}

func pageParams(c *gin.Context) (int64, int) {
	cursor, _ := strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	if cursor < 0 {
		cursor = 0
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return cursor, size
}

// queryError maps query service errors to a status
func queryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, indexer_service.ErrInvalidFilter):
		respond.InvalidParam(c, err.Error())
	case errors.Is(err, indexer_service.ErrRecordNotFound):
		respond.NotFound(c, err.Error())
	default:
		respond.ServerError(c, err.Error())
	}
}

// ListMints latest mints
// @Summary      List mints
// @Description  Newest NftMinted records first, cursor pagination
// @Tags         Indexer Query
// @Produce      json
// @Param        cursor  query  int  false  "Cursor" default(0)
// @Param        size    query  int  false  "Page size" default(20)
// @Success      200     {object}  respond.Response{data=respond.MintListResponse}
// @Failure      500     {object}  respond.Response
// @Router       /mints [get]
func (h *IndexerQueryHandler) ListMints(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListMints(cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToMintListResponse(p))
}

// GetMint mint by record id
// @Summary      Get mint
// @Description  NftMinted record by id (tx hash ++ log index)
// @Tags         Indexer Query
// @Produce      json
// @Param        id   path      string  true  "Record id"
// @Success      200  {object}  respond.Response{data=model.NftMinted}
// @Failure      404  {object}  respond.Response
// @Router       /mints/{id} [get]
func (h *IndexerQueryHandler) GetMint(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.InvalidParam(c, "id is required")
		return
	}
	record, err := h.queryService.GetMint(id)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, record)
}

// ListMintsByToken mints of one token id
// @Summary      List mints by token
// @Tags         Indexer Query
// @Produce      json
// @Param        tokenId  path   string  true   "Token id"
// @Param        cursor   query  int     false  "Cursor" default(0)
// @Param        size     query  int     false  "Page size" default(20)
// @Success      200      {object}  respond.Response{data=respond.MintListResponse}
// @Failure      400      {object}  respond.Response
// @Router       /mints/token/{tokenId} [get]
func (h *IndexerQueryHandler) ListMintsByToken(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListMintsByToken(c.Param("tokenId"), cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToMintListResponse(p))
}

// ListMintsByCreator mints by creator address
// @Summary      List mints by creator
// @Tags         Indexer Query
// @Produce      json
// @Param        address  path   string  true   "Creator address"
// @Param        cursor   query  int     false  "Cursor" default(0)
// @Param        size     query  int     false  "Page size" default(20)
// @Success      200      {object}  respond.Response{data=respond.MintListResponse}
// @Failure      400      {object}  respond.Response
// @Router       /mints/creator/{address} [get]
func (h *IndexerQueryHandler) ListMintsByCreator(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListMintsByCreator(c.Param("address"), cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToMintListResponse(p))
}

// ListRoleGrants role grants, optionally for one account
// @Summary      List role grants
// @Tags         Indexer Query
// @Produce      json
// @Param        account  query  string  false  "Account address"
// @Param        cursor   query  int     false  "Cursor" default(0)
// @Param        size     query  int     false  "Page size" default(20)
// @Success      200      {object}  respond.Response{data=respond.RoleGrantListResponse}
// @Failure      400      {object}  respond.Response
// @Router       /roles/granted [get]
func (h *IndexerQueryHandler) ListRoleGrants(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListRoleGrants(c.Query("account"), cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToRoleGrantListResponse(p))
}

// ListRoleRevokes role revokes, optionally for one account
// @Summary      List role revokes
// @Tags         Indexer Query
// @Produce      json
// @Param        account  query  string  false  "Account address"
// @Param        cursor   query  int     false  "Cursor" default(0)
// @Param        size     query  int     false  "Page size" default(20)
// @Success      200      {object}  respond.Response{data=respond.RoleRevokeListResponse}
// @Failure      400      {object}  respond.Response
// @Router       /roles/revoked [get]
func (h *IndexerQueryHandler) ListRoleRevokes(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListRoleRevokes(c.Query("account"), cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToRoleRevokeListResponse(p))
}

func distributionFilter(c *gin.Context) database.DistributionFilter {
	return database.DistributionFilter{
		TokenID:     c.Query("tokenId"),
		Distributor: c.Query("distributor"),
	}
}

// ListBatchDistributions batch distributions
// @Summary      List batch distributions
// @Tags         Indexer Query
// @Produce      json
// @Param        tokenId      query  string  false  "Token id contained in the batch"
// @Param        distributor  query  string  false  "Distributor address"
// @Param        cursor       query  int     false  "Cursor" default(0)
// @Param        size         query  int     false  "Page size" default(20)
// @Success      200          {object}  respond.Response{data=respond.BatchDistributionListResponse}
// @Failure      400          {object}  respond.Response
// @Router       /distributions/batch [get]
func (h *IndexerQueryHandler) ListBatchDistributions(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListBatchDistributions(distributionFilter(c), cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToBatchDistributionListResponse(p))
}

// ListSingleDistributions single distributions
// @Summary      List single distributions
// @Tags         Indexer Query
// @Produce      json
// @Param        tokenId      query  string  false  "Token id"
// @Param        distributor  query  string  false  "Distributor address"
// @Param        cursor       query  int     false  "Cursor" default(0)
// @Param        size         query  int     false  "Page size" default(20)
// @Success      200          {object}  respond.Response{data=respond.SingleDistributionListResponse}
// @Failure      400          {object}  respond.Response
// @Router       /distributions/single [get]
func (h *IndexerQueryHandler) ListSingleDistributions(c *gin.Context) {
	cursor, size := pageParams(c)
	p, err := h.queryService.ListSingleDistributions(distributionFilter(c), cursor, size)
	if err != nil {
		queryError(c, err)
		return
	}
	respond.Success(c, respond.ToSingleDistributionListResponse(p))
}

// GetStats get indexer statistics
// @Summary      Get statistics
// @Description  Record counts per entity
// @Tags         Indexer Status
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.StatsResponse}
// @Failure      500  {object}  respond.Response
// @Router       /stats [get]
func (h *IndexerQueryHandler) GetStats(c *gin.Context) {
	stats, err := h.queryService.Stats()
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}
	respond.Success(c, respond.ToStatsResponse(stats))
}

// GetSyncStatus get indexer sync status
// @Summary      Get sync status
// @Description  Persisted sync height next to the chain head
// @Tags         Indexer Status
// @Produce      json
// @Success      200  {object}  respond.Response{data=indexer_service.SyncStatus}
// @Failure      404  {object}  respond.Response
// @Router       /status [get]
func (h *IndexerQueryHandler) GetSyncStatus(c *gin.Context) {
	status, err := h.syncStatusService.GetSyncStatus(c.Request.Context())
	if err != nil {
		if errors.Is(err, indexer_service.ErrSyncStatusNotFound) {
			respond.NotFound(c, err.Error())
			return
		}
		respond.ServerError(c, err.Error())
		return
	}
	respond.Success(c, status)
}

// RescanBlocks re-scan a block range
// @Summary      Rescan blocks
// @Description  Re-scan [startHeight, endHeight]; stored records are left untouched
// @Tags         Indexer Admin
// @Accept       json
// @Produce      json
// @Param        request  body      respond.RescanRequest  true  "Rescan request"
// @Success      200      {object}  respond.Response{data=respond.RescanResponse}
// @Failure      400      {object}  respond.Response
// @Failure      409      {object}  respond.Response
// @Failure      500      {object}  respond.Response
// @Router       /admin/rescan [post]
func (h *IndexerQueryHandler) RescanBlocks(c *gin.Context) {
	if h.indexerService == nil {
		respond.ServerError(c, "indexer service not available")
		return
	}

	var req respond.RescanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, fmt.Sprintf("invalid request parameters: %v", err))
		return
	}
	if req.EndHeight < req.StartHeight {
		respond.InvalidParam(c, "endHeight must be greater than or equal to startHeight")
		return
	}

	taskID, err := h.indexerService.RescanBlocksAsync(req.StartHeight, req.EndHeight)
	if err != nil {
		if errors.Is(err, indexer_service.ErrRescanRunning) {
			respond.Conflict(c, err.Error())
			return
		}
		respond.ServerError(c, fmt.Sprintf("failed to start rescan: %v", err))
		return
	}

	respond.Success(c, respond.RescanResponse{
		Message:     "Block rescan task started successfully",
		Chain:       h.indexerService.GetRescanStatus().Chain,
		StartHeight: req.StartHeight,
		EndHeight:   req.EndHeight,
		TaskID:      taskID,
	})
}

// GetRescanStatus get rescan task status
// @Summary      Get rescan status
// @Tags         Indexer Admin
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.RescanStatusResponse}
// @Failure      500  {object}  respond.Response
// @Router       /admin/rescan/status [get]
func (h *IndexerQueryHandler) GetRescanStatus(c *gin.Context) {
	if h.indexerService == nil {
		respond.ServerError(c, "indexer service not available")
		return
	}
	respond.Success(c, respond.ToRescanStatusResponse(h.indexerService.GetRescanStatus(), time.Now()))
}

// StopRescan stop the current rescan task
// @Summary      Stop rescan
// @Tags         Indexer Admin
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.RescanStopResponse}
// @Failure      400  {object}  respond.Response
// @Failure      500  {object}  respond.Response
// @Router       /admin/rescan/stop [post]
func (h *IndexerQueryHandler) StopRescan(c *gin.Context) {
	if h.indexerService == nil {
		respond.ServerError(c, "indexer service not available")
		return
	}
	if err := h.indexerService.StopRescan(); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	task := h.indexerService.GetRescanStatus()
	respond.Success(c, respond.RescanStopResponse{
		Message: "Rescan task stopped successfully",
		TaskID:  task.TaskID,
		Status:  string(indexer_service.RescanStatusCancelled),
	})
}
