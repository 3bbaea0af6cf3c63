package respond

import (
	"time"

	"eternal-mint/model"
	"eternal-mint/service/indexer_service"
)

// MintListResponse page of NftMinted records
type MintListResponse struct {
	Items      []*model.NftMinted `json:"items"`
	NextCursor int64              `json:"nextCursor" example:"20"`
	HasMore    bool               `json:"hasMore" example:"true"`
}

// RoleGrantListResponse page of RoleGranted records
type RoleGrantListResponse struct {
	Items      []*model.RoleGranted `json:"items"`
	NextCursor int64                `json:"nextCursor" example:"20"`
	HasMore    bool                 `json:"hasMore" example:"false"`
}

// RoleRevokeListResponse page of RoleRevoked records
type RoleRevokeListResponse struct {
	Items      []*model.RoleRevoked `json:"items"`
	NextCursor int64                `json:"nextCursor" example:"20"`
	HasMore    bool                 `json:"hasMore" example:"false"`
}

// BatchDistributionListResponse page of BatchDistribution records
type BatchDistributionListResponse struct {
	Items      []*model.BatchDistribution `json:"items"`
	NextCursor int64                      `json:"nextCursor" example:"20"`
	HasMore    bool                       `json:"hasMore" example:"false"`
}

// SingleDistributionListResponse page of SingleDistribution records
type SingleDistributionListResponse struct {
	Items      []*model.SingleDistribution `json:"items"`
	NextCursor int64                       `json:"nextCursor" example:"20"`
	HasMore    bool                        `json:"hasMore" example:"false"`
}

// RescanRequest request structure for block rescan
type RescanRequest struct {
	StartHeight int64 `json:"startHeight" binding:"required,gt=0" example:"1000"`
	EndHeight   int64 `json:"endHeight" binding:"required,gtefield=StartHeight" example:"2000"`
}

// RescanResponse response structure for block rescan
type RescanResponse struct {
	Message     string `json:"message" example:"Block rescan task started successfully"`
	Chain       string `json:"chain" example:"taurus"`
	StartHeight int64  `json:"startHeight" example:"1000"`
	EndHeight   int64  `json:"endHeight" example:"2000"`
	TaskID      string `json:"taskId" example:"rescan_taurus_1000_2000_1699999999"`
}

// RescanStatusResponse response structure for rescan status query
type RescanStatusResponse struct {
	TaskID            string  `json:"taskId" example:"rescan_taurus_1000_2000_1699999999"`
	Chain             string  `json:"chain" example:"taurus"`
	Status            string  `json:"status" example:"running"` // idle, running, completed, cancelled, failed
	StartHeight       int64   `json:"startHeight" example:"1000"`
	EndHeight         int64   `json:"endHeight" example:"2000"`
	CurrentHeight     int64   `json:"currentHeight" example:"1500"`
	ProcessedBlocks   int64   `json:"processedBlocks" example:"500"`
	TotalBlocks       int64   `json:"totalBlocks" example:"1001"`
	Progress          float64 `json:"progress" example:"49.95"` // percentage
	Speed             float64 `json:"speed" example:"120.5"`    // blocks per second
	StartTime         int64   `json:"startTime" example:"1699999999"`
	ElapsedTime       int64   `json:"elapsedTime" example:"4150"`       // milliseconds
	EstimatedTimeLeft int64   `json:"estimatedTimeLeft" example:"4100"` // milliseconds
	ErrorMessage      string  `json:"errorMessage,omitempty" example:""`
}

// RescanStopResponse response structure for stop rescan
type RescanStopResponse struct {
	Message string `json:"message" example:"Rescan task stopped successfully"`
	TaskID  string `json:"taskId" example:"rescan_taurus_1000_2000_1699999999"`
	Status  string `json:"status" example:"cancelled"`
}

// StatsResponse record counts
type StatsResponse struct {
	Total    int64              `json:"total" example:"42"`
	Entities *model.EntityStats `json:"entities"`
}

// ToMintListResponse convert a page of mints
func ToMintListResponse(p *indexer_service.Page[*model.NftMinted]) MintListResponse {
	return MintListResponse{Items: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}
}

// ToRoleGrantListResponse convert a page of grants
func ToRoleGrantListResponse(p *indexer_service.Page[*model.RoleGranted]) RoleGrantListResponse {
	return RoleGrantListResponse{Items: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}
}

// ToRoleRevokeListResponse convert a page of revokes
func ToRoleRevokeListResponse(p *indexer_service.Page[*model.RoleRevoked]) RoleRevokeListResponse {
	return RoleRevokeListResponse{Items: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}
}

// ToBatchDistributionListResponse convert a page of batch distributions
func ToBatchDistributionListResponse(p *indexer_service.Page[*model.BatchDistribution]) BatchDistributionListResponse {
	return BatchDistributionListResponse{Items: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}
}

// ToSingleDistributionListResponse convert a page of single distributions
func ToSingleDistributionListResponse(p *indexer_service.Page[*model.SingleDistribution]) SingleDistributionListResponse {
	return SingleDistributionListResponse{Items: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}
}

// ToStatsResponse convert entity counts
func ToStatsResponse(stats *model.EntityStats) StatsResponse {
	total := stats.NftMinted + stats.RoleGranted + stats.RoleRevoked + stats.BatchDistribution + stats.SingleDistribution
	return StatsResponse{Total: total, Entities: stats}
}

// ToRescanStatusResponse convert task, deriving progress for running tasks
func ToRescanStatusResponse(task *indexer_service.RescanTask, now time.Time) RescanStatusResponse {
	resp := RescanStatusResponse{
		TaskID:          task.TaskID,
		Chain:           task.Chain,
		Status:          string(task.Status),
		StartHeight:     task.StartHeight,
		EndHeight:       task.EndHeight,
		CurrentHeight:   task.CurrentHeight,
		ProcessedBlocks: task.ProcessedBlocks,
		TotalBlocks:     task.TotalBlocks,
		ErrorMessage:    task.ErrorMessage,
	}
	if task.Status != indexer_service.RescanStatusRunning || task.TotalBlocks == 0 {
		return resp
	}

	resp.Progress = float64(task.ProcessedBlocks) / float64(task.TotalBlocks) * 100
	resp.StartTime = task.StartTime.Unix()
	elapsed := now.Sub(task.StartTime)
	resp.ElapsedTime = elapsed.Milliseconds()
	if task.ProcessedBlocks > 0 && elapsed > 0 {
		resp.Speed = float64(task.ProcessedBlocks) / elapsed.Seconds()
		remaining := task.TotalBlocks - task.ProcessedBlocks
		resp.EstimatedTimeLeft = int64(float64(remaining) / resp.Speed * 1000)
	}
	return resp
}
