package handler

import (
	"errors"
	"fmt"

	"eternal-mint/controller/respond"
	"eternal-mint/service/distribution_service"

	"github.com/gin-gonic/gin"
)

// DistributionHandler CSV validation and server-side distribution jobs
type DistributionHandler struct {
	distributionService *distribution_service.DistributionService
}

// NewDistributionHandler create distribution handler
func NewDistributionHandler(distributionService *distribution_service.DistributionService) *DistributionHandler {
	return &DistributionHandler{distributionService: distributionService}
}

// Validate parse a recipient list without submitting anything
// @Summary      Validate recipient CSV
// @Description  single-nft: one address per line; custom: address,tokenId,amount
// @Tags         Distribution
// @Accept       json
// @Produce      json
// @Param        request  body      distribution_service.DistributionRequest  true  "CSV and selection"
// @Success      200      {object}  respond.Response{data=respond.ValidationResponse}
// @Failure      400      {object}  respond.Response
// @Router       /distributions/validate [post]
func (h *DistributionHandler) Validate(c *gin.Context) {
	var req distribution_service.DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, fmt.Sprintf("invalid request parameters: %v", err))
		return
	}
	res := h.distributionService.Validate(&req)
	respond.Success(c, respond.ToValidationResponse(res))
}

// Start validate and queue a distribution job
// @Summary      Start distribution
// @Description  Submits the list in paced batches with the server signer; poll the job for progress
// @Tags         Distribution
// @Accept       json
// @Produce      json
// @Param        request  body      distribution_service.DistributionRequest  true  "CSV and selection"
// @Success      200      {object}  respond.Response{data=respond.DistributionStartResponse}
// @Failure      400      {object}  respond.Response{data=respond.ValidationResponse}
// @Failure      503      {object}  respond.Response
// @Router       /distributions [post]
func (h *DistributionHandler) Start(c *gin.Context) {
	var req distribution_service.DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, fmt.Sprintf("invalid request parameters: %v", err))
		return
	}

	job, parsed, err := h.distributionService.Start(&req)
	switch {
	case errors.Is(err, distribution_service.ErrSignerNotEnabled):
		respond.Unavailable(c, err.Error())
	case errors.Is(err, distribution_service.ErrInvalidPlan):
		respond.InvalidParamWithData(c, err.Error(), respond.ToValidationResponse(parsed))
	case err != nil:
		respond.ServerError(c, err.Error())
	default:
		respond.Success(c, respond.DistributionStartResponse{Job: job, Validation: respond.ToValidationResponse(parsed)})
	}
}

// GetJob distribution job status
// @Summary      Get distribution job
// @Tags         Distribution
// @Produce      json
// @Param        jobId  path      string  true  "Job id"
// @Success      200    {object}  respond.Response{data=distribution_service.Job}
// @Failure      404    {object}  respond.Response
// @Router       /distributions/jobs/{jobId} [get]
func (h *DistributionHandler) GetJob(c *gin.Context) {
	job, err := h.distributionService.GetJob(c.Param("jobId"))
	if err != nil {
		respond.NotFound(c, err.Error())
		return
	}
	respond.Success(c, job)
}

// DistributeSingle send one token amount to one recipient
// @Summary      Distribute to one recipient
// @Tags         Distribution
// @Accept       json
// @Produce      json
// @Param        request  body      distribution_service.SingleRequest  true  "Token, recipient and amount"
// @Success      200      {object}  respond.Response{data=respond.SingleDistributionResponse}
// @Failure      400      {object}  respond.Response
// @Failure      503      {object}  respond.Response
// @Router       /distributions/single [post]
func (h *DistributionHandler) DistributeSingle(c *gin.Context) {
	var req distribution_service.SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, fmt.Sprintf("invalid request parameters: %v", err))
		return
	}

	hash, err := h.distributionService.DistributeSingle(c.Request.Context(), &req)
	switch {
	case errors.Is(err, distribution_service.ErrSignerNotEnabled):
		respond.Unavailable(c, err.Error())
	case errors.Is(err, distribution_service.ErrInvalidRequest):
		respond.InvalidParam(c, err.Error())
	case err != nil:
		respond.ServerError(c, err.Error())
	default:
		respond.Success(c, respond.SingleDistributionResponse{TxHash: hash})
	}
}
