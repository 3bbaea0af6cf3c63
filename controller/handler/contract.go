package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"eternal-mint/controller/respond"
	"eternal-mint/service/contract_service"

	"github.com/gin-gonic/gin"
)

// ContractCallRequest body of the read proxy
type ContractCallRequest struct {
	Method string        `json:"method" example:"getCID"`
	Args   []interface{} `json:"args"`
}

// ContractHandler read-only contract proxy
type ContractHandler struct {
	reader *contract_service.ContractReader
}

// NewContractHandler create contract handler
func NewContractHandler(reader *contract_service.ContractReader) *ContractHandler {
	return &ContractHandler{reader: reader}
}

// Call invoke an allow-listed view method
// @Summary      Contract read
// @Description  getCID, getSupply, getCreator, canUserDistribute, getUserTokens and hasRole
// @Tags         Contract
// @Accept       json
// @Produce      json
// @Param        request  body      ContractCallRequest  true  "Method and arguments"
// @Success      200      {object}  contract_service.CallResult
// @Failure      400      {object}  respond.ErrorResponse
// @Failure      500      {object}  respond.ErrorResponse
// @Router       /utils/contract-call [post]
func (h *ContractHandler) Call(c *gin.Context) {
	var req ContractCallRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.reader.Call(c.Request.Context(), req.Method, req.Args)
	if err != nil {
		switch {
		case errors.Is(err, contract_service.ErrInvalidMethod):
			respond.Error(c, http.StatusBadRequest, "Invalid method")
		case errors.Is(err, contract_service.ErrInvalidArgs):
			respond.Error(c, http.StatusBadRequest, "Invalid arguments")
		case errors.Is(err, contract_service.ErrContractNotConfigured):
			respond.Error(c, http.StatusInternalServerError, "Contract address not configured")
		default:
			respond.Error(c, http.StatusInternalServerError, "Contract call failed")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
