package handler

import (
	"errors"
	"fmt"
	"strconv"

	"eternal-mint/controller/respond"
	"eternal-mint/service/subgraph_service"

	"github.com/gin-gonic/gin"
)

// SubgraphHandler GraphQL proxy to the hosted index
type SubgraphHandler struct {
	subgraphService *subgraph_service.SubgraphService
}

// NewSubgraphHandler create subgraph handler
func NewSubgraphHandler(subgraphService *subgraph_service.SubgraphService) *SubgraphHandler {
	return &SubgraphHandler{subgraphService: subgraphService}
}

func (h *SubgraphHandler) fail(c *gin.Context, err error) {
	var qe *subgraph_service.QueryError
	switch {
	case errors.Is(err, subgraph_service.ErrNotConfigured):
		respond.Unavailable(c, err.Error())
	case errors.Is(err, subgraph_service.ErrEmptyQuery), errors.As(err, &qe):
		respond.InvalidParam(c, err.Error())
	default:
		respond.ServerError(c, err.Error())
	}
}

// Query forward a GraphQL query
// @Summary      Subgraph query
// @Description  Forwards {query, variables} to the configured subgraph and returns its data member
// @Tags         Subgraph
// @Accept       json
// @Produce      json
// @Param        request  body      subgraph_service.GraphQLRequest  true  "GraphQL request"
// @Success      200      {object}  respond.Response
// @Failure      400      {object}  respond.Response
// @Failure      503      {object}  respond.Response
// @Router       /subgraph [post]
func (h *SubgraphHandler) Query(c *gin.Context) {
	var req subgraph_service.GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, fmt.Sprintf("invalid request parameters: %v", err))
		return
	}
	data, err := h.subgraphService.Query(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Success(c, data)
}

// LatestMints newest mints from the subgraph
// @Summary      Latest mints (subgraph)
// @Tags         Subgraph
// @Produce      json
// @Param        first  query     int  false  "Number of mints" default(10)
// @Success      200    {object}  respond.Response{data=[]subgraph_service.MintedNFT}
// @Failure      503    {object}  respond.Response
// @Router       /subgraph/latest-mints [get]
func (h *SubgraphHandler) LatestMints(c *gin.Context) {
	first, _ := strconv.Atoi(c.DefaultQuery("first", "10"))
	if first < 1 || first > 100 {
		first = 10
	}
	mints, err := h.subgraphService.LatestMints(c.Request.Context(), first)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Success(c, mints)
}
