package handler

import (
	"errors"
	"net/http"

	"eternal-mint/controller/respond"
	"eternal-mint/service/cid_service"
	"eternal-mint/storage"

	"github.com/gin-gonic/gin"
)

// CidHandler serves stored media and metadata by CID
type CidHandler struct {
	cidService *cid_service.CidService
}

// NewCidHandler create CID handler
func NewCidHandler(cidService *cid_service.CidService) *CidHandler {
	return &CidHandler{cidService: cidService}
}

// GetContent file or metadata behind a CID
// @Summary      Get content by CID
// @Description  JSON documents come back as application/json, SVG as UTF-8 text, other files as raw bytes with the sniffed type
// @Tags         Storage
// @Produce      octet-stream
// @Param        network  path      string  true  "Storage network" Enums(taurus, mainnet)
// @Param        cid      path      string  true  "Content id"
// @Success      200      {file}    binary
// @Failure      400      {object}  respond.ErrorResponse
// @Failure      500      {object}  respond.ErrorResponse
// @Router       /cid/{network}/{cid} [get]
func (h *CidHandler) GetContent(c *gin.Context) {
	content, err := h.cidService.Fetch(c.Request.Context(), c.Param("network"), c.Param("cid"))
	if err != nil {
		switch {
		case errors.Is(err, cid_service.ErrCIDRequired):
			respond.Error(c, http.StatusBadRequest, "CID is required")
		case errors.Is(err, cid_service.ErrInvalidNetwork):
			respond.Error(c, http.StatusBadRequest, "Invalid storage network")
		case errors.Is(err, storage.ErrInvalidCID):
			respond.Error(c, http.StatusBadRequest, "Invalid CID")
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to process request")
		}
		return
	}

	// Content addressed, never changes
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, content.ContentType, content.Data)
}
