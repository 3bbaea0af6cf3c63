package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"eternal-mint/controller/respond"
	"eternal-mint/service/mint_service"

	"github.com/gin-gonic/gin"
)

// MintHandler media and metadata upload
type MintHandler struct {
	mintService *mint_service.MintService
}

// NewMintHandler create mint handler
func NewMintHandler(mintService *mint_service.MintService) *MintHandler {
	return &MintHandler{mintService: mintService}
}

// Mint upload an image and its metadata document
// @Summary      Create NFT
// @Description  Uploads media and metadata.json to the storage network; submits mint(supply, cid) when server-side minting is enabled
// @Tags         Mint
// @Accept       multipart/form-data
// @Produce      json
// @Param        name          formData  string  false  "Name"
// @Param        supply        formData  string  true   "Supply"
// @Param        description   formData  string  false  "Description"
// @Param        externalLink  formData  string  false  "External link"
// @Param        media         formData  file    true   "Image"
// @Success      200           {object}  mint_service.MintResult
// @Failure      400           {object}  respond.MessageResponse
// @Failure      500           {object}  respond.MessageResponse
// @Router       /mint [post]
func (h *MintHandler) Mint(c *gin.Context) {
	req := &mint_service.MintRequest{
		Name:         c.PostForm("name"),
		Supply:       c.PostForm("supply"),
		Description:  c.PostForm("description"),
		ExternalLink: c.PostForm("externalLink"),
	}

	if file, header, err := c.Request.FormFile("media"); err == nil {
		// one byte past the service limit is enough for Validate to reject it
		data, err := io.ReadAll(io.LimitReader(file, h.mintService.MaxImageBytes()+1))
		file.Close()
		if err != nil {
			respond.Message(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		req.Media = &mint_service.Media{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		}
	}

	result, err := h.mintService.Mint(c.Request.Context(), req)
	if err != nil {
		var mintErr *mint_service.MintError
		if errors.As(err, &mintErr) {
			if mintErr.Status >= http.StatusInternalServerError {
				log.Printf("Error in mint route: %v", err)
			}
			respond.Message(c, mintErr.Status, mintErr.Message)
			return
		}
		log.Printf("Error in mint route: %v", err)
		respond.Message(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, result)
}
