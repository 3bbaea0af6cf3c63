package mint_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"

	"eternal-mint/service/contract_service"
	"eternal-mint/tool"
)

// Uploader stores bytes on a storage network and returns their CID
type Uploader interface {
	Upload(ctx context.Context, network, filename, mimeType string, data []byte) (string, error)
}

// Minter submits mint(supply, cid)
type Minter interface {
	Mint(ctx context.Context, supply *big.Int, cid string) (string, error)
}

// MintError carries the HTTP status and message returned to the caller
type MintError struct {
	Status  int
	Message string
	Err     error
}

func (e *MintError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *MintError) Unwrap() error {
	return e.Err
}

func badRequest(msg string) *MintError {
	return &MintError{Status: http.StatusBadRequest, Message: msg}
}

func serverError(msg string, err error) *MintError {
	return &MintError{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

const DefaultMaxImageSizeMB = 5

// Config mint route settings
type Config struct {
	ApiKey         string
	Host           string // Public base URL for CID links
	Network        string // Storage network uploads go to
	MaxImageSizeMB int64
	OnChain        bool
}

// Media uploaded image
type Media struct {
	Filename string
	MimeType string
	Data     []byte
}

// MintRequest form fields of POST /api/mint
type MintRequest struct {
	Name         string
	Supply       string
	Description  string
	ExternalLink string
	Media        *Media
}

// MintResult response body of a successful mint
type MintResult struct {
	Message     string `json:"message"`
	MediaUrl    string `json:"mediaUrl"`
	MetadataUrl string `json:"metadataUrl"`
	MediaCid    string `json:"mediaCid"`
	MetadataCid string `json:"metadataCid"`
	TxHash      string `json:"txHash,omitempty"`
}

// Metadata token metadata document; field order is part of the stored bytes
type Metadata struct {
	Description string        `json:"description"`
	ExternalUrl string        `json:"external_url"`
	Image       string        `json:"image"`
	Name        string        `json:"name"`
	Attributes  []interface{} `json:"attributes"`
}

// MintService uploads media and metadata and optionally mints on chain
type MintService struct {
	cfg      Config
	uploader Uploader
	minter   Minter
}

// NewMintService create mint service; minter may be nil when minting stays client side
func NewMintService(cfg Config, uploader Uploader, minter Minter) *MintService {
	return &MintService{cfg: cfg, uploader: uploader, minter: minter}
}

func (s *MintService) urlFromCid(cid string) string {
	return fmt.Sprintf("%s/api/cid/%s/%s", strings.TrimRight(s.cfg.Host, "/"), s.cfg.Network, cid)
}

func (s *MintService) checkConfig() *MintError {
	if s.cfg.ApiKey == "" {
		return serverError("AutoDrive API key is not set", nil)
	}
	if s.cfg.Host == "" {
		return serverError("Host is not set", nil)
	}
	if s.cfg.Network == "" {
		return serverError("Network is not set", nil)
	}
	return nil
}

// ParseSupply supply must be a positive base-10 integer
func ParseSupply(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() <= 0 {
		return nil, false
	}
	return n, true
}

// MaxImageSizeMB upload limit in MB, 5 when unset
func (s *MintService) MaxImageSizeMB() int64 {
	if s.cfg.MaxImageSizeMB <= 0 {
		return DefaultMaxImageSizeMB
	}
	return s.cfg.MaxImageSizeMB
}

// MaxImageBytes upload limit in bytes
func (s *MintService) MaxImageBytes() int64 {
	return s.MaxImageSizeMB() * 1024 * 1024
}

// Validate request checks that need no network access
func (s *MintService) Validate(req *MintRequest) error {
	if err := s.checkConfig(); err != nil {
		return err
	}
	if req.Media == nil || len(req.Media.Data) == 0 {
		return badRequest("Media is required")
	}
	if !tool.IsImageMimeType(req.Media.MimeType) {
		return badRequest("Only image files are allowed.")
	}
	if int64(len(req.Media.Data)) > s.MaxImageBytes() {
		return badRequest(fmt.Sprintf("File size must be under %d MB.", s.MaxImageSizeMB()))
	}
	if _, ok := ParseSupply(req.Supply); !ok {
		return badRequest("Supply must be a positive integer")
	}
	return nil
}

// Mint upload media, then metadata pointing at it, then optionally mint
func (s *MintService) Mint(ctx context.Context, req *MintRequest) (*MintResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	supply, _ := ParseSupply(req.Supply)

	log.Printf("[mint] received name=%q supply=%s media=%s (%s, %d bytes)",
		req.Name, supply, req.Media.Filename, req.Media.MimeType, len(req.Media.Data))

	filename := req.Media.Filename
	if filename == "" {
		filename = "media"
	}
	mediaCid, err := s.uploader.Upload(ctx, s.cfg.Network, filename, req.Media.MimeType, req.Media.Data)
	if err != nil {
		return nil, serverError("Internal Server Error", fmt.Errorf("upload media: %w", err))
	}
	mediaUrl := s.urlFromCid(mediaCid)
	log.Printf("[mint] media uploaded: %s", mediaUrl)

	metadata := Metadata{
		Description: req.Description,
		ExternalUrl: req.ExternalLink,
		Image:       mediaUrl,
		Name:        req.Name,
		Attributes:  []interface{}{},
	}
	body, err := json.Marshal(metadata)
	if err != nil {
		return nil, serverError("Internal Server Error", err)
	}
	metadataCid, err := s.uploader.Upload(ctx, s.cfg.Network, "metadata.json", "application/json", body)
	if err != nil {
		return nil, serverError("Internal Server Error", fmt.Errorf("upload metadata: %w", err))
	}
	metadataUrl := s.urlFromCid(metadataCid)
	log.Printf("[mint] metadata uploaded: %s", metadataUrl)

	result := &MintResult{
		Message:     "NFT created successfully",
		MediaUrl:    mediaUrl,
		MetadataUrl: metadataUrl,
		MediaCid:    mediaCid,
		MetadataCid: metadataCid,
	}

	if s.cfg.OnChain && s.minter != nil {
		txHash, err := s.minter.Mint(ctx, supply, metadataCid)
		if err != nil {
			return nil, serverError("Internal Server Error", fmt.Errorf("mint: %w", err))
		}
		result.TxHash = txHash
		log.Printf("✅ [mint] submitted mint tx %s", txHash)
	}
	return result, nil
}

var _ Minter = (*contract_service.ContractWriter)(nil)
