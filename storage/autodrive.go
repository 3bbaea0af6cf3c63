package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"eternal-mint/conf"

	"github.com/imroc/req"
)

// DefaultChunkSize upload chunk size
const DefaultChunkSize = 1 << 20

var ErrAutoDrive = errors.New("auto drive request failed")

// AutoDriveClient uploads to and downloads from the Auto Drive API of a storage network
type AutoDriveClient struct {
	apiKey    string
	chunkSize int
	resolve   func(network string) string
	r         *req.Req
}

// NewAutoDriveClient create a client; resolve maps a network name to its API
// root and defaults to conf.StorageApiUrl
func NewAutoDriveClient(apiKey string, timeout time.Duration, resolve func(network string) string) *AutoDriveClient {
	if resolve == nil {
		resolve = conf.StorageApiUrl
	}
	r := req.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	return &AutoDriveClient{
		apiKey:    apiKey,
		chunkSize: DefaultChunkSize,
		resolve:   resolve,
		r:         r,
	}
}

// SetChunkSize override the upload chunk size
func (c *AutoDriveClient) SetChunkSize(n int) {
	if n > 0 {
		c.chunkSize = n
	}
}

func (c *AutoDriveClient) header() req.Header {
	return req.Header{
		"Authorization":   "Bearer " + c.apiKey,
		"X-Auth-Provider": "apikey",
	}
}

func (c *AutoDriveClient) apiUrl(network string) (string, error) {
	u := c.resolve(network)
	if u == "" {
		return "", fmt.Errorf("%w: unknown storage network %q", ErrInvalid, network)
	}
	return u, nil
}

func checkStatus(resp *req.Resp, op string) error {
	code := resp.Response().StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	body, _ := resp.ToString()
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("%w: %s returned %d: %s", ErrAutoDrive, op, code, body)
}

type createUploadRequest struct {
	Filename      string                 `json:"filename"`
	MimeType      string                 `json:"mimeType,omitempty"`
	UploadOptions map[string]interface{} `json:"uploadOptions"`
}

// Upload store data as filename on network and return its CID
func (c *AutoDriveClient) Upload(ctx context.Context, network, filename, mimeType string, data []byte) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: api key is not set", ErrInvalid)
	}
	api, err := c.apiUrl(network)
	if err != nil {
		return "", err
	}

	resp, err := c.r.Post(api+"/uploads/file", c.header(), req.BodyJSON(&createUploadRequest{
		Filename:      filename,
		MimeType:      mimeType,
		UploadOptions: map[string]interface{}{},
	}), ctx)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if err := checkStatus(resp, "create upload"); err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := resp.ToJSON(&created); err != nil || created.ID == "" {
		return "", fmt.Errorf("%w: create upload returned no id", ErrAutoDrive)
	}

	for index, offset := 0, 0; offset < len(data) || index == 0; index++ {
		end := offset + c.chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		resp, err := c.r.Post(api+"/uploads/file/"+created.ID+"/chunk", c.header(),
			req.Param{"index": strconv.Itoa(index)},
			req.FileUpload{
				File:      io.NopCloser(bytes.NewReader(chunk)),
				FieldName: "file",
				FileName:  filename,
			}, ctx)
		if err != nil {
			return "", fmt.Errorf("upload chunk %d: %w", index, err)
		}
		if err := checkStatus(resp, "upload chunk"); err != nil {
			return "", err
		}
		offset = end
	}

	resp, err = c.r.Post(api+"/uploads/"+created.ID+"/complete", c.header(), ctx)
	if err != nil {
		return "", fmt.Errorf("complete upload: %w", err)
	}
	if err := checkStatus(resp, "complete upload"); err != nil {
		return "", err
	}
	var completed struct {
		Cid string `json:"cid"`
	}
	if err := resp.ToJSON(&completed); err != nil || completed.Cid == "" {
		return "", fmt.Errorf("%w: complete upload returned no cid", ErrAutoDrive)
	}

	log.Printf("[autodrive] uploaded %s (%d bytes) to %s: %s", filename, len(data), network, completed.Cid)
	return completed.Cid, nil
}

// Download fetch the bytes of cid from network
func (c *AutoDriveClient) Download(ctx context.Context, network, cid string) ([]byte, error) {
	api, err := c.apiUrl(network)
	if err != nil {
		return nil, err
	}

	resp, err := c.r.Get(api+"/objects/"+cid+"/download", c.header(), ctx)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", cid, err)
	}
	if resp.Response().StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err := checkStatus(resp, "download"); err != nil {
		return nil, err
	}
	return resp.ToBytes()
}
