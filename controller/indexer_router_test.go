package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"eternal-mint/conf"
	"eternal-mint/database"
	"eternal-mint/model"
	"eternal-mint/service/cid_service"
	"eternal-mint/service/contract_service"
	"eternal-mint/service/distribution_service"
	"eternal-mint/service/indexer_service"
	"eternal-mint/service/mint_service"
	"eternal-mint/service/subgraph_service"

	"github.com/gin-gonic/gin"
)

const (
	testCID     = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
	testCreator = "0x1234567890123456789012345678901234567890"
	testMintID  = "0x00000000000000000000000000000000000000000000000000000000000000aa03000000"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDrive struct {
	files map[string][]byte
}

func (f *fakeDrive) Download(_ context.Context, network, cid string) ([]byte, error) {
	if data, ok := f.files[network+"/"+cid]; ok {
		return data, nil
	}
	return nil, errors.New("object not found")
}

type fakeUploader struct {
	uploads []string
}

func (f *fakeUploader) Upload(_ context.Context, _, filename, _ string, _ []byte) (string, error) {
	f.uploads = append(f.uploads, filename)
	if filename == "metadata.json" {
		return "bafkmetadata", nil
	}
	return "bafkmedia", nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeUploader) {
	t.Helper()
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.SaveNftMinted(&model.NftMinted{
		ID:      testMintID,
		Creator: testCreator,
		TokenID: "3",
		Supply:  "100",
		Cid:     testCID,
		EventMeta: model.EventMeta{
			BlockNumber:     12,
			LogIndex:        3,
			BlockTimestamp:  1700000000,
			TransactionHash: "0x00000000000000000000000000000000000000000000000000000000000000aa",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	reader, err := contract_service.NewContractReader(nil, "", nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	drive := &fakeDrive{files: map[string][]byte{
		"taurus/" + testCID: []byte(`{"name":"Eternal #3","image":"x"}`),
	}}
	uploader := &fakeUploader{}
	distribution := distribution_service.NewDistributionService(conf.DistributionConfig{}, nil)
	t.Cleanup(distribution.Close)

	r := SetupIndexerRouter(&Services{
		Query:          indexer_service.NewEntityQueryService(db),
		SyncStatus:     indexer_service.NewSyncStatusService(db, "taurus"),
		Cid:            cid_service.NewCidService(nil, drive),
		ContractReader: reader,
		Mint: mint_service.NewMintService(mint_service.Config{
			ApiKey:         "key",
			Host:           "https://mint.example",
			Network:        "taurus",
			MaxImageSizeMB: 1,
		}, uploader, nil),
		Distribution: distribution,
		Subgraph:     subgraph_service.NewSubgraphService("", 0),
	})
	return r, uploader
}

func do(r http.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	s, _ := body[key].(string)
	return s
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	if w := do(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestMintQueries(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/mints?size=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d: %s", w.Code, w.Body)
	}
	var list struct {
		Code int
		Data struct {
			Items   []model.NftMinted `json:"items"`
			HasMore bool              `json:"hasMore"`
		}
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Code != 0 || len(list.Data.Items) != 1 || list.Data.Items[0].TokenID != "3" || list.Data.HasMore {
		t.Fatalf("list %+v", list)
	}

	if w := do(r, http.MethodGet, "/api/v1/mints/0x"+strings.ToUpper(testMintID[2:]), "", nil); w.Code != http.StatusOK {
		t.Fatalf("get status %d: %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodGet, "/api/v1/mints/0x01", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing id: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/mints/creator/0xbad", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad creator %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/mints/token/3", "", nil); w.Code != http.StatusOK {
		t.Fatalf("by token %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/stats", "", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":1`) {
		t.Fatalf("stats %d %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodGet, "/api/v1/status", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status before first sync %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/admin/rescan/status", "", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("rescan without indexer %d", w.Code)
	}
}

func TestCidRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		path   string
		status int
		err    string
	}{
		{"/api/cid/taurus", http.StatusBadRequest, "CID is required"},
		{"/api/cid/devnet/" + testCID, http.StatusBadRequest, "Invalid storage network"},
		{"/api/cid/taurus/bafy!!!", http.StatusBadRequest, "Invalid CID"},
		{"/api/cid/mainnet/" + testCID, http.StatusInternalServerError, "Failed to process request"},
	}
	for _, tc := range cases {
		w := do(r, http.MethodGet, tc.path, "", nil)
		if w.Code != tc.status || errorBody(t, w, "error") != tc.err {
			t.Fatalf("%s: %d %s", tc.path, w.Code, w.Body)
		}
	}

	w := do(r, http.MethodGet, "/api/cid/taurus/"+testCID, "", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("json content: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if errorBody(t, w, "name") != "Eternal #3" {
		t.Fatalf("body %s", w.Body)
	}
}

func TestContractCallRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/utils/contract-call", "application/json", []byte(`{"method":"burn","args":[]}`))
	if w.Code != http.StatusBadRequest || errorBody(t, w, "error") != "Invalid method" {
		t.Fatalf("unknown method: %d %s", w.Code, w.Body)
	}
	w = do(r, http.MethodPost, "/api/utils/contract-call", "application/json", []byte(`{"method":"getCID","args":["1"]}`))
	if w.Code != http.StatusInternalServerError || errorBody(t, w, "error") != "Contract address not configured" {
		t.Fatalf("no address: %d %s", w.Code, w.Body)
	}
	w = do(r, http.MethodPost, "/api/utils/contract-call", "application/json", []byte(`{method`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad body: %d", w.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, mediaType string, media []byte) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if media != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="media"; filename="art.png"`)
		h.Set("Content-Type", mediaType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(media)
	}
	mw.Close()
	return mw.FormDataContentType(), buf.Bytes()
}

func TestMintRoute(t *testing.T) {
	r, uploader := newTestRouter(t)
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	fields := map[string]string{"name": "Art", "supply": "10", "description": "d", "externalLink": "https://x"}

	ct, body := multipartBody(t, fields, "image/png", png)
	w := do(r, http.MethodPost, "/api/mint", ct, body)
	if w.Code != http.StatusOK {
		t.Fatalf("mint: %d %s", w.Code, w.Body)
	}
	if errorBody(t, w, "message") != "NFT created successfully" ||
		errorBody(t, w, "metadataUrl") != "https://mint.example/api/cid/taurus/bafkmetadata" {
		t.Fatalf("body %s", w.Body)
	}
	if len(uploader.uploads) != 2 || uploader.uploads[1] != "metadata.json" {
		t.Fatalf("uploads %v", uploader.uploads)
	}

	ct, body = multipartBody(t, fields, "", nil)
	w = do(r, http.MethodPost, "/api/mint", ct, body)
	if w.Code != http.StatusBadRequest || errorBody(t, w, "message") != "Media is required" {
		t.Fatalf("no media: %d %s", w.Code, w.Body)
	}

	ct, body = multipartBody(t, fields, "text/plain", []byte("hello"))
	w = do(r, http.MethodPost, "/api/mint", ct, body)
	if w.Code != http.StatusBadRequest || errorBody(t, w, "message") != "Only image files are allowed." {
		t.Fatalf("not an image: %d %s", w.Code, w.Body)
	}

	ct, body = multipartBody(t, fields, "image/png", make([]byte, 1024*1024+1))
	w = do(r, http.MethodPost, "/api/mint", ct, body)
	if w.Code != http.StatusBadRequest || errorBody(t, w, "message") != "File size must be under 1 MB." {
		t.Fatalf("too large: %d %s", w.Code, w.Body)
	}

	// exactly at the limit is accepted
	ct, body = multipartBody(t, fields, "image/png", append(png, make([]byte, 1024*1024-len(png))...))
	w = do(r, http.MethodPost, "/api/mint", ct, body)
	if w.Code != http.StatusOK {
		t.Fatalf("at limit: %d %s", w.Code, w.Body)
	}
}

func TestDistributionRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	body := []byte(`{"mode":"custom","csv":"address,tokenId,amount\n0x123,1,1\n` + testCreator + `,1,2"}`)
	w := do(r, http.MethodPost, "/api/v1/distributions/validate", "application/json", body)
	if w.Code != http.StatusOK {
		t.Fatalf("validate: %d %s", w.Code, w.Body)
	}
	var resp struct {
		Data struct {
			Valid  bool     `json:"valid"`
			Errors []string `json:"errors"`
		}
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Valid || len(resp.Data.Errors) != 1 || resp.Data.Errors[0] != "Line 2: Invalid address format: 0x123" {
		t.Fatalf("validation %+v", resp.Data)
	}

	w = do(r, http.MethodPost, "/api/v1/distributions", "application/json", body)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("start without signer: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/distributions/jobs/nope", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing job: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/distributions/batch?tokenId=abc", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter: %d", w.Code)
	}
}

func TestSubgraphRouteNotConfigured(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/v1/subgraph", "application/json", []byte(`{"query":"{ nftMinteds { id } }"}`))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
}
