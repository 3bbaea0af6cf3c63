package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeAutoDrive struct {
	mu     sync.Mutex
	chunks map[string][]byte
	stored map[string][]byte
}

func (f *fakeAutoDrive) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer key" || r.Header.Get("X-Auth-Provider") != "apikey" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/api/uploads/file", auth(func(w http.ResponseWriter, r *http.Request) {
		var body createUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Filename == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "up1"})
	}))
	mux.HandleFunc("/api/uploads/file/up1/chunk", auth(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		f.mu.Lock()
		f.chunks[r.FormValue("index")] = data
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("/api/uploads/up1/complete", auth(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		var all []byte
		for i := 0; ; i++ {
			c, ok := f.chunks[string(rune('0'+i))]
			if !ok {
				break
			}
			all = append(all, c...)
		}
		f.stored["bafkdone"] = all
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"cid": "bafkdone"})
	}))
	mux.HandleFunc("/api/objects/", auth(func(w http.ResponseWriter, r *http.Request) {
		cid := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/objects/"), "/download")
		f.mu.Lock()
		data, ok := f.stored[cid]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)
	}))
	return mux
}

func TestAutoDriveUploadAndDownload(t *testing.T) {
	fake := &fakeAutoDrive{chunks: map[string][]byte{}, stored: map[string][]byte{}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := NewAutoDriveClient("key", 5*time.Second, func(network string) string {
		if network == "taurus" {
			return srv.URL + "/api"
		}
		return ""
	})
	client.SetChunkSize(4)

	ctx := context.Background()
	cid, err := client.Upload(ctx, "taurus", "media.png", "image/png", []byte("0123456789"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if cid != "bafkdone" {
		t.Fatalf("unexpected cid %s", cid)
	}
	if len(fake.chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(fake.chunks))
	}

	data, err := client.Download(ctx, "taurus", cid)
	if err != nil || string(data) != "0123456789" {
		t.Fatalf("download: %q %v", data, err)
	}

	if _, err := client.Download(ctx, "taurus", "bafkmissing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := client.Download(ctx, "nowhere", cid); err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestAutoDriveRequiresKey(t *testing.T) {
	client := NewAutoDriveClient("", time.Second, func(string) string { return "http://127.0.0.1:1" })
	if _, err := client.Upload(context.Background(), "taurus", "a", "", []byte("x")); err == nil {
		t.Fatal("expected error without api key")
	}
}
