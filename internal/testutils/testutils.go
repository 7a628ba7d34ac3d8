// Package testutils provides shared test infrastructure: a fake Salesforce
// org server and a fake sf CLI binary.
package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// DefaultContentVersionID is the id the fake org hands out unless overridden.
const DefaultContentVersionID = "069000000000001AAA"

// UploadRecord captures what the fake org observed in one upload request.
type UploadRecord struct {
	Bearer              string
	Metadata            map[string]string
	MetadataContentType string
	FileName            string
	FileContentType     string
	FileBytes           int64
}

// FakeOrg is an httptest server implementing the ContentVersion endpoints:
// POST .../sobjects/ContentVersion and GET .../sobjects/ContentVersion/{id}.
// Behavior knobs must be set before the request under test is issued.
type FakeOrg struct {
	Server *httptest.Server

	// Status overrides the POST response status. Zero means 201.
	Status int
	// Body is the POST response body used with a non-201 Status.
	Body string
	// Latency delays the POST response, for timeout tests.
	Latency time.Duration
	// ContentSize is reported by the GET. Negative means echo the byte
	// count of the last upload.
	ContentSize int64
	// NextID is the id returned on a successful POST.
	NextID string

	mu      sync.Mutex
	uploads []UploadRecord
}

// NewFakeOrg starts a fake org server, closed on test cleanup.
func NewFakeOrg(t *testing.T) *FakeOrg {
	t.Helper()

	o := &FakeOrg{
		ContentSize: -1,
		NextID:      DefaultContentVersionID,
	}
	o.Server = httptest.NewServer(http.HandlerFunc(o.handle))
	t.Cleanup(o.Server.Close)

	return o
}

// URL returns the fake org's base URL, usable as an instance URL.
func (o *FakeOrg) URL() string {
	return o.Server.URL
}

// Uploads returns a copy of the observed upload records.
func (o *FakeOrg) Uploads() []UploadRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]UploadRecord(nil), o.uploads...)
}

func (o *FakeOrg) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/sobjects/ContentVersion"):
		o.handleUpload(w, r)
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/sobjects/ContentVersion/"):
		o.handleGet(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (o *FakeOrg) handleUpload(w http.ResponseWriter, r *http.Request) {
	if o.Latency > 0 {
		time.Sleep(o.Latency)
	}

	rec := UploadRecord{Bearer: r.Header.Get("Authorization")}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		switch part.FormName() {
		case "entity_content":
			rec.MetadataContentType = part.Header.Get("Content-Type")
			if err := json.NewDecoder(part).Decode(&rec.Metadata); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		case "VersionData":
			rec.FileName = part.FileName()
			rec.FileContentType = part.Header.Get("Content-Type")
			n, err := io.Copy(io.Discard, part)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rec.FileBytes = n
		}
	}

	o.mu.Lock()
	o.uploads = append(o.uploads, rec)
	o.mu.Unlock()

	if o.Status != 0 && o.Status != http.StatusCreated {
		w.WriteHeader(o.Status)
		io.WriteString(w, o.Body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, `{"id":%q,"success":true}`, o.NextID)
}

func (o *FakeOrg) handleGet(w http.ResponseWriter, r *http.Request) {
	size := o.ContentSize
	if size < 0 {
		o.mu.Lock()
		if n := len(o.uploads); n > 0 {
			size = o.uploads[n-1].FileBytes
		} else {
			size = 0
		}
		o.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"Id":%q,"ContentSize":%d}`, path.Base(r.URL.Path), size)
}

// FakeOrgCLI writes an executable shell script that ignores its arguments
// and prints payload to stdout, mimicking "sf org display --json". It
// returns the script path.
func FakeOrgCLI(t *testing.T, payload string) string {
	t.Helper()

	script := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
	p := filepath.Join(t.TempDir(), "fake-sf")
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake CLI: %v", err)
	}
	return p
}

// FakeOrgCLIPayload builds an "sf org display --json" document for the
// given org parameters.
func FakeOrgCLIPayload(t *testing.T, accessToken, instanceURL, username string) string {
	t.Helper()

	doc := map[string]any{
		"status": 0,
		"result": map[string]any{
			"accessToken": accessToken,
			"instanceUrl": instanceURL,
			"username":    username,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(data)
}

// WriteTempFile writes content to a file under the test's temp directory
// and returns its path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}
