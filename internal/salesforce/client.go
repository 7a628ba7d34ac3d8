package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/srgorla/trailhead/internal/progress"
)

// DefaultAPIVersion is the REST API version used when none is configured.
const DefaultAPIVersion = "v59.0"

// maxResponseBytes caps how much of an error response body is retained.
const maxResponseBytes = 1 << 20

// FailureKind classifies how an upload attempt failed.
type FailureKind int

const (
	// KindNone means the upload did not fail.
	KindNone FailureKind = iota
	// KindTimedOut means the request exceeded the configured timeout.
	KindTimedOut
	// KindConnectionFailed means a connection-level failure occurred before
	// or during the transfer.
	KindConnectionFailed
	// KindRemoteRejected means the org answered with a non-201 status.
	KindRemoteRejected
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTimedOut:
		return "timed out"
	case KindConnectionFailed:
		return "connection failed"
	case KindRemoteRejected:
		return "remote rejected"
	default:
		return "unknown"
	}
}

// Task describes one file upload. Immutable once constructed from the
// filesystem.
type Task struct {
	FilePath string
	FileName string
	Size     int64
	Timeout  time.Duration
}

// NewTask stats path and builds an upload task.
func NewTask(path string, timeout time.Duration) (Task, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Task{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return Task{}, fmt.Errorf("%s is a directory", path)
	}

	return Task{
		FilePath: path,
		FileName: filepath.Base(path),
		Size:     info.Size(),
		Timeout:  timeout,
	}, nil
}

// Result is the terminal value of one upload attempt. No retries are
// modeled: the ContentVersion API has no append or resume semantics, so a
// failed attempt is simply reported.
type Result struct {
	Success     bool
	RemoteID    string
	HTTPStatus  int
	ErrorDetail string
	Kind        FailureKind
	Elapsed     time.Duration
	BytesSent   int64
}

// VerificationResult compares the org's recorded size to the local file.
type VerificationResult struct {
	RemoteSize int64
	Matches    bool
}

// Options configures the Client.
type Options struct {
	// APIVersion selects the REST API version.
	// Default: DefaultAPIVersion
	APIVersion string
}

// UploadOptions configures progress reporting for one upload.
type UploadOptions struct {
	// OnProgress receives a sample after every read chunk. It runs on the
	// hot read path and must be cheap.
	OnProgress progress.Func

	// Heartbeat, when non-nil, runs an elapsed-time ticker for the duration
	// of the transfer instead of byte-level progress. It is stopped before
	// Upload returns, on success and failure alike.
	Heartbeat *progress.HeartbeatOptions
}

// Client talks to one org's ContentVersion REST endpoints.
type Client struct {
	hc         *http.Client
	creds      Credentials
	apiVersion string
}

// NewClient creates a client for the given credentials.
func NewClient(creds Credentials, opts Options) *Client {
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}

	transport := &http.Transport{
		MaxIdleConns:       10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: true, // the payload is opaque bytes
	}

	return &Client{
		hc:         &http.Client{Transport: transport},
		creds:      creds,
		apiVersion: opts.APIVersion,
	}
}

func (c *Client) contentVersionURL() string {
	return fmt.Sprintf("%s/services/data/%s/sobjects/ContentVersion",
		c.creds.InstanceURL, c.apiVersion)
}

// contentVersionMeta is the entity_content part of the multipart body.
type contentVersionMeta struct {
	Title        string `json:"Title"`
	PathOnClient string `json:"PathOnClient"`
}

// Upload sends the task's file as a single multipart POST to the
// ContentVersion endpoint: a JSON metadata part followed by the binary file
// part, streamed through a byte-counting reader. Transport failures and
// remote rejections are carried in the Result, not returned as errors; the
// error return is reserved for local problems such as an unreadable file.
func (c *Client) Upload(ctx context.Context, task Task, opts UploadOptions) (Result, error) {
	f, err := os.Open(task.FilePath)
	if err != nil {
		return Result{}, fmt.Errorf("open file: %w", err)
	}
	reader := progress.NewReader(f, task.Size, opts.OnProgress)
	defer reader.Close()

	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	if opts.Heartbeat != nil {
		hb := progress.StartHeartbeat(ctx, *opts.Heartbeat)
		defer hb.Stop()
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		pw.CloseWithError(writeMultipart(mw, task, reader))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentVersionURL(), pr)
	if err != nil {
		pr.Close()
		<-writeDone
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.hc.Do(req)
	// The transport stops consuming the pipe once Do returns. Closing the
	// read end fails any pending pipe write, and the join guarantees the
	// byte counter is quiescent before the Result is built; no progress
	// callback can fire after this point.
	pr.Close()
	<-writeDone
	if err != nil {
		return Result{
			Kind:        classifyTransportError(err),
			ErrorDetail: err.Error(),
			Elapsed:     time.Since(start),
			BytesSent:   reader.BytesRead(),
		}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	if err != nil {
		return Result{
			Kind:        KindConnectionFailed,
			HTTPStatus:  resp.StatusCode,
			ErrorDetail: fmt.Sprintf("read response: %v", err),
			Elapsed:     elapsed,
			BytesSent:   reader.BytesRead(),
		}, nil
	}

	if resp.StatusCode != http.StatusCreated {
		return Result{
			Kind:        KindRemoteRejected,
			HTTPStatus:  resp.StatusCode,
			ErrorDetail: strings.TrimSpace(string(body)),
			Elapsed:     elapsed,
			BytesSent:   reader.BytesRead(),
		}, nil
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return Result{
			Kind:        KindRemoteRejected,
			HTTPStatus:  resp.StatusCode,
			ErrorDetail: fmt.Sprintf("unexpected response body: %s", strings.TrimSpace(string(body))),
			Elapsed:     elapsed,
			BytesSent:   reader.BytesRead(),
		}, nil
	}

	return Result{
		Success:    true,
		RemoteID:   created.ID,
		HTTPStatus: resp.StatusCode,
		Elapsed:    elapsed,
		BytesSent:  reader.BytesRead(),
	}, nil
}

// writeMultipart streams the two-part body: JSON metadata, then file bytes.
func writeMultipart(mw *multipart.Writer, task Task, file io.Reader) error {
	meta, err := json.Marshal(contentVersionMeta{
		Title:        task.FileName,
		PathOnClient: task.FileName,
	})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Disposition", `form-data; name="entity_content"`)
	metaHeader.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(metaHeader)
	if err != nil {
		return fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := part.Write(meta); err != nil {
		return fmt.Errorf("write metadata part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="VersionData"; filename=%q`, task.FileName))
	fileHeader.Set("Content-Type", "application/octet-stream")
	part, err = mw.CreatePart(fileHeader)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("stream file: %w", err)
	}

	return mw.Close()
}

// classifyTransportError separates timeouts from connection-level failures
// so the caller can suggest raising the timeout rather than blaming the
// network.
func classifyTransportError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimedOut
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimedOut
	}
	return KindConnectionFailed
}

// Verify fetches the recorded ContentVersion and compares its ContentSize to
// localSize. A mismatch is reported to the caller as data, never as an
// error: the org's recorded size can lag behind a just-completed write, so
// this is a sanity check rather than a correctness gate.
func (c *Client) Verify(ctx context.Context, id string, localSize int64) (VerificationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentVersionURL()+"/"+id, nil)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)

	resp, err := c.hc.Do(req)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("fetch ContentVersion %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return VerificationResult{}, fmt.Errorf("fetch ContentVersion %s: status %d: %s",
			id, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc struct {
		ContentSize int64 `json:"ContentSize"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return VerificationResult{}, fmt.Errorf("decode ContentVersion %s: %w", id, err)
	}

	return VerificationResult{
		RemoteSize: doc.ContentSize,
		Matches:    doc.ContentSize == localSize,
	}, nil
}
