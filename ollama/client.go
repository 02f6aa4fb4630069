// Package ollama is a minimal client for an Ollama-compatible generation
// server: model listing, blocking generation, and streaming generation over
// newline-delimited JSON.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultBaseURL is used when no server address is configured.
const DefaultBaseURL = "http://localhost:11434"

const tagsCacheKey = "tags"

// Model describes one model reported by the server's listing endpoint.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size,omitempty"`
	Digest     string    `json:"digest,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitzero"`
}

// Options are the generation parameters sent with a request.
type Options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// GenerateRequest is the body of a POST /api/generate call.
type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
	// Context is the opaque continuation token from a prior response.
	// Omitted when starting a fresh conversation.
	Context []int `json:"context,omitempty"`
}

// GenerateResponse is one response object from /api/generate. In streaming
// mode the server sends one of these per line, with Done set on the last.
type GenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	Context   []int  `json:"context,omitempty"`
	// Final-chunk counters, zero until Done.
	TotalDuration int64 `json:"total_duration,omitempty"`
	EvalCount     int   `json:"eval_count,omitempty"`
}

// StreamChunk is one parsed line of a streaming response. Response is nil
// when the fragment carried no response field, which matters to callers that
// count tokens.
type StreamChunk struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
	Context  []int   `json:"context,omitempty"`
}

type tagsResponse struct {
	Models []Model `json:"models"`
}

// Client talks to one generation server. Listing results are cached for a
// short TTL so back-to-back checks don't hammer the tags endpoint.
type Client struct {
	baseURL         string
	listTimeout     time.Duration
	generateTimeout time.Duration
	http            *http.Client
	tags            *ttlcache.Cache[string, []Model] // nil when caching disabled
}

// NewClient creates a client for the given server.
// A ttl of 0 disables the model-list cache.
func NewClient(baseURL string, listTimeout, generateTimeout, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:         baseURL,
		listTimeout:     listTimeout,
		generateTimeout: generateTimeout,
		http:            &http.Client{},
	}
	if ttl > 0 {
		c.tags = ttlcache.New[string, []Model](
			ttlcache.WithTTL[string, []Model](ttl),
			ttlcache.WithDisableTouchOnHit[string, []Model](),
		)
		go c.tags.Start()
	}
	return c
}

// BaseURL returns the server address this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close stops the cache expiration loop.
func (c *Client) Close() {
	if c.tags != nil {
		c.tags.Stop()
	}
}

// ListModels fetches the server's model listing, serving from cache when a
// recent listing is available.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	if c.tags != nil {
		if item := c.tags.Get(tagsCacheKey); item != nil {
			return item.Value(), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("failed to parse model listing: %w", err)
	}

	if c.tags != nil {
		c.tags.Set(tagsCacheKey, tags.Models, ttlcache.DefaultTTL)
	}
	return tags.Models, nil
}

// Generate sends a blocking generation request and returns the single
// response object.
func (c *Client) Generate(ctx context.Context, genReq GenerateRequest) (*GenerateResponse, error) {
	genReq.Stream = false

	body, err := c.post(ctx, genReq)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var result GenerateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// GenerateStream sends a streaming generation request and calls fn once per
// well-formed response line. Lines that fail to parse are skipped; the
// server interleaves keep-alive noise with JSON objects and the contract is
// to accumulate only what parses.
func (c *Client) GenerateStream(ctx context.Context, genReq GenerateRequest, fn func(StreamChunk)) error {
	genReq.Stream = true

	body, err := c.post(ctx, genReq)
	if err != nil {
		return err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk StreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			slog.Debug("skipping malformed stream fragment", "error", err)
			continue
		}
		fn(chunk)
	}
	return scanner.Err()
}

// post issues the generate request and returns the response body on 200.
// The returned ReadCloser keeps the request's timeout armed until closed.
func (c *Client) post(ctx context.Context, genReq GenerateRequest) (io.ReadCloser, error) {
	data, err := json.Marshal(genReq)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != 200 {
		resp.Body.Close()
		cancel()
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return &cancelReadCloser{rc: resp.Body, cancel: cancel}, nil
}

type cancelReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.rc.Close()
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Status code: %d", e.Code)
}
