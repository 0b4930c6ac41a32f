// Package chunkservice talks to the remote transcript chunking service.
package chunkservice

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/Zachkp/zach-dev-chunker/internal/logger"
)

const (
	healthPath = "/api/health"
	chunkPath  = "/api/chunk-text"
)

// Request is the body of POST /api/chunk-text.
type Request struct {
	Text            string `json:"text"`
	MaxChars        int    `json:"max_chars"`
	CleanTranscript bool   `json:"clean_transcript"`
	Method          string `json:"method"`
}

// Response holds the fields of a chunk-text reply the site relies on.
type Response struct {
	Chunks         []string
	OriginalLength int
	CleanedLength  int
}

type Client struct {
	http *resty.Client
}

// NewClient returns a client for the service rooted at baseURL. Deadlines are
// left to the caller's context; the client never retries.
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// Health returns nil when the service answers its health endpoint with a 2xx.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return classify("health", err)
	}
	if !resp.IsSuccess() {
		return serviceError(resp)
	}
	return nil
}

func (c *Client) ChunkText(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx)

	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post(chunkPath)
	if err != nil {
		return nil, classify("chunk-text", err)
	}
	if !resp.IsSuccess() {
		return nil, serviceError(resp)
	}

	out, err := parseResponse(resp.Body())
	if err != nil {
		return nil, err
	}
	log.Debug("chunk-text completed", "status", resp.StatusCode(), "chunks", len(out.Chunks), "elapsed", resp.Time())
	return out, nil
}

func parseResponse(body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, &FormatError{Reason: "body is not JSON"}
	}
	chunks := gjson.GetBytes(body, "chunks")
	if !chunks.IsArray() {
		return nil, &FormatError{Reason: "chunks is missing or not a list"}
	}
	items := chunks.Array()
	out := &Response{
		Chunks:         make([]string, 0, len(items)),
		OriginalLength: int(gjson.GetBytes(body, "original_length").Int()),
		CleanedLength:  int(gjson.GetBytes(body, "cleaned_length").Int()),
	}
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, &FormatError{Reason: "chunks contains a non-string item"}
		}
		out.Chunks = append(out.Chunks, item.String())
	}
	return out, nil
}

func serviceError(resp *resty.Response) *ServiceError {
	msg := gjson.GetBytes(resp.Body(), "message").String()
	if msg == "" {
		msg = reasonPhrase(resp)
	}
	return &ServiceError{StatusCode: resp.StatusCode(), Message: msg}
}

// reasonPhrase is the status line minus its code, e.g. "Bad Request" from
// "400 Bad Request".
func reasonPhrase(resp *resty.Response) string {
	code := strconv.Itoa(resp.StatusCode())
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status(), code)); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode())
}
