package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
)

const (
	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 64 << 20
)

// ClientOptions configures the edit endpoint client.
type ClientOptions struct {
	Endpoint   string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client sends hairstyle edits to the remote image-editing service. Every
// call is a single POST; nothing is cached or retried.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	logger     *infra.Logger
}

// NewClient constructs a client with defaults applied.
func NewClient(opts ClientOptions) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = infra.DefaultEditEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		httpClient: client,
		endpoint:   endpoint,
		timeout:    timeout,
		logger:     logger,
	}
}

type editImage struct {
	Type  string `json:"type"`
	Image string `json:"image"`
}

type editRequestBody struct {
	Prompt string      `json:"prompt"`
	Images []editImage `json:"images"`
}

type editResponseBody struct {
	Image *struct {
		MimeType   string `json:"mimeType"`
		Base64Data string `json:"base64Data"`
	} `json:"image"`
}

// Submit builds the instruction for the style and sends it with the photo.
func (c *Client) Submit(ctx context.Context, encodedPhoto, styleName, styleDescription string) (*EditResult, error) {
	req, err := NewEditRequest(&domain.Hairstyle{Name: styleName, Description: styleDescription}, encodedPhoto)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}

// Send posts a prepared request. Transport failures, timeouts and non-2xx
// statuses are reported as domain.ErrRemoteEdit; a 2xx body without the image
// descriptor is domain.ErrMalformedResponse.
func (c *Client) Send(ctx context.Context, req EditRequest) (*EditResult, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client not configured", domain.ErrRemoteEdit)
	}
	body, err := json.Marshal(editRequestBody{
		Prompt: req.Instruction,
		Images: []editImage{{Type: "image", Image: req.EncodedPhoto}},
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteEdit, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrRemoteEdit, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("imagegen: edit endpoint rejected request")
		return nil, fmt.Errorf("%w: http %d", domain.ErrRemoteEdit, resp.StatusCode)
	}

	var out editResponseBody
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrMalformedResponse, err)
	}
	if out.Image == nil {
		return nil, fmt.Errorf("%w: missing image", domain.ErrMalformedResponse)
	}
	mimeType := strings.TrimSpace(out.Image.MimeType)
	if mimeType == "" {
		return nil, fmt.Errorf("%w: missing image.mimeType", domain.ErrMalformedResponse)
	}
	data := strings.TrimSpace(out.Image.Base64Data)
	if data == "" {
		return nil, fmt.Errorf("%w: missing image.base64Data", domain.ErrMalformedResponse)
	}
	if err := checkBase64(data); err != nil {
		return nil, fmt.Errorf("%w: image.base64Data: %w", domain.ErrMalformedResponse, err)
	}

	c.logger.Debug().
		Str("style", req.Style.Name).
		Str("mime", mimeType).
		Int("payload_len", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("imagegen: edit completed")
	return &EditResult{MIMEType: mimeType, Data: data}, nil
}

// checkBase64 validates data without holding the decoded image in memory.
func checkBase64(data string) error {
	_, err := io.Copy(io.Discard, base64.NewDecoder(base64.StdEncoding, strings.NewReader(data)))
	return err
}

var _ Editor = (*Client)(nil)
