// Package webhook provides HTTP client for sending crash reports to webhook endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Multipart part names understood by chat webhooks.
const (
	PayloadPart = "payload_json"
	FilePart    = "file"
)

// ErrEmptyMessage is returned when a message has neither payload nor attachment.
var ErrEmptyMessage = errors.New("message has no payload and no attachment")

// Client sends crash reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// Message is the body of one webhook request.
type Message struct {
	// Payload is encoded as JSON. It may be nil for multipart messages that
	// only carry an attachment.
	Payload any

	// Attachment is sent as the file part of multipart messages.
	Attachment *Attachment
}

// Attachment is a file forwarded with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewAttachment wraps crash log bytes for forwarding. The filename is the
// base name of source. It returns nil when there is no data.
func NewAttachment(source string, data []byte) *Attachment {
	if data == nil {
		return nil
	}
	return &Attachment{
		Filename:    filepath.Base(source),
		ContentType: "text/plain",
		Data:        data,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL       string
	Token     string        // Bearer token (optional)
	Timeout   time.Duration // Request timeout (uses DefaultTimeout if zero)
	Multipart bool          // Send multipart/form-data instead of a JSON body
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a message to a webhook endpoint.
func (c *Client) Send(ctx context.Context, msg Message, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	var (
		body        []byte
		contentType string
		err         error
	)
	if opts.Multipart {
		body, contentType, err = encodeMultipart(msg)
	} else {
		body, contentType, err = encodeJSON(msg)
	}
	if err != nil {
		resp.Error = fmt.Errorf("failed to encode message: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	// Apply timeout
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	// Set headers
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "crashlog-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	// Send request
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024)) // Limit to 1MB
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(respBody)
	resp.Duration = time.Since(start)

	// Check for error status codes
	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

func encodeJSON(msg Message) ([]byte, string, error) {
	if msg.Payload == nil {
		return nil, "", ErrEmptyMessage
	}
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, "", err
	}
	return payload, "application/json", nil
}

// encodeMultipart writes the payload as a payload_json part followed by the
// attachment as a file part.
func encodeMultipart(msg Message) ([]byte, string, error) {
	if msg.Payload == nil && msg.Attachment == nil {
		return nil, "", ErrEmptyMessage
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if msg.Payload != nil {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			return nil, "", err
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, PayloadPart))
		h.Set("Content-Type", "application/json")
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(payload); err != nil {
			return nil, "", err
		}
	}

	if a := msg.Attachment; a != nil {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FilePart, a.Filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), mw.FormDataContentType(), nil
}
