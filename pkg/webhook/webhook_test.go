package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccollicutt/crashlog/pkg/output"
	"github.com/ccollicutt/crashlog/pkg/parser"
)

func newTestReport() *output.Report {
	return &output.Report{
		Crash: parser.Report{
			Version:        "1.34.0",
			Commit:         "abcdef1",
			OS:             "Windows 11 x64",
			GPU:            "NVIDIA RTX",
			CrashReason:    "Null pointer dereference",
			RelevantFrames: []string{"hex::plugin::doStuff+0x10"},
			Valid:          true,
		},
		Metadata: output.Metadata{
			Source:   "crash.log",
			Size:     512,
			Platform: "windows",
			ParsedAt: time.Now(),
			Duration: time.Millisecond,
		},
	}
}

func newTestAttachment() *Attachment {
	return &Attachment{Filename: "crash.log", ContentType: "text/plain", Data: []byte("log contents")}
}

// readParts collects multipart parts by form name.
func readParts(t *testing.T, r *http.Request) map[string][]byte {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		return nil
	}

	parts := make(map[string][]byte)
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Errorf("reading part: %v", err)
			return parts
		}
		data, _ := io.ReadAll(p)
		parts[p.FormName()] = data
		if p.FormName() == FilePart && p.FileName() != "crash.log" {
			t.Errorf("file part filename = %q, want crash.log", p.FileName())
		}
	}
	return parts
}

func TestClient_Send_JSON(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), Message{Payload: newTestReport()}, SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected application/json, got %s", receivedContentType)
	}

	var parsed output.Report
	if err := json.Unmarshal(receivedBody, &parsed); err != nil {
		t.Fatalf("body is not a report: %v", err)
	}
	if parsed.Crash.Version != "1.34.0" {
		t.Errorf("Version = %q, want 1.34.0", parsed.Crash.Version)
	}
}

func TestClient_Send_Multipart(t *testing.T) {
	var parts map[string][]byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts = readParts(t, r)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	msg := Message{
		Payload:    output.BuildPayload(newTestReport()),
		Attachment: newTestAttachment(),
	}
	resp := NewClient().Send(context.Background(), msg, SendOptions{URL: server.URL, Multipart: true})

	if !resp.Success() {
		t.Fatalf("expected success, got error: %v", resp.Error)
	}

	var payload output.WebhookPayload
	if err := json.Unmarshal(parts[PayloadPart], &payload); err != nil {
		t.Fatalf("payload_json part is not JSON: %v", err)
	}
	if len(payload.Embeds) != 1 || payload.Embeds[0].Title != "Crash Report" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if string(parts[FilePart]) != "log contents" {
		t.Errorf("file part = %q", parts[FilePart])
	}
}

func TestClient_Send_MultipartAttachmentOnly(t *testing.T) {
	var parts map[string][]byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts = readParts(t, r)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), Message{Attachment: newTestAttachment()},
		SendOptions{URL: server.URL, Multipart: true})

	if !resp.Success() {
		t.Fatalf("expected success, got error: %v", resp.Error)
	}
	if _, ok := parts[PayloadPart]; ok {
		t.Error("unexpected payload_json part")
	}
	if _, ok := parts[FilePart]; !ok {
		t.Error("missing file part")
	}
}

func TestClient_Send_EmptyMessage(t *testing.T) {
	for _, multipart := range []bool{false, true} {
		resp := NewClient().Send(context.Background(), Message{}, SendOptions{
			URL:       "http://127.0.0.1:1",
			Multipart: multipart,
		})
		if !errors.Is(resp.Error, ErrEmptyMessage) {
			t.Errorf("multipart=%v: expected ErrEmptyMessage, got %v", multipart, resp.Error)
		}
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), Message{Payload: newTestReport()}, SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), Message{Payload: newTestReport()}, SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), Message{Payload: newTestReport()}, SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), Message{Payload: newTestReport()}, SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	resp := NewClient().Send(context.Background(), Message{Payload: newTestReport()}, SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}

func TestNewAttachment(t *testing.T) {
	a := NewAttachment("/var/log/imhex/crash.log", []byte("log contents"))
	if a.Filename != "crash.log" || string(a.Data) != "log contents" {
		t.Errorf("unexpected attachment %+v", a)
	}
	if a.ContentType != "text/plain" {
		t.Errorf("ContentType = %q, want text/plain", a.ContentType)
	}

	if got := NewAttachment("crash.log", nil); got != nil {
		t.Errorf("NewAttachment(nil data) = %+v, want nil", got)
	}
}
