package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hairfluencer/internal/domain"
)

func TestClientSubmitWireFormat(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type: %s", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(payload) != 2 {
			t.Errorf("expected exactly prompt and images, got %v", payload)
		}
		want := BuildInstruction("Bob Cut", "Classic bob hairstyle")
		if payload["prompt"] != want {
			t.Errorf("prompt mismatch: %v", payload["prompt"])
		}
		images, ok := payload["images"].([]any)
		if !ok || len(images) != 1 {
			t.Errorf("unexpected images: %#v", payload["images"])
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		img, _ := images[0].(map[string]any)
		if img["type"] != "image" || img["image"] != "QUJD" || len(img) != 2 {
			t.Errorf("image entry mismatch: %#v", img)
		}
		_, _ = w.Write([]byte(`{"image":{"mimeType":"image/png","base64Data":"iVBORw0K"}}`))
	}))
	defer ts.Close()

	client := NewClient(ClientOptions{Endpoint: ts.URL})
	got, err := client.Submit(context.Background(), "QUJD", "Bob Cut", "Classic bob hairstyle")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if got.MIMEType != "image/png" || got.Data != "iVBORw0K" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.DataURI() != "data:image/png;base64,iVBORw0K" {
		t.Fatalf("unexpected data uri: %s", got.DataURI())
	}
}

func TestClientSubmitNon2xx(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusMultipleChoices} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"image":{"mimeType":"image/png","base64Data":"iVBORw0K"}}`))
		}))
		client := NewClient(ClientOptions{Endpoint: ts.URL})
		_, err := client.Submit(context.Background(), "QUJD", "Bob Cut", "Classic bob hairstyle")
		ts.Close()
		if !errors.Is(err, domain.ErrRemoteEdit) {
			t.Fatalf("status %d: expected ErrRemoteEdit, got %v", status, err)
		}
	}
}

func TestClientSubmitMalformed(t *testing.T) {
	bodies := map[string]string{
		"missing mimeType": `{"image":{"base64Data":"iVBORw0K"}}`,
		"missing data":     `{"image":{"mimeType":"image/png"}}`,
		"missing image":    `{"result":"ok"}`,
		"not json":         `<html>ok</html>`,
		"bad base64":       `{"image":{"mimeType":"image/png","base64Data":"***"}}`,
		"truncated base64": `{"image":{"mimeType":"image/png","base64Data":"iVBORw0"}}`,
		"bad tail":         `{"image":{"mimeType":"image/png","base64Data":"iVBORw0K!!=="}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer ts.Close()

			client := NewClient(ClientOptions{Endpoint: ts.URL})
			_, err := client.Submit(context.Background(), "QUJD", "Bob Cut", "Classic bob hairstyle")
			if !errors.Is(err, domain.ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestCheckBase64(t *testing.T) {
	large := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff, 0x00, 0x7f}, 1<<16))
	for _, ok := range []string{"iVBORw0K", "QUJD", large, "QUJD\r\nRUZH"} {
		if err := checkBase64(ok); err != nil {
			t.Fatalf("checkBase64(%.12q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"***", "QUJ", "QU=D"} {
		if err := checkBase64(bad); err == nil {
			t.Fatalf("checkBase64(%q) accepted invalid input", bad)
		}
	}
}

func TestClientSubmitTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := ts.URL
	ts.Close()

	client := NewClient(ClientOptions{Endpoint: endpoint})
	if _, err := client.Submit(context.Background(), "QUJD", "Bob Cut", "x"); !errors.Is(err, domain.ErrRemoteEdit) {
		t.Fatalf("expected ErrRemoteEdit, got %v", err)
	}
}

func TestClientSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	client := NewClient(ClientOptions{Endpoint: ts.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Submit(context.Background(), "QUJD", "Bob Cut", "x")
	if !errors.Is(err, domain.ErrRemoteEdit) {
		t.Fatalf("expected ErrRemoteEdit on timeout, got %v", err)
	}
}

func TestClientSubmitRequiresInputs(t *testing.T) {
	client := NewClient(ClientOptions{Endpoint: "http://127.0.0.1:0"})
	if _, err := client.Submit(context.Background(), "", "Bob Cut", "x"); !errors.Is(err, domain.ErrMissingSourcePhoto) {
		t.Fatalf("expected ErrMissingSourcePhoto, got %v", err)
	}
}
