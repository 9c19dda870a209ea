package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/present"
)

func TestFailMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		key  string
	}{
		{fmt.Errorf("wrap: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{domain.ErrBusy, http.StatusConflict, "busy"},
		{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{domain.ErrMissingSelection, http.StatusUnprocessableEntity, "missing_input"},
		{domain.ErrMissingSourcePhoto, http.StatusUnprocessableEntity, "missing_input"},
		{present.ErrNoResult, http.StatusConflict, "no_result"},
		{domain.ErrShareUnsupported, http.StatusUnprocessableEntity, "share_unsupported"},
		{&domain.PermissionError{Permission: domain.PermissionMediaLibrary}, http.StatusForbidden, "permission_denied"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	a := &App{}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		a.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.code {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.code)
		}
		var body map[string]errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: decode: %v", tc.err, err)
		}
		if body["error"].Code != tc.key {
			t.Errorf("%v: code = %q, want %q", tc.err, body["error"].Code, tc.key)
		}
	}
}

func TestFailUsesNoticeMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	(&App{}).fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), &domain.PermissionError{Permission: domain.PermissionMediaLibrary})
	var body map[string]errorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if want := "Please grant media library permissions to save photos."; body["error"].Message != want {
		t.Fatalf("message = %q, want %q", body["error"].Message, want)
	}
}

func TestCheckPhotoRef(t *testing.T) {
	if err := checkPhotoRef("data:image/png;base64,QUJD"); err != nil {
		t.Errorf("data uri rejected: %v", err)
	}
	bad := []string{
		"/etc/passwd",
		"file:///tmp/a.jpg",
		"ftp://example.com/a.jpg",
		"https://images.example.com/a.jpg",
		"HTTP://127.0.0.1:8080/admin",
		"http://169.254.169.254/latest/meta-data/",
	}
	for _, ref := range bad {
		if err := checkPhotoRef(ref); !errors.Is(err, errUnsupportedPhotoRef) {
			t.Errorf("checkPhotoRef(%q) = %v, want unsupported", ref, err)
		}
	}
	if err := checkPhotoRef("  "); !errors.Is(err, domain.ErrMissingSourcePhoto) {
		t.Errorf("empty ref = %v", err)
	}
}

func TestMissingInputUsesUserMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("pipeline: %s: %w", pipeline.MissingInputMessage, domain.ErrMissingSelection)
	(&App{}).fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)
	var body map[string]errorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"].Message != pipeline.MissingInputMessage {
		t.Fatalf("message = %q", body["error"].Message)
	}
}
