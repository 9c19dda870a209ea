package infra

import (
	"errors"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	name, body, err := ExtractMarker("\n--sql hairstyles.list\nSELECT 1;\n")
	if err != nil {
		t.Fatalf("ExtractMarker error: %v", err)
	}
	if name != "hairstyles.list" || body != "SELECT 1;" {
		t.Fatalf("unexpected split %q %q", name, body)
	}

	for _, q := range []string{"SELECT 1;", "--sql\nSELECT 1;", "--sql Bad-Name\nSELECT 1;", ""} {
		if _, _, err := ExtractMarker(q); !errors.Is(err, ErrQueryMarker) {
			t.Fatalf("%q: expected ErrQueryMarker, got %v", q, err)
		}
	}
}

func TestErrorRowReturnsError(t *testing.T) {
	want := errors.New("boom")
	if err := (errorRow{err: want}).Scan(); !errors.Is(err, want) {
		t.Fatalf("unexpected %v", err)
	}
}
