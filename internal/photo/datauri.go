package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const dataScheme = "data:"

// ErrInvalidDataURI is returned when a data: reference cannot be parsed.
var ErrInvalidDataURI = errors.New("photo: invalid data uri")

// IsDataURI reports whether s uses the data: scheme.
func IsDataURI(s string) bool {
	return len(s) >= len(dataScheme) && strings.EqualFold(s[:len(dataScheme)], dataScheme)
}

// DataURI builds a data:<mime>;base64,<payload> reference from an already
// base64 encoded payload.
func DataURI(mimeType, base64Payload string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Payload)
}

// StripDataURIPrefix drops the "data:...," envelope and returns the payload.
// Strings without the envelope are returned unchanged.
func StripDataURIPrefix(s string) string {
	if !IsDataURI(s) {
		return s
	}
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// ParseDataURI decodes a data URI into its media type and raw bytes.
func ParseDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, ErrInvalidDataURI
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return "", nil, ErrInvalidDataURI
	}
	meta := s[len(dataScheme):idx]
	payload := s[idx+1:]

	isBase64 := false
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		isBase64 = true
		meta = meta[:len(meta)-len(";base64")]
	}
	mimeType := strings.TrimSpace(meta)
	if semi := strings.IndexByte(mimeType, ';'); semi >= 0 {
		mimeType = mimeType[:semi]
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
		}
		return mimeType, data, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return mimeType, []byte(unescaped), nil
}
