package zip

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// Entry is one file in an archive.
type Entry struct {
	Filename string
	MIME     string
	Data     []byte
}

// Archive packs entries into an in-memory zip. Duplicate names get a numeric
// suffix so no entry shadows another.
func Archive(entries []Entry, modified time.Time) ([]byte, error) {
	if len(entries) == 0 {
		return nil, errors.New("zip: nothing to archive")
	}
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(entries))
	for _, entry := range entries {
		name := uniqueName(strings.TrimLeft(path.Clean("/"+entry.Filename), "/"), seen)
		if name == "" {
			return nil, fmt.Errorf("zip: empty filename")
		}
		hdr := &zip.FileHeader{Name: name, Method: zip.Store, Modified: modified}
		// Images are already compressed; deflate only text-like payloads.
		if !strings.HasPrefix(entry.MIME, "image/") {
			hdr.Method = zip.Deflate
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}

func uniqueName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
}
