package present

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug folds a style name into a filename-safe token: accents dropped,
// lower case, runs of other characters collapsed to a single dash.
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Filename names an exported result: hairstyle-{slug}-{unixmillis}.{ext}.
func Filename(styleName, mimeType string, at time.Time) string {
	parts := []string{"hairstyle"}
	if s := Slug(styleName); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, strconv.FormatInt(at.UnixMilli(), 10))
	return strings.Join(parts, "-") + "." + Extension(mimeType)
}

// Extension maps an image MIME type onto a file extension, jpg by default.
func Extension(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/heic":
		return "heic"
	default:
		return "jpg"
	}
}
