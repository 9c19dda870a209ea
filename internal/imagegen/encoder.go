package imagegen

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/photo"
)

const (
	sniffLen           = 512
	defaultJPEGQuality = 85
)

// PhotoOpener resolves a photo reference into its bytes.
type PhotoOpener interface {
	Open(ctx context.Context, ref domain.PhotoRef) (io.ReadCloser, error)
}

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	Opener PhotoOpener
	// MaxDimension downscales photos whose longer side exceeds it. Zero keeps
	// the original bytes untouched.
	MaxDimension int
	JPEGQuality  int
	Logger       *infra.Logger
}

// Encoder turns a photo reference into base64 text suitable for a JSON body.
type Encoder struct {
	opener       PhotoOpener
	maxDimension int
	quality      int
	logger       *infra.Logger
}

// NewEncoder returns an encoder backed by opts.Opener, or a default
// photo.Loader when none is given.
func NewEncoder(opts EncoderOptions) *Encoder {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	opener := opts.Opener
	if opener == nil {
		opener = photo.NewLoader(photo.LoaderOptions{Logger: logger})
	}
	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = defaultJPEGQuality
	}
	return &Encoder{opener: opener, maxDimension: opts.MaxDimension, quality: quality, logger: logger}
}

// Encode reads the referenced photo and returns its base64 form without any
// data URI prefix. Every read failure is reported as domain.ErrEncoding.
func (e *Encoder) Encode(ctx context.Context, ref domain.PhotoRef) (EncodedPhoto, error) {
	rc, err := e.opener.Open(ctx, ref)
	if err != nil {
		return EncodedPhoto{}, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 32*1024)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return EncodedPhoto{}, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	if len(head) == 0 {
		return EncodedPhoto{}, fmt.Errorf("%w: photo is empty", domain.ErrEncoding)
	}
	mimeType := sniffMIME(head)
	if !strings.HasPrefix(mimeType, "image/") {
		e.logger.Warn().Str("mime", mimeType).Msg("imagegen: source does not look like an image")
	}

	if e.maxDimension > 0 {
		return e.encodeScaled(br, mimeType)
	}

	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	n, err := io.Copy(enc, br)
	if err != nil {
		return EncodedPhoto{}, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	if err := enc.Close(); err != nil {
		return EncodedPhoto{}, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	e.logger.Debug().Int64("bytes", n).Str("mime", mimeType).Msg("imagegen: photo encoded")
	return EncodedPhoto{Data: sb.String(), MIMEType: mimeType, Bytes: n}, nil
}

func (e *Encoder) encodeScaled(r io.Reader, mimeType string) (EncodedPhoto, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EncodedPhoto{}, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	scaled, scaledMIME, err := downscale(data, e.maxDimension, e.quality)
	switch {
	case err != nil:
		e.logger.Warn().Err(err).Msg("imagegen: cannot decode photo for downscale, sending original")
	case scaled != nil:
		e.logger.Debug().Int("from", len(data)).Int("to", len(scaled)).Msg("imagegen: photo downscaled")
		data, mimeType = scaled, scaledMIME
	}
	return EncodedPhoto{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
		Bytes:    int64(len(data)),
	}, nil
}

// downscale shrinks an image so its longer side is at most maxDim. A nil
// slice means the image already fits.
func downscale(data []byte, maxDim, quality int) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return nil, "", nil
	}
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

func sniffMIME(head []byte) string {
	// http.DetectContentType predates WebP in some Go releases.
	if len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP" {
		return "image/webp"
	}
	return http.DetectContentType(head)
}

// DecodePayload is the inverse of Encode: it turns base64 text, with or
// without a data URI envelope, back into bytes.
func DecodePayload(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(photo.StripDataURIPrefix(strings.TrimSpace(encoded)))
	if err != nil {
		return nil, fmt.Errorf("imagegen: decode payload: %w", err)
	}
	return data, nil
}
