package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/photo"
)

// EncodedPhoto is a source photo ready for JSON embedding: base64 text with
// no data URI envelope.
type EncodedPhoto struct {
	Data     string
	MIMEType string
	Bytes    int64
}

// EditRequest pairs the synthesized instruction with the encoded photo. It is
// derived on demand and never stored.
type EditRequest struct {
	Style        domain.Hairstyle
	Instruction  string
	EncodedPhoto string
}

// NewEditRequest validates that both inputs are present and builds the
// instruction. A partial request is never produced.
func NewEditRequest(selection *domain.Hairstyle, encodedPhoto string) (EditRequest, error) {
	if selection == nil {
		return EditRequest{}, domain.ErrMissingSelection
	}
	payload := strings.TrimSpace(photo.StripDataURIPrefix(encodedPhoto))
	if payload == "" {
		return EditRequest{}, domain.ErrMissingSourcePhoto
	}
	return EditRequest{
		Style:        *selection,
		Instruction:  BuildInstruction(selection.Name, selection.Description),
		EncodedPhoto: payload,
	}, nil
}

// EditResult is the decoded response of the edit endpoint.
type EditResult struct {
	MIMEType string
	Data     string
}

// DataURI returns the displayable form of the result.
func (r EditResult) DataURI() domain.PhotoRef {
	return domain.PhotoRef(photo.DataURI(r.MIMEType, r.Data))
}

// Bytes decodes the image payload.
func (r EditResult) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return nil, fmt.Errorf("imagegen: decode result: %w", err)
	}
	return data, nil
}

// Editor submits one hairstyle edit.
type Editor interface {
	Submit(ctx context.Context, encodedPhoto, styleName, styleDescription string) (*EditResult, error)
}
