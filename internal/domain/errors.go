package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrEncoding           = errors.New("photo encoding failed")
	ErrRemoteEdit         = errors.New("remote edit failed")
	ErrMalformedResponse  = errors.New("malformed edit response")
	ErrMissingSelection   = errors.New("hairstyle selection is required")
	ErrMissingSourcePhoto = errors.New("source photo is required")
	ErrInvalidTransition  = errors.New("invalid pipeline transition")
	ErrBusy               = errors.New("processing already in progress")
	ErrShareUnsupported   = errors.New("sharing is not supported")
)
