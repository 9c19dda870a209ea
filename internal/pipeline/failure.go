package pipeline

import (
	"context"
	"errors"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/photo"
)

// Stage tells the caller where to send the user after a failure.
type Stage string

const (
	StagePhoto    Stage = "photo"
	StagePrevious Stage = "previous"
)

const (
	FailureTitle   = "Processing Failed"
	FailureMessage = "We couldn't process your image. Please try again."
	FailureAction  = "OK"

	// MissingInputMessage is shown when processing starts without both inputs.
	MissingInputMessage = "Missing hairstyle or photo data"
)

// Failure is the single user-facing notification for a failed run.
type Failure struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Action   string `json:"action"`
	ReturnTo Stage  `json:"return_to"`
	Err      error  `json:"-"`
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return f.Kind + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Classify maps a processing error onto its notification. Nil yields nil.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	f := &Failure{
		Title:    FailureTitle,
		Message:  FailureMessage,
		Action:   FailureAction,
		ReturnTo: StagePrevious,
		Err:      err,
	}
	switch {
	case errors.Is(err, domain.ErrEncoding):
		f.Kind = "encoding_error"
		f.ReturnTo = StagePhoto
	case errors.Is(err, domain.ErrMalformedResponse):
		f.Kind = "malformed_response"
	case errors.Is(err, domain.ErrMissingSelection), errors.Is(err, domain.ErrMissingSourcePhoto):
		f.Kind = "missing_input"
		f.Message = MissingInputMessage
	case errors.Is(err, context.Canceled):
		f.Kind = "cancelled"
	default:
		f.Kind = "remote_edit_error"
	}
	return f
}

// Notice is a non-fatal message that leaves the pipeline where it was.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var permissionMessages = map[domain.Permission]string{
	domain.PermissionPhotoLibrary: "Please grant camera roll permissions to upload photos.",
	domain.PermissionCamera:       "Please grant camera permissions to take photos.",
	domain.PermissionMediaLibrary: "Please grant media library permissions to save photos.",
}

// NoticeFor returns the notice for a refused permission or an unavailable
// camera, and nil for anything else.
func NoticeFor(err error) *Notice {
	var perr *domain.PermissionError
	switch {
	case errors.As(err, &perr):
		msg, ok := permissionMessages[perr.Permission]
		if !ok {
			msg = "Please grant the required permissions to continue."
		}
		return &Notice{Title: "Permission needed", Message: msg}
	case errors.Is(err, domain.ErrPermissionDenied):
		return &Notice{Title: "Permission needed", Message: "Please grant the required permissions to continue."}
	case errors.Is(err, photo.ErrCameraUnavailable):
		return &Notice{Title: "Camera not available", Message: "Camera is not available here. Please use the gallery option."}
	}
	return nil
}
