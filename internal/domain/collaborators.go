package domain

import "context"

// Permission names a platform capability the user has to grant.
type Permission string

const (
	PermissionCamera       Permission = "camera"
	PermissionPhotoLibrary Permission = "photo_library"
	PermissionMediaLibrary Permission = "media_library"
)

// PermissionGate asks the platform for a capability. A refusal is reported as
// ErrPermissionDenied.
type PermissionGate interface {
	Request(ctx context.Context, p Permission) error
}

// PhotoSource supplies a photo reference from a camera or gallery.
type PhotoSource interface {
	Acquire(ctx context.Context) (PhotoRef, error)
}

// Export is a finished image handed to a PhotoExporter.
type Export struct {
	Image     PhotoRef
	Data      []byte
	MIMEType  string
	Filename  string
	StyleName string
}

// Receipt describes where an exported image ended up.
type Receipt struct {
	Location string `json:"location,omitempty"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Bytes    int    `json:"bytes"`
	Message  string `json:"message,omitempty"`
	Data     []byte `json:"-"`
}

// Share is a request to hand an image to the platform share surface.
type Share struct {
	Image PhotoRef
	Title string
	Text  string
}

// PhotoExporter saves or shares a final image. Implementations are chosen at
// startup for the target platform.
type PhotoExporter interface {
	Save(ctx context.Context, e Export) (Receipt, error)
	Share(ctx context.Context, s Share) error
}

// PermissionError reports which permission was refused. It matches
// ErrPermissionDenied under errors.Is.
type PermissionError struct {
	Permission Permission
}

func (e *PermissionError) Error() string {
	return "permission denied: " + string(e.Permission)
}

// Is lets errors.Is(err, ErrPermissionDenied) succeed.
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}
