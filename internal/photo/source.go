package photo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"hairfluencer/internal/domain"
)

// StaticGate grants every permission except the ones listed as denied. It
// stands in for the platform permission dialog.
type StaticGate struct {
	mu     sync.RWMutex
	denied map[domain.Permission]struct{}
}

// NewStaticGate builds a gate that refuses the given permissions.
func NewStaticGate(denied ...domain.Permission) *StaticGate {
	g := &StaticGate{denied: make(map[domain.Permission]struct{}, len(denied))}
	for _, p := range denied {
		g.denied[p] = struct{}{}
	}
	return g
}

// ParsePermissions turns a comma separated list into permissions.
func ParsePermissions(list string) []domain.Permission {
	var out []domain.Permission
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, domain.Permission(part))
	}
	return out
}

// Request implements domain.PermissionGate.
func (g *StaticGate) Request(ctx context.Context, p domain.Permission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.denied[p]; ok {
		return &domain.PermissionError{Permission: p}
	}
	return nil
}

// Deny revokes a permission.
func (g *StaticGate) Deny(p domain.Permission) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.denied[p] = struct{}{}
}

// Grant restores a permission.
func (g *StaticGate) Grant(p domain.Permission) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.denied, p)
}

// GallerySource hands out an existing photo after the photo library
// permission has been granted.
type GallerySource struct {
	Ref  domain.PhotoRef
	Gate domain.PermissionGate
}

// Acquire implements domain.PhotoSource.
func (s GallerySource) Acquire(ctx context.Context) (domain.PhotoRef, error) {
	if s.Gate != nil {
		if err := s.Gate.Request(ctx, domain.PermissionPhotoLibrary); err != nil {
			return "", err
		}
	}
	if s.Ref.IsZero() {
		return "", domain.ErrMissingSourcePhoto
	}
	raw := s.Ref.String()
	if !IsDataURI(raw) && !strings.Contains(raw, "://") {
		if _, err := os.Stat(raw); err != nil {
			return "", fmt.Errorf("photo: gallery item: %w", err)
		}
	}
	return s.Ref, nil
}

// CameraSource models a capture device. Unavailable mirrors platforms
// without a camera, such as the web.
type CameraSource struct {
	Capture     func(ctx context.Context) (domain.PhotoRef, error)
	Gate        domain.PermissionGate
	Unavailable bool
}

// ErrCameraUnavailable is returned when the platform has no camera.
var ErrCameraUnavailable = errors.New("photo: camera not available")

// Acquire implements domain.PhotoSource.
func (s CameraSource) Acquire(ctx context.Context) (domain.PhotoRef, error) {
	if s.Unavailable || s.Capture == nil {
		return "", ErrCameraUnavailable
	}
	if s.Gate != nil {
		if err := s.Gate.Request(ctx, domain.PermissionCamera); err != nil {
			return "", err
		}
	}
	return s.Capture(ctx)
}

var (
	_ domain.PermissionGate = (*StaticGate)(nil)
	_ domain.PhotoSource    = GallerySource{}
	_ domain.PhotoSource    = CameraSource{}
)
