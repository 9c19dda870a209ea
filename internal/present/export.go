package present

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/storage"
)

// Album is the folder exported photos are collected in.
const Album = "hairstyle-try-on"

const (
	SavedMessage      = "Image saved to your gallery!"
	DownloadMessage   = "Image downloaded successfully!"
	SaveFailedMessage = "Failed to save image. Please try again."
	ShareUnsupported  = "Sharing is not supported on this browser"
)

// Sharer hands an image to the platform share surface.
type Sharer interface {
	Share(ctx context.Context, s domain.Share) error
}

// LogShare records share intents in the log. It stands in for a native
// share sheet.
type LogShare struct {
	Logger *infra.Logger
}

func (l LogShare) Share(ctx context.Context, s domain.Share) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	logger.Info().Str("title", s.Title).Str("text", s.Text).Int("image_len", len(s.Image)).Msg("present: share requested")
	return nil
}

// UnsupportedShare is used where the platform offers no share surface.
type UnsupportedShare struct{}

func (UnsupportedShare) Share(context.Context, domain.Share) error {
	return domain.ErrShareUnsupported
}

// FileExporter saves into the album directory of a FileStore once the media
// library permission is granted. Existing files are never replaced.
type FileExporter struct {
	Store  *storage.FileStore
	Gate   domain.PermissionGate
	Sharer Sharer
	Logger *infra.Logger
}

func (e *FileExporter) Save(ctx context.Context, ex domain.Export) (domain.Receipt, error) {
	if e.Store == nil {
		return domain.Receipt{}, errors.New("present: file exporter has no store")
	}
	if e.Gate != nil {
		if err := e.Gate.Request(ctx, domain.PermissionMediaLibrary); err != nil {
			return domain.Receipt{}, err
		}
	}
	key, err := e.Store.Create(ctx, path.Join(Album, ex.Filename), ex.Data)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("present: save %s: %w", ex.Filename, err)
	}
	location, _ := e.Store.Path(key)
	if e.Logger != nil {
		e.Logger.Info().Str("location", location).Int("bytes", len(ex.Data)).Msg("present: result saved")
	}
	return domain.Receipt{
		Location: location,
		Filename: path.Base(key),
		MIMEType: ex.MIMEType,
		Bytes:    len(ex.Data),
		Message:  SavedMessage,
	}, nil
}

func (e *FileExporter) Share(ctx context.Context, s domain.Share) error {
	return shareWith(ctx, e.Sharer, s)
}

// DownloadExporter writes nothing; the receipt carries the bytes for the
// caller to stream back as an attachment.
type DownloadExporter struct {
	Sharer Sharer
}

func (e *DownloadExporter) Save(ctx context.Context, ex domain.Export) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{
		Filename: ex.Filename,
		MIMEType: ex.MIMEType,
		Bytes:    len(ex.Data),
		Message:  DownloadMessage,
		Data:     ex.Data,
	}, nil
}

func (e *DownloadExporter) Share(ctx context.Context, s domain.Share) error {
	return shareWith(ctx, e.Sharer, s)
}

func shareWith(ctx context.Context, s Sharer, sh domain.Share) error {
	if s == nil {
		return domain.ErrShareUnsupported
	}
	return s.Share(ctx, sh)
}

// ExporterOptions selects and wires a PhotoExporter.
type ExporterOptions struct {
	Target      string
	ShareTarget string
	Dir         string
	Gate        domain.PermissionGate
	Logger      *infra.Logger
}

// NewExporter builds the exporter named by opts.Target.
func NewExporter(opts ExporterOptions) (domain.PhotoExporter, error) {
	var sharer Sharer
	switch strings.ToLower(opts.ShareTarget) {
	case infra.ShareTargetLog, "":
		sharer = LogShare{Logger: opts.Logger}
	case infra.ShareTargetUnsupported:
		sharer = UnsupportedShare{}
	default:
		return nil, fmt.Errorf("present: unknown share target %q", opts.ShareTarget)
	}

	switch strings.ToLower(opts.Target) {
	case infra.ExportTargetFilesystem, "":
		store, err := storage.NewFileStore(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("present: %w", err)
		}
		return &FileExporter{Store: store, Gate: opts.Gate, Sharer: sharer, Logger: opts.Logger}, nil
	case infra.ExportTargetDownload:
		return &DownloadExporter{Sharer: sharer}, nil
	default:
		return nil, fmt.Errorf("present: unknown export target %q", opts.Target)
	}
}

var (
	_ domain.PhotoExporter = (*FileExporter)(nil)
	_ domain.PhotoExporter = (*DownloadExporter)(nil)
)
