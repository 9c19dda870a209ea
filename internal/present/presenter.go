package present

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/photo"
	"hairfluencer/pkg/zip"
)

const ShareTitle = "My New Hairstyle"

// ShareText is the message attached to a shared result.
func ShareText(styleName string) string {
	return fmt.Sprintf("Check out my new %s hairstyle!", styleName)
}

// ErrNoResult is returned when there is nothing to save or share yet.
var ErrNoResult = errors.New("present: no result to export")

// PhotoOpener resolves a photo reference into its bytes.
type PhotoOpener interface {
	Open(ctx context.Context, ref domain.PhotoRef) (io.ReadCloser, error)
}

// ExportObserver is told about every save, share and bundle attempt.
type ExportObserver interface {
	ExportFinished(kind, outcome string)
}

// Options configures a Presenter.
type Options struct {
	Exporter domain.PhotoExporter
	Opener   PhotoOpener
	Observer ExportObserver
	Logger   *infra.Logger
	Now      func() time.Time
}

// Presenter turns a finished session into exports.
type Presenter struct {
	exporter domain.PhotoExporter
	opener   PhotoOpener
	observer ExportObserver
	logger   *infra.Logger
	now      func() time.Time
}

func NewPresenter(opts Options) *Presenter {
	p := &Presenter{
		exporter: opts.Exporter,
		opener:   opts.Opener,
		observer: opts.Observer,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if p.logger == nil {
		p.logger = infra.NopLogger()
	}
	if p.opener == nil {
		p.opener = photo.NewLoader(photo.LoaderOptions{Logger: p.logger})
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.exporter == nil {
		p.exporter = &DownloadExporter{}
	}
	return p
}

// Render is a convenience wrapper around the package level Render.
func (p *Presenter) Render(state domain.SessionState, mode Mode) View {
	return Render(state, mode)
}

// Save exports the result photo.
func (p *Presenter) Save(ctx context.Context, state domain.SessionState) (rec domain.Receipt, err error) {
	defer func() { p.observe("save", err) }()

	data, mimeType, err := p.read(ctx, state.ResultPhoto)
	if err != nil {
		return domain.Receipt{}, err
	}
	name := styleName(state)
	rec, err = p.exporter.Save(ctx, domain.Export{
		Image:     state.ResultPhoto,
		Data:      data,
		MIMEType:  mimeType,
		Filename:  Filename(name, mimeType, p.now()),
		StyleName: name,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("present: save failed")
		return domain.Receipt{}, err
	}
	return rec, nil
}

// Share hands the result photo to the share surface.
func (p *Presenter) Share(ctx context.Context, state domain.SessionState) (err error) {
	defer func() { p.observe("share", err) }()

	if state.ResultPhoto.IsZero() {
		return ErrNoResult
	}
	return p.exporter.Share(ctx, domain.Share{
		Image: state.ResultPhoto,
		Title: ShareTitle,
		Text:  ShareText(styleName(state)),
	})
}

// Image returns the decoded result photo.
func (p *Presenter) Image(ctx context.Context, state domain.SessionState) ([]byte, string, error) {
	return p.read(ctx, state.ResultPhoto)
}

// Bundle zips the before and after photos for a comparison download.
func (p *Presenter) Bundle(ctx context.Context, state domain.SessionState) (archive []byte, filename string, err error) {
	defer func() { p.observe("bundle", err) }()

	if state.SourcePhoto.IsZero() {
		return nil, "", ErrNoResult
	}
	after, afterMIME, err := p.read(ctx, state.ResultPhoto)
	if err != nil {
		return nil, "", err
	}
	before, beforeMIME, err := p.read(ctx, state.SourcePhoto)
	if err != nil {
		return nil, "", err
	}
	now := p.now()
	archive, err = zip.Archive([]zip.Entry{
		{Filename: "before." + Extension(beforeMIME), MIME: beforeMIME, Data: before},
		{Filename: "after." + Extension(afterMIME), MIME: afterMIME, Data: after},
	}, now)
	if err != nil {
		return nil, "", fmt.Errorf("present: bundle: %w", err)
	}
	return archive, strings.TrimSuffix(Filename(styleName(state), "", now), ".jpg") + ".zip", nil
}

func (p *Presenter) read(ctx context.Context, ref domain.PhotoRef) ([]byte, string, error) {
	if ref.IsZero() {
		return nil, "", ErrNoResult
	}
	if photo.IsDataURI(ref.String()) {
		mimeType, data, err := photo.ParseDataURI(ref.String())
		if err != nil {
			return nil, "", fmt.Errorf("present: decode photo: %w", err)
		}
		return data, mimeType, nil
	}
	rc, err := p.opener.Open(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("present: open photo: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("present: read photo: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func (p *Presenter) observe(kind string, err error) {
	if p.observer == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPermissionDenied):
		outcome = "denied"
	case errors.Is(err, domain.ErrShareUnsupported):
		outcome = "unsupported"
	default:
		outcome = "error"
	}
	p.observer.ExportFinished(kind, outcome)
}

func styleName(state domain.SessionState) string {
	if state.SelectedHairstyle == nil {
		return ""
	}
	return state.SelectedHairstyle.Name
}
