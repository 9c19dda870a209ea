package present

import (
	stdzip "archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/photo"
	"hairfluencer/internal/storage"
)

var bob = &domain.Hairstyle{ID: "2", Name: "Bob Cut", Description: "Classic bob hairstyle"}

func dataRef(mime string, raw []byte) domain.PhotoRef {
	return domain.PhotoRef(photo.DataURI(mime, base64.StdEncoding.EncodeToString(raw)))
}

func finishedState() domain.SessionState {
	return domain.SessionState{
		SelectedHairstyle: bob,
		SourcePhoto:       dataRef("image/png", []byte("before-bytes")),
		ResultPhoto:       dataRef("image/jpeg", []byte("after-bytes")),
	}
}

func TestRender_EmptyWithoutPhotos(t *testing.T) {
	cases := []domain.SessionState{
		{},
		{SelectedHairstyle: bob, SourcePhoto: "a.jpg"},
		{SelectedHairstyle: bob, ResultPhoto: "data:image/png;base64,QUJD"},
	}
	for _, st := range cases {
		v := Render(st, ModeComparison)
		assert.True(t, v.Empty)
		assert.Equal(t, "No results to display", v.Message)
		assert.Equal(t, []Action{ActionHome}, v.Actions)
	}
}

func TestRender_ResultAndComparison(t *testing.T) {
	st := finishedState()

	v := Render(st, ModeResult)
	assert.False(t, v.Empty)
	assert.Equal(t, "Your New Look!", v.Title)
	assert.Equal(t, "Here's how you look with Bob Cut", v.Subtitle)
	assert.Equal(t, st.ResultPhoto, v.After)
	assert.True(t, v.Before.IsZero())
	assert.Equal(t, []Action{ActionSave, ActionShare, ActionTryAgain, ActionHome}, v.Actions)

	c := Render(st, ModeComparison)
	assert.Equal(t, ModeComparison, c.Mode)
	assert.Equal(t, st.SourcePhoto, c.Before)
	assert.Equal(t, st.ResultPhoto, c.After)

	assert.Equal(t, ModeResult, Render(st, "bogus").Mode)
}

func TestSlugAndFilename(t *testing.T) {
	assert.Equal(t, "bob-cut", Slug("Bob Cut"))
	assert.Equal(t, "elegant-updo", Slug("  Élégant   UPDO!! "))
	assert.Equal(t, "", Slug("***"))

	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "hairstyle-bob-cut-1700000000123.jpg", Filename("Bob Cut", "image/jpeg", at))
	assert.Equal(t, "hairstyle-1700000000123.png", Filename("", "image/png", at))
}

type exportCounter struct{ got []string }

func (c *exportCounter) ExportFinished(kind, outcome string) {
	c.got = append(c.got, kind+":"+outcome)
}

func TestPresenter_SaveToFilesystem(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	gate := photo.NewStaticGate()
	obs := &exportCounter{}
	p := NewPresenter(Options{
		Exporter: &FileExporter{Store: store, Gate: gate},
		Observer: obs,
		Now:      func() time.Time { return time.UnixMilli(42) },
	})

	rec, err := p.Save(context.Background(), finishedState())
	require.NoError(t, err)
	assert.Equal(t, "hairstyle-bob-cut-42.jpg", rec.Filename)
	assert.Equal(t, "image/jpeg", rec.MIMEType)
	assert.Equal(t, SavedMessage, rec.Message)

	data, err := os.ReadFile(filepath.Join(dir, Album, rec.Filename))
	require.NoError(t, err)
	assert.Equal(t, "after-bytes", string(data))

	second, err := p.Save(context.Background(), finishedState())
	require.NoError(t, err)
	assert.NotEqual(t, rec.Filename, second.Filename)

	gate.Deny(domain.PermissionMediaLibrary)
	_, err = p.Save(context.Background(), finishedState())
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	assert.Equal(t, []string{"save:success", "save:success", "save:denied"}, obs.got)
}

func TestPresenter_SaveAsDownload(t *testing.T) {
	p := NewPresenter(Options{Exporter: &DownloadExporter{}})
	rec, err := p.Save(context.Background(), finishedState())
	require.NoError(t, err)
	assert.Equal(t, []byte("after-bytes"), rec.Data)
	assert.Equal(t, DownloadMessage, rec.Message)
	assert.True(t, strings.HasPrefix(rec.Filename, "hairstyle-bob-cut-"))
}

func TestPresenter_SaveWithoutResult(t *testing.T) {
	p := NewPresenter(Options{})
	_, err := p.Save(context.Background(), domain.SessionState{SelectedHairstyle: bob})
	assert.ErrorIs(t, err, ErrNoResult)
}

type shareRecorder struct{ got []domain.Share }

func (r *shareRecorder) Share(_ context.Context, s domain.Share) error {
	r.got = append(r.got, s)
	return nil
}

func TestPresenter_Share(t *testing.T) {
	rec := &shareRecorder{}
	p := NewPresenter(Options{Exporter: &DownloadExporter{Sharer: rec}})

	require.NoError(t, p.Share(context.Background(), finishedState()))
	require.Len(t, rec.got, 1)
	assert.Equal(t, "My New Hairstyle", rec.got[0].Title)
	assert.Equal(t, "Check out my new Bob Cut hairstyle!", rec.got[0].Text)

	unsupported := NewPresenter(Options{Exporter: &DownloadExporter{Sharer: UnsupportedShare{}}})
	assert.ErrorIs(t, unsupported.Share(context.Background(), finishedState()), domain.ErrShareUnsupported)
}

func TestPresenter_Bundle(t *testing.T) {
	p := NewPresenter(Options{Now: func() time.Time { return time.UnixMilli(7) }})
	archive, name, err := p.Bundle(context.Background(), finishedState())
	require.NoError(t, err)
	assert.Equal(t, "hairstyle-bob-cut-7.zip", name)

	zr, err := stdzip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"before.png", "after.jpg"}, names)
}

func TestPresenter_BundleReadsFileSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o644))
	st := finishedState()
	st.SourcePhoto = domain.PhotoRef(path)

	_, _, err := NewPresenter(Options{}).Bundle(context.Background(), st)
	require.NoError(t, err)
}

func TestNewExporter(t *testing.T) {
	e, err := NewExporter(ExporterOptions{Target: "filesystem", ShareTarget: "log", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileExporter{}, e)

	e, err = NewExporter(ExporterOptions{Target: "download", ShareTarget: "unsupported"})
	require.NoError(t, err)
	assert.IsType(t, &DownloadExporter{}, e)
	assert.ErrorIs(t, e.Share(context.Background(), domain.Share{}), domain.ErrShareUnsupported)

	_, err = NewExporter(ExporterOptions{Target: "s3"})
	assert.Error(t, err)
	_, err = NewExporter(ExporterOptions{Target: "download", ShareTarget: "airdrop"})
	assert.Error(t, err)
}
