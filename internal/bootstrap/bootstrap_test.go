package bootstrap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfluencer/internal/catalog"
	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/pipeline"
)

func testConfig(t *testing.T) *infra.Config {
	t.Helper()
	return &infra.Config{
		AppEnv:        "test",
		EditEndpoint:  "http://127.0.0.1:1/",
		EditTimeout:   5 * time.Second,
		PhotoMaxBytes: 1 << 20,
		ExportTarget:  infra.ExportTargetFilesystem,
		ExportDir:     t.TempDir(),
		ShareTarget:   infra.ShareTargetLog,
	}
}

func TestCatalogWithoutDatabaseUsesTemplates(t *testing.T) {
	cat, closeFn, err := Catalog(context.Background(), testConfig(t), infra.NopLogger())
	require.NoError(t, err)
	defer closeFn()

	items, err := cat.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Templates, items)
}

func TestGateRefusesConfiguredPermissions(t *testing.T) {
	cfg := testConfig(t)
	cfg.DeniedPermissions = []string{"Camera", " media_library "}
	gate := Gate(cfg)

	ctx := context.Background()
	assert.ErrorIs(t, gate.Request(ctx, domain.PermissionCamera), domain.ErrPermissionDenied)
	assert.ErrorIs(t, gate.Request(ctx, domain.PermissionMediaLibrary), domain.ErrPermissionDenied)
	assert.NoError(t, gate.Request(ctx, domain.PermissionPhotoLibrary))
}

func TestPresenterRejectsUnknownTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExportTarget = "cloud"
	_, err := Presenter(cfg, nil, infra.NopLogger(), nil)
	assert.Error(t, err)
}

func TestFactoryRunsAgainstConfiguredEndpoint(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("edited"))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"image": map[string]string{"mimeType": "image/jpeg", "base64Data": payload},
		})
	}))
	defer ts.Close()

	cfg := testConfig(t)
	cfg.EditEndpoint = ts.URL
	c, err := Factory(cfg, infra.NopLogger(), nil)("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", c.ID())

	require.NoError(t, c.Select(catalog.Templates[2]))
	require.NoError(t, c.SupplyPhoto(domain.PhotoRef("data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("source")))))
	ref, err := c.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PhotoRef("data:image/jpeg;base64,"+payload), ref)
	assert.Equal(t, pipeline.StateDone, c.State())

	p, err := Presenter(cfg, Gate(cfg), infra.NopLogger(), nil)
	require.NoError(t, err)
	rec, err := p.Save(context.Background(), c.Snapshot())
	require.NoError(t, err)
	assert.FileExists(t, rec.Location)
	assert.Equal(t, "Image saved to your gallery!", rec.Message)
}
