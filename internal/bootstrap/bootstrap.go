// Package bootstrap assembles the try-on pipeline from configuration. Both
// the API server and the CLI build their components here.
package bootstrap

import (
	"context"
	"fmt"

	"hairfluencer/internal/adapter/repo"
	"hairfluencer/internal/catalog"
	"hairfluencer/internal/domain"
	"hairfluencer/internal/imagegen"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/photo"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/present"
	"hairfluencer/internal/progress"
)

// Catalog returns the built-in templates, or a Postgres backed catalog that
// falls back to them when DATABASE_URL is set. The returned func releases
// the pool.
func Catalog(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (domain.HairstyleCatalog, func(), error) {
	builtin := catalog.Default()
	if cfg.DatabaseURL == "" {
		return builtin, func() {}, nil
	}

	pool, err := infra.NewDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: catalog: %w", err)
	}
	hairstyles := repo.NewHairstyleRepository(infra.NewSQLRunner(pool, logger))
	if err := hairstyles.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("bootstrap: catalog: %w", err)
	}
	existing, err := hairstyles.List(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("bootstrap: catalog: %w", err)
	}
	if len(existing) == 0 {
		if err := hairstyles.Seed(ctx, catalog.Templates); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("bootstrap: catalog: %w", err)
		}
		logger.Info().Int("count", len(catalog.Templates)).Msg("bootstrap: hairstyle table seeded")
	}
	return &catalog.Fallback{Primary: hairstyles, Secondary: builtin, Logger: logger}, pool.Close, nil
}

// Gate returns the stand-in permission gate, refusing PERMISSIONS_DENIED.
func Gate(cfg *infra.Config) *photo.StaticGate {
	denied := make([]domain.Permission, 0, len(cfg.DeniedPermissions))
	for _, p := range cfg.DeniedPermissions {
		denied = append(denied, photo.ParsePermissions(p)...)
	}
	return photo.NewStaticGate(denied...)
}

// Factory returns a coordinator factory sharing one encoder, edit client and
// reporter across sessions. Each coordinator gets its own store.
func Factory(cfg *infra.Config, logger *infra.Logger, observer pipeline.Observer) pipeline.Factory {
	loader := photo.NewLoader(photo.LoaderOptions{MaxBytes: cfg.PhotoMaxBytes, Logger: logger})
	encoder := imagegen.NewEncoder(imagegen.EncoderOptions{
		Opener:       loader,
		MaxDimension: cfg.PhotoMaxDimension,
		Logger:       logger,
	})
	client := imagegen.NewClient(imagegen.ClientOptions{
		Endpoint: cfg.EditEndpoint,
		Timeout:  cfg.EditTimeout,
		Logger:   logger,
	})
	reporter := progress.NewReporter(progress.Options{
		Checkpoints: progress.DefaultCheckpoints,
		Dwell:       cfg.ProgressDwell,
		FinalHold:   cfg.ProgressFinalHold,
	})
	return func(id string) (*pipeline.Coordinator, error) {
		return pipeline.NewCoordinator(pipeline.Options{
			ID:       id,
			Encoder:  encoder,
			Editor:   client,
			Reporter: reporter,
			Observer: observer,
			Logger:   logger,
		})
	}
}

// Presenter wires the exporter selected by EXPORT_TARGET and SHARE_TARGET.
func Presenter(cfg *infra.Config, gate domain.PermissionGate, logger *infra.Logger, observer present.ExportObserver) (*present.Presenter, error) {
	exporter, err := present.NewExporter(present.ExporterOptions{
		Target:      cfg.ExportTarget,
		ShareTarget: cfg.ShareTarget,
		Dir:         cfg.ExportDir,
		Gate:        gate,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return present.NewPresenter(present.Options{
		Exporter: exporter,
		Opener:   photo.NewLoader(photo.LoaderOptions{MaxBytes: cfg.PhotoMaxBytes, Logger: logger}),
		Observer: observer,
		Logger:   logger,
	}), nil
}
