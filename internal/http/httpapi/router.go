package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"hairfluencer/internal/http/handlers"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/metrics"
	"hairfluencer/internal/middleware"
)

// RouterOptions carries the cross-cutting settings of the API.
type RouterOptions struct {
	Metrics         *metrics.Metrics
	AllowedOrigins  []string
	RateLimitPerMin int
	// TrustProxy lets X-Forwarded-For and X-Real-IP replace the peer address.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy bool
	// Countries tags access log lines with the client country when set.
	Countries middleware.CountryResolver
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	logger := app.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		chimw.Recoverer,
		middleware.Country(opts.Countries),
		middleware.Logger(logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/v1/hairstyles", func(r chi.Router) {
		r.Get("/", app.ListHairstyles)
		r.Get("/{id}", app.GetHairstyle)
	})

	limit := middleware.RateLimit(middleware.RateLimitOptions{
		PerMinute: opts.RateLimitPerMin,
		OnLimited: func(*http.Request) {
			if opts.Metrics != nil {
				opts.Metrics.Limited()
			}
		},
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Delete("/", app.DeleteSession)
			r.Put("/selection", app.SelectHairstyle)
			r.Put("/photo", app.SupplyPhoto)
			r.With(limit).Post("/process", app.StartProcess)
			r.Delete("/process", app.CancelProcess)
			r.Get("/progress", app.Progress)
			r.Get("/progress/ws", app.ProgressWS)
			r.Get("/result", app.Result)
			r.Get("/result/image", app.ResultImage)
			r.Get("/result/bundle", app.ResultBundle)
			r.Post("/save", app.Save)
			r.Post("/share", app.Share)
			r.Post("/reset", app.ResetSession)
		})
	})

	return r
}
