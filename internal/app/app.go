package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/pkg/loader"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/telemetry"
	"github.com/vango-dev/vroute/pkg/view"
)

// App holds the components built from a Config.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *telemetry.Metrics
	Source   view.Source
	Table    *router.Table
	Resolver *router.Resolver
	Cache    *loader.Cache

	// Warnings are the lint findings for Table.
	Warnings []router.Warning
}

type options struct {
	logOutput io.Writer
	s3Client  view.S3API
}

// Option configures New.
type Option func(*options)

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithS3Client uses client for an "s3" view source instead of building one
// from the configuration.
func WithS3Client(client view.S3API) Option {
	return func(o *options) {
		o.s3Client = client
	}
}

// New builds an App. A nil cfg means the defaults with the built-in routes.
// Route table problems are returned as *router.TableError.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	o := options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := NewLogger(cfg.Log, o.logOutput)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(
		telemetry.WithNamespace(cfg.Metrics.Namespace),
		telemetry.WithRegistry(reg),
	)

	specs := cfg.Routes
	if cfg.UseBuiltinRoutes() {
		specs = BuiltinRoutes()
	}
	src, err := newSource(cfg, specs, o.s3Client)
	if err != nil {
		return nil, err
	}

	table, err := router.Build(specs, src)
	if err != nil {
		return nil, err
	}
	warnings := table.Lint()
	for _, w := range warnings {
		logger.Warn("unreachable route", "path", w.Path, "reason", w.Message)
	}

	tracer := telemetry.Tracer(telemetry.DefaultTracerName)
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics,
		Source:   src,
		Table:    table,
		Resolver: router.NewResolver(table,
			router.WithMaxRedirects(cfg.MaxRedirects),
			router.WithResolverMetrics(metrics),
		),
		Cache: loader.New(
			loader.WithLogger(logger.With("component", "loader")),
			loader.WithMetrics(metrics),
			loader.WithTracer(tracer),
		),
		Warnings: warnings,
	}
	logger.Debug("app ready", "routes", len(specs), "views", len(table.Views()), "source", cfg.Source.Kind)
	return a, nil
}

// NewNavigator creates a Navigator that shares the app's resolver and cache.
func (a *App) NewNavigator(r router.Renderer) *router.Navigator {
	opts := []router.NavigatorOption{
		router.WithNavigatorLogger(a.Logger.With("component", "navigator")),
		router.WithNavigatorMetrics(a.Metrics),
		router.WithNavigatorTracer(telemetry.Tracer(telemetry.DefaultTracerName)),
	}
	if a.Config.FallbackPath != "" {
		opts = append(opts, router.WithFallback(a.Config.FallbackPath))
	}
	return router.NewNavigator(a.Resolver, a.Cache, r, opts...)
}

// NewLogger builds the process logger.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(h), nil
}

func newSource(cfg *config.Config, specs []router.Spec, client view.S3API) (view.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceS3:
		if client == nil {
			client = newS3Client(cfg.Source)
		}
		return view.NewS3Source(client, cfg.Source.Bucket, cfg.Source.Prefix, cfg.Source.Ext), nil
	case config.SourceDir, "":
		dir := cfg.SourceDirPath()
		if dir == "" {
			if cfg.UseBuiltinRoutes() {
				return BuiltinSource(specs), nil
			}
			dir = "."
			if cfg.Dir() != "" {
				dir = cfg.Dir()
			}
		}
		return view.NewDirSource(os.DirFS(dir), cfg.Source.Ext), nil
	default:
		return nil, fmt.Errorf("unknown view source kind %q", cfg.Source.Kind)
	}
}

// newS3Client builds an S3 client from the source config. Credentials come
// from the standard AWS environment variables; without them requests are
// anonymous, which suits public buckets.
func newS3Client(sc config.SourceConfig) *s3.Client {
	opts := s3.Options{
		Region:       sc.Region,
		UsePathStyle: sc.PathStyle,
	}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(sc.Endpoint)
	}
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" {
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}
