package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/view"
)

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithLogOutput(io.Discard)}, opts...)
	a, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func chainViews(m *router.Match) []string {
	var ids []string
	for _, ref := range m.Views() {
		ids = append(ids, ref.ID)
	}
	return ids
}

func follow(t *testing.T, a *App, path string) *router.Match {
	t.Helper()
	res, err := a.Resolver.Follow(path)
	if err != nil {
		t.Fatalf("Follow(%q) error = %v", path, err)
	}
	m, ok := res.(*router.Match)
	if !ok {
		t.Fatalf("Follow(%q) = %T, want *router.Match", path, res)
	}
	return m
}

func TestBuiltinTable(t *testing.T) {
	a := newTestApp(t, nil)

	tests := []struct {
		path      string
		wantPath  string
		wantViews []string
		wantRest  string
	}{
		{"/", "/dashboard", []string{"layouts/default", "pages/dashboard"}, ""},
		{"/dashboard", "/dashboard", []string{"layouts/default", "pages/dashboard"}, ""},
		{"/item", "/item", []string{"layouts/default", "pages/items"}, ""},
		{"/transaksi", "/transaksi", []string{"layouts/default", "pages/transaksi"}, ""},
		{"/category-item", "/category-item", []string{"layouts/default", "pages/category-item"}, ""},
		{"/stock-item", "/stock-item", []string{"layouts/default", "pages/stock-item"}, ""},
		{"/typography", "/typography", []string{"layouts/default", "pages/typography"}, ""},
		{"/top-up", "/top-up", []string{"layouts/default", "pages/top-up"}, ""},
		{"/pelanggan", "/pelanggan", []string{"layouts/default", "pages/pelanggan"}, ""},
		{"/form-layouts", "/form-layouts", []string{"layouts/default", "pages/form-layouts"}, ""},
		{"/login", "/login", []string{"layouts/blank", "pages/login"}, ""},
		{"/register", "/register", []string{"layouts/blank", "pages/register"}, ""},
		{"/unknown/deeply/nested/path", "/unknown/deeply/nested/path", []string{"layouts/blank", "pages/[...error]"}, "unknown/deeply/nested/path"},
		{"/dashboard/extra", "/dashboard/extra", []string{"layouts/blank", "pages/[...error]"}, "dashboard/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := follow(t, a, tt.path)
			if m.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", m.Path, tt.wantPath)
			}
			if got := chainViews(m); !reflect.DeepEqual(got, tt.wantViews) {
				t.Errorf("views = %v, want %v", got, tt.wantViews)
			}
			if got := m.Params["pathMatch"]; got != tt.wantRest {
				t.Errorf("pathMatch = %q, want %q", got, tt.wantRest)
			}
		})
	}
}

func TestBuiltinMalformedPathsReachCatchAll(t *testing.T) {
	a := newTestApp(t, nil)

	for _, path := range []string{"/a%zz", "/..", "/x/../../y"} {
		t.Run(path, func(t *testing.T) {
			m := follow(t, a, path)
			want := []string{"layouts/blank", "pages/[...error]"}
			if got := chainViews(m); !reflect.DeepEqual(got, want) {
				t.Errorf("views = %v, want %v", got, want)
			}
			if m.PathErr == nil {
				t.Error("PathErr = nil, want the canonicalization error")
			}
		})
	}
}

func TestBuiltinRootRedirects(t *testing.T) {
	a := newTestApp(t, nil)

	res := a.Resolver.Resolve("/")
	r, ok := res.(*router.Redirect)
	if !ok {
		t.Fatalf("Resolve(/) = %T, want *router.Redirect", res)
	}
	if r.Target != "/dashboard" {
		t.Errorf("Target = %q, want /dashboard", r.Target)
	}
}

func TestBuiltinDeterministic(t *testing.T) {
	a := newTestApp(t, nil)
	want := chainViews(follow(t, a, "/pelanggan"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := a.Resolver.Follow("/pelanggan")
			if err != nil {
				t.Errorf("Follow() error = %v", err)
				return
			}
			if got := chainViews(res.(*router.Match)); !reflect.DeepEqual(got, want) {
				t.Errorf("views = %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestBuiltinHasNoLintWarnings(t *testing.T) {
	a := newTestApp(t, nil)
	if len(a.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", a.Warnings)
	}
}

type discardRenderer struct{}

func (discardRenderer) Mount(ctx context.Context, v *router.View) error { return nil }
func (discardRenderer) MountError(ctx context.Context, path string, err error) error {
	return nil
}

func TestBuiltinNavigate(t *testing.T) {
	a := newTestApp(t, nil)
	nav := a.NewNavigator(discardRenderer{})

	v, err := nav.Navigate(context.Background(), "/")
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if len(v.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(v.Layers))
	}
	mod, ok := v.Layers[1].Unit.(*view.Module)
	if !ok || mod.ID != "pages/dashboard" {
		t.Errorf("leaf unit = %#v", v.Layers[1].Unit)
	}
	if _, ok := a.Cache.Cached("layouts/default"); !ok {
		t.Error("layout should be cached after navigation")
	}
}

func TestNewWithDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "views", "pages"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "views", "pages", "home.html"), []byte("<h1>home</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.JSONFileName), []byte(`{
  "source": {"dir": "views"},
  "routes": [{"path": "/home", "view": "pages/home"}]
}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	a := newTestApp(t, cfg)

	m := follow(t, a, "/home")
	unit, err := a.Cache.Load(context.Background(), m.Views()[0])
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if mod := unit.(*view.Module); string(mod.Body) != "<h1>home</h1>" {
		t.Errorf("Body = %q", mod.Body)
	}
}

type fakeS3 struct{ keys []string }

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, aws.ToString(in.Key))
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("ok"))}, nil
}

func TestNewWithS3Source(t *testing.T) {
	cfg := config.New()
	cfg.Source = config.SourceConfig{Kind: config.SourceS3, Bucket: "views", Prefix: "app/", Ext: ".js"}
	client := &fakeS3{}
	a := newTestApp(t, cfg, WithS3Client(client))

	if _, ok := a.Source.(*view.S3Source); !ok {
		t.Fatalf("Source = %T, want *view.S3Source", a.Source)
	}
	m := follow(t, a, "/login")
	if _, err := a.Cache.Load(context.Background(), m.Views()[1]); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(client.keys, []string{"app/pages/login.js"}) {
		t.Errorf("keys = %v", client.keys)
	}
}

func TestNewRejectsInvalidTable(t *testing.T) {
	cfg := config.New()
	cfg.Routes = []router.Spec{
		{Path: "/", Redirect: "nowhere"},
	}
	_, err := New(cfg, WithLogOutput(io.Discard))
	var te *router.TableError
	if !errors.As(err, &te) {
		t.Fatalf("New() error = %v, want *router.TableError", err)
	}
}

func TestNewLogsLintWarnings(t *testing.T) {
	cfg := config.New()
	cfg.Source.Dir = t.TempDir()
	cfg.Routes = []router.Spec{
		{Path: "/*rest", View: "pages/error"},
		{Path: "/login", View: "pages/login"},
	}
	var buf bytes.Buffer
	a := newTestApp(t, cfg, WithLogOutput(&buf))

	if len(a.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", a.Warnings)
	}
	if !strings.Contains(buf.String(), "unreachable route") {
		t.Errorf("log = %q, want an unreachable route warning", buf.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("json output = %q", out)
	}

	if _, err := NewLogger(config.LogConfig{Level: "info", Format: "xml"}, io.Discard); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := NewLogger(config.LogConfig{Level: "loud"}, io.Discard); err == nil {
		t.Error("unknown level should fail")
	}
}
