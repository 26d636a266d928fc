package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.MaxRedirects != router.DefaultMaxRedirects {
		t.Errorf("MaxRedirects = %d, want %d", cfg.MaxRedirects, router.DefaultMaxRedirects)
	}
	if cfg.Source.Kind != SourceDir {
		t.Errorf("Source.Kind = %q, want %q", cfg.Source.Kind, SourceDir)
	}
	if cfg.Source.Ext != DefaultExt {
		t.Errorf("Source.Ext = %q, want %q", cfg.Source.Ext, DefaultExt)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if !cfg.UseBuiltinRoutes() {
		t.Error("a default config should use the built-in routes")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TOMLFileName, `
name = "admin"
fallbackPath = "/dashboard"

[source]
dir = "views"

[server]
addr = "127.0.0.1:9000"

[log]
level = "debug"
format = "json"

[[routes]]
path = "/"
redirect = "/dashboard"

[[routes]]
path = "/"
view = "layouts/default"

  [[routes.children]]
  path = "dashboard"
  view = "pages/dashboard"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "admin" {
		t.Errorf("Name = %q, want admin", cfg.Name)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	// Defaults still apply to keys the file leaves out.
	if cfg.MaxRedirects != router.DefaultMaxRedirects || cfg.Source.Ext != DefaultExt {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Routes) != 2 || len(cfg.Routes[1].Children) != 1 {
		t.Fatalf("Routes = %+v", cfg.Routes)
	}
	if cfg.Routes[1].Children[0].View != "pages/dashboard" {
		t.Errorf("child view = %q", cfg.Routes[1].Children[0].View)
	}
	if got, want := cfg.SourceDirPath(), filepath.Join(dir, "views"); got != want {
		t.Errorf("SourceDirPath() = %q, want %q", got, want)
	}
	if cfg.Path() != filepath.Join(dir, TOMLFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, `{
  "maxRedirects": 3,
  "source": {"kind": "s3", "bucket": "views", "prefix": "app/", "region": "us-east-1"},
  "routes": [{"path": "/*rest", "view": "pages/error"}]
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxRedirects != 3 {
		t.Errorf("MaxRedirects = %d, want 3", cfg.MaxRedirects)
	}
	if cfg.Source.Kind != SourceS3 || cfg.Source.Bucket != "views" || cfg.Source.Prefix != "app/" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.UseBuiltinRoutes() {
		t.Error("routes were declared")
	}
}

func TestLoadPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, `{"name": "json"}`)
	writeFile(t, dir, TOMLFileName, `name = "toml"`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "toml" {
		t.Errorf("Name = %q, want toml", cfg.Name)
	}
}

func TestLoadEmptyRoutesTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TOMLFileName, "routes = []\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UseBuiltinRoutes() {
		t.Error("an explicit empty route list should not fall back to the built-in table")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantText string
	}{
		{
			name:     "invalid toml",
			file:     TOMLFileName,
			content:  "name = \n",
			wantCode: "R061",
		},
		{
			name:     "invalid json",
			file:     JSONFileName,
			content:  "{\n  \"name\": ,\n}",
			wantCode: "R061",
		},
		{
			name:     "unknown toml key",
			file:     TOMLFileName,
			content:  "nmae = \"typo\"\n",
			wantCode: "R062",
			wantText: "nmae",
		},
		{
			name:     "unknown json key",
			file:     JSONFileName,
			content:  `{"nmae": "typo"}`,
			wantCode: "R061",
		},
		{
			name:     "bad source kind",
			file:     TOMLFileName,
			content:  "[source]\nkind = \"ftp\"\n",
			wantCode: "R062",
			wantText: "source.kind",
		},
		{
			name:     "s3 without bucket",
			file:     TOMLFileName,
			content:  "[source]\nkind = \"s3\"\n",
			wantCode: "R062",
			wantText: "source.bucket",
		},
		{
			name:     "relative fallback",
			file:     JSONFileName,
			content:  `{"fallbackPath": "home"}`,
			wantCode: "R062",
			wantText: "fallbackPath",
		},
		{
			name:     "negative max redirects",
			file:     JSONFileName,
			content:  `{"maxRedirects": -1}`,
			wantCode: "R062",
			wantText: "maxRedirects",
		},
		{
			name:     "bad log level",
			file:     TOMLFileName,
			content:  "[log]\nlevel = \"loud\"\n",
			wantCode: "R062",
			wantText: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if code := errorCode(err); code != tt.wantCode {
				t.Errorf("code = %q, want %q (%v)", code, tt.wantCode, err)
			}
			var e *errors.Error
			if stderrors.As(err, &e) && tt.wantText != "" && !strings.Contains(e.Detail, tt.wantText) {
				t.Errorf("Detail = %q, want it to mention %q", e.Detail, tt.wantText)
			}
		})
	}
}

func TestLoadParseErrorLocation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, "{\n  \"name\": ,\n}")

	_, err := Load(dir)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("Load() error = %v, want *errors.Error", err)
	}
	if e.Location == nil || e.Location.Line != 2 {
		t.Errorf("Location = %v, want line 2", e.Location)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if code := errorCode(err); code != "R060" {
		t.Errorf("code = %q, want R060", code)
	}
}

func TestSaveTo(t *testing.T) {
	for _, name := range []string{TOMLFileName, JSONFileName} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Name = "saved"
			cfg.Routes = []router.Spec{
				{Path: "/", View: "layouts/default", Children: []router.Spec{{Path: "home", View: "pages/home"}}},
			}
			path := filepath.Join(t.TempDir(), name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Name != "saved" {
				t.Errorf("Name = %q, want saved", loaded.Name)
			}
			if len(loaded.Routes) != 1 || loaded.Routes[0].Children[0].View != "pages/home" {
				t.Errorf("Routes = %+v", loaded.Routes)
			}
		})
	}
}

func TestSaveToKeepsTableChoice(t *testing.T) {
	tests := []struct {
		name        string
		routes      []router.Spec
		wantBuiltin bool
	}{
		{name: "built-in", routes: nil, wantBuiltin: true},
		{name: "empty table", routes: []router.Spec{}, wantBuiltin: false},
	}

	for _, file := range []string{TOMLFileName, JSONFileName} {
		for _, tt := range tests {
			t.Run(file+"/"+tt.name, func(t *testing.T) {
				cfg := New()
				cfg.Routes = tt.routes
				path := filepath.Join(t.TempDir(), file)
				if err := cfg.SaveTo(path); err != nil {
					t.Fatalf("SaveTo() error = %v", err)
				}

				loaded, err := LoadFile(path)
				if err != nil {
					t.Fatalf("LoadFile() error = %v", err)
				}
				if got := loaded.UseBuiltinRoutes(); got != tt.wantBuiltin {
					t.Errorf("UseBuiltinRoutes() = %v, want %v", got, tt.wantBuiltin)
				}
				if len(loaded.Routes) != 0 {
					t.Errorf("Routes = %+v, want none", loaded.Routes)
				}
			})
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, TOMLFileName, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists() mismatch")
	}
}
