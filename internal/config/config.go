package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "vroute.json"

	// TOMLFileName is the TOML configuration file name.
	TOMLFileName = "vroute.toml"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultExt is the default view file extension.
	DefaultExt = ".html"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vroute"
)

// Source kinds.
const (
	SourceDir = "dir"
	SourceS3  = "s3"
)

// Config is the complete project configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" toml:"name"`

	// MaxRedirects bounds redirect chains (default: router.DefaultMaxRedirects).
	MaxRedirects int `json:"maxRedirects,omitempty" toml:"maxRedirects"`

	// FallbackPath is navigated to when a redirect loop is detected.
	FallbackPath string `json:"fallbackPath,omitempty" toml:"fallbackPath"`

	// Source says where views are loaded from.
	Source SourceConfig `json:"source,omitempty" toml:"source"`

	// Server configures the HTTP server.
	Server ServerConfig `json:"server,omitempty" toml:"server"`

	// Log configures the process logger.
	Log LogConfig `json:"log,omitempty" toml:"log"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics,omitempty" toml:"metrics"`

	// Routes is the route table. Nil means the built-in table; an empty,
	// non-nil slice is an empty table and survives SaveTo.
	Routes []router.Spec `json:"routes" toml:"routes"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SourceConfig selects the view source.
type SourceConfig struct {
	// Kind is "dir" or "s3".
	Kind string `json:"kind,omitempty" toml:"kind"`

	// Dir is the view directory for kind "dir", relative to the config file.
	Dir string `json:"dir,omitempty" toml:"dir"`

	// Ext is appended to view ids to form file names or object keys.
	Ext string `json:"ext,omitempty" toml:"ext"`

	// Bucket is the S3 bucket for kind "s3".
	Bucket string `json:"bucket,omitempty" toml:"bucket"`

	// Prefix is prepended to object keys.
	Prefix string `json:"prefix,omitempty" toml:"prefix"`

	// Region is the S3 region.
	Region string `json:"region,omitempty" toml:"region"`

	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint"`

	// PathStyle forces path-style bucket addressing.
	PathStyle bool `json:"pathStyle,omitempty" toml:"pathStyle"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" toml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format"`
}

// MetricsConfig configures metrics.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" toml:"namespace"`
}

// New creates a Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from dir, preferring vroute.toml over vroute.json.
func Load(dir string) (*Config, error) {
	for _, name := range []string{TOMLFileName, JSONFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("R060").
		WithDetail("No " + TOMLFileName + " or " + JSONFileName + " found in " + dir).
		WithSuggestion("Create " + TOMLFileName + " or run without --config to use the built-in routes")
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R060").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("R061").Wrap(err)
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = decodeTOML(path, data)
	} else {
		cfg, err = decodeJSON(path, data)
	}
	if err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(path string, data []byte) (*Config, error) {
	cfg := &Config{}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		e := errors.New("R061").Wrap(err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid TOML")
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			e.WithLocation(path, perr.Position.Line, perr.Position.Col)
		}
		return nil, e
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New("R062").
			WithDetail("Unknown configuration keys: " + strings.Join(keys, ", "))
	}
	if meta.IsDefined("routes") && cfg.Routes == nil {
		cfg.Routes = []router.Spec{}
	}
	return cfg, nil
}

func decodeJSON(path string, data []byte) (*Config, error) {
	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		e := errors.New("R061").Wrap(err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		var serr *json.SyntaxError
		if stderrors.As(err, &serr) {
			line, col := position(data, serr.Offset)
			e.WithLocation(path, line, col)
		}
		return nil, e
	}
	return cfg, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// SaveTo writes the configuration as JSON or TOML, following the extension.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("R061").Wrap(err)
		}
	} else {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("R061").Wrap(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.New("R080").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.MaxRedirects == 0 {
		c.MaxRedirects = router.DefaultMaxRedirects
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceDir
	}
	if c.Source.Ext == "" {
		c.Source.Ext = DefaultExt
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks value ranges and consistency.
func (c *Config) Validate() error {
	var problems []string
	if c.MaxRedirects < 1 {
		problems = append(problems, "maxRedirects must be at least 1, got "+strconv.Itoa(c.MaxRedirects))
	}
	if c.FallbackPath != "" && !strings.HasPrefix(c.FallbackPath, "/") {
		problems = append(problems, "fallbackPath must be absolute, got "+strconv.Quote(c.FallbackPath))
	}
	switch c.Source.Kind {
	case SourceDir:
	case SourceS3:
		if c.Source.Bucket == "" {
			problems = append(problems, "source.bucket is required for kind \"s3\"")
		}
	default:
		problems = append(problems, "source.kind must be \"dir\" or \"s3\", got "+strconv.Quote(c.Source.Kind))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "log.level must be debug, info, warn or error, got "+strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, "log.format must be text or json, got "+strconv.Quote(c.Log.Format))
	}

	if len(problems) > 0 {
		return errors.New("R062").WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// UseBuiltinRoutes reports whether the config declares no route table.
func (c *Config) UseBuiltinRoutes() bool {
	return c.Routes == nil
}

// SourceDirPath returns the view directory resolved against the config file.
func (c *Config) SourceDirPath() string {
	if c.Source.Dir == "" || filepath.IsAbs(c.Source.Dir) || c.configPath == "" {
		return c.Source.Dir
	}
	return filepath.Join(c.Dir(), c.Source.Dir)
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	for _, name := range []string{TOMLFileName, JSONFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir to the first directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R060").
				WithDetail("No " + TOMLFileName + " or " + JSONFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the working directory or its
// nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
