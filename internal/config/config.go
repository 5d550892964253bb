package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/export"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vgrid.json"

	// DefaultAddr is the default server address.
	DefaultAddr = ":8080"

	// DefaultSessionTTL is how long a page may wait for its WebSocket.
	DefaultSessionTTL = "1m"

	// DefaultExportDir is the default export directory.
	DefaultExportDir = "exports"
)

// Config represents vgrid.json.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Grid is the path to the grid definition.
	Grid string `json:"grid,omitempty"`

	Server ServerConfig `json:"server,omitempty"`
	Data   DataConfig   `json:"data,omitempty"`
	Export ExportConfig `json:"export,omitempty"`
	Layout LayoutConfig `json:"layout,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig configures `vgrid serve`.
type ServerConfig struct {
	Addr        string   `json:"addr,omitempty"`
	Title       string   `json:"title,omitempty"`
	StyleSheets []string `json:"styleSheets,omitempty"`

	// SessionTTL is a duration string (e.g., "30s").
	SessionTTL  string `json:"sessionTTL,omitempty"`
	MaxSessions int    `json:"maxSessions,omitempty"`
}

// DataConfig selects the item source. File and SQLite are exclusive.
type DataConfig struct {
	// File is a .json, .yaml or .yml item file.
	File string `json:"file,omitempty"`

	SQLite *SQLiteConfig `json:"sqlite,omitempty"`
}

// SQLiteConfig configures a SQLite item source.
type SQLiteConfig struct {
	Path        string   `json:"path"`
	Query       string   `json:"query,omitempty"`
	BoolColumns []string `json:"boolColumns,omitempty"`
}

// ExportConfig configures `vgrid export`.
type ExportConfig struct {
	// Dir is the local export directory, used when S3 is unset.
	Dir string `json:"dir,omitempty"`

	// Format is one of html, page, csv, json.
	Format string `json:"format,omitempty"`

	// MaxSize limits a snapshot in bytes (0 = no limit).
	MaxSize int64 `json:"maxSize,omitempty"`

	S3 *S3Config `json:"s3,omitempty"`
}

// S3Config selects an S3 bucket. Credentials come from the environment.
type S3Config struct {
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix,omitempty"`
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// LayoutConfig enables the fixed header when ContainerHeight is set.
type LayoutConfig struct {
	ContainerHeight float64 `json:"containerHeight,omitempty"`
	HeaderHeight    float64 `json:"headerHeight,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       DefaultAddr,
			Title:      "vgrid",
			SessionTTL: DefaultSessionTTL,
		},
		Export: ExportConfig{
			Dir:    DefaultExportDir,
			Format: string(export.FormatPage),
		},
		LogLevel: "info",
	}
}

// Load reads vgrid.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --grid and --data")
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			Wrap(err).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}
	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E102").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E102").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
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

// Resolve returns p relative to the config directory. Absolute and empty
// paths are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir() == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// applyDefaults fills in values an explicit empty field cleared.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = DefaultSessionTTL
	}
	if c.Export.Format == "" {
		c.Export.Format = string(export.FormatPage)
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	_, port, err := net.SplitHostPort(c.Server.Addr)
	if err != nil {
		return errors.New("E103").Wrap(err)
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 {
			return errors.New("E103").
				WithDetail("Port " + strconv.Quote(port) + " must be between 0 and 65535")
		}
	}
	if _, err := c.SessionTTL(); err != nil {
		return errors.New("E104").
			WithDetail("server.sessionTTL: " + err.Error()).
			WithSuggestion(`Use a Go duration such as "30s" or "2m"`)
	}
	if c.Server.MaxSessions < 0 {
		return errors.New("E104").WithDetail("server.maxSessions must not be negative")
	}
	if c.Data.File != "" && c.Data.SQLite != nil {
		return errors.New("E104").WithDetail("data.file and data.sqlite are exclusive")
	}
	if c.Data.SQLite != nil && c.Data.SQLite.Path == "" {
		return errors.New("E104").WithDetail("data.sqlite.path is required")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return errors.New("E132").Wrap(err)
	}
	if c.Export.S3 != nil && c.Export.S3.Bucket == "" {
		return errors.New("E130").WithDetail("export.s3.bucket is required")
	}
	if c.Layout.ContainerHeight < 0 || c.Layout.HeaderHeight < 0 {
		return errors.New("E104").WithDetail("layout heights must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E104").
			WithDetail("logLevel " + strconv.Quote(c.LogLevel) + " is not one of debug, info, warn, error")
	}
	return nil
}

// SessionTTL returns the parsed server session TTL.
func (c *Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Newf(errors.CategoryConfig, "duration must be positive")
	}
	return d, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vgrid.json, or an error if not found.
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
			return "", errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest vgrid.json at or
// above the working directory.
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
