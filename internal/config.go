package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Pipeline PipelineConfig    `yaml:"pipeline"`
	Archive  ArchiveConfig     `yaml:"archive"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if err := c.Archive.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	LogFile  string     `yaml:"log_file"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// PipelineConfig holds the normalization pipeline configuration.
//
// InputRoot is watched for raw note exports; canonical copies land under
// OutputRoot. MappingFile persists the raw to canonical assignments between
// runs so collision suffixes stay stable.
type PipelineConfig struct {
	InputRoot   string `yaml:"input_root"`
	OutputRoot  string `yaml:"output_root"`
	MappingFile string `yaml:"mapping_file"`
	DebounceMs  int    `yaml:"debounce_ms"`
}

// Validate validates the pipeline configuration.
func (c *PipelineConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.InputRoot, validation.Required),
		validation.Field(&c.OutputRoot, validation.Required),
		validation.Field(&c.MappingFile, validation.Required),
		validation.Field(&c.DebounceMs, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.InputRoot == c.OutputRoot {
		return fmt.Errorf("pipeline: input_root and output_root must differ")
	}
	return nil
}

// Debounce returns the event debounce window as a duration.
func (c *PipelineConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ArchiveConfig holds the zip intake configuration. When enabled, archives
// dropped into StagingDir are extracted into the pipeline's input root.
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	StagingDir string `yaml:"staging_dir"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.StagingDir, validation.Required),
	)
}

// CatalogConfig holds SQLite catalog configuration.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			LogFile:  "./laguz.log",
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Pipeline: PipelineConfig{
			InputRoot:   "./raw",
			OutputRoot:  "./notes",
			MappingFile: "./notes/mapping.txt",
			DebounceMs:  500,
		},
		Archive: ArchiveConfig{
			Enabled:    false,
			StagingDir: "./inbox",
		},
		Catalog: CatalogConfig{
			Path: "./laguz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
