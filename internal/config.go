package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/decisionlog/internal/importer"
	"github.com/starford/decisionlog/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app" toml:"app"`
	Decisions DecisionsConfig   `yaml:"decisions" toml:"decisions"`
	SQLite    SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth" toml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Decisions.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
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

// DecisionsConfig describes the decision directory and how to read it.
type DecisionsConfig struct {
	Path       string `yaml:"path" toml:"path"`
	Dialect    string `yaml:"dialect" toml:"dialect"`
	DateFormat string `yaml:"date_format" toml:"date_format"`
	TimeZone   string `yaml:"time_zone" toml:"time_zone"`
	Watch      bool   `yaml:"watch" toml:"watch"`

	// DocsPath optionally points at free-form Markdown/AsciiDoc documentation
	// imported alongside the decisions.
	DocsPath      string `yaml:"docs_path" toml:"docs_path"`
	DocsRecursive bool   `yaml:"docs_recursive" toml:"docs_recursive"`
}

var errUnknownTimeZone = errors.New("must be a valid IANA time zone name")

// Validate validates the decisions configuration.
func (c *DecisionsConfig) Validate() error {
	c.Dialect = strings.ToLower(c.Dialect)
	if c.Dialect == "" || c.Dialect == "adr-tools" {
		c.Dialect = parser.DialectAdrTools
	}
	if c.DateFormat == "" {
		c.DateFormat = importer.DefaultDateFormat
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Dialect, validation.In(parser.DialectAdrTools, parser.DialectMadr)),
		validation.Field(&c.TimeZone, validation.By(func(any) error {
			if _, err := time.LoadLocation(c.TimeZone); err != nil {
				return errUnknownTimeZone
			}
			return nil
		})),
	)
}

// ImporterOptions returns the importer options implied by the configuration.
func (c *DecisionsConfig) ImporterOptions() []importer.Option {
	return []importer.Option{
		importer.WithDateFormat(c.DateFormat),
		importer.WithTimeZone(c.TimeZone),
	}
}

// NewImporter builds the configured dialect importer.
func (c *DecisionsConfig) NewImporter() (*importer.Importer, error) {
	dialect, err := parser.ByName(c.Dialect)
	if err != nil {
		return nil, err
	}
	return importer.New(dialect, c.ImporterOptions()...)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
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
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
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
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Decisions: DecisionsConfig{
			Path:       "./docs/adr",
			Dialect:    parser.DialectAdrTools,
			DateFormat: importer.DefaultDateFormat,
			TimeZone:   "UTC",
			Watch:      true,
		},
		SQLite: SQLiteConfig{
			Path: "./decisionlog.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
