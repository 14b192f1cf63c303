/*
Package config loads the server's YAML configuration.

PURPOSE:
  Collects everything the server needs at startup in one file: listen
  port, database path, log level, and seed data for company payroll
  policies and shift types. Seed entries reuse the factory document types
  so YAML, API bodies and stored config_json share one schema.

EXAMPLE:
  server:
    port: 8080
  database:
    path: ./data/paye.db
  log:
    level: info
  companies:
    - id: Acme MU
      country: Mauritius
      thirteenth_month_tax: true
      thirteen_period_countries: [Mauritius]
  shift_types:
    - name: Day
      start_time: "09:00"
      end_time: "17:00"
      late_entry_grace_minutes: 10
      overtime_pay_rate: "300"
      overtime_component: Overtime

PRECEDENCE:
  Defaults < YAML file < command-line flags (applied in cmd/server).

SEE ALSO:
  - factory/policy.go: document validation
  - cmd/server/main.go: loading and seeding
*/
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/factory"
	"github.com/warp/paye-engine/payroll"
)

const (
	DefaultPort     = 8080
	DefaultDBPath   = "./data/paye.db"
	DefaultLogLevel = "info"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Server     ServerConfig            `yaml:"server"`
	Database   DatabaseConfig          `yaml:"database"`
	Log        LogConfig               `yaml:"log"`
	Companies  []factory.CompanyJSON   `yaml:"companies"`
	ShiftTypes []factory.ShiftTypeJSON `yaml:"shift_types"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config with every default applied.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads a YAML file. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes YAML, applies defaults and validates.
func Parse(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("unmarshal yaml: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
}

// Validate checks ranges and that every seed entry converts cleanly.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalid, c.Server.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := c.Policies(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Shifts(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// SlogLevel maps log.level to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return lvl, nil
}

// Policies converts the company entries.
func (c Config) Policies() ([]payroll.PolicyConfig, error) {
	f := factory.NewPolicyFactory()
	out := make([]payroll.PolicyConfig, 0, len(c.Companies))
	for _, cj := range c.Companies {
		p, err := f.CompanyFromJSON(cj)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Shifts converts the shift type entries.
func (c Config) Shifts() ([]attendance.ShiftDefinition, error) {
	f := factory.NewPolicyFactory()
	out := make([]attendance.ShiftDefinition, 0, len(c.ShiftTypes))
	for _, sj := range c.ShiftTypes {
		s, err := f.ShiftTypeFromJSON(sj)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Seeder is the subset of the store seeding writes to.
type Seeder interface {
	SaveCompany(ctx context.Context, p payroll.PolicyConfig) error
	SaveShiftType(ctx context.Context, def attendance.ShiftDefinition) error
}

// Seed upserts every configured company and shift type.
func (c Config) Seed(ctx context.Context, s Seeder) error {
	policies, err := c.Policies()
	if err != nil {
		return err
	}
	for _, p := range policies {
		if err := s.SaveCompany(ctx, p); err != nil {
			return fmt.Errorf("seed company %s: %w", p.Company, err)
		}
	}
	shifts, err := c.Shifts()
	if err != nil {
		return err
	}
	for _, def := range shifts {
		if err := s.SaveShiftType(ctx, def); err != nil {
			return fmt.Errorf("seed shift type %s: %w", def.Name, err)
		}
	}
	return nil
}
