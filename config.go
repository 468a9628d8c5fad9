package gocard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every Config validation failure.
var ErrInvalidConfig = errors.New("invalid card config")

// Config describes one card to render, as stored in a YAML file:
//
//	layout: student
//	fields:
//	  name: Kim
//	  class: "3"
//	assets: ./assets
//	fonts: [./fonts]
//	output:
//	  dir: out
//	  format: png
type Config struct {
	Layout   string            `yaml:"layout"`
	Fields   map[string]string `yaml:"fields,omitempty"`
	Assets   string            `yaml:"assets,omitempty"`
	FontDirs []string          `yaml:"fonts,omitempty"`
	Width    int               `yaml:"width,omitempty"`
	Height   int               `yaml:"height,omitempty"`
	Output   OutputConfig      `yaml:"output,omitempty"`

	// dir is the directory the config was loaded from; relative paths resolve against it.
	dir string
}

// OutputConfig controls where cardgen writes faces.
type OutputConfig struct {
	Dir     string `yaml:"dir,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
	Format  string `yaml:"format,omitempty"`
	Quality int    `yaml:"quality,omitempty"`
}

func (c *Config) normalize() {
	c.Layout = strings.ToLower(strings.TrimSpace(c.Layout))
	if c.Layout == "" {
		c.Layout = LayoutDefault.String()
	}
	if c.Width == 0 {
		c.Width = DefaultSurfaceWidth
	}
	if c.Height == 0 {
		c.Height = DefaultSurfaceHeight
	}
	if c.Output.Format == "" {
		c.Output.Format = "png"
	}
	if c.Output.Quality == 0 {
		c.Output.Quality = 90
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}

// LoadConfig reads and normalizes a YAML card config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes a YAML card config from memory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

// WriteConfig encodes cfg as YAML to path.
func WriteConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Validate checks the config for problems and returns an error describing
// all of them, or nil. Unknown layouts are reported even though rendering
// would fall back to the default layout.
func (c *Config) Validate() error {
	var errs []string

	if _, err := ParseLayoutKind(c.Layout); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Sprintf("surface size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Width > 8192 || c.Height > 8192 {
		errs = append(errs, fmt.Sprintf("surface size %dx%d exceeds 8192", c.Width, c.Height))
	}
	if _, err := ParseImageFormat(c.Output.Format); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		errs = append(errs, fmt.Sprintf("jpeg quality %d out of range 1-100", c.Output.Quality))
	}
	if strings.ContainsAny(c.Output.Prefix, `/\`) {
		errs = append(errs, "output prefix must not contain path separators")
	}
	for k := range c.Fields {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, "field with empty name")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(errs, "\n  "))
}

// Overrides are command-line values layered over a loaded config. Nil
// pointers keep the config's value; Fields always merge.
type Overrides struct {
	Layout *string
	Assets *string
	Fields map[string]string
}

// Apply layers o over the config. An Assets override is taken relative to
// the working directory, not the config file.
func (c *Config) Apply(o Overrides) error {
	if o.Layout != nil {
		c.Layout = strings.ToLower(strings.TrimSpace(*o.Layout))
	}
	if o.Assets != nil {
		c.Assets = ""
		if *o.Assets != "" {
			abs, err := filepath.Abs(*o.Assets)
			if err != nil {
				return fmt.Errorf("assets override: %w", err)
			}
			c.Assets = abs
		}
	}
	for k, v := range o.Fields {
		if c.Fields == nil {
			c.Fields = make(map[string]string, len(o.Fields))
		}
		c.Fields[k] = v
	}
	return nil
}

// Kind returns the configured layout, falling back to Default for unknown names.
func (c *Config) Kind() LayoutKind {
	kind, _ := ParseLayoutKind(c.Layout)
	return kind
}

// FieldSet returns the configured fields.
func (c *Config) FieldSet() FieldSet {
	return FieldSet(c.Fields).Normalized()
}

// Resolve interprets p relative to the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// CardOptions builds card options from the config.
func (c *Config) CardOptions() *CardOptions {
	opts := DefaultCardOptions()
	opts.Width = c.Width
	opts.Height = c.Height
	if c.Assets != "" {
		opts.Assets = os.DirFS(c.Resolve(c.Assets))
	}
	for _, d := range c.FontDirs {
		opts.FontDirs = append(opts.FontDirs, c.Resolve(d))
	}
	return opts
}

// SaveOptions builds encoding options from the config.
func (c *Config) SaveOptions() *SaveOptions {
	format, _ := ParseImageFormat(c.Output.Format)
	return &SaveOptions{Format: format, JPEGQuality: c.Output.Quality}
}
