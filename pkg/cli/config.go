package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/midi"
	"github.com/Malifforas/music/pkg/theory"
)

const (
	// DefaultBaseDir is the directory under $HOME holding every app's
	// configuration and data.
	DefaultBaseDir = ".retromusic"

	// DefaultConfigFile is the configuration file name inside the app
	// directory.
	DefaultConfigFile = "config.yaml"
)

// Config is the configuration file of one app.
type Config struct {
	AppName string `yaml:"-"`

	CurrentContext string              `yaml:"current_context,omitempty"`
	Contexts       map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is a named set of defaults. Empty fields fall back to built-in
// defaults; see the *OrDefault accessors.
type Context struct {
	Name string `yaml:"name"`

	Scale       string  `yaml:"scale,omitempty"`
	Tempo       float64 `yaml:"tempo,omitempty"`
	Layout      string  `yaml:"layout,omitempty"`
	BassMode    string  `yaml:"bass_mode,omitempty"`
	Velocity    string  `yaml:"velocity,omitempty"`
	Instruments string  `yaml:"instruments,omitempty"`

	// Library is the BadgerDB directory, or "memory://".
	Library string `yaml:"library,omitempty"`

	// Store is where rendered MIDI files are kept: a directory,
	// "memory://" or "s3://bucket/prefix".
	Store string `yaml:"store,omitempty"`

	// LogFile receives logs instead of stderr when set.
	LogFile string `yaml:"log_file,omitempty"`

	Extra map[string]string `yaml:"extra,omitempty"`
}

// LoadConfig loads the configuration of appName from customPath, or from
// ~/.retromusic/<appName>/config.yaml when customPath is empty. A missing
// file is created empty.
func LoadConfig(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, cfg.Save()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			cfg.Contexts[name] = &Context{Name: name}
		}
	}
	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// Paths returns the file layout rooted at Dir, so data and logs live
// beside the config file.
func (c *Config) Paths() *Paths {
	return &Paths{Root: c.Dir()}
}

// AddContext stores ctx under name, replacing any existing context. The
// first context added becomes current.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	if err := ctx.Validate(); err != nil {
		return err
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext makes name the current context.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns the named context.
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, or the current one when name
// is empty. Without any current context it returns an empty context, so
// built-in defaults apply.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns the context names in sorted order.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ContextKeys lists the keys accepted by Context.Set and Context.Get.
var ContextKeys = []string{
	"scale", "tempo", "layout", "bass_mode", "velocity", "instruments",
	"library", "store", "log_file",
}

// Set assigns a context field by its YAML key. Keys of the form
// "extra.<name>" set extra values.
func (ctx *Context) Set(key, value string) error {
	if name, ok := strings.CutPrefix(key, "extra."); ok && name != "" {
		ctx.SetExtra(name, value)
		return nil
	}

	next := *ctx
	switch key {
	case "scale":
		next.Scale = value
	case "tempo":
		tempo, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid tempo %q: %w", value, err)
		}
		next.Tempo = tempo
	case "layout":
		next.Layout = value
	case "bass_mode":
		next.BassMode = value
	case "velocity":
		next.Velocity = value
	case "instruments":
		next.Instruments = value
	case "library":
		next.Library = value
	case "store":
		next.Store = value
	case "log_file":
		next.LogFile = value
	default:
		return fmt.Errorf("unknown key %q (want one of %s or extra.<name>)", key, strings.Join(ContextKeys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*ctx = next
	return nil
}

// Get returns a context field by its YAML key.
func (ctx *Context) Get(key string) (string, error) {
	if name, ok := strings.CutPrefix(key, "extra."); ok {
		return ctx.GetExtra(name), nil
	}
	switch key {
	case "scale":
		return ctx.Scale, nil
	case "tempo":
		if ctx.Tempo == 0 {
			return "", nil
		}
		return strconv.FormatFloat(ctx.Tempo, 'g', -1, 64), nil
	case "layout":
		return ctx.Layout, nil
	case "bass_mode":
		return ctx.BassMode, nil
	case "velocity":
		return ctx.Velocity, nil
	case "instruments":
		return ctx.Instruments, nil
	case "library":
		return ctx.Library, nil
	case "store":
		return ctx.Store, nil
	case "log_file":
		return ctx.LogFile, nil
	}
	return "", fmt.Errorf("unknown key %q", key)
}

// Validate checks that every set field holds a known value.
func (ctx *Context) Validate() error {
	if ctx.Scale != "" && !theory.HasScale(ctx.Scale) {
		return fmt.Errorf("unknown scale %q (want one of %s)", ctx.Scale, strings.Join(theory.ScaleNames(), ", "))
	}
	if ctx.Tempo < 0 {
		return fmt.Errorf("invalid tempo %g", ctx.Tempo)
	}
	if _, err := midi.ParseLayout(ctx.Layout); err != nil {
		return err
	}
	if _, err := compose.ParseBassMode(ctx.BassMode); err != nil {
		return err
	}
	if _, err := midi.ParseVelocityMode(ctx.Velocity); err != nil {
		return err
	}
	if _, err := midi.ParseInstrumentMode(ctx.Instruments); err != nil {
		return err
	}
	return nil
}

// ScaleOrDefault returns the configured scale or theory.DefaultScale.
func (ctx *Context) ScaleOrDefault() string {
	if ctx.Scale == "" {
		return theory.DefaultScale
	}
	return ctx.Scale
}

// TempoOrDefault returns the configured tempo or midi.DefaultTempo.
func (ctx *Context) TempoOrDefault() float64 {
	if ctx.Tempo == 0 {
		return midi.DefaultTempo
	}
	return ctx.Tempo
}

// GetExtra returns an extra value.
func (ctx *Context) GetExtra(key string) string {
	if ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra sets an extra value.
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}
