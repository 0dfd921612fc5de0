// Package config loads go-view settings from YAML: per-extension adapter
// priority lists, adapters to deregister, and renderer options.
//
//	cache: true
//	partials:
//	  prefix: "_"
//	extensions:
//	  html: [pongo2, htmltemplate]
//	  md: [goldmark, plain]
//	deregister:
//	  html: [pongo2]
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/render"
)

// Config is the decoded settings file.
type Config struct {
	// Cache toggles the compiled-template cache. Nil keeps the default.
	Cache *bool `yaml:"cache"`
	// Partials configures partial lookup.
	Partials Partials `yaml:"partials"`
	// Extensions replaces the priority list of each listed extension, highest
	// priority first.
	Extensions map[string][]string `yaml:"extensions"`
	// Deregister removes adapters after Extensions was applied.
	Deregister map[string][]string `yaml:"deregister"`
}

// Partials configures partial lookup.
type Partials struct {
	// Prefix marks partial files. Nil keeps the default "_".
	Prefix *string `yaml:"prefix"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Decode reads settings from r. Unknown keys are an error.
func Decode(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Extensions = normalizeLists(c.Extensions)
	c.Deregister = normalizeLists(c.Deregister)
}

func normalizeLists(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for ext, names := range in {
		key := adapter.NormalizeExtension(ext)
		if key == "" {
			continue
		}
		for _, name := range names {
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
				out[key] = append(out[key], name)
			}
		}
	}
	return out
}

// Validate reports adapter names that catalog does not know.
func (c *Config) Validate(catalog adapter.Catalog) error {
	var unknown []string
	check := func(section string, lists map[string][]string) {
		for ext, names := range lists {
			for _, name := range names {
				if _, ok := catalog.Lookup(name); !ok {
					unknown = append(unknown, fmt.Sprintf("%s.%s: %q", section, ext, name))
				}
			}
		}
	}
	check("extensions", c.Extensions)
	check("deregister", c.Deregister)
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("config: unknown adapters (known: %s): %s",
		strings.Join(catalog.Names(), ", "), strings.Join(unknown, "; "))
}

// Apply rebuilds the priority lists of registry from Extensions, then
// deregisters the adapters listed under Deregister. Adapters are looked up in
// catalog by name.
func (c *Config) Apply(registry *adapter.Registry, catalog adapter.Catalog) error {
	if registry == nil {
		return errors.New("config: registry is required")
	}
	if err := c.Validate(catalog); err != nil {
		return err
	}

	for _, ext := range sortedKeys(c.Extensions) {
		adapters := make([]adapter.EngineAdapter, 0, len(c.Extensions[ext]))
		for _, name := range c.Extensions[ext] {
			a, _ := catalog.Lookup(name)
			adapters = append(adapters, a)
		}
		if err := registry.Replace(ext, adapters...); err != nil {
			return fmt.Errorf("config: extension %q: %w", ext, err)
		}
	}
	for _, ext := range sortedKeys(c.Deregister) {
		for _, name := range c.Deregister[ext] {
			registry.Deregister(ext, name)
		}
	}
	return nil
}

// Options returns the renderer options the settings describe.
func (c *Config) Options() []render.Option {
	var opts []render.Option
	if c.Cache != nil {
		opts = append(opts, render.WithCache(*c.Cache))
	}
	if c.Partials.Prefix != nil {
		opts = append(opts, render.WithPartialPrefix(*c.Partials.Prefix))
	}
	return opts
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
