package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Node is the validated configuration for a single plugin. Paths are
// absolute by the time a Node is handed out; defaults are filled in, so
// consumers never re-check for missing values.
type Node struct {
	// Plugin is the node's key in the configuration file, e.g. "spike".
	Plugin string
	// PluginPath is the plugin directory; the linker script and shared
	// include directory live under its sibling env/ directory.
	PluginPath string
	// ISpec and PSpec are the riscv-config ISA and platform descriptor
	// files handed to Build.
	ISpec string
	PSpec string
	// Path is the directory searched for simulator executables when no
	// environment override is set. Empty means rely on the process PATH.
	Path string
	// Jobs is the build-tool parallelism, default 1.
	Jobs int
	// Make is the build-tool executable, default "make".
	Make string
	// Name is the artifact prefix used for the generated makefile and the
	// signature files, default "DUT-<plugin>".
	Name string
}

type rawNode struct {
	PluginPath string `yaml:"pluginpath"`
	ISpec      string `yaml:"ispec"`
	PSpec      string `yaml:"pspec"`
	Path       string `yaml:"PATH"`
	Jobs       *int   `yaml:"jobs"`
	Make       string `yaml:"make"`
	Name       string `yaml:"name"`
}

// Config holds the raw plugin nodes from one configuration file. Nodes
// are validated when requested, so an incomplete node for one plugin
// does not block running another.
type Config struct {
	source string
	raw    map[string]rawNode
}

// ValidationError captures a single field-specific configuration issue.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple configuration problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// Load reads a plugin configuration file: a YAML mapping from plugin
// name to its settings node.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read configuration")
	}
	return Parse(data, path)
}

// Parse decodes a plugin configuration document. source is used in
// error messages only.
func Parse(data []byte, source string) (*Config, error) {
	raw := make(map[string]rawNode)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse configuration %s", source)
	}
	return &Config{source: source, raw: raw}, nil
}

// Plugins lists the configured plugin names, sorted.
func (c *Config) Plugins() []string {
	names := make([]string, 0, len(c.raw))
	for name := range c.raw {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Node resolves, defaults, and validates the configuration for one
// plugin. A missing node or missing required paths are fatal
// configuration errors; the caller is expected to stop before building
// anything.
func (c *Config) Node(plugin string) (*Node, error) {
	raw, ok := c.raw[plugin]
	if !ok {
		return nil, ValidationErrors{{
			File:    c.source,
			Field:   plugin,
			Message: "Please enter input file paths in configuration.",
		}}
	}

	var errs ValidationErrors
	require := func(field, value string) string {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{
				File:    c.source,
				Field:   plugin + "." + field,
				Message: field + " is required",
			})
			return ""
		}
		abs, err := filepath.Abs(value)
		if err != nil {
			errs = append(errs, ValidationError{
				File:    c.source,
				Field:   plugin + "." + field,
				Message: err.Error(),
			})
			return ""
		}
		return abs
	}

	node := &Node{
		Plugin:     plugin,
		PluginPath: require("pluginpath", raw.PluginPath),
		ISpec:      require("ispec", raw.ISpec),
		PSpec:      require("pspec", raw.PSpec),
		Path:       raw.Path,
		Jobs:       1,
		Make:       "make",
		Name:       "DUT-" + plugin,
	}
	if raw.Jobs != nil {
		if *raw.Jobs < 1 {
			errs = append(errs, ValidationError{
				File:    c.source,
				Field:   plugin + ".jobs",
				Message: fmt.Sprintf("must be at least 1, got %d", *raw.Jobs),
			})
		} else {
			node.Jobs = *raw.Jobs
		}
	}
	if strings.TrimSpace(raw.Make) != "" {
		node.Make = strings.TrimSpace(raw.Make)
	}
	if strings.TrimSpace(raw.Name) != "" {
		node.Name = strings.TrimSpace(raw.Name)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return node, nil
}
