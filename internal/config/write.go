package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"
)

//go:embed default_config.toml.tmpl
var defaultConfigTemplate string

var defaultTemplate = template.Must(template.New("config").Parse(defaultConfigTemplate))

// RenderDefault returns the commented default config. Values come from
// Default; the file additionally turns on event persistence.
func RenderDefault() ([]byte, error) {
	var buf bytes.Buffer
	if err := defaultTemplate.Execute(&buf, Default()); err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default config to path. An existing file is kept
// and ErrExists returned unless force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	data, err := RenderDefault()
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Write serializes the config to TOML at path.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// writeFile replaces path atomically so a reader never sees half a config.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
