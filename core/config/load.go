package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// DefaultPath returns $HOME/.rush, or an error if the home directory is
// unknown.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigurationName), nil
}

// Read parses and validates the configuration file at path.
func Read(fsys afero.Fs, path string) (*Configuration, error) {
	configContents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &out, nil
}

// Load reads the configuration at path and always returns a usable one. A
// missing file is created with the defaults; a file that can't be read or
// is invalid is reported to logger and the defaults are used instead.
func Load(fsys afero.Fs, path string, logger *log.Logger) *Configuration {
	cfg, err := Read(fsys, path)
	switch {
	case err == nil:
		return cfg

	case errors.Is(err, fs.ErrNotExist):
		logger.Printf("No config file found, generating a new one at %s", path)
		if err := Initialize(fsys, path); err != nil {
			logger.Printf("Couldn't write config: %v", err)
		}

	default:
		logger.Printf("Config file is corrupted, loading defaults: %v", err)
	}

	return DefaultConfig()
}

// Initialize writes the default configuration to path. It won't overwrite
// an existing file.
func Initialize(fsys afero.Fs, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch exists, err := afero.Exists(fsys, path); {
	case err != nil:
		return err
	case exists:
		return &fs.PathError{Op: "init", Path: path, Err: fs.ErrExist}
	}

	fd, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := fd.Write(defaultConfigData); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
