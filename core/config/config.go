package config

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	// ConfigurationName is the name of the configuration file in $HOME.
	ConfigurationName = ".rush"
)

type Configuration struct {
	Prompt  Prompt            `json:"prompt"`
	History History           `json:"history"`
	Env     map[string]string `json:"env"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	for name := range c.Env {
		if name == "" || strings.ContainsAny(name, "=\x00") {
			return fmt.Errorf("env: invalid variable name %q", name)
		}
	}

	return nil
}

type Prompt struct {
	PS1      string `json:"ps1" validate:"required"`
	PS2      string `json:"ps2" validate:"required"`
	PSQuote  string `json:"ps_quote" validate:"required"`
	PSDQuote string `json:"ps_dquote" validate:"required"`
	PSPipe   string `json:"ps_pipe" validate:"required"`
	PSAnd    string `json:"ps_and" validate:"required"`
	PSOr     string `json:"ps_or" validate:"required"`
}

type History struct {
	Size int    `json:"size" validate:"gte=0"` // Number of entries kept, 0 disables history.
	Path string `json:"path"`                  // History file, empty keeps history in memory.
}

// File returns the history path with a leading ~/ replaced by home.
func (h History) File(home string) string {
	if strings.HasPrefix(h.Path, "~/") && home != "" {
		return filepath.Join(home, h.Path[2:])
	}
	return h.Path
}

// ApplyEnv sets each configured variable in name order.
func (c *Configuration) ApplyEnv(setenv func(key, value string) error) error {
	var names []string
	for name := range c.Env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := setenv(name, c.Env[name]); err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultConfigData returns the contents of the built-in configuration
// file, comments included.
func DefaultConfigData() []byte {
	return append([]byte(nil), defaultConfigData...)
}
