package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when --config is not given.
const DefaultConfigFile = "mbt.yaml"

// ConditionConfig selects one stop condition.
type ConditionConfig struct {
	Kind  string `yaml:"kind" mapstructure:"kind"`
	Value string `yaml:"value" mapstructure:"value"`
}

// StoreConfig selects where recorded sequences live.
type StoreConfig struct {
	Kind     string        `yaml:"kind" mapstructure:"kind"` // file (default), memory, redis, sqlite or mysql
	Path     string        `yaml:"path" mapstructure:"path"`
	URL      string        `yaml:"url" mapstructure:"url"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`

	// EncryptionKey is a base64 AES-256 key. When empty, MBT_STORE_KEY is used.
	EncryptionKey string   `yaml:"encryption_key" mapstructure:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" mapstructure:"fallback_keys"`
	// Redact lists edge name patterns whose parameters are not stored.
	Redact []string `yaml:"redact" mapstructure:"redact"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Trace records lifecycle events as OpenTelemetry spans, logged at debug level.
	Trace bool `yaml:"trace" mapstructure:"trace"`
}

// Config is the run configuration. It is read from a YAML file and then overridden by flags.
type Config struct {
	Model      string            `yaml:"model" mapstructure:"model"`
	Name       string            `yaml:"name" mapstructure:"name"`
	Generator  string            `yaml:"generator" mapstructure:"generator"`
	Conditions []ConditionConfig `yaml:"conditions" mapstructure:"conditions"`
	Extended   bool              `yaml:"extended" mapstructure:"extended"`
	Backtrack  bool              `yaml:"backtrack" mapstructure:"backtrack"`
	Seed       *uint64           `yaml:"seed" mapstructure:"seed"`
	Template   string            `yaml:"template" mapstructure:"template"`
	Data       map[string]string `yaml:"data" mapstructure:"data"`
	Commands   string            `yaml:"commands" mapstructure:"commands"`
	// SkipUnregistered lets steps without a command pass instead of failing.
	SkipUnregistered bool        `yaml:"skip_unregistered" mapstructure:"skip_unregistered"`
	Store            StoreConfig `yaml:"store" mapstructure:"store"`
	Log              LogConfig   `yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Generator: "random",
		Store: StoreConfig{
			Kind:    "file",
			Path:    filepath.Join(".mbt", "sequences"),
			LockTTL: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML configuration on top of DefaultConfig.
// A missing file is not an error when optional is set. Relative paths inside the file
// are resolved against the file's directory.
func LoadConfig(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.Model, &cfg.Template, &cfg.Commands, &cfg.Store.Path} {
		*p = resolve(base, *p)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ParseCondition parses a "kind=value" flag.
func ParseCondition(s string) (ConditionConfig, error) {
	kind, value, _ := strings.Cut(s, "=")
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return ConditionConfig{}, fmt.Errorf("invalid condition %q: expected kind=value", s)
	}
	return ConditionConfig{Kind: kind, Value: strings.TrimSpace(value)}, nil
}
