package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables read into the config.
// QUERYGATE_LOG_LEVEL sets log_level.
const EnvPrefix = "QUERYGATE_"

// DefaultConfigFiles are looked up in the working directory when no
// --config flag is given.
var DefaultConfigFiles = []string{"querygate.yaml", "querygate.yml"}

// Config holds the settings shared by every command.
type Config struct {
	SchemaDir string `koanf:"schema_dir" validate:"omitempty,dir"`
	Format    string `koanf:"format" validate:"required,oneof=text json"`
	LogLevel  string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"required,oneof=text json"`
	Database  string `koanf:"database"`
}

// configDefaults is the lowest configuration layer.
var configDefaults = map[string]any{
	"schema_dir": "",
	"format":     "text",
	"log_level":  "warn",
	"log_format": "text",
	"database":   "",
}

// LoadConfig layers defaults, the config file, QUERYGATE_ environment
// variables and explicitly set flags, in increasing precedence.
// It returns the config and the path of the file read, if any.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(configDefaults, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := resolveConfigFile(cfgFile)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode config: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

// resolveConfigFile returns the explicit config path, or the first default
// file present in the working directory, or "".
func resolveConfigFile(cfgFile string) (string, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return "", fmt.Errorf("config file not found: %s", cfgFile)
		}
		return cfgFile, nil
	}
	for _, name := range DefaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

var configValidator = validator.New()

// ValidateConfig checks every setting and reports all invalid ones.
func ValidateConfig(cfg *Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describeFieldError(fe)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	key := configKey(fe.StructField())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "dir":
		return fmt.Sprintf("%s is not a directory: %v", key, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
}

func configKey(field string) string {
	switch field {
	case "SchemaDir":
		return "schema_dir"
	case "LogLevel":
		return "log_level"
	case "LogFormat":
		return "log_format"
	default:
		return strings.ToLower(field)
	}
}

// NewLogger builds the slog logger described by cfg, writing to w.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type loggerKey struct{}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// GetLogger returns the logger of ctx, or a logger that discards.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}
