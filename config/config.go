package config

import (
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/proxyangel/load-balancer/internal/backend"
	"github.com/proxyangel/load-balancer/internal/httpserver"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	DefaultAddress = ":8080"
	DefaultBackend = "http://localhost:9090"
	DefaultTimeout = "10s"
)

// writeTimeoutMargin is how much longer than the backend timeout a client
// response may take to be handled and written.
const writeTimeoutMargin = 5 * time.Second

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type ProxyConfig struct {
	Timeout      string `mapstructure:"timeout"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Proxy    ProxyConfig   `mapstructure:"proxy"`
	Backends []string      `mapstructure:"backends"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("load-balancer", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.String("config", "", "Path to a YAML config file (default: ./config/config.yaml or ./config.yaml)")
	fs.String("listen", DefaultAddress, "Address to accept client requests on")
	fs.StringSlice("backend", []string{DefaultBackend}, "Backend base URL; repeat or comma-separate for several, order is rotation order")
	fs.String("timeout", DefaultTimeout, "Deadline for each backend exchange")
	fs.String("log-level", LogLevelInfo, "Log level: debug|info|warn|error")
	fs.String("env", EnvDev, "Environment: dev|staging|prod")

	return fs
}

var flagKeys = map[string]string{
	"listen":    "server.address",
	"backend":   "backends",
	"timeout":   "proxy.timeout",
	"log-level": "logging.level",
	"env":       "server.environment",
}

// Load builds the configuration. fs may be nil; otherwise it must have been
// created by Flags and already parsed. Only flags set explicitly override
// the file and the environment.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("proxy.timeout", DefaultTimeout)
	v.SetDefault("proxy.max_idle_conns", 100)
	v.SetDefault("backends", []string{DefaultBackend})
	v.SetDefault("logging.level", LogLevelInfo)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}

		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// ProxyTimeout returns the parsed backend timeout. Call after Validate.
func (c *Config) ProxyTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Proxy.Timeout)
	return d
}

// WriteTimeout returns the server write deadline: never shorter than the
// server default and always longer than the backend timeout.
func (c *Config) WriteTimeout() time.Duration {
	return max(httpserver.DefaultWriteTimeout, c.ProxyTimeout()+writeTimeoutMargin)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(httpserver.ValidateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Proxy,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(ProxyConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ProxyConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&pc.MaxIdleConns,
						validation.Min(0),
					),
				)
			}),
		),
		validation.Field(&c.Backends,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(backend.ValidateURL)),
		),
	)
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be positive")
	}

	return nil
}
