package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Redis    RedisConfig             `mapstructure:"redis"`
	Engine   EngineConfig            `mapstructure:"engine"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
	Actions  map[string]ActionConfig `mapstructure:"actions"`
	Database DatabaseConfig          `mapstructure:"database"`
	Login    LoginConfig             `mapstructure:"login"`
	Bans     BansConfig              `mapstructure:"bans"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	// ProxyHeader names the header carrying the client address, such as
	// X-Forwarded-For. It is only honoured for peers in TrustedProxies; with
	// no header the socket address is the rate limiting token.
	ProxyHeader    string   `mapstructure:"proxy_header"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type EngineConfig struct {
	ReturnRates  bool          `mapstructure:"return_rates"`
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
	Breaker      BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type MetricsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	EnableStoreLatency bool `mapstructure:"enable_store_latency"`
	EnableProcess      bool `mapstructure:"enable_process"`
}

// ActionConfig configures one named action. Type defaults to the name, so
// several differently configured actions can share an implementation.
type ActionConfig struct {
	Type     string                 `mapstructure:"type"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

// DatabaseConfig is only needed by the audit_db action.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type LoginConfig struct {
	Secret        string   `mapstructure:"secret"`
	RestrictedIPs []string `mapstructure:"restricted_ips"`
}

// BansConfig maps a metric name to its ordered thresholds. Viper lowercases
// map keys, so metric and action names must be lowercase in the file; Load
// rejects any that are not.
type BansConfig map[string][]ThresholdConfig

type ThresholdConfig struct {
	Window         time.Duration `mapstructure:"window"`
	Limit          int64         `mapstructure:"limit"`
	Actions        []string      `mapstructure:"actions"`
	ActionDuration time.Duration `mapstructure:"action_duration"`
}

// Load reads config.yaml from configPath, ./config or the working directory.
// Environment variables override file values, SERVER_PORT for server.port.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultValues(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("config file config.yaml not found in %q: %w", configPath, err)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := checkNameCase(v.ConfigFileUsed()); err != nil {
		return nil, err
	}

	return decode(v)
}

// LoadFile reads an explicit yaml file.
func LoadFile(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultValues(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}
	if err := checkNameCase(file); err != nil {
		return nil, err
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := new(Config)
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkNameCase reads the raw file and rejects action and metric names that
// viper would lowercase behind the caller's back.
func checkNameCase(file string) error {
	if file == "" {
		return nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", file, err)
	}
	var raw struct {
		Actions map[string]interface{} `yaml:"actions"`
		Bans    map[string]interface{} `yaml:"bans"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", file, err)
	}
	for _, section := range []struct {
		name  string
		items map[string]interface{}
	}{{"actions", raw.Actions}, {"bans", raw.Bans}} {
		names := make([]string, 0, len(section.items))
		for name := range section.items {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if name != strings.ToLower(name) {
				return fmt.Errorf("%s.%s: names must be lowercase", section.name, name)
			}
		}
	}
	return nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.proxy_header", "")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("engine.return_rates", true)
	v.SetDefault("engine.store_timeout", "250ms")
	v.SetDefault("engine.breaker.timeout", "10s")
	v.SetDefault("engine.breaker.max_failures", 5)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_store_latency", true)
	v.SetDefault("metrics.enable_process", true)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("login.secret", "")
}

// secondsToDurationHook reads bare numbers as seconds, so window: 3600 means
// one hour rather than 3600ns.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		durationType := reflect.TypeOf(time.Duration(0))
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Server.ProxyHeader != "" && len(c.Server.TrustedProxies) == 0 {
		return fmt.Errorf("server.trusted_proxies is required when server.proxy_header is set")
	}
	if c.Engine.StoreTimeout < 0 {
		return fmt.Errorf("engine.store_timeout must not be negative")
	}
	for metric, thresholds := range c.Bans {
		for i, t := range thresholds {
			if len(t.Actions) == 0 {
				return fmt.Errorf("bans.%s[%d]: at least one action is required", metric, i)
			}
		}
	}
	return nil
}
