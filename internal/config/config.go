package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
)

// Config holds the storelocator configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
	Locator LocatorConfig `yaml:"locator"`
	Maps    MapsConfig    `yaml:"maps"`
	Device  DeviceConfig  `yaml:"device"`
	Cache   CacheConfig   `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port           int `yaml:"port"`
	ReadTimeoutSec int `yaml:"read_timeout_sec"`
	ShutdownSec    int `yaml:"shutdown_timeout_sec"`
	// APIKeys enables bearer auth on /v1 routes; empty disables it.
	APIKeys []string `yaml:"api_keys"`
}

// LocatorConfig holds the store set and ranking behavior.
type LocatorConfig struct {
	StoresFile         string        `yaml:"stores_file"`
	Filters            []string      `yaml:"filters"`
	InitialAddress     string        `yaml:"initial_address"`
	InitialLocation    *geo.Location `yaml:"initial_location"`
	UnitSystem         string        `yaml:"unit_system"` // metric, imperial
	TravelMode         string        `yaml:"travel_mode"` // driving, walking, bicycling, transit
	Radius             float64       `yaml:"radius"`
	OrderByDistance    *bool         `yaml:"order_by_distance"`
	ShowStoreDistance  *bool         `yaml:"show_store_distance"`
	PreciseConcurrency int           `yaml:"precise_concurrency"`
}

// MapsConfig holds the geocoding and distance provider settings.
type MapsConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	Region     string `yaml:"region"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Device modes.
const (
	DeviceNone   = "none"
	DeviceStatic = "static"
	DeviceDenied = "denied"
)

// DeviceConfig describes the position reported for "device" location inputs.
type DeviceConfig struct {
	Mode string  `yaml:"mode"` // none, static, denied
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// CacheConfig holds the precise distance cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Locator.UnitSystem == "" {
		c.Locator.UnitSystem = string(geo.Metric)
	}
	if c.Locator.TravelMode == "" {
		c.Locator.TravelMode = string(travel.Driving)
	}
	if c.Locator.Radius <= 0 {
		c.Locator.Radius = domain.DefaultRadius
	}
	if c.Locator.OrderByDistance == nil {
		c.Locator.OrderByDistance = boolPtr(true)
	}
	if c.Locator.ShowStoreDistance == nil {
		c.Locator.ShowStoreDistance = boolPtr(true)
	}
	if c.Locator.PreciseConcurrency <= 0 {
		c.Locator.PreciseConcurrency = domain.DefaultPreciseConcurrency
	}
	if c.Maps.TimeoutSec <= 0 {
		c.Maps.TimeoutSec = 10
	}
	if c.Device.Mode == "" {
		c.Device.Mode = DeviceNone
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if _, err := geo.ParseUnit(c.Locator.UnitSystem); err != nil {
		return fmt.Errorf("locator.unit_system: %w", err)
	}
	if _, err := travel.ParseMode(c.Locator.TravelMode); err != nil {
		return fmt.Errorf("locator.travel_mode: %w", err)
	}
	if c.Locator.InitialAddress != "" && c.Locator.InitialLocation != nil {
		return fmt.Errorf("locator.initial_address and locator.initial_location are mutually exclusive")
	}
	if l := c.Locator.InitialLocation; l != nil && !geo.ValidateCoordinates(l.Lat, l.Lng) {
		return fmt.Errorf("locator.initial_location out of range: %s", l)
	}
	switch c.Device.Mode {
	case DeviceNone, DeviceDenied:
	case DeviceStatic:
		if !geo.ValidateCoordinates(c.Device.Lat, c.Device.Lng) {
			return fmt.Errorf("device lat=%f lng=%f out of range", c.Device.Lat, c.Device.Lng)
		}
	default:
		return fmt.Errorf("device.mode must be \"none\", \"static\" or \"denied\", got %q", c.Device.Mode)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	return nil
}

// Settings converts the locator section into ranking settings. Call after Validate.
func (c *Config) Settings() domain.Settings {
	unit, _ := geo.ParseUnit(c.Locator.UnitSystem)
	mode, _ := travel.ParseMode(c.Locator.TravelMode)
	return domain.Settings{
		Radius:             c.Locator.Radius,
		Unit:               unit,
		Mode:               mode,
		OrderByDistance:    c.Locator.OrderByDistance == nil || *c.Locator.OrderByDistance,
		ShowStoreDistance:  c.Locator.ShowStoreDistance == nil || *c.Locator.ShowStoreDistance,
		PreciseConcurrency: c.Locator.PreciseConcurrency,
	}
}

func boolPtr(b bool) *bool { return &b }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
