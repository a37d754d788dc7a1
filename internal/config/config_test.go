package config

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("locator:\n  stores_file: stores.yaml\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8080 || cfg.Device.Mode != DeviceNone || cfg.Cache.TTLSec != 86400 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	s := cfg.Settings()
	if s.Unit != geo.Metric || s.Mode != travel.Driving || s.Radius != 50 {
		t.Errorf("settings = %+v", s)
	}
	if !s.OrderByDistance || !s.ShowStoreDistance || s.PreciseConcurrency != 4 {
		t.Errorf("settings = %+v", s)
	}
}

func TestParse_ExplicitFalseSurvivesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
locator:
  order_by_distance: false
  show_store_distance: false
  unit_system: imperial
  travel_mode: walking
  radius: 25
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := cfg.Settings()
	if s.OrderByDistance || s.ShowStoreDistance {
		t.Errorf("explicit false overridden: %+v", s)
	}
	if s.Unit != geo.Imperial || s.Mode != travel.Walking || s.Radius != 25 {
		t.Errorf("settings = %+v", s)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("MAPS_KEY", "secret")
	cfg, err := Parse([]byte(`
maps:
  api_key: ${MAPS_KEY}
  region: ${MAPS_REGION:-uk}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Maps.APIKey != "secret" || cfg.Maps.Region != "uk" {
		t.Errorf("maps = %+v", cfg.Maps)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(_ *Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"bad unit", func(c *Config) { c.Locator.UnitSystem = "furlongs" }, "locator.unit_system"},
		{"bad mode", func(c *Config) { c.Locator.TravelMode = "teleport" }, "locator.travel_mode"},
		{"both initial inputs", func(c *Config) {
			c.Locator.InitialAddress = "x"
			c.Locator.InitialLocation = &geo.Location{}
		}, "mutually exclusive"},
		{"bad initial location", func(c *Config) {
			c.Locator.InitialLocation = &geo.Location{Lat: 91}
		}, "initial_location"},
		{"bad device mode", func(c *Config) { c.Device.Mode = "gps" }, "device.mode"},
		{"static device out of range", func(c *Config) {
			c.Device.Mode = DeviceStatic
			c.Device.Lng = 181
		}, "device lat"},
		{"cache without addrs", func(c *Config) { c.Cache.Enabled = true }, "cache.addrs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("GetEnv() = %q", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("GetEnv() = %q", GetEnv())
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Locator.StoresFile == "" {
		t.Error("local config must point at a stores file")
	}
}
