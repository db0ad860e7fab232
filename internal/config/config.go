package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		Bind      string `yaml:"bind"`
		PublicURL string `yaml:"public_url" validate:"omitempty,url"`
	} `yaml:"server"`
	Store struct {
		Driver string `yaml:"driver" validate:"omitempty,oneof=memory sqlite redis postgres"`
	} `yaml:"store"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Board struct {
		// StrictOptions rejects picks and answers outside the registry.
		StrictOptions *bool `yaml:"strict_options"`

		// AdminParam names the query parameter that switches a client into
		// admin mode when set to "1". It is visible to anyone holding the URL.
		AdminParam  string  `yaml:"admin_param"`
		EditsPerSec float64 `yaml:"edits_per_second" validate:"gte=0"`
		EditBurst   int     `yaml:"edit_burst" validate:"gte=0"`
	} `yaml:"board"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	} `yaml:"log"`
}

// Load reads YAML config from path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "propboard.db"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "propboard:"
	}
	if c.Board.StrictOptions == nil {
		strict := true
		c.Board.StrictOptions = &strict
	}
	if c.Board.AdminParam == "" {
		c.Board.AdminParam = "admin"
	}
	if c.Board.EditsPerSec == 0 {
		c.Board.EditsPerSec = 10
	}
	if c.Board.EditBurst == 0 {
		c.Board.EditBurst = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the struct tags and cross-field rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Store.Driver {
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("invalid config: redis.addr is required for the redis store")
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return fmt.Errorf("invalid config: postgres.url is required for the postgres store")
		}
	}
	return nil
}

// Strict reports whether mutations are validated against the registry.
func (c Config) Strict() bool {
	return c.Board.StrictOptions == nil || *c.Board.StrictOptions
}
