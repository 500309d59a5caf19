// Package config loads the server's runtime configuration with viper,
// the way the teacher repo's go.mod pulls in spf13/viper for exactly
// this purpose.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the full set of knobs spec.md §6 calls out: DB connection,
// web root, listen port, and the session-timeout policy that drives
// internal/session's finite TTLs.
type Config struct {
	DB       DBConfig      `mapstructure:"db"`
	WebRoot  string        `mapstructure:"web_root"`
	Listen   string        `mapstructure:"listen"`
	GateAddr string        `mapstructure:"gate_addr"`
	Session  SessionConfig `mapstructure:"session"`
}

// DBConfig mirrors original_source/src/db.hpp's user_table constructor
// arguments: host/username/password/dbname/port.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     uint16 `mapstructure:"port"`
}

// SessionConfig controls the finite TTLs applied at the various
// lifecycle stages described in spec.md §4.2.
type SessionConfig struct {
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
	HallTimeout  time.Duration `mapstructure:"hall_timeout"`
}

// DSN builds the go-sql-driver/mysql data source name for this config.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true",
		c.Username, c.Password, c.Host, c.Port, c.Name)
}

// Default returns the fallback configuration used when no config file
// is supplied, matching the defaults original_source/src/server.hpp
// hard-codes (3306, ./wwwroot/).
func Default() Config {
	return Config{
		DB: DBConfig{
			Host: "127.0.0.1",
			Port: 3306,
			Name: "gobang",
		},
		WebRoot:  "./wwwroot/",
		Listen:   ":9000",
		GateAddr: ":9001",
		Session: SessionConfig{
			LoginTimeout: 30 * time.Second,
			HallTimeout:  5 * time.Minute,
		},
	}
}

// Load reads path (if non-empty) via viper, falling back to Default
// for any field the file doesn't set. When a file is read, a
// GOBANG_-prefixed environment variable (GOBANG_ plus the upper-cased
// key) overrides a key the file sets. With an empty path Load returns
// Default unchanged; no environment variable is consulted.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("GOBANG")
	v.AutomaticEnv()

	if path == "" {
		return cfg, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, errors.Wrapf(err, "read config file %s", path)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}
