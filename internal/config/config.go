package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	AI struct {
		APIKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseUrl"`
		Model   string `yaml:"model"`
	} `yaml:"ai"`
	Extractor struct {
		URL string `yaml:"url"`
	} `yaml:"extractor"`
	Worker struct {
		Mode        string `yaml:"mode"` // "inline" (default) or "remote"
		ServiceURL  string `yaml:"serviceUrl"`
		APIKey      string `yaml:"apiKey"`
		CallbackURL string `yaml:"callbackUrl"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"worker"`
	Callback struct {
		Secret string `yaml:"secret"`
	} `yaml:"callback"`
	Auth struct {
		Tokens map[string]string `yaml:"tokens"` // bearer token -> user id
	} `yaml:"auth"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
