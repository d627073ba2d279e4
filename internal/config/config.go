package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // "dev" or "prod", controls log encoding
	} `yaml:"server"`
	Storage struct {
		Dir string `yaml:"dir"` // file-store data directory
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	GenAI struct {
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"`
		Model      string `yaml:"model"`
		Timeout    string `yaml:"timeout"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"genai"`
	OAuth struct {
		ClientID    string `yaml:"client_id"`
		UserinfoURL string `yaml:"userinfo_url"`
	} `yaml:"oauth"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Explanations struct {
		TTL string `yaml:"ttl"`
	} `yaml:"explanations"`
}

// Load reads YAML config from path and applies env overrides for secrets.
// A missing file is not fatal; defaults and env vars carry the config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err == nil {
		if uErr := yaml.Unmarshal(data, &cfg); uErr != nil {
			return cfg, uErr
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GenAI.APIKey = v
	}
	if v := os.Getenv("OAUTH_CLIENT_ID"); v != "" {
		c.OAuth.ClientID = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.GenAI.BaseURL == "" {
		c.GenAI.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = "gemini-3-pro-preview"
	}
	if c.GenAI.MaxRetries == 0 {
		c.GenAI.MaxRetries = 3
	}
	if c.OAuth.UserinfoURL == "" {
		c.OAuth.UserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = "interview-prep-dev-secret"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
