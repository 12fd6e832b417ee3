// Package config loads service configuration from an optional YAML file
// with environment variable overrides. Environment wins so deployments can
// ship one file and vary per stage.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the API server and sweeper need to start.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// Region is the AWS region for the DynamoDB and S3 clients.
	Region string `yaml:"region"`

	// Table is the DynamoDB table name.
	Table string `yaml:"table"`

	// Bucket is the S3 bucket for attachments and images.
	Bucket string `yaml:"bucket"`

	// URLTTL is how long presigned URLs stay valid. Written as a Go
	// duration string in YAML, e.g. "30m".
	URLTTL time.Duration `yaml:"-"`

	// AllowedOrigins lists CORS origins; empty allows all.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// UnmarshalYAML decodes the duration field from its string form; the other
// fields decode as usual.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Addr           string   `yaml:"addr"`
		Region         string   `yaml:"region"`
		Table          string   `yaml:"table"`
		Bucket         string   `yaml:"bucket"`
		URLTTL         string   `yaml:"urlTtl"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	c.Addr = aux.Addr
	c.Region = aux.Region
	c.Table = aux.Table
	c.Bucket = aux.Bucket
	c.AllowedOrigins = aux.AllowedOrigins
	if aux.URLTTL != "" {
		d, err := time.ParseDuration(aux.URLTTL)
		if err != nil {
			return fmt.Errorf("urlTtl: %w", err)
		}
		c.URLTTL = d
	}
	return nil
}

// Load reads the YAML file at path when it exists, applies environment
// overrides, then fills in defaults. A missing file is not an error; a
// malformed one is.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("corkboard: read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("corkboard: parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CORKBOARD_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("CORKBOARD_TABLE"); v != "" {
		c.Table = v
	}
	if v := os.Getenv("CORKBOARD_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("CORKBOARD_URL_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.URLTTL = d
		}
	}
	if v := os.Getenv("CORKBOARD_ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		c.AllowedOrigins = origins
	}
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Table == "" {
		c.Table = "corkboard"
	}
	if c.Bucket == "" {
		c.Bucket = "corkboard-files"
	}
	if c.URLTTL <= 0 {
		c.URLTTL = time.Hour
	}
}
