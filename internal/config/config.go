package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"smart-route-planner/internal/domain"
)

// Config is the process configuration.
//
// Values come from built-in defaults, then the optional YAML file named by
// CONFIG_FILE, then environment variables (a .env file is loaded first).
// Later sources win.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	SeedPath    string

	CacheTTL  time.Duration
	RateRPS   float64
	RateBurst int

	// Workers bounds the heuristic's concurrent starts; 0 means GOMAXPROCS.
	Workers   int
	// MaxPoints caps the stops accepted per request; 0 disables the cap.
	MaxPoints int
	Optimizer domain.Options
}

func Default() Config {
	return Config{
		Port:      "8080",
		SeedPath:  "data/seeds/stops.json",
		CacheTTL:  10 * time.Minute,
		RateRPS:   20,
		RateBurst: 40,
		MaxPoints: 2000,
		Optimizer: domain.DefaultOptions(),
	}
}

// Load reads .env (if present) and builds the configuration.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	return FromEnv()
}

// FromEnv builds the configuration from CONFIG_FILE and the environment only.
func FromEnv() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type fileConfig struct {
	Optimizer struct {
		Mode      string `yaml:"mode"`
		Algorithm string `yaml:"algorithm"`
		DPLimit   *int   `yaml:"dp_limit"`
		Workers   *int   `yaml:"workers"`
		MaxPoints *int   `yaml:"max_points"`
	} `yaml:"optimizer"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Rate struct {
		RPS   *float64 `yaml:"rps"`
		Burst *int     `yaml:"burst"`
	} `yaml:"rate"`
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	if fc.Optimizer.Mode != "" {
		c.Optimizer.Mode = domain.Mode(fc.Optimizer.Mode)
	}
	if fc.Optimizer.Algorithm != "" {
		c.Optimizer.Algorithm = domain.Algorithm(fc.Optimizer.Algorithm)
	}
	if fc.Optimizer.DPLimit != nil {
		c.Optimizer.DPLimit = *fc.Optimizer.DPLimit
	}
	if fc.Optimizer.Workers != nil {
		c.Workers = *fc.Optimizer.Workers
	}
	if fc.Optimizer.MaxPoints != nil {
		c.MaxPoints = *fc.Optimizer.MaxPoints
	}
	if fc.Cache.TTL != "" {
		ttl, err := time.ParseDuration(fc.Cache.TTL)
		if err != nil {
			return fmt.Errorf("config file %q: cache.ttl: %w", path, err)
		}
		c.CacheTTL = ttl
	}
	if fc.Rate.RPS != nil {
		c.RateRPS = *fc.Rate.RPS
	}
	if fc.Rate.Burst != nil {
		c.RateBurst = *fc.Rate.Burst
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.Port = Get("PORT", c.Port)
	c.DatabaseURL = strings.TrimSpace(Get("DATABASE_URL", c.DatabaseURL))
	c.RedisURL = strings.TrimSpace(Get("REDIS_URL", c.RedisURL))
	c.SeedPath = Get("SEED_PATH", c.SeedPath)
	c.Optimizer.Mode = domain.Mode(Get("OPT_MODE", string(c.Optimizer.Mode)))
	c.Optimizer.Algorithm = domain.Algorithm(Get("OPT_ALGORITHM", string(c.Optimizer.Algorithm)))

	var errs []error
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CACHE_TTL: %w", err))
		}
		c.CacheTTL = ttl
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_RPS: %w", err))
		}
		c.RateRPS = rps
	}
	intVars := []struct {
		key string
		dst *int
	}{
		{"RATE_BURST", &c.RateBurst},
		{"OPT_DP_LIMIT", &c.Optimizer.DPLimit},
		{"OPT_WORKERS", &c.Workers},
		{"MAX_POINTS", &c.MaxPoints},
	}
	for _, iv := range intVars {
		v := os.Getenv(iv.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", iv.key, err))
			continue
		}
		*iv.dst = n
	}

	return errors.Join(errs...)
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer defaults: %w", err)
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL must be >= 0")
	}
	if c.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if c.RateRPS > 0 && c.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1 when rate limiting is enabled")
	}
	if c.Workers < 0 {
		return errors.New("OPT_WORKERS must be >= 0")
	}
	if c.MaxPoints < 0 {
		return errors.New("MAX_POINTS must be >= 0")
	}
	return nil
}
