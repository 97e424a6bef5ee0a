package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ordering client.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Tracking TrackingConfig `yaml:"tracking"`
}

// APIConfig holds backend connection configuration.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig holds cart persistence configuration. Backend selects
// the adapter: memory, file, redis or postgres.
type StorageConfig struct {
	Backend          string `yaml:"backend"`
	Dir              string `yaml:"dir"`
	RedisHost        string `yaml:"redis_host"`
	RedisPort        int    `yaml:"redis_port"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDatabase string `yaml:"postgres_database"`
}

// TrackingConfig holds order status polling configuration.
type TrackingConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// Load reads configuration from a YAML file.
func Load(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := defaults()
	scanner := bufio.NewScanner(file)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Check for section headers
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			currentSection = strings.TrimSuffix(line, ":")
			continue
		}

		// Parse key-value pairs
		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if err := config.setValue(currentSection, key, value); err != nil {
				return nil, fmt.Errorf("failed to set config value %s.%s: %w", currentSection, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			TimeoutSeconds: 10,
		},
		Storage: StorageConfig{
			Backend:   "memory",
			RedisPort: 6379,
		},
		Tracking: TrackingConfig{
			PollIntervalSeconds: 5,
		},
	}
}

// setValue sets a configuration value based on section and key.
func (c *Config) setValue(section, key, value string) error {
	switch section {
	case "api":
		return c.setAPIValue(key, value)
	case "storage":
		return c.setStorageValue(key, value)
	case "tracking":
		return c.setTrackingValue(key, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) setAPIValue(key, value string) error {
	switch key {
	case "base_url":
		c.API.BaseURL = value
	case "timeout_seconds":
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid timeout_seconds value: %w", err)
		}
		c.API.TimeoutSeconds = seconds
	default:
		return fmt.Errorf("unknown api key: %s", key)
	}
	return nil
}

func (c *Config) setStorageValue(key, value string) error {
	switch key {
	case "backend":
		switch value {
		case "memory", "file", "redis", "postgres":
			c.Storage.Backend = value
		default:
			return fmt.Errorf("unknown storage backend: %s", value)
		}
	case "dir":
		c.Storage.Dir = value
	case "redis_host":
		c.Storage.RedisHost = value
	case "redis_port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid redis_port value: %w", err)
		}
		c.Storage.RedisPort = port
	case "postgres_host":
		c.Storage.PostgresHost = value
	case "postgres_port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid postgres_port value: %w", err)
		}
		c.Storage.PostgresPort = port
	case "postgres_user":
		c.Storage.PostgresUser = value
	case "postgres_password":
		c.Storage.PostgresPassword = value
	case "postgres_database":
		c.Storage.PostgresDatabase = value
	default:
		return fmt.Errorf("unknown storage key: %s", key)
	}
	return nil
}

func (c *Config) setTrackingValue(key, value string) error {
	switch key {
	case "poll_interval_seconds":
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid poll_interval_seconds value: %w", err)
		}
		c.Tracking.PollIntervalSeconds = seconds
	default:
		return fmt.Errorf("unknown tracking key: %s", key)
	}
	return nil
}

// Timeout returns the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval returns the order tracking poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tracking.PollIntervalSeconds) * time.Second
}

// RedisAddr returns the host:port address of the Redis storage backend.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Storage.RedisHost, c.Storage.RedisPort)
}

// DatabaseURL returns a PostgreSQL connection URL for the storage backend.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Storage.PostgresUser, c.Storage.PostgresPassword,
		c.Storage.PostgresHost, c.Storage.PostgresPort, c.Storage.PostgresDatabase)
}
