// ===============================
// internal/config/config.go - Application Configuration
// ===============================

package config

import (
	"fmt"
	"os"
	"strings"
)

// R2Config holds Cloudflare R2 configuration
type R2Config struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// FeedConfig describes the static channel information for the RSS feed
type FeedConfig struct {
	Title       string
	Description string
	Author      string
	Language    string
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Environment string
	Port        string

	// Storage configuration
	DBPath        string
	UploadDir     string
	ImportDir     string // optional drop directory, importer disabled when empty
	StorageDriver string // "local" or "r2"

	// R2 Storage configuration (only required for the r2 driver)
	R2Config R2Config

	// Public address episodes are reachable at (feed enclosures, player URLs)
	PublicBaseURL string

	// CORS configuration
	AllowedOrigins []string

	// RSS feed metadata
	Feed FeedConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Environment:   getEnv("GIN_MODE", "debug"),
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./podcast.db"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		ImportDir:     getEnv("IMPORT_DIR", ""),
		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		R2Config: R2Config{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", "podcastmedia"),
		},
		Feed: FeedConfig{
			Title:       getEnv("FEED_TITLE", "Podcast Catalog"),
			Description: getEnv("FEED_DESCRIPTION", ""),
			Author:      getEnv("FEED_AUTHOR", ""),
			Language:    getEnv("FEED_LANGUAGE", "en"),
		},
	}

	if config.Feed.Description == "" {
		config.Feed.Description = config.Feed.Title
	}

	// Set public URL for R2
	if config.R2Config.AccountID != "" && config.R2Config.BucketName != "" {
		config.R2Config.PublicURL = fmt.Sprintf("https://%s.%s.r2.cloudflarestorage.com",
			config.R2Config.BucketName, config.R2Config.AccountID)
	}

	// Parse allowed origins
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	config.AllowedOrigins = strings.Split(originsStr, ",")
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	// Validate required configuration
	switch config.StorageDriver {
	case "local":
		// nothing beyond the defaults
	case "r2":
		if config.R2Config.AccountID == "" || config.R2Config.AccessKey == "" || config.R2Config.SecretKey == "" {
			return nil, ErrMissingR2Config
		}
	default:
		return nil, ConfigError{Message: fmt.Sprintf("unknown STORAGE_DRIVER %q (want local or r2)", config.StorageDriver)}
	}

	if config.DBPath == "" {
		return nil, ErrMissingDBPath
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Configuration errors
var (
	ErrMissingDBPath   = ConfigError{Message: "DB_PATH must not be empty"}
	ErrMissingR2Config = ConfigError{Message: "R2 configuration (R2_ACCOUNT_ID, R2_ACCESS_KEY, R2_SECRET_KEY) is required for STORAGE_DRIVER=r2"}
)

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
