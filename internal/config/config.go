package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration. All fields have working defaults;
// a config.yaml file overrides them and environment variables win over both.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	DatabasePath   string   `yaml:"database_path"`
	CatalogBaseURL string   `yaml:"catalog_base_url"`
	CatalogRate    float64  `yaml:"catalog_requests_per_second"`
	GeminiModel    string   `yaml:"gemini_model"`
	GeminiKeyFile  string   `yaml:"gemini_key_file"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		DatabasePath:   "deckbuilder.db",
		CatalogBaseURL: "",
		CatalogRate:    10,
		CORSOrigins:    []string{"*"},
	}
}

// Load reads configuration from the given YAML file if it exists, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if v := os.Getenv("DECKBUILDER_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DECKBUILDER_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("DECKBUILDER_CATALOG_URL"); v != "" {
		cfg.CatalogBaseURL = v
	}

	return cfg, nil
}
