package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config contains tool settings and instance defaults. Everything ambient
// (tool location, folder, poll budget) lives here so business logic never
// reads hidden process state.
type Config struct {
	// YcBin is the provisioning tool binary, resolved on PATH
	YcBin    string `yaml:"yc_bin"`
	FolderID string `yaml:"folder_id"`

	// Default VM parameters, overridable per instance
	DefaultZone         string `yaml:"default_zone"`
	DefaultPlatformID   string `yaml:"default_platform_id"`
	DefaultCores        int    `yaml:"default_cores"`
	DefaultMemoryGB     int64  `yaml:"default_memory_gb"`
	DefaultDiskGB       int64  `yaml:"default_disk_gb"`
	DefaultDiskType     string `yaml:"default_disk_type"`
	DefaultCoreFraction int    `yaml:"default_core_fraction"`

	// Status poll budget after create
	PollTimeoutSeconds  int `yaml:"poll_timeout_seconds"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// Concurrency limit for apply manifests
	MaxWorkers int `yaml:"max_workers"`
}

// Load loads configuration from a YAML file, falling back to built-in
// defaults when the file is absent. CONFIG_PATH selects the file
// (default ycensure.yaml); YC_BIN and YC_FOLDER_ID env vars win over both.
func Load() (*Config, error) {
	config := &Config{
		YcBin:               "yc",
		DefaultZone:         "ru-central1-a",
		DefaultPlatformID:   "standard-v2",
		DefaultCores:        2,
		DefaultMemoryGB:     2,
		DefaultDiskGB:       10,
		DefaultDiskType:     "network-hdd",
		DefaultCoreFraction: 5,
		PollTimeoutSeconds:  90,
		PollIntervalSeconds: 2,
		MaxWorkers:          5,
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "ycensure.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	// Expand environment variables in string fields
	config.YcBin = os.ExpandEnv(config.YcBin)
	config.FolderID = os.ExpandEnv(config.FolderID)
	config.DefaultZone = os.ExpandEnv(config.DefaultZone)

	// Env overrides win over the file
	if bin := os.Getenv("YC_BIN"); bin != "" {
		config.YcBin = bin
	}
	if folderID := os.Getenv("YC_FOLDER_ID"); folderID != "" {
		config.FolderID = folderID
	}

	if config.PollTimeoutSeconds < 1 {
		return nil, fmt.Errorf("poll_timeout_seconds must be >= 1")
	}
	if config.PollIntervalSeconds < 1 {
		return nil, fmt.Errorf("poll_interval_seconds must be >= 1")
	}
	if config.MaxWorkers < 1 {
		return nil, fmt.Errorf("max_workers must be >= 1")
	}

	return config, nil
}
