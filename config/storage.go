package config

import "fmt"

// StorageConfig defines settings for state and history persistence.
type StorageConfig struct {
	// Backend selects the store type: "jsonl", "jsonl_rotating" or "postgres".
	Backend string `json:"backend"`
	// StatePath is the fleet state file location for file backends.
	StatePath string `json:"state_path"`
	// HistoryPath is the delivery history file location for file backends.
	HistoryPath string `json:"history_path"`
	// DatabaseURL is the connection string for the postgres backend.
	DatabaseURL string `json:"database_url"`
	// MaxSizeMB triggers rotation when the history file exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.StatePath == "" {
		c.StatePath = "fleet_state.json"
	}
	if c.HistoryPath == "" {
		c.HistoryPath = "history.jsonl"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c StorageConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "jsonl_rotating":
		if c.StatePath == "" || c.HistoryPath == "" {
			return fmt.Errorf("state_path and history_path are required")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %s", c.Backend)
	}
	return nil
}
