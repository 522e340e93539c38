package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// CatalogPath locates the pattern card JSON loaded at module init.
	CatalogPath         string `json:"catalog_path"`
	TurnDurationSeconds int    `json:"turn_duration_seconds"`
	// MinPlayers is the smallest roster a table will start with.
	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`
	// EmptyTicksToStop configures how many empty match loop ticks pass before
	// an abandoned table terminates itself.
	EmptyTicksToStop int `json:"empty_ticks_to_stop"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, defaults when no file
// was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return &GameConfig{
			CatalogPath:         "data/patterns.json",
			TurnDurationSeconds: 30,
			MinPlayers:          2,
			MaxPlayers:          4,
			EmptyTicksToStop:    30,
		}
	}
	return cfg
}

// TurnDuration returns the configured per-turn clock in seconds, with a safe
// default when unset.
func TurnDuration() int {
	c := GetGameConfig()
	if c.TurnDurationSeconds <= 0 {
		return 30
	}
	return c.TurnDurationSeconds
}
