package store

// Config holds configuration for the Store.
type Config struct {
	// Table is the name of the single table holding all entities.
	// Default: "corkboard"
	Table string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Table: "corkboard"}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "corkboard"
	}
}
