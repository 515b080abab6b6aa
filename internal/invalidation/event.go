// Package invalidation defines the tile invalidation event published by
// the tile-generation pipeline when it re-renders an image.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	Version    int       `json:"version"`
	Identifier string    `json:"identifier"`
	TS         time.Time `json:"ts"`
	// Seq increases per identifier; replays and reordered duplicates
	// with a lower or equal value are skipped.
	Seq    uint64 `json:"seq"`
	Source string `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	if strings.TrimSpace(e.Identifier) == "" {
		return fmt.Errorf("identifier is required")
	}
	if strings.Contains(e.Identifier, "/") {
		return fmt.Errorf("identifier must be a single path segment")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
