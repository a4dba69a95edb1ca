// Package invalidation defines the events that purge cached image URLs.
package invalidation

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpPurgeAll = "purge_all"
)

type Event struct {
	Version  int       `json:"version"`
	Op       string    `json:"op"`
	ImageURL string    `json:"image_url,omitempty"`
	TS       time.Time `json:"ts"`
	Source   string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	switch e.Op {
	case OpPurgeAll:
		if strings.TrimSpace(e.ImageURL) != "" {
			return fmt.Errorf("purge_all must not carry image_url")
		}
		return nil
	case OpUpdate, OpDelete:
	default:
		return fmt.Errorf("op must be update|delete|purge_all")
	}
	raw := strings.TrimSpace(e.ImageURL)
	if raw == "" {
		return fmt.Errorf("image_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("image_url parse: %w", err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("image_url must be an absolute http(s) url")
	}
	return nil
}

// DedupeKey groups events whose ordering matters.
func (e Event) DedupeKey() string {
	if e.Op == OpPurgeAll {
		return "*"
	}
	return strings.TrimSpace(e.ImageURL)
}
