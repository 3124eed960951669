package client

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPollTimeout means the record never reached a terminal state
	// within the configured attempts.
	ErrPollTimeout = errors.New("generation timed out")

	// ErrGenerationFailed means the record reached the failed state.
	// The returned thumbnail carries the server's error message.
	ErrGenerationFailed = errors.New("generation failed")
)

// PollConfig bounds a polling loop. Zero values use the defaults.
type PollConfig struct {
	// Interval is the initial wait between requests (default 2s).
	Interval time.Duration
	// MaxAttempts caps the number of requests (default 30).
	MaxAttempts int
	// Multiplier grows the interval after each attempt (default 1.5).
	Multiplier float64
	// MaxInterval caps the grown interval (default 30s).
	MaxInterval time.Duration
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 30
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1.5
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
	return c
}

// Poll fetches the record until its image reference is present or it
// reaches a terminal state. Each wait grows by the multiplier, capped
// at MaxInterval. A timer is used instead of a ticker so a slow
// response never overlaps the next request.
func (c *Client) Poll(ctx context.Context, id string, cfg PollConfig) (*Thumbnail, error) {
	cfg = cfg.withDefaults()
	interval := cfg.Interval

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		thumb, err := c.GetThumbnail(ctx, id)
		if err != nil {
			return nil, err
		}

		if thumb.ImageURL != "" || thumb.Status == "completed" {
			return thumb, nil
		}
		if thumb.Status == "failed" {
			return thumb, ErrGenerationFailed
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		interval = time.Duration(float64(interval) * cfg.Multiplier)
		if interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}

	return nil, ErrPollTimeout
}
