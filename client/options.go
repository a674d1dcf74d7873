package client

import (
	"github.com/benbjohnson/clock"
)

// Logger is satisfied by *log.Logger. One line is printed per round trip.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type Option func(*Client)

// WithLogger sets the round trip logger. Nothing is logged by default.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger == nil {
			logger = nopLogger{}
		}

		c.logger = logger
	}
}

// WithClock replaces the clock used to measure round trips.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		c.clock = clk
	}
}
