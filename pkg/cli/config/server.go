package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr     string
	Interval time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("GHTASK_ADDR"),
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "Interval of periodic sync runs, 0 disables them",
			Value:       5 * time.Minute,
			Destination: &c.Interval,
			Sources:     cli.EnvVars("GHTASK_INTERVAL"),
		},
	}
}
