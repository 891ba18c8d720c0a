package config

import "github.com/urfave/cli/v3"

// Server holds HTTP listener configuration
type Server struct {
	Addr             string
	WebhookSecret    string `masq:"secret"`
	TriggeredMessage string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":3000",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("BUILDHOOK_ADDR"),
		},
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "Secret for webhook signature verification (disabled when empty)",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("BUILDHOOK_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "triggered-message",
			Usage:       "Response body sent when a build is triggered",
			Value:       "Builds triggered",
			Destination: &c.TriggeredMessage,
			Sources:     cli.EnvVars("BUILDHOOK_TRIGGERED_MESSAGE"),
		},
	}
}
