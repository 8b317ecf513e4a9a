// Package config provides configuration for the dashboard client
// from command-line flags, an optional JSON config file and
// environment variables; each later layer overrides the earlier ones,
// so the environment wins over the file, which wins over flags.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/caarlos0/env/v6"
)

// Options holds the configuration values for the client.
type Options struct {
	// ServerURL is the base URL of the shortener API server.
	ServerURL string `json:"server_url" env:"LINKDASH_SERVER"`

	// StateFile is the path of the local state file (logged-in
	// marker, theme, token).
	StateFile string `json:"state_file" env:"LINKDASH_STATE"`

	// PerPage is the default page size for paginated lists.
	PerPage int `json:"per_page" env:"LINKDASH_PER_PAGE"`

	// LogLevel sets the zap log level.
	LogLevel string `json:"log_level" env:"LINKDASH_LOG_LEVEL"`

	// Config is the path to the config file.
	Config string `json:"-" env:"LINKDASH_CONFIG"`
}

var options = &Options{}

func init() {
	flag.StringVar(&options.ServerURL, "s", "http://localhost:8080", "base URL of the API server")
	flag.StringVar(&options.StateFile, "state", "linkdash.json", "path to the local state file")
	flag.IntVar(&options.PerPage, "per-page", 10, "default page size")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional config file and
// the environment, and returns a pointer to the resulting Options.
func Parse() *Options {
	flag.Parse()

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if err := env.Parse(options); err != nil {
		log.Fatalf("error while parsing environment: %v", err)
	}

	return options
}
