package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ngrigoriev/zonewarden/internal/config"
	"github.com/ngrigoriev/zonewarden/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values. Each is applied over
// the layered config only when set, so an unset flag never clobbers a
// file or environment value.
type cliFlags struct {
	configPath   string
	dnsHost      string
	dnsPort      int
	mgmtHost     string
	mgmtPort     int
	mappingsFile string
	defaultTTL   int
	authToken    string
	logLevel     string
	jsonLogs     bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.dnsHost, "dns-host", "", "Override DNS query server bind host")
	flag.IntVar(&f.dnsPort, "dns-port", 0, "Override DNS query server bind port")
	flag.StringVar(&f.mgmtHost, "management-host", "", "Override management server bind host")
	flag.IntVar(&f.mgmtPort, "management-port", 0, "Override management server bind port")
	flag.StringVar(&f.mappingsFile, "mappings", "", "Override path to the zone mappings JSON file")
	flag.IntVar(&f.defaultTTL, "default-ttl", 0, "Override the TTL applied to answers")
	flag.StringVar(&f.authToken, "auth-token", "", "Override the management server shared secret")
	flag.StringVar(&f.logLevel, "log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.dnsHost != "" {
		cfg.DNS.Host = f.dnsHost
	}
	if f.dnsPort != 0 {
		cfg.DNS.Port = f.dnsPort
	}
	if f.mgmtHost != "" {
		cfg.Management.Host = f.mgmtHost
	}
	if f.mgmtPort != 0 {
		cfg.Management.Port = f.mgmtPort
	}
	if f.mappingsFile != "" {
		cfg.Zone.MappingsFile = f.mappingsFile
	}
	if f.defaultTTL != 0 {
		cfg.DNS.DefaultTTL = uint32(f.defaultTTL)
	}
	if f.authToken != "" {
		cfg.Management.AuthToken = f.authToken
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
	}
}

func run() error {
	flags := parseFlags()

	configPath := config.ResolveConfigPath(flags.configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	return server.Run(cfg)
}
