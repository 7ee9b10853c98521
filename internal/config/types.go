// Package config loads zonewarden's configuration using Viper, layered
// highest to lowest priority:
//  1. Command-line flags (see cmd/zonewarden/main.go)
//  2. Environment variables (ZONEWARDEN_ prefix)
//  3. A YAML config file, if one is resolved
//  4. Hardcoded defaults
//
// Environment variables use underscore-separated keys, e.g.
// ZONEWARDEN_DNS_PORT maps to dns.port.
package config

// DNSConfig controls the UDP query server.
type DNSConfig struct {
	Host       string `yaml:"host"        mapstructure:"host"`
	Port       int    `yaml:"port"        mapstructure:"port"`
	DefaultTTL uint32 `yaml:"default_ttl" mapstructure:"default_ttl"`
}

// ManagementConfig controls the TCP control-plane listener.
type ManagementConfig struct {
	Host      string `yaml:"host"       mapstructure:"host"`
	Port      int    `yaml:"port"       mapstructure:"port"`
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token"`
}

// ZoneConfig points at the JSON zone-mapping file loaded at startup and on
// RELOAD.
type ZoneConfig struct {
	MappingsFile string `yaml:"mappings_file" mapstructure:"mappings_file"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level      string `yaml:"level"      mapstructure:"level"`
	Structured bool   `yaml:"structured" mapstructure:"structured"`
}

// Config is zonewarden's fully resolved configuration.
type Config struct {
	DNS        DNSConfig        `yaml:"dns"        mapstructure:"dns"`
	Management ManagementConfig `yaml:"management" mapstructure:"management"`
	Zone       ZoneConfig       `yaml:"zone"       mapstructure:"zone"`
	Logging    LoggingConfig    `yaml:"logging"    mapstructure:"logging"`
}
