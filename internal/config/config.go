package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ResolveConfigPath decides which config file to load: an explicit flag
// value wins, then the ZONEWARDEN_CONFIG environment variable, otherwise
// no file is loaded and defaults plus environment variables apply.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return os.Getenv("ZONEWARDEN_CONFIG")
}

// Load builds a Config from the layered sources described in the package
// doc, validating the result before returning it.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ZONEWARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// A variable set to the empty string counts as set, so validate sees
	// and rejects it instead of silently falling back to the default.
	v.AllowEmptyEnv(true)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dns.host", "0.0.0.0")
	v.SetDefault("dns.port", 2053)
	v.SetDefault("dns.default_ttl", 3600)

	v.SetDefault("management.host", "0.0.0.0")
	v.SetDefault("management.port", 8053)
	v.SetDefault("management.auth_token", "123456")

	v.SetDefault("zone.mappings_file", "mappings.json")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
}

func validate(cfg *Config) error {
	if cfg.DNS.Port <= 0 || cfg.DNS.Port > 65535 {
		return fmt.Errorf("config: dns.port %d out of range", cfg.DNS.Port)
	}
	if cfg.Management.Port <= 0 || cfg.Management.Port > 65535 {
		return fmt.Errorf("config: management.port %d out of range", cfg.Management.Port)
	}
	if cfg.Management.AuthToken == "" {
		return fmt.Errorf("config: management.auth_token must not be empty")
	}
	if cfg.Zone.MappingsFile == "" {
		return fmt.Errorf("config: zone.mappings_file must not be empty")
	}
	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("config: logging.level %q not recognized", cfg.Logging.Level)
	}
	return nil
}
