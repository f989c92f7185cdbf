package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Z_][A-Z0-9_]*)`)

// Load reads and parses a configuration file from the given path.
// It applies default values and validates the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses configuration from YAML data.
// It applies default values and validates the configuration.
// Supports environment variable substitution with ${VAR_NAME} or $VAR_NAME syntax.
func Parse(data []byte) (*Config, error) {
	data = substituteEnvVars(data)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} and $VAR_NAME patterns with environment variable values.
func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		matchStr := string(match)
		var varName string
		if strings.HasPrefix(matchStr, "${") {
			varName = matchStr[2 : len(matchStr)-1]
		} else {
			varName = matchStr[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return []byte(value)
		}

		// Leave unknown variables as they are
		return match
	})
}

// applyDefaults ensures all required fields have sensible default values.
func applyDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	for i := range cfg.Firewalls {
		fw := &cfg.Firewalls[i]
		if fw.Port == 0 {
			fw.Port = sonicos.DefaultPort
		}
		if fw.Timeout == 0 {
			fw.Timeout = sonicos.DefaultTimeout
		}
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	var errors []string

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (must be trace, debug, info, warning, or error)", cfg.Logging.Level))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format: %s (must be text or json)", cfg.Logging.Format))
	}

	ids := make(map[string]bool)
	for i, fw := range cfg.Firewalls {
		prefix := fmt.Sprintf("firewall[%d]", i)

		if fw.ID == "" {
			errors = append(errors, fmt.Sprintf("%s: id is required", prefix))
		} else if ids[fw.ID] {
			errors = append(errors, fmt.Sprintf("%s: duplicate id '%s'", prefix, fw.ID))
		} else {
			ids[fw.ID] = true
		}

		if fw.Host == "" {
			errors = append(errors, fmt.Sprintf("%s: host is required", prefix))
		} else if strings.Contains(fw.Host, "://") {
			errors = append(errors, fmt.Sprintf("%s: host '%s' must not include a scheme", prefix, fw.Host))
		}
		if fw.Port < 1 || fw.Port > 65535 {
			errors = append(errors, fmt.Sprintf("%s: invalid port %d (must be 1-65535)", prefix, fw.Port))
		}
		if fw.Username == "" {
			errors = append(errors, fmt.Sprintf("%s: username is required", prefix))
		}
		if fw.Timeout < 0 {
			errors = append(errors, fmt.Sprintf("%s: invalid timeout %s", prefix, fw.Timeout))
		}
		if fw.MaxFailedLogins < 0 {
			errors = append(errors, fmt.Sprintf("%s: invalid max_failed_logins %d (must be >= 0)", prefix, fw.MaxFailedLogins))
		}
		if _, err := sonicos.ParseCommitPolicy(fw.CommitPolicy); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v (must be on-success or legacy)", prefix, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
