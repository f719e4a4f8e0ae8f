package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultCacheTTLHours    = 24
	defaultBuildTimeoutSecs = 300
	defaultToolServerImage  = "ghcr.io/github/github-mcp-server"
	defaultTokenEnvVar      = "GITHUB_PERSONAL_ACCESS_TOKEN"
	defaultCacheDirName     = "smartupdate"
)

// Settings is the top-level configuration for smartupdate.
type Settings struct {
	Token      string             `yaml:"token"` // Inline, ${ENV_VAR}, or file path
	Cache      CacheSettings      `yaml:"cache"`
	Build      BuildSettings      `yaml:"build"`
	ToolServer ToolServerSettings `yaml:"tool_server"`
}

// CacheSettings holds the artifact cache configuration. The TTL is a single
// process-wide value applied uniformly; there is no per-entry override.
type CacheSettings struct {
	Dir      string `yaml:"dir"`
	TTLHours int    `yaml:"ttl_hours"`
}

// BuildSettings holds the build/test runner configuration.
type BuildSettings struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ToolServerSettings describes how the external tool server is launched.
type ToolServerSettings struct {
	Runtime string `yaml:"runtime"` // container runtime binary; auto-detected when empty
	Image   string `yaml:"image"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding environment
// variables, resolving token file paths, and applying defaults.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Token = resolveToken(settings.Token)
	settings.applyDefaults()

	return &settings, nil
}

// DefaultSettings returns a configuration built entirely from defaults and
// the token environment variable, for runs without a config file.
func DefaultSettings() *Settings {
	settings := &Settings{Token: os.Getenv(defaultTokenEnvVar)}
	settings.applyDefaults()
	return settings
}

func (it *Settings) applyDefaults() {
	if it.Token == "" {
		it.Token = os.Getenv(defaultTokenEnvVar)
	}
	if it.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			it.Cache.Dir = filepath.Join(home, ".cache", defaultCacheDirName)
		} else {
			it.Cache.Dir = filepath.Join(os.TempDir(), defaultCacheDirName)
		}
	}
	if it.Cache.TTLHours <= 0 {
		it.Cache.TTLHours = defaultCacheTTLHours
	}
	if it.Build.TimeoutSeconds <= 0 {
		it.Build.TimeoutSeconds = defaultBuildTimeoutSecs
	}
	if it.ToolServer.Image == "" {
		it.ToolServer.Image = defaultToolServerImage
	}
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".smartupdate.yaml",
		".smartupdate.yml",
		"smartupdate.yaml",
		"smartupdate.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}
