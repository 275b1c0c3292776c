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

// Settings is the top-level configuration for cascade.
type Settings struct {
	Registry  string         `yaml:"registry"`  // Path to the module registry file
	Dashboard string         `yaml:"dashboard"` // Path to the README dashboard (optional)
	Policy    string         `yaml:"policy"`    // Bump policy: "patch" (default) or "minor"
	Source    SourceSettings `yaml:"source"`
}

// SourceSettings describes where remote module metadata lives.
type SourceSettings struct {
	Organization      string `yaml:"organization"`       // Hosting org containing the module repos
	Token             string `yaml:"token"`              // Inline, ${ENV_VAR}, or file path
	Branch            string `yaml:"branch"`             // Branch to read metadata from (default: master)
	RawBaseURL        string `yaml:"raw_base_url"`       // Raw file host (default: raw.githubusercontent.com)
	VersionFile       string `yaml:"version_file"`       // File holding the "version=" property
	BuildFile         string `yaml:"build_file"`         // File declaring dependency references
	DependencyPattern string `yaml:"dependency_pattern"` // Substring marking a dependency line
}

const (
	defaultBranch      = "master"
	defaultRawBaseURL  = "https://raw.githubusercontent.com"
	defaultVersionFile = "gradle.properties"
	defaultBuildFile   = "build.gradle"
)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding
// environment variables and resolving token file paths.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Source.Token = ResolveToken(settings.Source.Token)
	settings.applyDefaults()

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
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
		".cascade.yaml",
		".cascade.yml",
		"cascade.yaml",
		"cascade.yml",
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

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
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

func (s *Settings) applyDefaults() {
	if s.Source.Branch == "" {
		s.Source.Branch = defaultBranch
	}
	if s.Source.RawBaseURL == "" {
		s.Source.RawBaseURL = defaultRawBaseURL
	}
	if s.Source.VersionFile == "" {
		s.Source.VersionFile = defaultVersionFile
	}
	if s.Source.BuildFile == "" {
		s.Source.BuildFile = defaultBuildFile
	}
	if s.Source.DependencyPattern == "" && s.Source.Organization != "" {
		s.Source.DependencyPattern = s.Source.Organization + "/module"
	}
}

// validate checks for required configuration values.
func (s *Settings) validate() error {
	if s.Registry == "" {
		return errors.New("registry path is required")
	}
	if _, err := ParseBumpPolicy(s.Policy); err != nil {
		return err
	}
	return nil
}

// BumpPolicy returns the parsed policy; validate guarantees it parses.
func (s *Settings) BumpPolicy() BumpPolicy {
	policy, _ := ParseBumpPolicy(s.Policy)
	return policy
}
