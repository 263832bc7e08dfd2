package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Defaults applied to missing settings.
const (
	DefaultBaselineBranch = "main"
	DefaultBranchPrefix   = "patchforge/reconcile"
	DefaultAnchorWindow   = 3
)

// Settings is the top-level configuration for patchforge. Every field is
// optional; zero values fall back to the defaults above.
type Settings struct {
	// BaselineBranch is the branch the offset workflow diffs against.
	BaselineBranch string `yaml:"baseline_branch"`
	// BranchPrefix names ephemeral reconciliation branches.
	BranchPrefix string `yaml:"branch_prefix"`
	// AnchorWindow is the search radius around a frame's expected line.
	AnchorWindow int `yaml:"anchor_window"`
	// TargetDir resolves patch target paths; empty means the repo root.
	TargetDir string `yaml:"target_dir"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	return &Settings{
		BaselineBranch: DefaultBaselineBranch,
		BranchPrefix:   DefaultBranchPrefix,
		AnchorWindow:   DefaultAnchorWindow,
	}
}

// NewSettings reads and parses a configuration file, expanding ${ENV_VAR}
// references and filling defaults.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	var settings Settings
	if unmarshalErr := yaml.Unmarshal([]byte(expanded), &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

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
		".patchforge.yaml",
		".patchforge.yml",
		"patchforge.yaml",
		"patchforge.yml",
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

func (it *Settings) applyDefaults() {
	if it.BaselineBranch == "" {
		it.BaselineBranch = DefaultBaselineBranch
	}
	if it.BranchPrefix == "" {
		it.BranchPrefix = DefaultBranchPrefix
	}
	if it.AnchorWindow == 0 {
		it.AnchorWindow = DefaultAnchorWindow
	}
}

func (it *Settings) validate() error {
	if it.AnchorWindow < 0 {
		return fmt.Errorf("anchor_window must not be negative, got %d", it.AnchorWindow)
	}
	return nil
}
