package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// HomeDirName is the per-project directory holding cloneworks state
	HomeDirName = ".cloneworks"

	// ConfigFileName is the config file inside the home directory
	ConfigFileName = "config.yaml"

	// HomeEnvVar overrides the home directory lookup
	HomeEnvVar = "CLONEWORKS_HOME"
)

// GetHome returns the cloneworks home directory
// Priority order:
//  1. CLONEWORKS_HOME environment variable (if set)
//  2. .cloneworks in the nearest ancestor of the working directory that has one
//  3. .cloneworks in the working directory (may not exist)
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	current := cwd
	for {
		candidate := filepath.Join(current, HomeDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return filepath.Join(cwd, HomeDirName), nil
}

// DefaultConfigPath returns the config.yaml path inside the home directory
func DefaultConfigPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}
