package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppDir is the per-user directory under the home directory.
const AppDir = ".melonsmash"

// LoadMelon loads the gameplay configuration.
// Search order: customPath -> ~/.melonsmash/configs/melon.yaml -> ./configs/melon.yaml -> embedded default
// Files only need to carry the keys they change; everything else keeps its
// default value.
func LoadMelon(customPath string) (MelonConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(ExpandHome(customPath))
		if err != nil {
			return MelonConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseMelon(data)
		if err != nil {
			return MelonConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("melon.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseMelon(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/melon.yaml"); err == nil {
		if cfg, err := ParseMelon(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseMelon(defaultMelonYAML)
	if err != nil {
		return DefaultMelonConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseMelon decodes a YAML document over the defaults and validates it.
func ParseMelon(data []byte) (MelonConfig, error) {
	cfg := DefaultMelonConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MelonConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return MelonConfig{}, err
	}
	return cfg, nil
}

// Marshal renders a configuration as YAML.
func Marshal(cfg MelonConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, AppDir, "configs", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
