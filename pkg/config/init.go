package config

import (
	"fmt"
	"os"
)

// InitConfig scaffolds a sample configuration file at the default location
// ($XDG_CONFIG_HOME/hgfsd/config.yaml). It refuses to overwrite an existing
// file unless force is true.
//
// Like Validate, the teacher's retrieved pkg/config carries a test
// (init_test.go) exercising InitConfig/InitConfigToPath but not the
// functions themselves; this mirrors the call shape that test expects,
// grounded on SaveConfig's already-adapted write path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath scaffolds a sample configuration file at path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()
	return SaveConfig(cfg, path)
}
