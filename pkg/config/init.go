package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleConfig = `# distillery configuration
#
# Environment variables override file values:
#   DISTILLERY_LOGGING_LEVEL=DEBUG
#   DISTILLERY_DATA_ROOT=/srv/data

logging:
  level: INFO        # DEBUG, INFO, WARN, ERROR
  format: text       # text, json
  output: stdout     # stdout, stderr, or a file path

# Store assets are resolved under this root as
# <data_root>/<app>/<normalized store name>/{migrations,seeds}
data_root: /var/lib/distillery

runtime:
  # Started in order, each exactly once, before any store connection.
  subsystems: [tls, network, drivers]

stores:
  - name: primary
    app: myapp
    type: sqlite
    sqlite:
      path: /var/lib/distillery/myapp/primary.db

  # - name: billing
  #   app: myapp
  #   type: postgres
  #   pool_size: 1
  #   postgres:
  #     host: localhost
  #     port: 5432
  #     database: billing
  #     user: myapp
  #     password: secret
  #     ssl_mode: disable
`

// InitConfig writes a sample configuration file to the default location.
// Returns the path written.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a sample configuration file to the given path.
// Refuses to overwrite an existing file unless force is set.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
