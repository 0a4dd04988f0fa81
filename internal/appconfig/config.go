package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"pkt.systems/remsh/schema"
	"pkt.systems/remsh/session"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int          `mapstructure:"config_version" yaml:"config_version"`
	Server        ServerConfig `mapstructure:"server" yaml:"server"`
	Client        ClientConfig `mapstructure:"client" yaml:"client"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ServerConfig controls the executor HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// RootDir seeds each session's working directory. Empty means the
	// executor process working directory.
	RootDir string `mapstructure:"root_dir" yaml:"root_dir"`
}

// ClientConfig controls the terminal client.
type ClientConfig struct {
	URL     string   `mapstructure:"url" yaml:"url"`
	Lexicon []string `mapstructure:"lexicon" yaml:"lexicon"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Server: ServerConfig{
			Addr:    fmt.Sprintf(":%d", schema.DefaultPort),
			RootDir: "",
		},
		Client: ClientConfig{
			URL:     fmt.Sprintf("ws://127.0.0.1:%d%s", schema.DefaultPort, schema.WSPath),
			Lexicon: session.DefaultLexicon(),
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".remsh", "config.yaml"), nil
}
