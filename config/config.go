package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the host-side tunables for the control/emulation stack:
// the audio clock, the default gain staging, the cross-fade rate, and the
// monitor UI's display preferences.
type Config struct {
	Audio struct {
		SampleRateHz    int `toml:"sample_rate_hz"`
		InputGainQ105   int `toml:"input_gain_q10_5"`
		OutputGainQ105  int `toml:"output_gain_q10_5"`
		CrossFadeStep   int `toml:"cross_fade_step"`
	} `toml:"audio"`

	Link struct {
		StockLUTs int `toml:"stock_luts"`
	} `toml:"link"`

	Monitor struct {
		RefreshHz        int    `toml:"refresh_hz"`
		ColorOutput      bool   `toml:"color_output"`
		CommandLogLines  int    `toml:"command_log_lines"`
		NumberFormat     string `toml:"number_format"` // hex, dec
	} `toml:"monitor"`
}

// DefaultConfig returns a configuration with the reference values used
// throughout the scenarios this stack is validated against: 44.1 kHz,
// Q10.5 gains of 0x0400 (0.5), and a 64-unit cross-fade step.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Audio.SampleRateHz = 44100
	cfg.Audio.InputGainQ105 = 0x0400
	cfg.Audio.OutputGainQ105 = 0x0400
	cfg.Audio.CrossFadeStep = 64

	cfg.Link.StockLUTs = 2

	cfg.Monitor.RefreshHz = 30
	cfg.Monitor.ColorOutput = true
	cfg.Monitor.CommandLogLines = 200
	cfg.Monitor.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "mfpga")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "mfpga")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "mfpga", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "mfpga", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, returning
// defaults untouched if the file doesn't exist yet.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
