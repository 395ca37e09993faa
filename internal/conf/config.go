// Package conf loads and validates application settings from YAML
// configuration files and environment variables via viper.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings holds all configurable values for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string // node name, used to identify the source of exported records
		Log  struct {
			Path  string // directory for service log files
			Level string // trace, debug, info, warn, error
		}
	}

	Simulation struct {
		Species         string  // default species profile id: poultry, swine or cattle
		Beta            float64 // transmission rate
		Gamma           float64 // recovery rate
		Population      int     // herd or flock size
		InitialInfected int     // infected individuals on day 0
		Days            int     // default number of days to simulate

		Environment struct {
			Temperature   float64 // degrees Celsius
			Humidity      float64 // relative humidity percent
			MigrationRate float64 // daily migration fraction, [0,1)
		}
	}

	Risk struct {
		Threshold        float64  // default risk threshold when no poultry object is detected
		PoultryThreshold float64  // lowered threshold applied when a poultry-type object is detected
		HighRiskObjects  []string // detector labels counted as high risk
		HighRiskFeatures []string // classifier label keywords counted as high risk
	}

	Advisory struct {
		Enabled     bool          // true to enable the remote advisory service
		Endpoint    string        // chat completions endpoint URL
		APIKey      string        // bearer token
		Model       string        // remote model identifier
		Temperature float64       // sampling temperature
		MaxTokens   int           // response token budget
		Timeout     time.Duration // per-request timeout
	}

	Ledger struct {
		MaxRecords int // retention cap for in-memory history, 0 keeps everything
	}

	Output struct {
		File struct {
			Enabled bool   // true to enable file output
			Path    string // directory to write exported tables to
		}

		SQLite struct {
			Enabled bool   // true to persist analysis records to sqlite
			Path    string // path to sqlite database
		}
	}
}

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settings := DefaultSettings()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := getDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("epivet")
	viper.AutomaticEnv()

	setViperDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// config file not found, create one with defaults
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// getDefaultConfigPaths returns the directories searched for config.yaml,
// preferring the user config directory and falling back to the working
// directory.
func getDefaultConfigPaths() ([]string, error) {
	var paths []string

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "epivet"))
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("error getting working directory: %w", err)
	}
	paths = append(paths, wd)

	return paths, nil
}
