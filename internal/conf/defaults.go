package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default risk scoring configuration. The object labels and feature keywords
// follow the avian influenza screening profile.
var (
	defaultHighRiskObjects  = []string{"bird", "chicken", "duck"}
	defaultHighRiskFeatures = []string{"diarrhea", "abnormal", "parasite", "blood", "mucus", "liquid"}
)

// DefaultSettings returns a Settings struct populated with default values.
func DefaultSettings() *Settings {
	s := &Settings{}

	s.Main.Name = "epivet"
	s.Main.Log.Path = "logs"
	s.Main.Log.Level = "info"

	s.Simulation.Species = "poultry"
	s.Simulation.Beta = 0.3
	s.Simulation.Gamma = 0.1
	s.Simulation.Population = 1000
	s.Simulation.InitialInfected = 1
	s.Simulation.Days = 100
	s.Simulation.Environment.Temperature = 20
	s.Simulation.Environment.Humidity = 60
	s.Simulation.Environment.MigrationRate = 0.005

	s.Risk.Threshold = 0.65
	s.Risk.PoultryThreshold = 0.6
	s.Risk.HighRiskObjects = append([]string(nil), defaultHighRiskObjects...)
	s.Risk.HighRiskFeatures = append([]string(nil), defaultHighRiskFeatures...)

	s.Advisory.Enabled = false
	s.Advisory.Endpoint = "https://api.deepseek.com/v1/chat/completions"
	s.Advisory.Model = "deepseek-chat"
	s.Advisory.Temperature = 0.7
	s.Advisory.MaxTokens = 2000
	s.Advisory.Timeout = 30 * time.Second

	s.Ledger.MaxRecords = 0

	s.Output.File.Enabled = false
	s.Output.File.Path = "output"
	s.Output.SQLite.Enabled = false
	s.Output.SQLite.Path = "epivet.db"

	return s
}

// setViperDefaults registers default values with viper so that partial config
// files and environment overrides merge cleanly.
func setViperDefaults() {
	s := DefaultSettings()

	viper.SetDefault("debug", s.Debug)
	viper.SetDefault("main.name", s.Main.Name)
	viper.SetDefault("main.log.path", s.Main.Log.Path)
	viper.SetDefault("main.log.level", s.Main.Log.Level)

	viper.SetDefault("simulation.species", s.Simulation.Species)
	viper.SetDefault("simulation.beta", s.Simulation.Beta)
	viper.SetDefault("simulation.gamma", s.Simulation.Gamma)
	viper.SetDefault("simulation.population", s.Simulation.Population)
	viper.SetDefault("simulation.initialinfected", s.Simulation.InitialInfected)
	viper.SetDefault("simulation.days", s.Simulation.Days)
	viper.SetDefault("simulation.environment.temperature", s.Simulation.Environment.Temperature)
	viper.SetDefault("simulation.environment.humidity", s.Simulation.Environment.Humidity)
	viper.SetDefault("simulation.environment.migrationrate", s.Simulation.Environment.MigrationRate)

	viper.SetDefault("risk.threshold", s.Risk.Threshold)
	viper.SetDefault("risk.poultrythreshold", s.Risk.PoultryThreshold)
	viper.SetDefault("risk.highriskobjects", s.Risk.HighRiskObjects)
	viper.SetDefault("risk.highriskfeatures", s.Risk.HighRiskFeatures)

	viper.SetDefault("advisory.enabled", s.Advisory.Enabled)
	viper.SetDefault("advisory.endpoint", s.Advisory.Endpoint)
	viper.SetDefault("advisory.model", s.Advisory.Model)
	viper.SetDefault("advisory.temperature", s.Advisory.Temperature)
	viper.SetDefault("advisory.maxtokens", s.Advisory.MaxTokens)
	viper.SetDefault("advisory.timeout", s.Advisory.Timeout)

	viper.SetDefault("ledger.maxrecords", s.Ledger.MaxRecords)

	viper.SetDefault("output.file.enabled", s.Output.File.Enabled)
	viper.SetDefault("output.file.path", s.Output.File.Path)
	viper.SetDefault("output.sqlite.enabled", s.Output.SQLite.Enabled)
	viper.SetDefault("output.sqlite.path", s.Output.SQLite.Path)
}

// createDefaultConfig writes a config.yaml populated with defaults to the
// given directory and points viper at it.
func createDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing default config: %w", err)
	}

	fmt.Println("Created default config file:", configPath)
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}
