package conf

import (
	"log/slog"

	"github.com/epivet/epivet-go/internal/errors"
)

// ValidateSettings checks the loaded settings for values the engine cannot
// operate with. It returns the first failure found.
func ValidateSettings(s *Settings) error {
	if s.Simulation.Population <= 0 {
		return errors.Newf("population must be greater than zero, got %d", s.Simulation.Population).
			Category(errors.CategoryValidation).
			Context("population", s.Simulation.Population).
			Component("conf").
			Build()
	}
	if s.Simulation.InitialInfected <= 0 || s.Simulation.InitialInfected > s.Simulation.Population {
		return errors.Newf("initial infected must be in 1..population, got %d", s.Simulation.InitialInfected).
			Category(errors.CategoryValidation).
			Context("initial_infected", s.Simulation.InitialInfected).
			Context("population", s.Simulation.Population).
			Component("conf").
			Build()
	}
	if s.Simulation.Gamma <= 0 {
		return errors.Newf("gamma must be greater than zero, got %f", s.Simulation.Gamma).
			Category(errors.CategoryValidation).
			Context("gamma", s.Simulation.Gamma).
			Component("conf").
			Build()
	}
	if s.Simulation.Environment.MigrationRate < 0 || s.Simulation.Environment.MigrationRate >= 1 {
		return errors.Newf("migration rate must be in [0,1), got %f", s.Simulation.Environment.MigrationRate).
			Category(errors.CategoryValidation).
			Context("migration_rate", s.Simulation.Environment.MigrationRate).
			Component("conf").
			Build()
	}
	if s.Risk.Threshold <= 0 {
		return errors.Newf("risk threshold must be greater than zero, got %f", s.Risk.Threshold).
			Category(errors.CategoryValidation).
			Context("threshold", s.Risk.Threshold).
			Component("conf").
			Build()
	}
	if s.Advisory.Enabled && s.Advisory.APIKey == "" {
		return errors.Newf("advisory service enabled but no API key configured").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if s.Ledger.MaxRecords < 0 {
		return errors.Newf("ledger max records must not be negative, got %d", s.Ledger.MaxRecords).
			Category(errors.CategoryValidation).
			Context("max_records", s.Ledger.MaxRecords).
			Component("conf").
			Build()
	}
	return nil
}

// LogLevel translates the configured log level name to a slog.Level.
// Unknown names fall back to info.
func (s *Settings) LogLevel() slog.Level {
	switch s.Main.Log.Level {
	case "trace":
		return slog.Level(-8)
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
