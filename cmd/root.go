package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epivet/epivet-go/cmd/advisory"
	"github.com/epivet/epivet-go/cmd/analyze"
	"github.com/epivet/epivet-go/cmd/intervene"
	"github.com/epivet/epivet-go/cmd/serve"
	"github.com/epivet/epivet-go/cmd/simulate"
	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/species"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "epivet",
		Short: "EpiVet livestock disease analysis CLI",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		simulate.Command(settings),
		intervene.Command(settings),
		analyze.Command(settings),
		advisory.Command(settings),
		serve.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// The species profile supplies beta and gamma unless the caller
		// overrides them explicitly.
		if settings.Simulation.Species != "" {
			profile, err := species.Get(settings.Simulation.Species)
			if err != nil {
				return fmt.Errorf("unsupported species: %s", settings.Simulation.Species)
			}
			if !rootCmd.PersistentFlags().Changed("beta") {
				settings.Simulation.Beta = profile.Beta
			}
			if !rootCmd.PersistentFlags().Changed("gamma") {
				settings.Simulation.Gamma = profile.Gamma
			}
		}
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Simulation.Species, "species", viper.GetString("simulation.species"), "Species profile: poultry, swine or cattle")
	rootCmd.PersistentFlags().Float64Var(&settings.Simulation.Beta, "beta", viper.GetFloat64("simulation.beta"), "Transmission rate")
	rootCmd.PersistentFlags().Float64Var(&settings.Simulation.Gamma, "gamma", viper.GetFloat64("simulation.gamma"), "Recovery rate")
	rootCmd.PersistentFlags().IntVar(&settings.Simulation.Population, "population", viper.GetInt("simulation.population"), "Herd or flock size")
	rootCmd.PersistentFlags().IntVar(&settings.Simulation.InitialInfected, "infected", viper.GetInt("simulation.initialinfected"), "Infected individuals on day 0")
	rootCmd.PersistentFlags().Float64Var(&settings.Simulation.Environment.Temperature, "temperature", viper.GetFloat64("simulation.environment.temperature"), "Temperature in degrees Celsius")
	rootCmd.PersistentFlags().Float64Var(&settings.Simulation.Environment.Humidity, "humidity", viper.GetFloat64("simulation.environment.humidity"), "Relative humidity percent")
	rootCmd.PersistentFlags().Float64Var(&settings.Simulation.Environment.MigrationRate, "migration", viper.GetFloat64("simulation.environment.migrationrate"), "Daily migration fraction")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
