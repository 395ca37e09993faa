// Package simulate implements the disease spread simulation subcommand.
package simulate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/epidemic"
)

// Command returns the simulate subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var days int
	var csvOutput bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the SIR disease spread simulation",
		Long:  "Simulates disease spread through the configured population and prints the day-by-day compartment counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(settings, days, csvOutput)
		},
	}

	cmd.Flags().IntVar(&days, "days", settings.Simulation.Days, "Number of days to simulate")
	cmd.Flags().BoolVar(&csvOutput, "csv", false, "Write CSV instead of a table")

	return cmd
}

func runSimulation(settings *conf.Settings, days int, csvOutput bool) error {
	params := settings.SimulationParameters()
	env := settings.Environment()

	result, err := epidemic.Simulate(params, env, days)
	if err != nil {
		return err
	}

	if settings.Output.File.Enabled {
		if err := os.MkdirAll(settings.Output.File.Path, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(settings.Output.File.Path, "simulation.csv")
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		if err := result.WriteCSV(file); err != nil {
			return err
		}
		fmt.Println("Output written to", path)
		return nil
	}

	if csvOutput {
		return result.WriteCSV(os.Stdout)
	}

	if err := result.WriteTable(os.Stdout); err != nil {
		return err
	}

	peak := result.PeakInfected()
	fmt.Printf("\nR0: %.2f  Peak infected: %.0f on day %d  Final recovered: %.1f%%\n",
		params.R0(), peak.Infected, peak.Day,
		result.FinalRecoveredRate(params.Population)*100)
	return nil
}
