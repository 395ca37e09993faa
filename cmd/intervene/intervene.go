// Package intervene implements the control measure evaluation subcommand.
package intervene

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/intervention"
)

// Command returns the intervene subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var measures []string
	var days int
	var compare bool

	cmd := &cobra.Command{
		Use:   "intervene",
		Short: "Evaluate cost and effect of control measures",
		Long:  "Sums cost and transmission reduction of the selected control measures and reports the reproduction number change. With --compare, also simulates before and after series.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(settings, measures, days, compare)
		},
	}

	cmd.Flags().StringSliceVar(&measures, "measures", nil, "Control measures to evaluate (vaccination, isolation, sanitation, restriction)")
	cmd.Flags().IntVar(&days, "days", settings.Simulation.Days, "Days for the before/after comparison")
	cmd.Flags().BoolVar(&compare, "compare", false, "Simulate before/after series")

	return cmd
}

func runEvaluation(settings *conf.Settings, measures []string, days int, compare bool) error {
	if len(measures) == 0 {
		fmt.Println("Available measures:")
		for _, measure := range intervention.Catalog() {
			fmt.Printf("  %-12s cost %.0f, effectiveness %.0f%%, beta reduction %.0f%%\n",
				measure.ID, measure.Cost, measure.Effectiveness*100, measure.BetaReduction*100)
		}
		return nil
	}

	params := settings.SimulationParameters()

	evaluation, err := intervention.Evaluate(measures, params)
	if err != nil {
		return err
	}

	fmt.Printf("Measures:      %v\n", evaluation.Measures)
	fmt.Printf("Total cost:    %.0f\n", evaluation.TotalCost)
	fmt.Printf("R0 reduction:  %.1f%%\n", evaluation.R0ReductionPercent)
	fmt.Printf("New R0:        %.2f\n", evaluation.NewR0)

	if !compare {
		return nil
	}

	comparison, err := intervention.Compare(measures, params, settings.Environment(), days)
	if err != nil {
		return err
	}

	baselinePeak := comparison.Baseline.PeakInfected()
	mitigatedPeak := comparison.Mitigated.PeakInfected()
	fmt.Printf("\nPeak infected: %.0f (day %d) baseline, %.0f (day %d) with measures\n",
		baselinePeak.Infected, baselinePeak.Day,
		mitigatedPeak.Infected, mitigatedPeak.Day)

	if settings.Output.File.Enabled {
		if err := os.MkdirAll(settings.Output.File.Path, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		baselinePath := filepath.Join(settings.Output.File.Path, "baseline.csv")
		mitigatedPath := filepath.Join(settings.Output.File.Path, "mitigated.csv")

		baselineFile, err := os.Create(baselinePath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer baselineFile.Close()
		if err := comparison.Baseline.WriteCSV(baselineFile); err != nil {
			return err
		}

		mitigatedFile, err := os.Create(mitigatedPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer mitigatedFile.Close()
		if err := comparison.Mitigated.WriteCSV(mitigatedFile); err != nil {
			return err
		}

		fmt.Println("Comparison series written to", settings.Output.File.Path)
	}

	return nil
}
