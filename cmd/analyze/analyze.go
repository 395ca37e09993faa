// Package analyze implements the fecal sample scoring subcommand.
package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/epivet/epivet-go/internal/analysis"
	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/ledger"
	"github.com/epivet/epivet-go/internal/risk"
)

// sampleInput is the JSON file format consumed by the analyze command: the
// typed output of the external detector and classifier plus the HSV means
// computed at the image-processing boundary.
type sampleInput struct {
	Detections      []risk.Detection      `json:"detections"`
	Classifications []risk.Classification `json:"classifications"`
	HSV             risk.HSVMeans         `json:"hsv"`
}

// Command returns the analyze subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [sample.json]",
		Short: "Score the disease risk of a fecal sample",
		Long:  "Reads detector/classifier output and HSV statistics from a JSON file, scores the disease risk and appends the record to the analysis history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(settings, args[0])
		},
	}

	return cmd
}

func runAnalysis(settings *conf.Settings, inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read sample file: %w", err)
	}

	var input sampleInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("failed to parse sample file: %w", err)
	}

	history := ledger.New(settings.Ledger.MaxRecords)

	var store *ledger.Store
	var recorder analysis.Recorder
	if settings.Output.SQLite.Enabled {
		store = ledger.NewStore(settings.Output.SQLite.Path)
		if err := store.Open(); err != nil {
			return err
		}
		defer store.Close()
		recorder = store
	}

	analyzer := analysis.New(settings, history, recorder)

	record, err := analyzer.Analyze(input.Detections, input.Classifications, input.HSV)
	if err != nil {
		return err
	}

	fmt.Printf("Risk level:     %s\n", record.RiskLevel)
	fmt.Printf("Risk score:     %.4f\n", record.Probability)
	fmt.Printf("Avian flu risk: %.4f\n", record.AvianFluRisk)
	fmt.Printf("HSV means:      H=%.1f S=%.2f V=%.2f\n", record.HueMean, record.SaturationMean, record.ValueMean)
	if record.HueAlert || record.SaturationAlert {
		fmt.Println("Avian influenza indicators present")
	}
	fmt.Printf("\n%s\n", record.Advisory)

	if settings.Output.File.Enabled {
		if err := os.MkdirAll(settings.Output.File.Path, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(settings.Output.File.Path, "analyses.csv")
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		if err := history.WriteCSV(file); err != nil {
			return err
		}
		fmt.Println("History written to", path)
	}

	return nil
}
