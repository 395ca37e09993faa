// Package serve implements the API server subcommand.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	advisoryclient "github.com/epivet/epivet-go/internal/advisory"
	"github.com/epivet/epivet-go/internal/analysis"
	"github.com/epivet/epivet-go/internal/api"
	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/ledger"
)

// Command returns the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis engine over HTTP",
		Long:  "Starts the JSON API consumed by the dashboard: simulation, intervention evaluation, sample analysis and advisory endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings, address)
		},
	}

	cmd.Flags().StringVar(&address, "address", ":8080", "Listen address")

	return cmd
}

func runServer(settings *conf.Settings, address string) error {
	history := ledger.New(settings.Ledger.MaxRecords)

	var recorder analysis.Recorder
	if settings.Output.SQLite.Enabled {
		store := ledger.NewStore(settings.Output.SQLite.Path)
		if err := store.Open(); err != nil {
			return err
		}
		defer store.Close()
		recorder = store
	}

	analyzer := analysis.New(settings, history, recorder)

	var client *advisoryclient.Client
	if settings.Advisory.Enabled {
		var err error
		client, err = advisoryclient.NewClient(advisoryclient.ConfigFromSettings(settings))
		if err != nil {
			return fmt.Errorf("failed to initialize advisory client: %w", err)
		}
		defer client.Close()
	}

	controller := api.New(settings, analyzer, client)
	return controller.Start(address)
}
