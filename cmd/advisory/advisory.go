// Package advisory implements the natural-language advisory subcommand.
package advisory

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	advisoryclient "github.com/epivet/epivet-go/internal/advisory"
	"github.com/epivet/epivet-go/internal/conf"
)

// Command returns the advisory subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advisory [question...]",
		Short: "Ask the remote advisory service a question",
		Long:  "Sends the question with the current parameter snapshot to the remote advisory service. Identical questions under identical parameters are answered from the cache.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvisory(cmd, settings, strings.Join(args, " "))
		},
	}

	return cmd
}

func runAdvisory(cmd *cobra.Command, settings *conf.Settings, query string) error {
	if !settings.Advisory.Enabled {
		return fmt.Errorf("advisory service is disabled; enable it in the configuration")
	}

	client, err := advisoryclient.NewClient(advisoryclient.ConfigFromSettings(settings))
	if err != nil {
		return err
	}
	defer client.Close()

	snapshot := advisoryclient.Snapshot{
		Params: settings.SimulationParameters(),
		Env:    settings.Environment(),
	}

	text, err := client.GetAdvisory(cmd.Context(), query, snapshot)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}
