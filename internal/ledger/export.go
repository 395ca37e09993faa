package ledger

import (
	"fmt"
	"io"
	"strings"
)

// csvHeader is the fixed column order of the exported history table.
const csvHeader = "timestamp,risk_level,probability,avian_flu_risk,hue_mean,saturation_mean,value_mean,hue_alert,saturation_alert,detected_objects,detected_features\n"

// WriteCSV writes the retained history to the given destination in CSV
// format with a fixed column order.
func (l *Ledger) WriteCSV(w io.Writer) error {
	if _, err := io.WriteString(w, csvHeader); err != nil {
		return fmt.Errorf("failed to write header to CSV: %w", err)
	}

	for _, record := range l.Snapshot() {
		objects := make([]string, 0, len(record.DetectedObjects))
		for _, obj := range record.DetectedObjects {
			objects = append(objects, obj.Label)
		}
		features := make([]string, 0, len(record.DetectedFeatures))
		for _, feat := range record.DetectedFeatures {
			features = append(features, feat.Label)
		}

		line := fmt.Sprintf("%s,%s,%.4f,%.4f,%.1f,%.2f,%.2f,%t,%t,%s,%s\n",
			record.Timestamp.Format("2006-01-02 15:04"),
			record.RiskLevel,
			record.Probability,
			record.AvianFluRisk,
			record.HueMean,
			record.SaturationMean,
			record.ValueMean,
			record.HueAlert,
			record.SaturationAlert,
			strings.Join(objects, ";"),
			strings.Join(features, ";"))

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write record to CSV: %w", err)
		}
	}

	return nil
}
