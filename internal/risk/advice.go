package risk

import (
	"fmt"
	"strings"
)

// NoRiskAdvisory is returned when no advisory rule triggers.
const NoRiskAdvisory = "No high-risk features detected."

// BuildAdvisory assembles the advisory text from independent rules on hue
// and saturation. Each triggered rule contributes one paragraph.
func BuildAdvisory(hue, saturation float64) string {
	var paragraphs []string

	if hue < 40 {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Abnormally low hue detected (H=%.1f), indicating possible digestive tract bleeding. Recommended: isolate affected animals immediately and collect samples for PCR testing.", hue))
	}
	if saturation > 0.65 {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Abnormally high saturation detected (S=%.2f), indicating likely severe diarrhea. Recommended: check drinking water hygiene and add electrolyte supplements.", saturation))
	}
	if hue < 50 || saturation > 0.6 {
		paragraphs = append(paragraphs,
			"Moderate risk features present. Recommended: disinfect the environment twice daily and keep monitoring herd temperature.")
	}

	if len(paragraphs) == 0 {
		return NoRiskAdvisory
	}
	return strings.Join(paragraphs, "\n\n")
}
