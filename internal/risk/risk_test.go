package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epivet/epivet-go/internal/errors"
)

func testConfig() Config {
	return Config{
		Threshold:        0.65,
		PoultryThreshold: 0.6,
		HighRiskObjects:  []string{"bird", "chicken", "duck"},
		HighRiskFeatures: []string{"diarrhea", "abnormal", "parasite", "blood", "mucus", "liquid"},
	}
}

func neutralHSV() HSVMeans {
	return HSVMeans{Hue: 90, Saturation: 0.4, Value: 0.5}
}

func TestScore_NeutralSample(t *testing.T) {
	record, err := Score(nil, nil, neutralHSV(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, LowRisk, record.RiskLevel)
	assert.Zero(t, record.Probability)
	assert.Zero(t, record.AvianFluRisk)
	assert.False(t, record.HueAlert)
	assert.False(t, record.SaturationAlert)
	assert.Equal(t, NoRiskAdvisory, record.Advisory)
}

// TestScore_AvianFluPresentation covers the low-hue high-saturation case that
// stacks the avian influenza term with both color bonuses.
func TestScore_AvianFluPresentation(t *testing.T) {
	hsv := HSVMeans{Hue: 35, Saturation: 0.7, Value: 0.5}

	record, err := Score(nil, nil, hsv, testConfig())
	require.NoError(t, err)

	// severity = (40-35)/10 + (0.7-0.65)/0.1 = 1.0, capped, so the term is
	// the full 0.3; hue and saturation bonuses add 0.3 each.
	assert.InDelta(t, 0.3, record.AvianFluRisk, 1e-12)
	assert.InDelta(t, 0.9, record.Probability, 1e-12)
	assert.Equal(t, HighRisk, record.RiskLevel)
	assert.True(t, record.HueAlert)
	assert.True(t, record.SaturationAlert)
	assert.Contains(t, record.Advisory, "digestive tract bleeding")
	assert.Contains(t, record.Advisory, "severe diarrhea")
}

func TestScore_Deterministic(t *testing.T) {
	detections := []Detection{{Label: "chicken", Confidence: 0.8}}
	classifications := []Classification{{Label: "watery diarrhea", Confidence: 75}}
	hsv := HSVMeans{Hue: 45, Saturation: 0.62, Value: 0.5}

	first, err := Score(detections, classifications, hsv, testConfig())
	require.NoError(t, err)
	second, err := Score(detections, classifications, hsv, testConfig())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestScore_PoultryThreshold pins the threshold switch: the same marginal
// score passes the lowered poultry threshold but not the default one.
func TestScore_PoultryThreshold(t *testing.T) {
	hsv := HSVMeans{Hue: 45, Saturation: 0.5, Value: 0.5}

	// chicken at 0.62 contributes 0.31; hue < 50 adds 0.3; total 0.61.
	poultry, err := Score([]Detection{{Label: "chicken", Confidence: 0.62}}, nil, hsv, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.61, poultry.Probability, 1e-12)
	assert.Equal(t, HighRisk, poultry.RiskLevel)

	// Identical score from a non-poultry high-risk object stays below the
	// default 0.65 threshold.
	nonPoultry, err := Score([]Detection{{Label: "bird", Confidence: 0.62}}, nil, hsv, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.61, nonPoultry.Probability, 1e-12)
	assert.Equal(t, LowRisk, nonPoultry.RiskLevel)
}

// TestScore_ConfidenceScales pins the asymmetric weighting: detector
// confidences are fractions, classifier confidences are percentages, and
// neither is rescaled before weighting.
func TestScore_ConfidenceScales(t *testing.T) {
	hsv := neutralHSV()

	withObject, err := Score([]Detection{{Label: "duck", Confidence: 0.8}}, nil, hsv, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, withObject.Probability, 1e-12)

	withFeature, err := Score(nil, []Classification{{Label: "diarrhea", Confidence: 80}}, hsv, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 16.0, withFeature.Probability, 1e-12)
	assert.Equal(t, HighRisk, withFeature.RiskLevel)
}

func TestScore_FilterCutoffs(t *testing.T) {
	hsv := neutralHSV()

	// Confidence exactly at the cutoff is excluded on both scales.
	record, err := Score(
		[]Detection{{Label: "chicken", Confidence: 0.5}},
		[]Classification{{Label: "diarrhea", Confidence: 50}},
		hsv, testConfig())
	require.NoError(t, err)

	assert.Empty(t, record.DetectedObjects)
	assert.Empty(t, record.DetectedFeatures)
	assert.Zero(t, record.Probability)
}

func TestScore_NonRiskLabelsIgnored(t *testing.T) {
	record, err := Score(
		[]Detection{{Label: "cow", Confidence: 0.99}},
		[]Classification{{Label: "normal consistency", Confidence: 95}},
		neutralHSV(), testConfig())
	require.NoError(t, err)

	assert.Empty(t, record.DetectedObjects)
	assert.Empty(t, record.DetectedFeatures)
	assert.Equal(t, LowRisk, record.RiskLevel)
}

func TestScore_KeywordMatchCaseInsensitive(t *testing.T) {
	record, err := Score(nil,
		[]Classification{{Label: "Bloody Mucus Streaks", Confidence: 70}},
		neutralHSV(), testConfig())
	require.NoError(t, err)

	// "Bloody Mucus" matches both the blood and mucus keywords but the
	// classification is counted once.
	require.Len(t, record.DetectedFeatures, 1)
	assert.InDelta(t, 14.0, record.Probability, 1e-12)
}

func TestScore_InvalidHSV(t *testing.T) {
	tests := []struct {
		name string
		hsv  HSVMeans
	}{
		{"hue_negative", HSVMeans{Hue: -1, Saturation: 0.5, Value: 0.5}},
		{"hue_at_bound", HSVMeans{Hue: 180, Saturation: 0.5, Value: 0.5}},
		{"saturation_above_one", HSVMeans{Hue: 90, Saturation: 1.01, Value: 0.5}},
		{"value_negative", HSVMeans{Hue: 90, Saturation: 0.5, Value: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(nil, nil, tt.hsv, testConfig())
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestAvianFluRisk(t *testing.T) {
	tests := []struct {
		name       string
		hue        float64
		saturation float64
		want       float64
	}{
		{"both_channels_normal", 90, 0.4, 0},
		{"hue_low_saturation_normal", 30, 0.5, 0},
		{"saturation_high_hue_normal", 90, 0.8, 0},
		{"just_past_both_limits", 39, 0.66, 0.3 * (0.1 + 0.1)},
		{"severity_capped", 20, 0.9, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, avianFluRisk(tt.hue, tt.saturation), 1e-9)
		})
	}
}

func TestBuildAdvisory(t *testing.T) {
	t.Run("no_rules", func(t *testing.T) {
		assert.Equal(t, NoRiskAdvisory, BuildAdvisory(90, 0.4))
	})

	t.Run("moderate_only", func(t *testing.T) {
		advisory := BuildAdvisory(45, 0.5)
		assert.Contains(t, advisory, "disinfect the environment")
		assert.NotContains(t, advisory, "bleeding")
		assert.NotContains(t, advisory, "electrolyte")
	})

	t.Run("all_rules", func(t *testing.T) {
		advisory := BuildAdvisory(30, 0.8)
		assert.Contains(t, advisory, "PCR testing")
		assert.Contains(t, advisory, "electrolyte supplements")
		assert.Contains(t, advisory, "disinfect the environment")
	})
}
