// Package risk scores the disease risk implied by a fecal-sample image from
// detector output, classifier output and HSV color statistics.
//
// The engine never runs detection or classification itself; callers invoke
// the external models and pass their typed results in.
package risk

import (
	"strings"
	"time"

	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/errors"
)

// RiskLevel is the categorical verdict of one analysis.
type RiskLevel string

const (
	HighRisk RiskLevel = "high"
	LowRisk  RiskLevel = "low"
)

// Detection is one labeled object from the external detector.
// Confidence is on the [0,1] scale.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classification is one labeled feature from the external classifier.
// Confidence is on the [0,100] percentage scale; the scale difference to
// Detection is part of the risk formula's calibration and must not be
// normalized away.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// HSVMeans are the mean color statistics of the analyzed image. Hue uses the
// OpenCV 8-bit convention [0,180); saturation and value are pre-normalized
// to [0,1]. This contract is fixed at the image-processing boundary.
type HSVMeans struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

// hueUpperBound is the exclusive limit of the OpenCV 8-bit hue channel.
const hueUpperBound = 180

// Config holds the static risk scoring configuration.
type Config struct {
	Threshold        float64  // verdict threshold when no poultry object is detected
	PoultryThreshold float64  // lowered threshold when a poultry-type object is detected
	HighRiskObjects  []string // detector labels counted as high risk
	HighRiskFeatures []string // classifier label keywords counted as high risk
}

// poultryLabels are the detector labels that trigger the lowered verdict
// threshold.
var poultryLabels = []string{"chicken", "duck"}

// ConfigFromSettings builds the scoring configuration from loaded settings.
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		Threshold:        s.Risk.Threshold,
		PoultryThreshold: s.Risk.PoultryThreshold,
		HighRiskObjects:  s.Risk.HighRiskObjects,
		HighRiskFeatures: s.Risk.HighRiskFeatures,
	}
}

// Record is the immutable outcome of one fecal-sample analysis.
type Record struct {
	ID               string           `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	Probability      float64          `json:"probability"` // additive risk score, not bounded to [0,1]
	DetectedObjects  []Detection      `json:"detected_objects"`
	DetectedFeatures []Classification `json:"detected_features"`
	HueMean          float64          `json:"hue_mean"`
	SaturationMean   float64          `json:"saturation_mean"`
	ValueMean        float64          `json:"value_mean"`
	AvianFluRisk     float64          `json:"avian_flu_risk"`
	HueAlert         bool             `json:"hue_alert"`
	SaturationAlert  bool             `json:"saturation_alert"`
	Advisory         string           `json:"advisory"`
}

// Score fuses detector output, classifier output and color statistics into a
// risk verdict. Pure function of its inputs; identical inputs always produce
// identical scores.
func Score(detections []Detection, classifications []Classification, hsv HSVMeans, config Config) (Record, error) {
	if err := validateHSV(hsv); err != nil {
		return Record{}, err
	}

	riskObjects := filterRiskObjects(detections, config.HighRiskObjects)
	riskFeatures := filterRiskFeatures(classifications, config.HighRiskFeatures)

	avianFluRisk := avianFluRisk(hsv.Hue, hsv.Saturation)

	totalRisk := avianFluRisk
	for _, obj := range riskObjects {
		totalRisk += obj.Confidence * 0.5
	}
	for _, feat := range riskFeatures {
		totalRisk += feat.Confidence * 0.2
	}
	if hsv.Hue < 50 {
		totalRisk += 0.3
	}
	if hsv.Saturation > 0.6 {
		totalRisk += 0.3
	}

	// A detected poultry object lowers the verdict threshold.
	threshold := config.Threshold
	if hasPoultryObject(riskObjects) {
		threshold = config.PoultryThreshold
	}

	level := LowRisk
	if totalRisk > threshold {
		level = HighRisk
	}

	return Record{
		RiskLevel:        level,
		Probability:      totalRisk,
		DetectedObjects:  riskObjects,
		DetectedFeatures: riskFeatures,
		HueMean:          hsv.Hue,
		SaturationMean:   hsv.Saturation,
		ValueMean:        hsv.Value,
		AvianFluRisk:     avianFluRisk,
		HueAlert:         hsv.Hue < 40,
		SaturationAlert:  hsv.Saturation > 0.65,
		Advisory:         BuildAdvisory(hsv.Hue, hsv.Saturation),
	}, nil
}

func validateHSV(hsv HSVMeans) error {
	switch {
	case hsv.Hue < 0 || hsv.Hue >= hueUpperBound:
		return errors.Newf("hue mean %f outside [0,%d)", hsv.Hue, hueUpperBound).
			Category(errors.CategoryValidation).
			Context("hue_mean", hsv.Hue).
			Component("risk").
			Build()
	case hsv.Saturation < 0 || hsv.Saturation > 1:
		return errors.Newf("saturation mean %f outside [0,1]", hsv.Saturation).
			Category(errors.CategoryValidation).
			Context("saturation_mean", hsv.Saturation).
			Component("risk").
			Build()
	case hsv.Value < 0 || hsv.Value > 1:
		return errors.Newf("value mean %f outside [0,1]", hsv.Value).
			Category(errors.CategoryValidation).
			Context("value_mean", hsv.Value).
			Component("risk").
			Build()
	}
	return nil
}

// filterRiskObjects keeps detections whose label is a configured high-risk
// object with confidence above 0.5.
func filterRiskObjects(detections []Detection, highRisk []string) []Detection {
	var objects []Detection
	for _, det := range detections {
		if det.Confidence <= 0.5 {
			continue
		}
		for _, label := range highRisk {
			if det.Label == label {
				objects = append(objects, det)
				break
			}
		}
	}
	return objects
}

// filterRiskFeatures keeps classifications whose label contains a high-risk
// keyword (case-insensitive) with confidence above 50 percent.
func filterRiskFeatures(classifications []Classification, keywords []string) []Classification {
	var features []Classification
	for _, class := range classifications {
		if class.Confidence <= 50 {
			continue
		}
		label := strings.ToLower(class.Label)
		for _, keyword := range keywords {
			if strings.Contains(label, strings.ToLower(keyword)) {
				features = append(features, class)
				break
			}
		}
	}
	return features
}

// avianFluRisk returns the avian influenza specific risk term. Low hue plus
// high saturation matches the typical presentation; the term scales with how
// far both channels sit past their alert limits, capped at 0.3.
func avianFluRisk(hue, saturation float64) float64 {
	if hue >= 40 || saturation <= 0.65 {
		return 0
	}
	severity := (40-hue)/10 + (saturation-0.65)/0.1
	if severity > 1.0 {
		severity = 1.0
	}
	return 0.3 * severity
}

func hasPoultryObject(objects []Detection) bool {
	for _, obj := range objects {
		for _, label := range poultryLabels {
			if obj.Label == label {
				return true
			}
		}
	}
	return false
}
