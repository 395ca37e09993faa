// Package intervention evaluates the cost and transmission effect of
// disease control measures.
package intervention

import (
	"math"
	"sort"

	"github.com/epivet/epivet-go/internal/epidemic"
	"github.com/epivet/epivet-go/internal/errors"
)

// Measure is one entry of the control measure catalog.
type Measure struct {
	ID            string  `json:"id"`
	Cost          float64 `json:"cost"`           // currency units
	Effectiveness float64 `json:"effectiveness"`  // fraction of cases prevented in field trials
	BetaReduction float64 `json:"beta_reduction"` // fraction removed from the transmission rate
}

// The catalog is fixed and never mutated at runtime.
var catalog = map[string]Measure{
	"vaccination": {ID: "vaccination", Cost: 5000, Effectiveness: 0.7, BetaReduction: 0.3},
	"isolation":   {ID: "isolation", Cost: 2000, Effectiveness: 0.9, BetaReduction: 0.5},
	"sanitation":  {ID: "sanitation", Cost: 1000, Effectiveness: 0.6, BetaReduction: 0.2},
	"restriction": {ID: "restriction", Cost: 3000, Effectiveness: 0.8, BetaReduction: 0.4},
}

// minBeta is the floor applied to the reduced transmission rate so stacked
// measures cannot drive beta negative.
const minBeta = 0.01

// Evaluation is the derived cost/benefit summary of a measure selection.
// Recomputed on every request, never persisted.
type Evaluation struct {
	TotalCost          float64  `json:"total_cost"`
	R0ReductionPercent float64  `json:"r0_reduction_percent"`
	NewR0              float64  `json:"new_r0"`
	NewBeta            float64  `json:"new_beta"`
	Measures           []string `json:"measures"`
}

// Catalog returns every known measure ordered by id.
func Catalog() []Measure {
	measures := make([]Measure, 0, len(catalog))
	for _, measure := range catalog {
		measures = append(measures, measure)
	}
	sort.Slice(measures, func(i, j int) bool {
		return measures[i].ID < measures[j].ID
	})
	return measures
}

// Get returns the catalog entry for the given measure id.
func Get(id string) (Measure, bool) {
	measure, ok := catalog[id]
	return measure, ok
}

// Evaluate sums cost and transmission reduction across the selected measures
// and reports the resulting change of the reproduction number. Unknown ids
// are ignored. Side-effect free; params are taken by value and never mutated.
func Evaluate(selected []string, params epidemic.Parameters) (Evaluation, error) {
	if params.Gamma == 0 {
		return Evaluation{}, errors.Newf("gamma must not be zero when computing R0").
			Category(errors.CategoryValidation).
			Context("gamma", params.Gamma).
			Component("intervention").
			Build()
	}

	var totalCost, totalBetaReduction float64
	applied := make([]string, 0, len(selected))
	for _, id := range selected {
		measure, ok := catalog[id]
		if !ok {
			continue
		}
		totalCost += measure.Cost
		totalBetaReduction += measure.BetaReduction
		applied = append(applied, id)
	}

	originalR0 := params.Beta / params.Gamma
	newBeta := math.Max(minBeta, params.Beta*(1-totalBetaReduction))
	newR0 := newBeta / params.Gamma

	var reductionPercent float64
	if originalR0 != 0 {
		reductionPercent = (originalR0 - newR0) / originalR0 * 100
	}

	return Evaluation{
		TotalCost:          totalCost,
		R0ReductionPercent: reductionPercent,
		NewR0:              newR0,
		NewBeta:            newBeta,
		Measures:           applied,
	}, nil
}

// Comparison holds the before/after simulation series for a measure selection.
type Comparison struct {
	Evaluation Evaluation      `json:"evaluation"`
	Baseline   epidemic.Result `json:"baseline"`
	Mitigated  epidemic.Result `json:"mitigated"`
}

// Compare runs the simulator twice, once with the baseline parameters and
// once with the reduced transmission rate from the evaluated measures, and
// returns both series. Both runs use independent parameter values so the
// caller's parameters are never touched.
func Compare(selected []string, params epidemic.Parameters, env epidemic.Environment, days int) (Comparison, error) {
	evaluation, err := Evaluate(selected, params)
	if err != nil {
		return Comparison{}, err
	}

	baseline, err := epidemic.Simulate(params, env, days)
	if err != nil {
		return Comparison{}, err
	}

	mitigatedParams := params
	mitigatedParams.Beta = evaluation.NewBeta
	mitigated, err := epidemic.Simulate(mitigatedParams, env, days)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Evaluation: evaluation,
		Baseline:   baseline,
		Mitigated:  mitigated,
	}, nil
}
