// Package epidemic implements the discrete-time SIR simulator used for
// livestock disease spread forecasting.
package epidemic

import (
	"github.com/epivet/epivet-go/internal/errors"
)

// Parameters holds the inputs of one simulation run. Parameters are passed
// by value so a run never observes mutation from another caller.
type Parameters struct {
	Beta            float64 `json:"beta"`             // transmission rate
	Gamma           float64 `json:"gamma"`            // recovery rate
	Population      int     `json:"population"`       // total herd or flock size
	InitialInfected int     `json:"initial_infected"` // infected individuals on day 0
}

// R0 returns the basic reproduction number beta/gamma. Returns 0 when gamma
// is zero; callers that need a hard failure use the intervention evaluator.
func (p Parameters) R0() float64 {
	if p.Gamma == 0 {
		return 0
	}
	return p.Beta / p.Gamma
}

// Environment modifies the effective transmission rate. Independent of species.
type Environment struct {
	Temperature   float64 `json:"temperature"`    // degrees Celsius
	Humidity      float64 `json:"humidity"`       // relative humidity percent
	MigrationRate float64 `json:"migration_rate"` // daily migration fraction, [0,1)
}

// DayRecord is the state of the three compartments on one day.
type DayRecord struct {
	Day         int     `json:"day"`
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
}

// Result is the ordered day-by-day output of a simulation run.
// Day 0 is the initial condition.
type Result []DayRecord

// AdjustedBeta applies the environment adjustment to the baseline
// transmission rate. Baseline conditions (20 degrees C, 60 % humidity)
// leave beta unchanged.
func AdjustedBeta(beta float64, env Environment) float64 {
	return beta * (1 +
		0.02*(env.Temperature-20)/10 +
		0.015*(env.Humidity-60)/20)
}

// Simulate advances the SIR recurrence for the requested number of days and
// returns one record per day. It is a pure function of its inputs: no
// randomness, no I/O, reproducible bit for bit.
//
// The migration term added to the infected compartment intentionally uses
// the susceptible count from two days back (one day at t=1). This lag is
// part of the model definition and is pinned by a unit test; do not change
// it without recalibrating.
func Simulate(params Parameters, env Environment, days int) (Result, error) {
	if err := validate(params, days); err != nil {
		return nil, err
	}

	adjustedBeta := AdjustedBeta(params.Beta, env)
	population := float64(params.Population)

	records := make(Result, days)
	records[0] = DayRecord{
		Day:         0,
		Susceptible: population - float64(params.InitialInfected),
		Infected:    float64(params.InitialInfected),
		Recovered:   0,
	}

	for t := 1; t < days; t++ {
		prev := records[t-1]

		lag := t - 2
		if lag < 0 {
			lag = 0
		}
		susceptibleLag := records[lag].Susceptible

		newInfected := adjustedBeta * prev.Susceptible * prev.Infected / population
		newRecovered := params.Gamma * prev.Infected

		records[t] = DayRecord{
			Day:         t,
			Susceptible: prev.Susceptible - newInfected - env.MigrationRate*prev.Susceptible,
			Infected:    prev.Infected + newInfected - newRecovered + env.MigrationRate*susceptibleLag,
			Recovered:   prev.Recovered + newRecovered,
		}
	}

	return records, nil
}

func validate(params Parameters, days int) error {
	switch {
	case params.Population <= 0:
		return errors.Newf("population must be greater than zero, got %d", params.Population).
			Category(errors.CategoryValidation).
			Context("population", params.Population).
			Component("epidemic").
			Build()
	case params.InitialInfected <= 0:
		return errors.Newf("initial infected must be greater than zero, got %d", params.InitialInfected).
			Category(errors.CategoryValidation).
			Context("initial_infected", params.InitialInfected).
			Component("epidemic").
			Build()
	case params.InitialInfected > params.Population:
		return errors.Newf("initial infected %d exceeds population %d", params.InitialInfected, params.Population).
			Category(errors.CategoryValidation).
			Context("initial_infected", params.InitialInfected).
			Context("population", params.Population).
			Component("epidemic").
			Build()
	case days < 1:
		return errors.Newf("days must be at least 1, got %d", days).
			Category(errors.CategoryValidation).
			Context("days", days).
			Component("epidemic").
			Build()
	}
	return nil
}

// PeakInfected returns the record with the highest infected count.
// Returns the zero record for an empty result.
func (r Result) PeakInfected() DayRecord {
	var peak DayRecord
	for _, record := range r {
		if record.Infected > peak.Infected {
			peak = record
		}
	}
	return peak
}

// FinalRecoveredRate returns the share of the population recovered on the
// last simulated day.
func (r Result) FinalRecoveredRate(population int) float64 {
	if len(r) == 0 || population <= 0 {
		return 0
	}
	return r[len(r)-1].Recovered / float64(population)
}
