// Package species holds the static registry of species epidemic profiles.
package species

import (
	"sort"

	"github.com/epivet/epivet-go/internal/errors"
)

// Profile describes the baseline epidemic parameters of a species.
type Profile struct {
	ID             string  `json:"id"`
	Beta           float64 `json:"beta"`            // baseline transmission rate
	Gamma          float64 `json:"gamma"`           // baseline recovery rate
	IncubationDays int     `json:"incubation_days"` // mean incubation period
}

// The registry is fixed at build time and never mutated at runtime.
var registry = map[string]Profile{
	"poultry": {ID: "poultry", Beta: 0.35, Gamma: 0.08, IncubationDays: 2},
	"swine":   {ID: "swine", Beta: 0.25, Gamma: 0.12, IncubationDays: 4},
	"cattle":  {ID: "cattle", Beta: 0.15, Gamma: 0.15, IncubationDays: 7},
}

// Get returns the profile for the given species id.
func Get(id string) (Profile, error) {
	profile, ok := registry[id]
	if !ok {
		return Profile{}, errors.Newf("unknown species: %s", id).
			Category(errors.CategoryNotFound).
			Context("species", id).
			Component("species").
			Build()
	}
	return profile, nil
}

// All returns every registered profile ordered by id.
func All() []Profile {
	profiles := make([]Profile, 0, len(registry))
	for _, profile := range registry {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ID < profiles[j].ID
	})
	return profiles
}

// Exists reports whether the given species id is registered.
func Exists(id string) bool {
	_, ok := registry[id]
	return ok
}
