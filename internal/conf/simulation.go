package conf

import (
	"github.com/epivet/epivet-go/internal/epidemic"
)

// SimulationParameters builds the simulator parameter set from the loaded
// settings. Returned by value; callers own their copy.
func (s *Settings) SimulationParameters() epidemic.Parameters {
	return epidemic.Parameters{
		Beta:            s.Simulation.Beta,
		Gamma:           s.Simulation.Gamma,
		Population:      s.Simulation.Population,
		InitialInfected: s.Simulation.InitialInfected,
	}
}

// Environment builds the simulator environment factors from the loaded
// settings.
func (s *Settings) Environment() epidemic.Environment {
	return epidemic.Environment{
		Temperature:   s.Simulation.Environment.Temperature,
		Humidity:      s.Simulation.Environment.Humidity,
		MigrationRate: s.Simulation.Environment.MigrationRate,
	}
}
