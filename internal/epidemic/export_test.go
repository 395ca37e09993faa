package epidemic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epivet/epivet-go/internal/errors"
)

func TestWriteCSV_Format(t *testing.T) {
	result := Result{
		{Day: 0, Susceptible: 999, Infected: 1, Recovered: 0},
		{Day: 1, Susceptible: 998.7003, Infected: 1.1997, Recovered: 0.1},
	}

	var buf strings.Builder
	require.NoError(t, result.WriteCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day,Susceptible,Infected,Recovered", lines[0])
	assert.Equal(t, "0,999.000000,1.000000,0.000000", lines[1])
	assert.Equal(t, "1,998.700300,1.199700,0.100000", lines[2])
}

func TestParseCSV_RoundTrip(t *testing.T) {
	original, err := Simulate(baselineParams(), baselineEnv(), 30)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, original.WriteCSV(&buf))

	parsed, err := ParseCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, parsed, len(original))

	for i := range original {
		assert.Equal(t, original[i].Day, parsed[i].Day)
		assert.InDelta(t, original[i].Susceptible, parsed[i].Susceptible, 1e-6)
		assert.InDelta(t, original[i].Infected, parsed[i].Infected, 1e-6)
		assert.InDelta(t, original[i].Recovered, parsed[i].Recovered, 1e-6)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short_row", "Day,Susceptible,Infected,Recovered\n0,999,1\n"},
		{"bad_day", "Day,Susceptible,Infected,Recovered\nx,999,1,0\n"},
		{"bad_float", "Day,Susceptible,Infected,Recovered\n0,999,what,0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.IsCategory(err, errors.CategoryResponseParsing))
		})
	}
}

func TestWriteTable(t *testing.T) {
	result := Result{{Day: 0, Susceptible: 999, Infected: 1, Recovered: 0}}

	var buf strings.Builder
	require.NoError(t, result.WriteTable(&buf))
	assert.Contains(t, buf.String(), "Day\tSusceptible\tInfected\tRecovered")
	assert.Contains(t, buf.String(), "0\t999.0\t1.0\t0.0")
}
