package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epivet/epivet-go/internal/errors"
)

func TestGet(t *testing.T) {
	tests := []struct {
		id             string
		beta           float64
		gamma          float64
		incubationDays int
	}{
		{"poultry", 0.35, 0.08, 2},
		{"swine", 0.25, 0.12, 4},
		{"cattle", 0.15, 0.15, 7},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			profile, err := Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.id, profile.ID)
			assert.Equal(t, tt.beta, profile.Beta)
			assert.Equal(t, tt.gamma, profile.Gamma)
			assert.Equal(t, tt.incubationDays, profile.IncubationDays)
		})
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("alpaca")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAll(t *testing.T) {
	profiles := All()
	require.Len(t, profiles, 3)

	assert.Equal(t, "cattle", profiles[0].ID)
	assert.Equal(t, "poultry", profiles[1].ID)
	assert.Equal(t, "swine", profiles[2].ID)
}

func TestExists(t *testing.T) {
	assert.True(t, Exists("swine"))
	assert.False(t, Exists("alpaca"))
	assert.False(t, Exists(""))
}
