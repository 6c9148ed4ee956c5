package models

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A descriptor written to the JSON column and read back must compare equal to
// the original within floating-point tolerance, or matching distances drift.
func TestDescriptorColumnRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	original := make([]float64, DescriptorSize)
	for i := range original {
		original[i] = rng.Float64()*2 - 1
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	face := Face{EmployeeId: 1, Descriptor: raw}

	var loaded []float64
	require.NoError(t, json.Unmarshal(face.Descriptor, &loaded))
	require.Len(t, loaded, DescriptorSize)
	assert.InDeltaSlice(t, original, loaded, 1e-6)
}
