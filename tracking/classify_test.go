package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drumtracker/types"
)

func defaultZoneSet(t *testing.T) types.ZoneSet {
	t.Helper()
	zones, err := types.NewZoneSet(types.DefaultZones())
	require.NoError(t, err)
	return zones
}

func TestClassifyReferenceZones(t *testing.T) {
	t.Parallel()

	zones := defaultZoneSet(t)

	tests := []struct {
		name string
		x, y float64
		want types.Prediction
	}{
		{"zone 0 center", 677, 180, 0},
		{"zone 1 center", 526, 170, 1},
		{"zone 2 center", 610, 306, 2},
		{"zone 3 center", 380, 260, 3},
		{"origin", 0, 0, types.None},
		{"far right", 799, 10, types.None},
		{"zone 0 box edge", 731, 234, 0},
		{"just past zone 0 box", 731.5, 180, types.None},
		{"box corner outside circle", 727, 230, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(zones, tt.x, tt.y))
		})
	}
}

func TestClassifyOverlapPrefersEarlierZone(t *testing.T) {
	t.Parallel()

	a := types.Zone{ID: 7, CenterX: 0, CenterY: 0, Radius: 10}
	b := types.Zone{ID: 3, CenterX: 9, CenterY: 9, Radius: 10}

	first, err := types.NewZoneSet([]types.Zone{a, b})
	require.NoError(t, err)
	// (8, 8) is much closer to b's center, but a comes first
	assert.Equal(t, types.Prediction(7), Classify(first, 8, 8))

	swapped, err := types.NewZoneSet([]types.Zone{b, a})
	require.NoError(t, err)
	assert.Equal(t, types.Prediction(3), Classify(swapped, 8, 8))

	// reference zones 1 and 2 overlap around (560, 230)
	assert.Equal(t, types.Prediction(1), Classify(defaultZoneSet(t), 560, 230))
}

func TestClassifyBlob(t *testing.T) {
	t.Parallel()

	zones := defaultZoneSet(t)
	blob := types.Blob{CenterX: 380, CenterY: 260, Radius: 6, Area: 100}

	assert.Equal(t, types.Prediction(3), ClassifyBlob(zones, blob, true))
	assert.Equal(t, types.None, ClassifyBlob(zones, blob, false), "no blob means no zone")
}
