package tracking

import "drumtracker/types"

// Classify returns the id of the first zone whose bounding box contains
// (x, y), or types.None. The test is the square around each circle, not the
// circle itself, and earlier zones win where squares overlap.
func Classify(zones types.ZoneSet, x, y float64) types.Prediction {
	for i := 0; i < zones.Len(); i++ {
		if zones.Box(i).Contains(x, y) {
			return types.Prediction(zones.Zone(i).ID)
		}
	}
	return types.None
}

// ClassifyBlob classifies a blob's center, or returns types.None if no blob was found
func ClassifyBlob(zones types.ZoneSet, blob types.Blob, found bool) types.Prediction {
	if !found {
		return types.None
	}
	return Classify(zones, blob.CenterX, blob.CenterY)
}
