package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZero(t *testing.T) {
	assert.InDelta(t, 0, DistanceKm(-4.325, 15.322, -4.325, 15.322), 1e-9)
}

func TestDistanceKmKnownPairs(t *testing.T) {
	// Kinshasa to Lubumbashi, roughly 1570 km
	d := DistanceKm(-4.325, 15.322, -11.687, 27.502)
	assert.InDelta(t, 1570, d, 30)

	// Paris to London, roughly 344 km
	d = DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 5)
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := DistanceKm(-4.3, 15.3, -4.4, 15.5)
	b := DistanceKm(-4.4, 15.5, -4.3, 15.3)
	assert.InDelta(t, a, b, 1e-9)
}
