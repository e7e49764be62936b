package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	johannesburg = Point{Latitude: -26.2041, Longitude: 28.0473}
	pretoria     = Point{Latitude: -25.7479, Longitude: 28.2293}
)

func TestDistanceSymmetry(t *testing.T) {
	assert.InDelta(t, Distance(johannesburg, pretoria), Distance(pretoria, johannesburg), 1e-9)
}

func TestDistanceZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(johannesburg, johannesburg))
}

func TestDistanceKnownPair(t *testing.T) {
	// Johannesburg to Pretoria is roughly 54 km as the crow flies.
	d := Distance(johannesburg, pretoria)
	assert.InDelta(t, 54, d, 3)
}

func TestDistanceSmallOffset(t *testing.T) {
	// 0.01 degrees of latitude is about 1.11 km anywhere on the globe.
	near := Point{Latitude: johannesburg.Latitude + 0.01, Longitude: johannesburg.Longitude}
	assert.InDelta(t, 1.11, Distance(johannesburg, near), 0.02)
}

func TestNewBoundingBoxLatitudeSpan(t *testing.T) {
	box := NewBoundingBox(johannesburg, 50)

	assert.InDelta(t, 50.0/111.0, johannesburg.Latitude-box.MinLat, 1e-9)
	assert.InDelta(t, 50.0/111.0, box.MaxLat-johannesburg.Latitude, 1e-9)
}

func TestNewBoundingBoxLongitudeScaling(t *testing.T) {
	box := NewBoundingBox(johannesburg, 50)

	// Longitude degrees shrink by cos(latitude), so the east-west span in
	// degrees must be wider than the north-south span.
	lonSpan := box.MaxLon - box.MinLon
	latSpan := box.MaxLat - box.MinLat
	assert.Greater(t, lonSpan, latSpan)

	expected := 50.0 / (111.0 * math.Cos(johannesburg.Latitude*math.Pi/180))
	assert.InDelta(t, expected, box.MaxLon-johannesburg.Longitude, 1e-9)
}

func TestContainsLongitude(t *testing.T) {
	box := NewBoundingBox(johannesburg, 50)

	assert.True(t, box.ContainsLongitude(johannesburg.Longitude))
	assert.True(t, box.ContainsLongitude(box.MinLon))
	assert.True(t, box.ContainsLongitude(box.MaxLon))
	assert.False(t, box.ContainsLongitude(box.MaxLon+0.001))
}
