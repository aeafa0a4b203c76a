package models

import "fmt"

// OverpassResponse is the JSON envelope returned by the Overpass API.
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// OverpassElement is a single tagged OSM node, way or relation. Ways and
// relations carry their centroid in Center instead of Lat/Lon.
type OverpassElement struct {
	Type   string            `json:"type"` // node, way, relation
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Name returns the element's name tag, empty when untagged.
func (e OverpassElement) Name() string {
	return e.Tags["name"]
}

// SourceID derives the stable per-source identifier, e.g. "osm-node-123".
// It is identical across ingestion runs for the same upstream element, which
// is what makes re-ingestion idempotent.
func (e OverpassElement) SourceID() string {
	return fmt.Sprintf("osm-%s-%d", e.Type, e.ID)
}

// Coordinates returns the element's position, preferring the node position
// and falling back to the way/relation centroid.
func (e OverpassElement) Coordinates() (lat, lon float64, ok bool) {
	if e.Lat != 0 || e.Lon != 0 {
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}
