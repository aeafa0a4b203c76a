package services

import (
	"strings"
	"testing"

	"lokal-bknd/internal/models"
)

func TestDetermineCategory(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"amenity restaurant", map[string]string{"amenity": "restaurant"}, "Restaurant"},
		{"amenity fast food", map[string]string{"amenity": "fast_food"}, "Fast Food"},
		{"shop hairdresser", map[string]string{"shop": "hairdresser"}, "Salon"},
		{"shop supermarket", map[string]string{"shop": "supermarket"}, "Supermarket"},
		{"tourism hotel", map[string]string{"tourism": "hotel"}, "Hotel"},
		{"amenity wins over shop", map[string]string{"amenity": "cafe", "shop": "bakery"}, "Cafe"},
		{"unknown amenity falls to cuisine", map[string]string{"amenity": "whatever", "cuisine": "pizza"}, "Restaurant"},
		{"cuisine only", map[string]string{"cuisine": "burger"}, "Restaurant"},
		{"unknown tags", map[string]string{"leisure": "park"}, DefaultCategory},
		{"empty tags", map[string]string{}, DefaultCategory},
		{"nil tags", nil, DefaultCategory},
	}

	for _, tt := range tests {
		got := DetermineCategory(tt.tags)
		if got != tt.want {
			t.Errorf("%s: DetermineCategory(%v) = %q; want %q", tt.name, tt.tags, got, tt.want)
		}
		if got == "" {
			t.Errorf("%s: DetermineCategory must never return empty", tt.name)
		}
	}
}

func TestBuildAddress(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string // "" means nil expected
	}{
		{
			"full address in fixed order",
			map[string]string{
				"addr:housenumber": "123",
				"addr:street":      "Church Street",
				"addr:suburb":      "Hatfield",
				"addr:city":        "Pretoria",
				"addr:postcode":    "0028",
			},
			"123, Church Street, Hatfield, Pretoria, 0028",
		},
		{
			"neighbourhood substitutes for suburb",
			map[string]string{
				"addr:street":        "Lynnwood Road",
				"addr:neighbourhood": "Die Wilgers",
			},
			"Lynnwood Road, Die Wilgers",
		},
		{
			"suburb wins over neighbourhood",
			map[string]string{
				"addr:suburb":        "Brooklyn",
				"addr:neighbourhood": "Ignored",
			},
			"Brooklyn",
		},
		{"missing components skipped", map[string]string{"addr:city": "Pretoria", "addr:postcode": "0181"}, "Pretoria, 0181"},
		{"no address tags", map[string]string{"amenity": "cafe", "name": "Koffie"}, ""},
		{"empty tags", map[string]string{}, ""},
	}

	for _, tt := range tests {
		got := BuildAddress(tt.tags)
		if tt.want == "" {
			if got != nil {
				t.Errorf("%s: BuildAddress = %q; want nil", tt.name, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: BuildAddress = nil; want %q", tt.name, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("%s: BuildAddress = %q; want %q", tt.name, *got, tt.want)
		}
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"123, Church Street, Hatfield, Pretoria, 0028", "Hatfield"},
		{"Lynnwood Road, Die Wilgers", "Die Wilgers"},
		// every capitalized group stoplisted, falls to second-to-last segment
		{"12, main road, menlyn, 0181", "menlyn"},
		{"", DefaultLocation},
		{"12", DefaultLocation},
	}

	for _, tt := range tests {
		got := ExtractLocation(tt.address)
		if got != tt.want {
			t.Errorf("ExtractLocation(%q) = %q; want %q", tt.address, got, tt.want)
		}
	}
}

func TestDeterminePriceRange(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"explicit tag wins", map[string]string{"price_range": "$$$$", "amenity": "fast_food"}, "$$$$"},
		{"non-dollar explicit ignored", map[string]string{"price_range": "cheap", "amenity": "fast_food"}, "$"},
		{"fast food is budget", map[string]string{"amenity": "fast_food"}, "$"},
		{"supermarket is budget", map[string]string{"shop": "supermarket"}, "$"},
		{"restaurant is moderate", map[string]string{"amenity": "restaurant"}, "$$"},
		{"premium cuisine bumps restaurant", map[string]string{"amenity": "restaurant", "cuisine": "japanese"}, "$$$"},
		{"premium cuisine bumps cafe", map[string]string{"amenity": "cafe", "cuisine": "french"}, "$$$"},
		{"plain cuisine stays moderate", map[string]string{"amenity": "restaurant", "cuisine": "pizza"}, "$$"},
		{"bar is moderate", map[string]string{"amenity": "bar"}, "$$"},
		{"hotel is premium", map[string]string{"tourism": "hotel"}, "$$$"},
		{"no tags default", map[string]string{}, "$$"},
	}

	for _, tt := range tests {
		got := DeterminePriceRange(tt.tags)
		if got != tt.want {
			t.Errorf("%s: DeterminePriceRange(%v) = %q; want %q", tt.name, tt.tags, got, tt.want)
		}
	}
}

func TestBuildSlugDeterministic(t *testing.T) {
	a := BuildSlug("Tony's Café & Deli", "overpass", "osm-node-123")
	b := BuildSlug("Tony's Café & Deli", "overpass", "osm-node-123")
	if a != b {
		t.Fatalf("identical input produced different slugs: %q vs %q", a, b)
	}

	if !strings.HasPrefix(a, "tony-s-caf-deli-") {
		t.Errorf("unexpected slug base: %q", a)
	}

	frag := a[strings.LastIndex(a, "-")+1:]
	if len(frag) != 8 {
		t.Errorf("hash fragment length = %d; want 8 (%q)", len(frag), a)
	}

	// changing the source id must change the slug
	other := BuildSlug("Tony's Café & Deli", "overpass", "osm-node-124")
	if other == a {
		t.Errorf("different source ids produced identical slugs: %q", a)
	}
}

func TestBuildSlugEmptyName(t *testing.T) {
	s := BuildSlug("!!!", "overpass", "osm-node-1")
	if !strings.HasPrefix(s, "business-") {
		t.Errorf("slug for unusable name = %q; want business-<hash>", s)
	}
}

func TestMapToBusiness(t *testing.T) {
	el := models.OverpassElement{
		Type: "node",
		ID:   4417246548,
		Lat:  -25.7461,
		Lon:  28.2379,
		Tags: map[string]string{
			"name":             "Kream Brooklyn",
			"amenity":          "restaurant",
			"cuisine":          "seafood",
			"phone":            "+27 12 346 4642",
			"website":          "https://kream.co.za",
			"addr:housenumber": "337",
			"addr:street":      "Veale Street",
			"addr:suburb":      "Brooklyn",
			"addr:city":        "Pretoria",
			"addr:postcode":    "0181",
		},
	}

	b := MapToBusiness(el)

	if b.Name != "Kream Brooklyn" {
		t.Errorf("Name = %q", b.Name)
	}
	if b.Category != "Restaurant" {
		t.Errorf("Category = %q; want Restaurant", b.Category)
	}
	if b.PriceRange != "$$$" {
		t.Errorf("PriceRange = %q; want $$$ (premium cuisine)", b.PriceRange)
	}
	if b.Location != "Brooklyn" {
		t.Errorf("Location = %q; want Brooklyn", b.Location)
	}
	if b.Source != models.SourceOverpass {
		t.Errorf("Source = %q", b.Source)
	}
	if b.SourceID != "osm-node-4417246548" {
		t.Errorf("SourceID = %q; want osm-node-4417246548", b.SourceID)
	}
	if b.Verified {
		t.Error("ingested businesses must not be verified")
	}
	if b.Address == nil || *b.Address != "337, Veale Street, Brooklyn, Pretoria, 0181" {
		t.Errorf("Address = %v", b.Address)
	}
	if b.Phone == nil || *b.Phone != "+27 12 346 4642" {
		t.Errorf("Phone = %v", b.Phone)
	}
	if b.Latitude == nil || *b.Latitude != -25.7461 {
		t.Errorf("Latitude = %v", b.Latitude)
	}

	// mapping the same element twice yields the same slug and source id
	again := MapToBusiness(el)
	if again.Slug != b.Slug || again.SourceID != b.SourceID {
		t.Errorf("re-mapping is not stable: %q/%q vs %q/%q", b.Slug, b.SourceID, again.Slug, again.SourceID)
	}
}

func TestMapToBusinessWayUsesCenter(t *testing.T) {
	el := models.OverpassElement{
		Type:   "way",
		ID:     99,
		Center: &models.OverpassCenter{Lat: -25.77, Lon: 28.23},
		Tags:   map[string]string{"name": "Menlyn Park", "shop": "mall"},
	}

	b := MapToBusiness(el)
	if b.SourceID != "osm-way-99" {
		t.Errorf("SourceID = %q; want osm-way-99", b.SourceID)
	}
	if b.Latitude == nil || *b.Latitude != -25.77 {
		t.Errorf("Latitude = %v; want center lat", b.Latitude)
	}
	if b.Location != DefaultLocation {
		t.Errorf("Location = %q; want default when no address", b.Location)
	}
}
