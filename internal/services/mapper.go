package services

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"lokal-bknd/internal/models"
)

// DefaultLocation is used when no suburb can be resolved from the address.
const DefaultLocation = "Pretoria"

// DefaultCategory is the fallback for tags we do not recognise.
const DefaultCategory = "Local Business"

// categoryByTag maps known amenity/shop/tourism tag values to display categories.
var categoryByTag = map[string]string{
	// amenity
	"restaurant":  "Restaurant",
	"fast_food":   "Fast Food",
	"cafe":        "Cafe",
	"bar":         "Bar",
	"pub":         "Pub",
	"nightclub":   "Nightlife",
	"pharmacy":    "Pharmacy",
	"bank":        "Bank",
	"fuel":        "Fuel Station",
	"cinema":      "Cinema",
	"gym":         "Gym",
	"hospital":    "Medical",
	"clinic":      "Medical",
	"dentist":     "Dentist",
	"veterinary":  "Veterinary",
	"car_wash":    "Car Wash",
	"ice_cream":   "Dessert",
	"food_court":  "Food Court",
	"marketplace": "Market",

	// shop
	"supermarket": "Supermarket",
	"convenience": "Convenience Store",
	"bakery":      "Bakery",
	"butcher":     "Butcher",
	"clothes":     "Clothing",
	"shoes":       "Shoes",
	"hairdresser": "Salon",
	"beauty":      "Beauty",
	"electronics": "Electronics",
	"furniture":   "Furniture",
	"jewelry":     "Jewellery",
	"books":       "Bookstore",
	"florist":     "Florist",
	"hardware":    "Hardware",
	"alcohol":     "Liquor Store",
	"car":         "Car Dealership",
	"car_repair":  "Auto Repair",
	"pet":         "Pet Shop",

	// tourism
	"hotel":       "Hotel",
	"guest_house": "Guest House",
	"motel":       "Motel",
	"hostel":      "Hostel",
	"attraction":  "Attraction",
	"museum":      "Museum",
	"gallery":     "Gallery",
}

// premiumCuisines bump restaurants and cafes up a price tier.
var premiumCuisines = map[string]bool{
	"japanese":    true,
	"sushi":       true,
	"french":      true,
	"seafood":     true,
	"steak_house": true,
	"fine_dining": true,
}

// DetermineCategory resolves a display category from OSM tags. It is total:
// unknown or empty tag sets fall through to DefaultCategory.
func DetermineCategory(tags map[string]string) string {
	for _, family := range []string{"amenity", "shop", "tourism"} {
		if v, ok := tags[family]; ok {
			if cat, known := categoryByTag[v]; known {
				return cat
			}
		}
	}
	if _, ok := tags["cuisine"]; ok {
		return "Restaurant"
	}
	return DefaultCategory
}

// addrKeys in display order. addr:suburb and addr:neighbourhood share a slot.
var addrKeys = []string{"addr:housenumber", "addr:street", "", "addr:city", "addr:postcode"}

// BuildAddress joins the present address tags with ", " in the fixed order
// house number, street, suburb/neighbourhood, city, postcode. Returns nil
// when no component is present.
func BuildAddress(tags map[string]string) *string {
	var parts []string
	for _, key := range addrKeys {
		var v string
		if key == "" {
			v = tags["addr:suburb"]
			if v == "" {
				v = tags["addr:neighbourhood"]
			}
		} else {
			v = tags[key]
		}
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	addr := strings.Join(parts, ", ")
	return &addr
}

// locationStoplist holds capitalized tokens that are never suburb names:
// country/province names and street-type words.
var locationStoplist = map[string]bool{
	"South":     true,
	"Africa":    true,
	"Gauteng":   true,
	"Pretoria":  true,
	"Street":    true,
	"Road":      true,
	"Avenue":    true,
	"Drive":     true,
	"Lane":      true,
	"Crescent":  true,
	"Boulevard": true,
	"Highway":   true,
}

var (
	capitalizedWords = regexp.MustCompile(`[A-Z][a-z]+(?: [A-Z][a-z]+)*`)
	postcodePattern  = regexp.MustCompile(`^\d{4}$`)
)

// ExtractLocation pulls a suburb-like locality out of a built address.
// First pass: capitalized word groups not containing stoplisted tokens.
// Second pass: the second-to-last comma segment, skipping 4-digit postcodes.
// Defaults to DefaultLocation.
func ExtractLocation(address string) string {
	if address != "" {
		for _, match := range capitalizedWords.FindAllString(address, -1) {
			if !containsStoplisted(match) {
				return match
			}
		}

		segments := strings.Split(address, ",")
		for i := range segments {
			segments[i] = strings.TrimSpace(segments[i])
		}
		for i := len(segments) - 2; i >= 0; i-- {
			seg := segments[i]
			if seg == "" || postcodePattern.MatchString(seg) {
				continue
			}
			return seg
		}
	}
	return DefaultLocation
}

func containsStoplisted(phrase string) bool {
	for _, word := range strings.Fields(phrase) {
		if locationStoplist[word] {
			return true
		}
	}
	return false
}

// DeterminePriceRange infers a price tier from tags. An explicit $-prefixed
// price_range tag wins; otherwise the tier is a heuristic keyed on business
// type, which consumers must treat as best-effort rather than authoritative.
func DeterminePriceRange(tags map[string]string) string {
	if pr, ok := tags["price_range"]; ok && strings.HasPrefix(pr, "$") {
		return pr
	}

	amenity := tags["amenity"]
	shop := tags["shop"]
	tourism := tags["tourism"]

	switch {
	case amenity == "fast_food" || shop == "supermarket" || shop == "convenience":
		return models.PriceBudget
	case amenity == "restaurant" || amenity == "cafe":
		if premiumCuisines[tags["cuisine"]] {
			return models.PricePremium
		}
		return models.PriceModerate
	case amenity == "bar" || amenity == "pub":
		return models.PriceModerate
	case tourism == "hotel":
		return models.PricePremium
	}
	return models.PriceModerate
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// BuildSlug derives a URL-safe identifier from the name plus an 8-hex-char
// fragment of SHA-256 over source:sourceID. Fully deterministic, so the same
// upstream record always slugs identically and slug-keyed upserts dedup
// across runs.
func BuildSlug(name, source, sourceID string) string {
	base := strings.ToLower(name)
	base = slugStrip.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "business"
	}

	sum := sha256.Sum256([]byte(source + ":" + sourceID))
	return base + "-" + hex.EncodeToString(sum[:])[:8]
}

// MapToBusiness normalizes one raw OSM element into a storage-ready Business
// (without id/timestamps). The caller guarantees the element is named.
func MapToBusiness(el models.OverpassElement) models.Business {
	tags := el.Tags

	address := BuildAddress(tags)
	location := DefaultLocation
	if address != nil {
		location = ExtractLocation(*address)
	}

	name := el.Name()
	sourceID := el.SourceID()

	b := models.Business{
		Name:       name,
		Slug:       BuildSlug(name, models.SourceOverpass, sourceID),
		Category:   DetermineCategory(tags),
		Location:   location,
		Address:    address,
		PriceRange: DeterminePriceRange(tags),
		Verified:   false,
		Source:     models.SourceOverpass,
		SourceID:   sourceID,
	}

	if v := tags["phone"]; v != "" {
		b.Phone = &v
	} else if v := tags["contact:phone"]; v != "" {
		b.Phone = &v
	}
	if v := tags["website"]; v != "" {
		b.Website = &v
	} else if v := tags["contact:website"]; v != "" {
		b.Website = &v
	}
	if v := tags["description"]; v != "" {
		b.Description = &v
	}

	if lat, lon, ok := el.Coordinates(); ok {
		b.Latitude = &lat
		b.Longitude = &lon
	}

	return b
}
