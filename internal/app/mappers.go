package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"ratescope/internal/domain"
)

/********** alias registries (single source of truth) **********/

var propertyAliases = map[string][]string{
	"name":        {"name", "title", "hotel_name"},
	"description": {"description", "snippet", "about"},
	"check_in":    {"check_in_time", "checkin_time", "check_in"},
	"check_out":   {"check_out_time", "checkout_time", "check_out"},
}

var latPaths = []string{"gps_coordinates.latitude", "latitude", "lat", "location.lat"}
var lonPaths = []string{"gps_coordinates.longitude", "longitude", "lon", "lng", "location.lon", "location.lng"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// rawDoc marshals whatever sits at the first present path, verbatim.
func rawDoc(m map[string]any, paths ...string) json.RawMessage {
	for _, k := range paths {
		if v := lookupAny(m, k); v != nil {
			if b, err := json.Marshal(v); err == nil {
				return b
			}
		}
	}
	return nil
}

/********** property mapper **********/

// mapProperty projects one external search result into a HotelRecord. Total:
// every missing field falls back to nil, never an error. The star rating
// prefers the source's pre-extracted numeric classification over the free-text
// "N-star hotel" label.
func mapProperty(p map[string]any, country, state, city, key string) domain.HotelRecord {
	rec := domain.HotelRecord{
		Key:          key,
		Name:         firstNonEmptyAlias(p, propertyAliases, "name"),
		Description:  firstNonEmptyAlias(p, propertyAliases, "description"),
		Country:      ptrStr(country),
		State:        ptrStr(state),
		City:         ptrStr(city),
		Lat:          getFloatFlexible(p, latPaths...),
		Lon:          getFloatFlexible(p, lonPaths...),
		CheckInTime:  firstNonEmptyAlias(p, propertyAliases, "check_in"),
		CheckOutTime: firstNonEmptyAlias(p, propertyAliases, "check_out"),
		NearbyPlaces: rawDoc(p, "nearby_places"),
		Amenities:    domain.Amenities{Doc: rawDoc(p, "amenities")},
		IsActive:     true,
	}

	if f := getFloatFlexible(p, "extracted_hotel_class", "hotel_class"); f != nil {
		if s := int(*f); s >= 1 && s <= 5 {
			rec.StarRating = &s
		}
	}
	return rec
}

/********** legacy amenity mapper **********/

// mapLegacyAmenities derives the old boolean-per-amenity flags from an
// amenity name list. Kept for the legacy table shape; new ingestion stores
// the opaque document instead.
func mapLegacyAmenities(p map[string]any) *domain.LegacyAmenityFlags {
	raw, ok := lookupAny(p, "amenities").([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	var flags domain.LegacyAmenityFlags
	for _, it := range raw {
		name, ok := it.(string)
		if !ok {
			continue
		}
		low := strings.ToLower(name)
		switch {
		case strings.Contains(low, "wi-fi"), strings.Contains(low, "wifi"):
			flags.Wifi = true
		case strings.Contains(low, "pool"):
			flags.Pool = true
		case strings.Contains(low, "parking"):
			flags.Parking = true
		case strings.Contains(low, "fitness"), strings.Contains(low, "gym"):
			flags.Gym = true
		case strings.Contains(low, "spa"):
			flags.Spa = true
		case strings.Contains(low, "restaurant"):
			flags.Restaurant = true
		case strings.Contains(low, "bar"):
			flags.Bar = true
		case strings.Contains(low, "air condition"), strings.Contains(low, "air-condition"):
			flags.AirCondition = true
		case strings.Contains(low, "pet"):
			flags.PetFriendly = true
		case strings.Contains(low, "breakfast"):
			flags.Breakfast = true
		}
	}
	return &flags
}
