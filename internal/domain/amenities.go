package domain

import "encoding/json"

// Amenities is a tagged variant: new ingestion stores the provider payload as
// an opaque document, while records written by the legacy table shape carry
// per-amenity boolean flags. Exactly one side is populated.
type Amenities struct {
	Doc    json.RawMessage
	Legacy *LegacyAmenityFlags
}

// LegacyAmenityFlags is the old boolean-per-amenity column shape.
type LegacyAmenityFlags struct {
	Wifi         bool `json:"wifi"`
	Pool         bool `json:"pool"`
	Parking      bool `json:"parking"`
	Gym          bool `json:"gym"`
	Spa          bool `json:"spa"`
	Restaurant   bool `json:"restaurant"`
	Bar          bool `json:"bar"`
	AirCondition bool `json:"air_condition"`
	PetFriendly  bool `json:"pet_friendly"`
	Breakfast    bool `json:"breakfast"`
}

// IsZero reports whether neither variant is set.
func (a Amenities) IsZero() bool { return len(a.Doc) == 0 && a.Legacy == nil }

// Document returns the opaque-document view, converting legacy flags into a
// list-of-names document when needed. Migration path for old records.
func (a Amenities) Document() json.RawMessage {
	if len(a.Doc) > 0 {
		return a.Doc
	}
	if a.Legacy == nil {
		return nil
	}
	names := make([]string, 0, 10)
	for _, f := range []struct {
		on   bool
		name string
	}{
		{a.Legacy.Wifi, "Wi-Fi"},
		{a.Legacy.Pool, "Pool"},
		{a.Legacy.Parking, "Parking"},
		{a.Legacy.Gym, "Fitness center"},
		{a.Legacy.Spa, "Spa"},
		{a.Legacy.Restaurant, "Restaurant"},
		{a.Legacy.Bar, "Bar"},
		{a.Legacy.AirCondition, "Air conditioning"},
		{a.Legacy.PetFriendly, "Pet-friendly"},
		{a.Legacy.Breakfast, "Breakfast"},
	} {
		if f.on {
			names = append(names, f.name)
		}
	}
	b, _ := json.Marshal(names)
	return b
}
