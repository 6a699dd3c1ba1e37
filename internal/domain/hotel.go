package domain

import "encoding/json"

// CompetitorType tags an entry in a hotel's competitor list.
type CompetitorType string

const (
	CompetitorPrimary   CompetitorType = "primary"
	CompetitorSecondary CompetitorType = "secondary"
)

func (t CompetitorType) Valid() bool {
	return t == CompetitorPrimary || t == CompetitorSecondary
}

// CompetitorRef is one confirmed competitor entry on a hotel.
type CompetitorRef struct {
	HotelKey string         `json:"hotel_key"`
	Type     CompetitorType `json:"type"`
}

// HotelRecord is the normalized hotel shape stored by the system.
// Key is the stable dedup identifier derived from name + coordinates and is
// immutable once assigned; every other field may be overwritten on re-ingest.
type HotelRecord struct {
	ID           int64
	Key          string
	Name         *string
	Description  *string
	Country      *string
	State        *string
	City         *string
	Lat, Lon     *float64
	StarRating   *int
	CheckInTime  *string
	CheckOutTime *string

	// NearbyPlaces is stored verbatim from the source payload.
	NearbyPlaces json.RawMessage
	Amenities    Amenities

	IsActive bool

	Competitors          []CompetitorRef
	SuggestedCompetitors []string
}

// CountByType returns how many competitors of the given type the record holds.
func (h HotelRecord) CountByType(t CompetitorType) int {
	n := 0
	for _, c := range h.Competitors {
		if c.Type == t {
			n++
		}
	}
	return n
}

// HasCompetitor reports whether key is present in the list, any type.
func (h HotelRecord) HasCompetitor(key string) bool {
	for _, c := range h.Competitors {
		if c.HotelKey == key {
			return true
		}
	}
	return false
}

// Location is the result of a city lookup against the reference dataset.
type Location struct {
	Country string
	State   string
	City    string
}

// HotelsPage is one page of a city search plus the unpaginated total.
type HotelsPage struct {
	Items []HotelRecord
	Total int
}

// NameSearch carries the optional filters of a name-substring search.
type NameSearch struct {
	Term                 string
	Country, State, City *string
}
