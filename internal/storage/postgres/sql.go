package postgres

const upsertHotelSQL = `
INSERT INTO hotels
  (key, name, description, country, state, city, latitude, longitude,
   star_rating, check_in_time, check_out_time, nearby_places, amenities,
   amenity_flags, is_active)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
ON CONFLICT (key) DO UPDATE SET
  name           = EXCLUDED.name,
  description    = EXCLUDED.description,
  country        = EXCLUDED.country,
  state          = EXCLUDED.state,
  city           = EXCLUDED.city,
  latitude       = EXCLUDED.latitude,
  longitude      = EXCLUDED.longitude,
  star_rating    = EXCLUDED.star_rating,
  check_in_time  = EXCLUDED.check_in_time,
  check_out_time = EXCLUDED.check_out_time,
  nearby_places  = EXCLUDED.nearby_places,
  amenities      = EXCLUDED.amenities,
  amenity_flags  = EXCLUDED.amenity_flags,
  is_active      = TRUE,
  updated_at     = now()
`

// The competitor columns are deliberately absent from the upsert: ingestion
// and the competitor flow own disjoint column sets.

const hotelColumns = `
  id, key, name, description, country, state, city, latitude, longitude,
  star_rating, check_in_time, check_out_time, nearby_places, amenities,
  amenity_flags, is_active, competitors, suggested_competitors
`

const findByKeySQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE key = $1`

const findByIDSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`

const searchByCitySQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE LOWER(city) = LOWER($1) AND is_active
ORDER BY name
LIMIT $2 OFFSET $3
`

const countByCitySQL = `
SELECT COUNT(*) FROM hotels WHERE LOWER(city) = LOWER($1) AND is_active
`

const replaceCompetitorsSQL = `
UPDATE hotels SET competitors = $2, updated_at = now() WHERE key = $1
`

const replaceSuggestedSQL = `
UPDATE hotels SET suggested_competitors = $2, updated_at = now() WHERE key = $1
`

const cityByNameSQL = `
SELECT name, state, country FROM cities WHERE LOWER(name) = LOWER($1) LIMIT 1
`
